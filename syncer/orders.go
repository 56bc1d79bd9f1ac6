// ABOUTME: Order operations: add, update, delete against the remote store
// ABOUTME: Each composed from timeout guard + bounded retry per call site
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aleayin/orderdesk/errs"
	"github.com/aleayin/orderdesk/models"
	"github.com/aleayin/orderdesk/retry"
	"github.com/aleayin/orderdesk/store"
)

// AddOrder validates and persists a new order. The store assigns the id and
// the creation timestamp defaults to now. The new order is NOT spliced into
// the local collection; the live subscription delivers the canonical update,
// which keeps a racing delivery from producing a duplicate entry.
func (c *Coordinator) AddOrder(ctx context.Context, order models.Order) (models.Order, error) {
	if err := order.Validate(); err != nil {
		return models.Order{}, err
	}
	if !c.Online() {
		return models.Order{}, fmt.Errorf("add order: %w", errs.ErrOffline)
	}

	c.beginSync()
	defer c.endSync()

	order.ID = c.store.PushID()
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	data, err := json.Marshal(order)
	if err != nil {
		return models.Order{}, fmt.Errorf("add order: %w", err)
	}

	path := store.OrdersPath + "/" + order.ID
	err = c.executor().Do(ctx, "add order", func() error {
		return retry.Guard("add order", c.cfg.OpDeadline, func() error {
			return c.store.Set(ctx, path, data)
		})
	})
	if err != nil {
		c.log.Error("add order failed", "id", order.ID, "err", err)
		return models.Order{}, fmt.Errorf("%w: %w", errs.ErrAddFailed, err)
	}

	c.log.Info("order added", "id", order.ID, "customer", order.CustomerName)
	return order, nil
}

// UpdateOrder fully replaces an existing order record. The target must
// already exist remotely; updating an unknown id fails with ErrNotFound and
// never creates a record. On success the local collection is spliced
// immediately so the writer sees its own update without waiting for the
// subscription.
func (c *Coordinator) UpdateOrder(ctx context.Context, order models.Order) error {
	if order.ID == "" {
		return fmt.Errorf("order id is required: %w", errs.ErrValidation)
	}
	if err := order.Validate(); err != nil {
		return err
	}
	if !c.Online() {
		return fmt.Errorf("update order: %w", errs.ErrOffline)
	}

	c.beginSync()
	defer c.endSync()

	path := store.OrdersPath + "/" + order.ID
	err := retry.Guard("get order", c.cfg.ReadDeadline, func() error {
		_, err := c.store.Get(ctx, path)
		return err
	})
	if errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("order %s: %w", order.ID, errs.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrUpdateFailed, err)
	}

	order.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	err = c.executor().Do(ctx, "update order", func() error {
		return retry.Guard("update order", c.cfg.OpDeadline, func() error {
			return c.store.Set(ctx, path, data)
		})
	})
	if err != nil {
		c.log.Error("update order failed", "id", order.ID, "err", err)
		return fmt.Errorf("%w: %w", errs.ErrUpdateFailed, err)
	}

	c.spliceOrder(order)
	c.log.Info("order updated", "id", order.ID)
	return nil
}

// DeleteOrder removes an order. Deleting an id that does not exist succeeds
// silently. On success the order is dropped from the local collection
// immediately.
func (c *Coordinator) DeleteOrder(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("order id is required: %w", errs.ErrValidation)
	}
	if !c.Online() {
		return fmt.Errorf("delete order: %w", errs.ErrOffline)
	}

	c.beginSync()
	defer c.endSync()

	path := store.OrdersPath + "/" + id
	err := c.executor().Do(ctx, "delete order", func() error {
		return retry.Guard("delete order", c.cfg.OpDeadline, func() error {
			return c.store.Remove(ctx, path)
		})
	})
	if err != nil {
		c.log.Error("delete order failed", "id", id, "err", err)
		return fmt.Errorf("%w: %w", errs.ErrDeleteFailed, err)
	}

	c.removeOrderLocal(id)
	c.log.Info("order deleted", "id", id)
	return nil
}

func (c *Coordinator) spliceOrder(order models.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.orders {
		if c.orders[i].ID == order.ID {
			c.orders[i] = order
			return
		}
	}
}

func (c *Coordinator) removeOrderLocal(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Callbacks may still hold the delivered slice, so filter into a fresh one.
	kept := make([]models.Order, 0, len(c.orders))
	for _, o := range c.orders {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	c.orders = kept
}
