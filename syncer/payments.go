// ABOUTME: Payment operations: append-only ledger writes and cached fetches
// ABOUTME: Falls back to the local snapshot when the remote is unreachable
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aleayin/orderdesk/errs"
	"github.com/aleayin/orderdesk/models"
	"github.com/aleayin/orderdesk/retry"
	"github.com/aleayin/orderdesk/store"
)

// AddPayment stamps an id and creation time onto the payment and persists
// it. Returns the new id. Payments are never mutated after this.
func (c *Coordinator) AddPayment(ctx context.Context, payment models.Payment) (string, error) {
	if err := payment.Validate(); err != nil {
		return "", err
	}

	c.beginSync()
	defer c.endSync()

	payment.ID = c.store.PushID()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	if payment.CreatedBy == "" {
		payment.CreatedBy = c.cfg.DeviceID
	}

	data, err := json.Marshal(payment)
	if err != nil {
		return "", fmt.Errorf("add payment: %w", err)
	}

	path := store.PaymentsPath + "/" + payment.ID
	err = c.executor().Do(ctx, "add payment", func() error {
		return retry.Guard("add payment", c.cfg.OpDeadline, func() error {
			return c.store.Set(ctx, path, data)
		})
	})
	if err != nil {
		c.log.Error("add payment failed", "id", payment.ID, "err", err)
		return "", fmt.Errorf("%w: %w", errs.ErrAddFailed, err)
	}

	c.log.Info("payment added", "id", payment.ID, "recipient", payment.RecipientName, "amount", payment.Amount)
	return payment.ID, nil
}

// GetAllPayments fetches the full collection in a single guarded shot,
// attaching ids from the tree keys. The result overwrites the local
// snapshot. On total failure the last snapshot is served instead; only when
// no snapshot exists does the call fail.
func (c *Coordinator) GetAllPayments(ctx context.Context) ([]models.Payment, error) {
	c.beginSync()
	defer c.endSync()

	var snap store.Snapshot
	err := retry.Guard("get payments", c.cfg.OpDeadline, func() error {
		var listErr error
		snap, listErr = c.store.List(ctx, store.PaymentsPath)
		return listErr
	})
	if err != nil {
		cached, ok, cacheErr := c.cache.LoadPayments()
		if cacheErr == nil && ok {
			c.log.Warn("payments fetch failed, serving cached snapshot", "count", len(cached), "err", err)
			c.setPayments(cached)
			return cached, nil
		}
		c.log.Error("payments fetch failed with no cached fallback", "err", err)
		return nil, fmt.Errorf("%w: %w", errs.ErrFetchFailed, err)
	}

	payments := make([]models.Payment, 0, len(snap))
	for id, raw := range snap {
		var p models.Payment
		if err := json.Unmarshal(raw, &p); err != nil {
			c.log.Warn("skipping malformed payment record", "id", id, "err", err)
			continue
		}
		p.ID = id
		payments = append(payments, p)
	}
	models.SortPayments(payments)

	c.setPayments(payments)
	if err := c.cache.SavePayments(payments); err != nil {
		c.log.Warn("failed to persist payments snapshot", "err", err)
	}
	return payments, nil
}

// RefreshPayments wraps GetAllPayments in its own retry loop. The local
// snapshot seeds visible state immediately so stale data shows while the
// refresh is in flight.
func (c *Coordinator) RefreshPayments(ctx context.Context) ([]models.Payment, error) {
	if cached, ok, err := c.cache.LoadPayments(); err == nil && ok {
		c.setPayments(cached)
	}

	var payments []models.Payment
	err := c.executor().Do(ctx, "refresh payments", func() error {
		var fetchErr error
		payments, fetchErr = c.GetAllPayments(ctx)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// DeletePayment removes one payment; the ledger's only correction mechanism.
// Deleting an unknown id succeeds silently.
func (c *Coordinator) DeletePayment(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("payment id is required: %w", errs.ErrValidation)
	}

	c.beginSync()
	defer c.endSync()

	path := store.PaymentsPath + "/" + id
	err := c.executor().Do(ctx, "delete payment", func() error {
		return retry.Guard("delete payment", c.cfg.OpDeadline, func() error {
			return c.store.Remove(ctx, path)
		})
	})
	if err != nil {
		c.log.Error("delete payment failed", "id", id, "err", err)
		return fmt.Errorf("%w: %w", errs.ErrDeleteFailed, err)
	}

	c.removePaymentLocal(id)
	c.log.Info("payment deleted", "id", id)
	return nil
}

// DeleteAllPayments bulk-removes the entire collection.
func (c *Coordinator) DeleteAllPayments(ctx context.Context) error {
	c.beginSync()
	defer c.endSync()

	err := c.executor().Do(ctx, "delete all payments", func() error {
		return retry.Guard("delete all payments", c.cfg.OpDeadline, func() error {
			return c.store.Remove(ctx, store.PaymentsPath)
		})
	})
	if err != nil {
		c.log.Error("delete all payments failed", "err", err)
		return fmt.Errorf("%w: %w", errs.ErrDeleteFailed, err)
	}

	c.setPayments(nil)
	if err := c.cache.SavePayments(nil); err != nil {
		c.log.Warn("failed to persist payments snapshot", "err", err)
	}
	c.log.Info("all payments deleted")
	return nil
}

// PaymentsByRecipient returns the payments addressed to one worker or
// partner. Balances are derived by the caller, not here.
func (c *Coordinator) PaymentsByRecipient(ctx context.Context, recipientType models.RecipientType, name string) ([]models.Payment, error) {
	payments, err := c.GetAllPayments(ctx)
	if err != nil {
		return nil, err
	}
	return models.FilterPaymentsByRecipient(payments, recipientType, name), nil
}

// PaymentsByTimeFilter returns the payments inside the requested window.
func (c *Coordinator) PaymentsByTimeFilter(ctx context.Context, filter models.TimeFilter, customDays string) ([]models.Payment, error) {
	payments, err := c.GetAllPayments(ctx)
	if err != nil {
		return nil, err
	}
	return models.FilterPaymentsByTime(payments, filter, customDays), nil
}

func (c *Coordinator) removePaymentLocal(id string) {
	c.mu.Lock()
	// Callers may still hold the fetched slice, so filter into a fresh one.
	kept := make([]models.Payment, 0, len(c.payments))
	for _, p := range c.payments {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	c.payments = kept
	payments := make([]models.Payment, len(kept))
	copy(payments, kept)
	c.mu.Unlock()

	if err := c.cache.SavePayments(payments); err != nil {
		c.log.Warn("failed to persist payments snapshot", "err", err)
	}
}
