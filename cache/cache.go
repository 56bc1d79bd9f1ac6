// ABOUTME: Local fallback cache holding last-known-good order/payment snapshots
// ABOUTME: BadgerDB-backed, overwritten on every successful remote fetch
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/dgraph-io/badger/v3"

	"github.com/aleayin/orderdesk/models"
)

// Fixed snapshot keys. Each holds the full serialized collection.
var (
	ordersKey   = []byte("orders-cache")
	paymentsKey = []byte("payments-cache")
)

// Cache persists last-known-good collection snapshots outside the remote
// store. It is a read fallback, not a source of truth.
type Cache struct {
	db *badger.DB
}

// Open opens the snapshot store at dir.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// DefaultDir returns the cache location under the XDG data home.
func DefaultDir(appName string) string {
	return filepath.Join(xdg.DataHome, appName, "cache")
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// SaveOrders overwrites the orders snapshot.
func (c *Cache) SaveOrders(orders []models.Order) error {
	return c.save(ordersKey, orders)
}

// LoadOrders returns the last orders snapshot. ok is false when no snapshot
// has ever been written.
func (c *Cache) LoadOrders() (orders []models.Order, ok bool, err error) {
	ok, err = c.load(ordersKey, &orders)
	return orders, ok, err
}

// SavePayments overwrites the payments snapshot.
func (c *Cache) SavePayments(payments []models.Payment) error {
	return c.save(paymentsKey, payments)
}

// LoadPayments returns the last payments snapshot. ok is false when no
// snapshot has ever been written.
func (c *Cache) LoadPayments() (payments []models.Payment, ok bool, err error) {
	ok, err = c.load(paymentsKey, &payments)
	return payments, ok, err
}

func (c *Cache) save(key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

func (c *Cache) load(key []byte, v interface{}) (bool, error) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return true, nil
}
