// ABOUTME: Test utilities for creating isolated charm clients
// ABOUTME: Backs the client with a throwaway BadgerDB so no server is needed

package charm

import (
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// testClient satisfies the Client call surface on top of a local badger
// store. The mutex keeps parallel test operations safe.
type testClient struct {
	db     *badger.DB
	config *Config
	mu     sync.RWMutex
}

func (c *testClient) Get(key []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	return value, err
}

func (c *testClient) Set(key, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (c *testClient) Delete(key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (c *testClient) Keys() ([][]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var keys [][]byte
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

func (c *testClient) Config() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *testClient) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.DropAll()
}

// NewTestClient returns a Client backed by a badger store in a temp
// directory, sidestepping the charm server entirely. Cleanup is registered
// on t automatically.
func NewTestClient(t *testing.T) *Client {
	t.Helper()

	opts := badger.DefaultOptions(t.TempDir()).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("failed to open test badger store: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("warning: failed to close test store: %v", err)
		}
	})

	tc := &testClient{
		db: db,
		config: &Config{
			Host:         "localhost",
			DeviceID:     "test-device",
			AutoSync:     false,
			PollInterval: 5 * time.Millisecond, // keeps watch tests fast
		},
	}
	return &Client{config: tc.config, testClient: tc}
}
