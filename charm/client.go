// ABOUTME: Charm KV client wrapper with sync and connectivity helpers
// ABOUTME: Explicitly constructed and injected, never accessed as a global

package charm

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
)

// Client wraps a charm-cloud KV store. All access goes through the mutex so
// concurrent operations from the poll loop and writers stay safe. When
// testClient is set, every call routes to the local badger store instead of
// the cloud.
type Client struct {
	kv         *kv.KV
	config     *Config
	mu         sync.RWMutex
	testClient *testClient
}

// NewClient opens the charm KV store for cfg. Pass nil for defaults.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// The charm SDK reads the host from the environment.
	_ = os.Setenv("CHARM_HOST", cfg.Host)

	db, err := kv.OpenWithDefaults(AppName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := &Client{kv: db, config: cfg}

	// Pull remote changes on startup so the first read sees current data.
	if cfg.AutoSync {
		_ = db.Sync()
	}
	return c, nil
}

// Close releases the client. The charm KV store has no explicit close; its
// badger files are released on process exit.
func (c *Client) Close() error {
	return nil
}

// Config returns the client's connection settings.
func (c *Client) Config() *Config {
	if c.testClient != nil {
		return c.testClient.Config()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// ID returns the charm account ID this device is linked to.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

// IsConnected reports whether the cloud account is reachable.
func (c *Client) IsConnected() bool {
	if c.testClient != nil {
		return true
	}
	_, err := c.ID()
	return err == nil
}

// Sync pulls and pushes pending changes with the charm server.
func (c *Client) Sync() error {
	if c.testClient != nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Sync()
}

// Get retrieves a value by key.
func (c *Client) Get(key []byte) ([]byte, error) {
	if c.testClient != nil {
		return c.testClient.Get(key)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kv.Get(key)
}

// Set stores a value, syncing afterwards when AutoSync is on.
func (c *Client) Set(key, value []byte) error {
	if c.testClient != nil {
		return c.testClient.Set(key, value)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.kv.Set(key, value); err != nil {
		return err
	}
	c.autoSyncLocked()
	return nil
}

// Delete removes a key, syncing afterwards when AutoSync is on.
func (c *Client) Delete(key []byte) error {
	if c.testClient != nil {
		return c.testClient.Delete(key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.kv.Delete(key); err != nil {
		return err
	}
	c.autoSyncLocked()
	return nil
}

// autoSyncLocked syncs after a write. Runs under the write lock so a
// concurrent writer cannot interleave between the write and its sync.
func (c *Client) autoSyncLocked() {
	if c.config.AutoSync {
		_ = c.kv.Sync()
	}
}

// Keys returns every key in the store.
func (c *Client) Keys() ([][]byte, error) {
	if c.testClient != nil {
		return c.testClient.Keys()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kv.Keys()
}

// KeysWithPrefix returns the keys under a tree prefix, e.g. "orders/".
func (c *Client) KeysWithPrefix(prefix []byte) ([][]byte, error) {
	all, err := c.Keys()
	if err != nil {
		return nil, err
	}
	var matched [][]byte
	for _, k := range all {
		if len(k) >= len(prefix) && string(k[:len(prefix)]) == string(prefix) {
			matched = append(matched, k)
		}
	}
	return matched, nil
}

// Reset wipes all data from the KV store.
func (c *Client) Reset() error {
	if c.testClient != nil {
		return c.testClient.Reset()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}
