// ABOUTME: Sync coordinator owning local collections and connectivity state
// ABOUTME: Composes timeout guard, retry executor, and remote store calls
package syncer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/aleayin/orderdesk/cache"
	"github.com/aleayin/orderdesk/models"
	"github.com/aleayin/orderdesk/retry"
	"github.com/aleayin/orderdesk/store"
)

// Config tunes the coordinator's deadlines and budgets. The zero value uses
// production defaults; tests shrink every duration.
type Config struct {
	// ReadDeadline bounds a single-record read (the update existence check).
	ReadDeadline time.Duration

	// OpDeadline bounds one attempt of a compound operation.
	OpDeadline time.Duration

	// MaxAttempts is the retry budget for writes and refreshes.
	MaxAttempts int

	// RetryBackoff is the base inter-attempt delay; the wait after attempt n
	// is n*RetryBackoff.
	RetryBackoff time.Duration

	// SubscribeBackoff is the base delay between subscription establishment
	// attempts (1x, 2x, 3x).
	SubscribeBackoff time.Duration

	// IdleTimeout is how long a subscription waits for a delivery before
	// reporting an empty list as the degraded signal.
	IdleTimeout time.Duration

	// SyncWatchdog force-clears the syncing flag if an operation neither
	// resolves nor fails in time. A UI safety valve, not a cancellation.
	SyncWatchdog time.Duration

	// DeviceID is stamped onto payments created without an explicit creator.
	DeviceID string
}

func (c Config) withDefaults() Config {
	if c.ReadDeadline <= 0 {
		c.ReadDeadline = retry.ReadDeadline
	}
	if c.OpDeadline <= 0 {
		c.OpDeadline = retry.OpDeadline
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = retry.DefaultMaxAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = retry.DefaultBackoff
	}
	if c.SubscribeBackoff <= 0 {
		c.SubscribeBackoff = retry.DefaultBackoff
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 15 * time.Second
	}
	if c.SyncWatchdog <= 0 {
		c.SyncWatchdog = 60 * time.Second
	}
	return c
}

// Coordinator orchestrates reads, writes, and the live subscription against
// the remote store. It owns the local order/payment collections; callers get
// snapshots or dispatch intents, never a mutable handle.
type Coordinator struct {
	store store.Store
	cache *cache.Cache
	log   *log.Logger
	cfg   Config

	mu       sync.RWMutex
	orders   []models.Order
	payments []models.Payment
	online   bool
	inflight int
	syncing  bool
	watchdog *time.Timer

	subMu sync.Mutex
	subs  map[*subscription]struct{}
}

// New builds a coordinator. Constructed once at process start and torn down
// with Close at shutdown.
func New(st store.Store, ca *cache.Cache, logger *log.Logger, cfg Config) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{
		store:  st,
		cache:  ca,
		log:    logger.With("component", "syncer"),
		cfg:    cfg.withDefaults(),
		online: true,
		subs:   make(map[*subscription]struct{}),
	}
}

// Close cancels every live subscription.
func (c *Coordinator) Close() {
	c.subMu.Lock()
	subs := make([]*subscription, 0, len(c.subs))
	for s := range c.subs {
		subs = append(subs, s)
	}
	c.subMu.Unlock()
	for _, s := range subs {
		s.stop()
	}
}

// Online reports the connectivity flag.
func (c *Coordinator) Online() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online
}

// Syncing reports whether any remote operation is outstanding.
func (c *Coordinator) Syncing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.syncing
}

// Orders returns a read snapshot of the local orders collection.
func (c *Coordinator) Orders() []models.Order {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Order, len(c.orders))
	copy(out, c.orders)
	return out
}

// Payments returns a read snapshot of the local payments collection.
func (c *Coordinator) Payments() []models.Payment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Payment, len(c.payments))
	copy(out, c.payments)
	return out
}

// SetOnline feeds the runtime connectivity signal into the coordinator.
// Coming back online re-establishes paused subscriptions and kicks off a
// payments refresh.
func (c *Coordinator) SetOnline(online bool) {
	c.mu.Lock()
	was := c.online
	c.online = online
	c.mu.Unlock()
	if online == was {
		return
	}

	if !online {
		c.log.Warn("connectivity lost")
		c.pauseSubscriptions()
		return
	}

	c.log.Info("connectivity restored")
	c.markConnected()
	c.resumeSubscriptions()
	go func() {
		if _, err := c.RefreshPayments(context.Background()); err != nil {
			c.log.Warn("payments refresh after reconnect failed", "err", err)
		}
	}()
}

// markConnected writes the connectivity marker. Best effort; nothing reads
// it back.
func (c *Coordinator) markConnected() {
	ts, err := json.Marshal(time.Now().UTC())
	if err != nil {
		return
	}
	go func() {
		if err := c.store.Set(context.Background(), store.ConnectivityPath, ts); err != nil {
			c.log.Debug("connectivity marker write failed", "err", err)
		}
	}()
}

func (c *Coordinator) executor() retry.Executor {
	return retry.Executor{MaxAttempts: c.cfg.MaxAttempts, Backoff: c.cfg.RetryBackoff}
}

// beginSync flips the syncing flag and arms the watchdog. Operations may
// overlap; the flag stays up until the last one ends or the watchdog fires.
func (c *Coordinator) beginSync() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight++
	c.syncing = true
	if c.watchdog == nil {
		c.watchdog = time.AfterFunc(c.cfg.SyncWatchdog, c.watchdogFired)
	} else {
		c.watchdog.Reset(c.cfg.SyncWatchdog)
	}
}

func (c *Coordinator) endSync() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight > 0 {
		c.inflight--
	}
	if c.inflight == 0 {
		c.syncing = false
		if c.watchdog != nil {
			c.watchdog.Stop()
		}
	}
}

func (c *Coordinator) watchdogFired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.syncing {
		c.syncing = false
		c.log.Warn("sync watchdog fired, clearing stuck syncing indicator")
	}
}

func (c *Coordinator) replaceOrders(orders []models.Order) {
	c.mu.Lock()
	c.orders = orders
	c.mu.Unlock()

	if err := c.cache.SaveOrders(orders); err != nil {
		c.log.Warn("failed to persist orders snapshot", "err", err)
	}
}

func (c *Coordinator) setPayments(payments []models.Payment) {
	c.mu.Lock()
	c.payments = payments
	c.mu.Unlock()
}

func (c *Coordinator) pauseSubscriptions() {
	for _, s := range c.activeSubs() {
		s.pause()
	}
}

func (c *Coordinator) resumeSubscriptions() {
	for _, s := range c.activeSubs() {
		s.establish()
	}
}

func (c *Coordinator) activeSubs() []*subscription {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	subs := make([]*subscription, 0, len(c.subs))
	for s := range c.subs {
		subs = append(subs, s)
	}
	return subs
}
