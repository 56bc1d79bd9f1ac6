// ABOUTME: Live order subscription with establish-retry and idle detection
// ABOUTME: Reconciles remote snapshots into the local collection wholesale
package syncer

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/aleayin/orderdesk/models"
	"github.com/aleayin/orderdesk/store"
)

// Unsubscribe cancels a live subscription and any pending idle timer.
type Unsubscribe func()

// SubscribeOrders opens a live watch on the orders collection. Every remote
// change delivers the full snapshot, sorted newest-first, which replaces the
// local collection wholesale. While offline the watch stays down and the
// idle timer reports an empty list once; coming back online re-establishes
// it.
func (c *Coordinator) SubscribeOrders(cb func([]models.Order)) Unsubscribe {
	sub := &subscription{c: c, cb: cb}

	c.subMu.Lock()
	c.subs[sub] = struct{}{}
	c.subMu.Unlock()

	if c.Online() {
		sub.establish()
	} else {
		sub.resetIdle()
	}
	return sub.stop
}

type subscription struct {
	c  *Coordinator
	cb func([]models.Order)

	mu           sync.Mutex
	stopWatch    func()
	idle         *time.Timer
	closed       bool
	establishing bool
}

func (s *subscription) establish() {
	go s.establishLoop()
}

// establishLoop tries to open the remote watch up to the attempt budget with
// linearly growing delays, then gives up with a single empty delivery.
func (s *subscription) establishLoop() {
	s.mu.Lock()
	if s.closed || s.establishing || s.stopWatch != nil {
		s.mu.Unlock()
		return
	}
	s.establishing = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.establishing = false
		s.mu.Unlock()
	}()

	s.c.beginSync()
	defer s.c.endSync()

	attempts := s.c.cfg.MaxAttempts
	for attempt := 1; attempt <= attempts; attempt++ {
		stopFn, err := s.c.store.Watch(store.OrdersPath, s.deliver)
		if err == nil {
			s.mu.Lock()
			if s.closed {
				s.mu.Unlock()
				stopFn()
				return
			}
			s.stopWatch = stopFn
			s.mu.Unlock()
			s.resetIdle()
			s.c.log.Info("order subscription established", "attempt", attempt)
			return
		}
		s.c.log.Warn("order subscription failed", "attempt", attempt, "err", err)
		if attempt < attempts {
			time.Sleep(time.Duration(attempt) * s.c.cfg.SubscribeBackoff)
		}
	}

	// Degraded: report empty once rather than erroring. Reads fail soft.
	s.cb([]models.Order{})
}

// deliver parses a snapshot into the sorted order list, replaces the local
// collection, and forwards it to the callback.
func (s *subscription) deliver(snap store.Snapshot) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	orders := make([]models.Order, 0, len(snap))
	for id, raw := range snap {
		var o models.Order
		if err := json.Unmarshal(raw, &o); err != nil {
			s.c.log.Warn("skipping malformed order record", "id", id, "err", err)
			continue
		}
		if o.ID == "" {
			o.ID = id
		}
		orders = append(orders, o)
	}
	models.SortOrders(orders)

	s.c.replaceOrders(orders)
	s.resetIdle()
	s.cb(orders)
}

// resetIdle (re)arms the idle timer. If no delivery lands within the window
// the callback fires once with an empty list as the degraded signal.
func (s *subscription) resetIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.idle == nil {
		s.idle = time.AfterFunc(s.c.cfg.IdleTimeout, s.idleFired)
	} else {
		s.idle.Reset(s.c.cfg.IdleTimeout)
	}
}

func (s *subscription) idleFired() {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	s.c.log.Warn("no order snapshot within idle window, reporting empty")
	s.cb([]models.Order{})
}

// pause tears down the remote watch without closing the subscription, used
// on the offline transition. establish brings it back.
func (s *subscription) pause() {
	s.mu.Lock()
	stopWatch := s.stopWatch
	s.stopWatch = nil
	if s.idle != nil {
		s.idle.Stop()
	}
	s.mu.Unlock()
	if stopWatch != nil {
		stopWatch()
	}
}

func (s *subscription) stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	stopWatch := s.stopWatch
	s.stopWatch = nil
	if s.idle != nil {
		s.idle.Stop()
	}
	s.mu.Unlock()

	if stopWatch != nil {
		stopWatch()
	}

	s.c.subMu.Lock()
	delete(s.c.subs, s)
	s.c.subMu.Unlock()
}
