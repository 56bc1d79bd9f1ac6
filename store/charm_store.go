// ABOUTME: Charm KV implementation of the remote store
// ABOUTME: Maps tree paths onto charm keys and polls sync state for watches
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v3"

	"github.com/aleayin/orderdesk/charm"
	"github.com/aleayin/orderdesk/errs"
)

// KV is the charm-cloud-backed Store. The charm SDK exposes no change feed,
// so Watch polls Sync() and diffs collection snapshots.
type KV struct {
	client       *charm.Client
	log          *log.Logger
	pollInterval time.Duration
}

// NewKV wraps a charm client as a Store.
func NewKV(client *charm.Client, logger *log.Logger) *KV {
	interval := client.Config().PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &KV{
		client:       client,
		log:          logger.With("component", "store"),
		pollInterval: interval,
	}
}

func (s *KV) Get(ctx context.Context, path string) ([]byte, error) {
	data, err := s.client.Get([]byte(path))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%s: %w", path, errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w: %w", path, errs.ErrRemote, err)
	}
	return data, nil
}

func (s *KV) Set(ctx context.Context, path string, value []byte) error {
	if err := s.client.Set([]byte(path), value); err != nil {
		return fmt.Errorf("set %s: %w: %w", path, errs.ErrRemote, err)
	}
	return nil
}

func (s *KV) Remove(ctx context.Context, path string) error {
	children, err := s.client.KeysWithPrefix([]byte(path + "/"))
	if err != nil {
		return fmt.Errorf("remove %s: %w: %w", path, errs.ErrRemote, err)
	}
	for _, key := range children {
		if err := s.client.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("remove %s: %w: %w", string(key), errs.ErrRemote, err)
		}
	}
	if err := s.client.Delete([]byte(path)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("remove %s: %w: %w", path, errs.ErrRemote, err)
	}
	return nil
}

func (s *KV) List(ctx context.Context, prefix string) (Snapshot, error) {
	keys, err := s.client.KeysWithPrefix([]byte(prefix + "/"))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w: %w", prefix, errs.ErrRemote, err)
	}

	snap := make(Snapshot, len(keys))
	for _, key := range keys {
		child := strings.TrimPrefix(string(key), prefix+"/")
		if child == "" || strings.Contains(child, "/") {
			continue
		}
		value, err := s.client.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			// Deleted between Keys and Get, skip.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w: %w", prefix, errs.ErrRemote, err)
		}
		snap[child] = value
	}
	return snap, nil
}

func (s *KV) PushID() string {
	return NewPushID()
}

// Watch establishes the live watch. Establishment performs one Sync and one
// List so a dead remote fails here rather than silently delivering nothing.
func (s *KV) Watch(path string, fn func(Snapshot)) (func(), error) {
	if err := s.client.Sync(); err != nil {
		return nil, fmt.Errorf("watch %s: %w: %w", path, errs.ErrRemote, err)
	}
	initial, err := s.List(context.Background(), path)
	if err != nil {
		return nil, err
	}

	stopc := make(chan struct{})
	var stopOnce sync.Once
	go s.poll(path, fn, initial, stopc)

	return func() {
		stopOnce.Do(func() { close(stopc) })
	}, nil
}

func (s *KV) poll(path string, fn func(Snapshot), last Snapshot, stopc chan struct{}) {
	fn(last)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopc:
			return
		case <-ticker.C:
			if err := s.client.Sync(); err != nil {
				s.log.Warn("watch sync failed", "path", path, "err", err)
				continue
			}
			snap, err := s.List(context.Background(), path)
			if err != nil {
				s.log.Warn("watch list failed", "path", path, "err", err)
				continue
			}
			if snapshotEqual(snap, last) {
				continue
			}
			last = snap
			select {
			case <-stopc:
				return
			default:
				fn(snap)
			}
		}
	}
}

func snapshotEqual(a, b Snapshot) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !bytes.Equal(va, vb) {
			return false
		}
	}
	return true
}
