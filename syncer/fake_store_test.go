// ABOUTME: In-memory fake remote store with programmable failures
// ABOUTME: Counts calls so tests can assert attempt budgets and fail-fast paths
package syncer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aleayin/orderdesk/errs"
	"github.com/aleayin/orderdesk/store"
)

type fakeWatcher struct {
	path    string
	fn      func(store.Snapshot)
	stopped bool
}

// fakeStore implements store.Store in memory. failX fields make the next X
// calls of that operation fail; call counters record every invocation.
type fakeStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	pushSeq int

	getCalls    int
	setCalls    int
	removeCalls int
	listCalls   int
	watchCalls  int

	failGets    int
	failSets    int
	failRemoves int
	failLists   int
	failWatch   int

	setDelay time.Duration

	watchers []*fakeWatcher
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (f *fakeStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls + f.setCalls + f.removeCalls + f.listCalls + f.watchCalls
}

func (f *fakeStore) seed(path string, value []byte) {
	f.mu.Lock()
	f.data[path] = value
	f.mu.Unlock()
}

func (f *fakeStore) has(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[path]
	return ok
}

func (f *fakeStore) Get(ctx context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.failGets > 0 {
		f.failGets--
		return nil, fmt.Errorf("get %s: %w", path, errs.ErrRemote)
	}
	value, ok := f.data[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, errs.ErrNotFound)
	}
	return value, nil
}

func (f *fakeStore) Set(ctx context.Context, path string, value []byte) error {
	f.mu.Lock()
	f.setCalls++
	if f.failSets > 0 {
		f.failSets--
		f.mu.Unlock()
		return fmt.Errorf("set %s: %w", path, errs.ErrRemote)
	}
	delay := f.setDelay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	f.data[path] = value
	f.mu.Unlock()
	f.notify(path)
	return nil
}

func (f *fakeStore) Remove(ctx context.Context, path string) error {
	f.mu.Lock()
	f.removeCalls++
	if f.failRemoves > 0 {
		f.failRemoves--
		f.mu.Unlock()
		return fmt.Errorf("remove %s: %w", path, errs.ErrRemote)
	}
	delete(f.data, path)
	for key := range f.data {
		if strings.HasPrefix(key, path+"/") {
			delete(f.data, key)
		}
	}
	f.mu.Unlock()
	f.notify(path)
	return nil
}

func (f *fakeStore) List(ctx context.Context, prefix string) (store.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.failLists > 0 {
		f.failLists--
		return nil, fmt.Errorf("list %s: %w", prefix, errs.ErrRemote)
	}
	return f.snapshotLocked(prefix), nil
}

func (f *fakeStore) PushID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushSeq++
	return fmt.Sprintf("push-%03d", f.pushSeq)
}

func (f *fakeStore) Watch(path string, fn func(store.Snapshot)) (func(), error) {
	f.mu.Lock()
	f.watchCalls++
	if f.failWatch > 0 {
		f.failWatch--
		f.mu.Unlock()
		return nil, fmt.Errorf("watch %s: %w", path, errs.ErrRemote)
	}
	w := &fakeWatcher{path: path, fn: fn}
	f.watchers = append(f.watchers, w)
	initial := f.snapshotLocked(path)
	f.mu.Unlock()

	fn(initial)
	return func() {
		f.mu.Lock()
		w.stopped = true
		f.mu.Unlock()
	}, nil
}

func (f *fakeStore) activeWatchers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, w := range f.watchers {
		if !w.stopped {
			n++
		}
	}
	return n
}

// notify pushes fresh snapshots to watchers covering the changed path.
func (f *fakeStore) notify(changed string) {
	type delivery struct {
		fn   func(store.Snapshot)
		snap store.Snapshot
	}
	var deliveries []delivery

	f.mu.Lock()
	for _, w := range f.watchers {
		if w.stopped {
			continue
		}
		if changed == w.path || strings.HasPrefix(changed, w.path+"/") {
			deliveries = append(deliveries, delivery{fn: w.fn, snap: f.snapshotLocked(w.path)})
		}
	}
	f.mu.Unlock()

	for _, d := range deliveries {
		d.fn(d.snap)
	}
}

func (f *fakeStore) snapshotLocked(prefix string) store.Snapshot {
	snap := make(store.Snapshot)
	for key, value := range f.data {
		if !strings.HasPrefix(key, prefix+"/") {
			continue
		}
		child := strings.TrimPrefix(key, prefix+"/")
		if child == "" || strings.Contains(child, "/") {
			continue
		}
		copied := make([]byte, len(value))
		copy(copied, value)
		snap[child] = copied
	}
	return snap
}
