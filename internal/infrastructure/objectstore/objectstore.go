package objectstore

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// ObjectStore is a concurrent, in-memory KV indexed by string keys with optional idle expiry.
//
// Data structures:
//   - Mutable state (keys + entries + pos) guarded by RWMutex
//
// Iteration is deterministic (insertion order of first Put).
// Reads use shared (R) locks; writes use exclusive (W) locks.
//
// Typical costs:
//   - Put: O(1) for overwrite/append
//   - Delete: O(n) for slice compaction
//   - Get: O(1); List: O(n)
//
// Expiry:
//   - Each entry records the time of its last Put or Touch.
//   - With ttl > 0, Get treats idle entries as absent and Sweep drops them.
//   - With ttl <= 0 entries never expire.
//
// Semantics:
//   - Values are stored *as provided*, without deep copying. Callers storing
//     immutable values (e.g. value-typed snapshots) get snapshot semantics for free.
type ObjectStore[V any] struct {
	log *zap.Logger
	ttl time.Duration
	now func() time.Time

	mu sync.RWMutex // guards st
	st storeState[V]
}

type entry[V any] struct {
	val     V
	touched time.Time
}

type storeState[V any] struct {
	byKey map[string]*entry[V]
	keys  []string
	pos   map[string]int
}

// New constructs a ready-to-use ObjectStore.
//
// Space: O(1) init. No background tasks; call Sweep periodically to reclaim idle entries.
func New[V any](log *zap.Logger, ttl time.Duration) *ObjectStore[V] {
	if log == nil {
		log = zap.NewNop()
	}
	return &ObjectStore[V]{
		log: log,
		ttl: ttl,
		now: time.Now,
		st: storeState[V]{
			byKey: make(map[string]*entry[V]),
			keys:  make([]string, 0),
			pos:   make(map[string]int),
		},
	}
}

// Put inserts or overwrites the value at key and refreshes its idle timer.
func (s *ObjectStore[V]) Put(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.st.byKey[key]; ok {
		e.val = value
		e.touched = now
		return
	}

	s.st.byKey[key] = &entry[V]{val: value, touched: now}
	s.st.keys = append(s.st.keys, key)
	s.st.pos[key] = len(s.st.keys) - 1
}

// Touch refreshes the idle timer of key. Reports whether the key was live.
func (s *ObjectStore[V]) Touch(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.st.byKey[key]
	if !ok || s.expired(e) {
		return false
	}
	e.touched = s.now()
	return true
}

// Get returns (value, ok). Expired entries read as absent.
func (s *ObjectStore[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.st.byKey[key]
	if !ok || s.expired(e) {
		var zero V
		return zero, false
	}
	return e.val, true
}

// Delete removes key if present; idempotent. Reports whether something was removed.
func (s *ObjectStore[V]) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(key)
}

// List returns live (keys, values) in insertion order; copies of the index are returned.
func (s *ObjectStore[V]) List() ([]string, []V) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.st.keys))
	vals := make([]V, 0, len(s.st.keys))
	for _, k := range s.st.keys {
		e := s.st.byKey[k]
		if s.expired(e) {
			continue
		}
		keys = append(keys, k)
		vals = append(vals, e.val)
	}
	return keys, vals
}

// Len returns the number of stored entries, expired ones included until swept.
func (s *ObjectStore[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.st.keys)
}

// Sweep drops every expired entry and returns their keys.
func (s *ObjectStore[V]) Sweep() []string {
	if s.ttl <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var dropped []string
	for _, k := range append([]string(nil), s.st.keys...) {
		if s.expired(s.st.byKey[k]) {
			s.deleteLocked(k)
			dropped = append(dropped, k)
		}
	}
	if len(dropped) > 0 {
		s.log.Debug("swept idle entries", zap.Int("count", len(dropped)))
	}
	return dropped
}

func (s *ObjectStore[V]) expired(e *entry[V]) bool {
	return s.ttl > 0 && s.now().Sub(e.touched) > s.ttl
}

// deleteLocked removes key and compacts the ordered index. Caller holds mu.
func (s *ObjectStore[V]) deleteLocked(key string) bool {
	idx, ok := s.st.pos[key]
	if !ok {
		return false
	}

	delete(s.st.byKey, key)
	delete(s.st.pos, key)

	copy(s.st.keys[idx:], s.st.keys[idx+1:])
	s.st.keys = s.st.keys[:len(s.st.keys)-1]

	// Update positions for shifted tail.
	for i := idx; i < len(s.st.keys); i++ {
		s.st.pos[s.st.keys[i]] = i
	}
	return true
}
