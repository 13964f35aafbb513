package memory

import "sync"

// DefaultInitialCapacity is the initial map capacity of a new Store.
const DefaultInitialCapacity = 1024

// Store is a concurrency-safe map from byte-string keys to byte-string values.
//
// Keys and values are copied on the way in and on the way out, so callers may
// reuse their buffers freely.
type Store struct {
	mu   sync.Mutex
	data map[string][]byte

	initialCapacity int
}

// Option configures the Store.
type Option func(*Store)

// WithInitialCapacity sets the initial map capacity (also used after FlushAll).
func WithInitialCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.initialCapacity = n
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		initialCapacity: DefaultInitialCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.data = make(map[string][]byte, s.initialCapacity)
	return s
}

// Get returns a copy of the value stored at key.
func (s *Store) Get(key []byte) ([]byte, bool) {
	s.mu.Lock()
	v, ok := s.data[string(key)]
	s.mu.Unlock()

	if !ok {
		return nil, false
	}
	// Stored slices are never mutated after Set, so the copy can run unlocked.
	out := make([]byte, len(v))
	copy(out, v)
	return out, true
}

// Set stores value at key, overwriting any previous value.
func (s *Store) Set(key, value []byte) {
	cp := make([]byte, len(value))
	copy(cp, value)

	s.mu.Lock()
	s.data[string(key)] = cp
	s.mu.Unlock()
}

// Del removes each key that is present and returns how many were removed.
//
// Each key is removed atomically; the call as a whole is not atomic.
func (s *Store) Del(keys ...[]byte) int64 {
	var removed int64
	for _, key := range keys {
		if s.delOne(key) {
			removed++
		}
	}
	return removed
}

func (s *Store) delOne(key []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[string(key)]; !ok {
		return false
	}
	delete(s.data, string(key))
	return true
}

// FlushAll removes every key.
func (s *Store) FlushAll() {
	fresh := make(map[string][]byte, s.initialCapacity)

	s.mu.Lock()
	s.data = fresh
	s.mu.Unlock()
}

// Len returns the number of keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
