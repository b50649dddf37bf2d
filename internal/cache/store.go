package cache

import "slices"

// Store holds cache entries keyed by cache key and maintains the access
// order ledger used by eviction. Invariant: every key in the entry map
// appears exactly once in the ledger and vice versa.
//
// Store performs no locking of its own; Manager serializes access.
type Store struct {
	entries map[string]*Entry
	// order lists keys oldest-first; the tail is the most recently
	// inserted or touched key.
	order []string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*Entry),
	}
}

// Get returns the entry for key without reordering the ledger.
func (s *Store) Get(key string) (*Entry, bool) {
	e, ok := s.entries[key]
	return e, ok
}

// Set inserts or replaces the entry for key. In both cases the key ends
// up at the most-recent end of the ledger; a replaced key is removed from
// its old position first.
func (s *Store) Set(key string, e *Entry) {
	if _, ok := s.entries[key]; ok {
		s.removeFromOrder(key)
	}
	s.entries[key] = e
	s.order = append(s.order, key)
}

// Delete removes the entry and its ledger position, reporting whether the
// key existed.
func (s *Store) Delete(key string) bool {
	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	s.removeFromOrder(key)
	return true
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	_, ok := s.entries[key]
	return ok
}

// Clear empties the entry map and the ledger in one step.
func (s *Store) Clear() {
	s.entries = make(map[string]*Entry)
	s.order = nil
}

// Len returns the current entry count.
func (s *Store) Len() int {
	return len(s.entries)
}

// Touch moves key to the most-recently-used ledger position. The stored
// entry itself is untouched.
func (s *Store) Touch(key string) {
	if _, ok := s.entries[key]; !ok {
		return
	}
	s.removeFromOrder(key)
	s.order = append(s.order, key)
}

// AccessOrder returns the ledger oldest-first. The result is a copy, so
// callers cannot corrupt the internal ordering.
func (s *Store) AccessOrder() []string {
	return slices.Clone(s.order)
}

// Range calls fn for every (key, entry) pair in ledger order, stopping
// early when fn returns false.
func (s *Store) Range(fn func(key string, e *Entry) bool) {
	for _, key := range s.order {
		if !fn(key, s.entries[key]) {
			return
		}
	}
}

func (s *Store) removeFromOrder(key string) {
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
