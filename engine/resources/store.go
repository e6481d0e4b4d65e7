package resources

import (
	"maps"
	"slices"

	"github.com/F3kilo/hex-war/engine/core"
	"golang.org/x/exp/constraints"
)

// Store is the canonical id to record map of one resource kind.
// Ids start at zero, grow monotonically and are never reused.
type Store[K constraints.Unsigned, V any] struct {
	kind    core.ResourceKind
	ids     core.Identifier
	records map[K]V
	flag    borrowFlag
	closed  bool
}

func NewStore[K constraints.Unsigned, V any](kind core.ResourceKind) *Store[K, V] {
	return &Store[K, V]{
		kind:    kind,
		records: make(map[K]V),
	}
}

func (s *Store[K, V]) Kind() core.ResourceKind {
	return s.kind
}

// Insert registers value under a freshly allocated id.
func (s *Store[K, V]) Insert(value V) (K, error) {
	defer s.flag.borrowMut(s.kind)()

	if s.closed {
		return 0, core.ErrManagerClosed
	}
	id := K(s.ids.AquireNewID())
	s.records[id] = value
	return id, nil
}

// Remove deletes the record of id. It reports false when there was nothing to remove.
func (s *Store[K, V]) Remove(id K) (V, bool) {
	defer s.flag.borrowMut(s.kind)()

	value, ok := s.records[id]
	if ok {
		delete(s.records, id)
	}
	return value, ok
}

// Update runs fn on the record of id while holding the exclusive borrow.
// fn must not call back into the store.
func (s *Store[K, V]) Update(id K, fn func(V)) bool {
	defer s.flag.borrowMut(s.kind)()

	value, ok := s.records[id]
	if !ok {
		return false
	}
	fn(value)
	return true
}

func (s *Store[K, V]) Get(id K) (V, bool) {
	defer s.flag.borrow(s.kind)()

	value, ok := s.records[id]
	return value, ok
}

func (s *Store[K, V]) Contains(id K) bool {
	defer s.flag.borrow(s.kind)()

	_, ok := s.records[id]
	return ok
}

// IDs returns the allocated ids in ascending order.
func (s *Store[K, V]) IDs() []K {
	defer s.flag.borrow(s.kind)()

	return slices.Sorted(maps.Keys(s.records))
}

func (s *Store[K, V]) Len() int {
	defer s.flag.borrow(s.kind)()

	return len(s.records)
}

// Close refuses further inserts and hands back every record still held.
func (s *Store[K, V]) Close() []V {
	defer s.flag.borrowMut(s.kind)()

	if s.closed {
		return nil
	}
	s.closed = true

	values := make([]V, 0, len(s.records))
	for _, id := range slices.Sorted(maps.Keys(s.records)) {
		values = append(values, s.records[id])
	}
	clear(s.records)
	return values
}

func (s *Store[K, V]) Closed() bool {
	defer s.flag.borrow(s.kind)()

	return s.closed
}
