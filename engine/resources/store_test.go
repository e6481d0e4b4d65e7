package resources

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/F3kilo/hex-war/engine/core"
)

func expectPanic(t *testing.T, contains string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q", contains)
		}
		if msg, ok := r.(string); !ok || !strings.Contains(msg, contains) {
			t.Fatalf("expected panic containing %q, got %v", contains, r)
		}
	}()
	fn()
}

func TestStore_InsertRemove(t *testing.T) {
	s := NewStore[uint64, string](core.KindTexture)

	id, err := s.Insert("sprite.png")
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if id != 0 {
		t.Fatalf("expected first id 0, got %d", id)
	}
	if !s.Contains(id) {
		t.Fatal("expected store to contain the new id")
	}

	v, ok := s.Remove(id)
	if !ok || v != "sprite.png" {
		t.Fatalf("Remove returned (%q, %v)", v, ok)
	}
	if _, ok := s.Remove(id); ok {
		t.Fatal("second Remove should report false")
	}
	if s.Contains(id) {
		t.Fatal("removed id still present")
	}
}

func TestStore_IDsAreMonotonicAndNeverReused(t *testing.T) {
	s := NewStore[uint64, int](core.KindGeometry)

	a, _ := s.Insert(1)
	b, _ := s.Insert(2)
	s.Remove(a)
	c, _ := s.Insert(3)

	if !(a < b && b < c) {
		t.Fatalf("ids not strictly increasing: %d %d %d", a, b, c)
	}
	if c == a {
		t.Fatal("id reused after removal")
	}
}

func TestStore_IDsMatchContains(t *testing.T) {
	s := NewStore[uint64, int](core.KindScene)
	for i := 0; i < 8; i++ {
		s.Insert(i)
	}
	s.Remove(2)
	s.Remove(5)

	ids := s.IDs()
	if len(ids) != s.Len() {
		t.Fatalf("IDs() has %d entries, Len() is %d", len(ids), s.Len())
	}
	if !slices.IsSorted(ids) {
		t.Fatalf("IDs() not sorted: %v", ids)
	}
	if len(slices.Compact(slices.Clone(ids))) != len(ids) {
		t.Fatalf("IDs() contains duplicates: %v", ids)
	}
	for id := uint64(0); id < 10; id++ {
		if s.Contains(id) != slices.Contains(ids, id) {
			t.Errorf("Contains(%d) disagrees with IDs()", id)
		}
	}
}

func TestStore_Update(t *testing.T) {
	type record struct{ n int }
	s := NewStore[uint64, *record](core.KindTexture)
	id, _ := s.Insert(&record{})

	if !s.Update(id, func(r *record) { r.n = 42 }) {
		t.Fatal("Update on existing id returned false")
	}
	r, _ := s.Get(id)
	if r.n != 42 {
		t.Fatalf("expected 42, got %d", r.n)
	}
	if s.Update(id+1, func(*record) {}) {
		t.Fatal("Update on missing id returned true")
	}
}

func TestStore_ReentrantMutationPanics(t *testing.T) {
	s := NewStore[uint64, int](core.KindTexture)
	id, _ := s.Insert(1)

	expectPanic(t, "concurrent mutable access", func() {
		s.Update(id, func(int) {
			s.Insert(2)
		})
	})

	// the borrow is given back even though the callback panicked
	if _, err := s.Insert(3); err != nil {
		t.Fatalf("Insert after recovered panic failed: %v", err)
	}
}

func TestStore_ReadDuringMutationPanics(t *testing.T) {
	s := NewStore[uint64, int](core.KindGeometry)
	id, _ := s.Insert(1)

	expectPanic(t, "read while mutably borrowed", func() {
		s.Update(id, func(int) {
			s.Contains(id)
		})
	})
}

func TestStore_Close(t *testing.T) {
	s := NewStore[uint64, string](core.KindTexture)
	s.Insert("a")
	s.Insert("b")

	values := s.Close()
	if !slices.Equal(values, []string{"a", "b"}) {
		t.Fatalf("Close returned %v", values)
	}
	if s.Len() != 0 {
		t.Fatal("store not empty after Close")
	}
	if !s.Closed() {
		t.Fatal("Closed() should be true")
	}
	if _, err := s.Insert("c"); !errors.Is(err, core.ErrManagerClosed) {
		t.Fatalf("expected ErrManagerClosed, got %v", err)
	}
	if s.Close() != nil {
		t.Fatal("second Close should return nothing")
	}
}
