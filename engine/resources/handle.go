package resources

import (
	"cmp"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/F3kilo/hex-war/engine/core"
	"golang.org/x/exp/constraints"
)

// Manager is what a Handle needs from the manager owning its id.
type Manager[K constraints.Unsigned] interface {
	Kind() core.ResourceKind
	Contains(id K) bool
	// Drop removes id and reports whether something was removed.
	Drop(id K) bool
}

// handleRef is shared by all clones of a handle.
type handleRef[K constraints.Unsigned] struct {
	id      K
	manager Manager[K]
	refs    atomic.Int64
}

// Handle is a reference-counted owner of one resource id.
type Handle[K constraints.Unsigned] struct {
	ref      *handleRef[K]
	released atomic.Bool
}

// NewHandle binds id, which must already be allocated by manager.
func NewHandle[K constraints.Unsigned](id K, manager Manager[K]) *Handle[K] {
	ref := &handleRef[K]{
		id:      id,
		manager: manager,
	}
	ref.refs.Store(1)
	return newHandle(ref)
}

// FromExisting binds an id created elsewhere, for instance by a rendering backend.
// It fails with a not found UnavailableError when manager does not hold id.
func FromExisting[K constraints.Unsigned](id K, manager Manager[K]) (*Handle[K], error) {
	if !manager.Contains(id) {
		return nil, core.NewNotFoundError(manager.Kind(), uint64(id))
	}
	return NewHandle(id, manager), nil
}

func newHandle[K constraints.Unsigned](ref *handleRef[K]) *Handle[K] {
	h := &Handle[K]{ref: ref}
	runtime.SetFinalizer(h, (*Handle[K]).reportLeak)
	return h
}

// ID returns the bound id. Using a released handle is a programming error.
func (h *Handle[K]) ID() K {
	if h.released.Load() {
		panic(fmt.Sprintf("%s: use of released handle", h))
	}
	return h.ref.id
}

// RawID returns the bound id even after release. Only meant for diagnostics.
func (h *Handle[K]) RawID() K {
	return h.ref.id
}

// Clone returns a new handle sharing ownership of the same id.
func (h *Handle[K]) Clone() *Handle[K] {
	if h.released.Load() {
		panic(fmt.Sprintf("%s: clone of released handle", h))
	}
	h.ref.refs.Add(1)
	return newHandle(h.ref)
}

// Release gives up this clone's share. The last release drops the id from its
// manager. Releasing the same clone twice has no effect.
func (h *Handle[K]) Release() {
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	runtime.SetFinalizer(h, nil)

	if h.ref.refs.Add(-1) > 0 {
		return
	}
	// A closed manager has already let go of everything; nothing left to do.
	if !h.ref.manager.Drop(h.ref.id) {
		core.LogDebug("%s was already gone from its manager on release", h)
	}
}

// Released reports whether this clone has been released.
func (h *Handle[K]) Released() bool {
	return h.released.Load()
}

// Refs returns the number of live clones sharing the id.
func (h *Handle[K]) Refs() int64 {
	return h.ref.refs.Load()
}

func (h *Handle[K]) Manager() Manager[K] {
	return h.ref.manager
}

// Equal reports whether both handles are bound to the same id.
func (h *Handle[K]) Equal(other *Handle[K]) bool {
	return h.ref.id == other.ref.id
}

// Compare orders handles by id.
func (h *Handle[K]) Compare(other *Handle[K]) int {
	return cmp.Compare(h.ref.id, other.ref.id)
}

func (h *Handle[K]) String() string {
	return fmt.Sprintf("%s #%d", h.ref.manager.Kind(), h.ref.id)
}

func (h *Handle[K]) reportLeak() {
	if !h.released.Load() {
		core.LogWarn("%s was garbage collected without Release; it stays allocated until its manager closes", h)
	}
}
