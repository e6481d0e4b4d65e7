package resources

import (
	"fmt"
	"sync/atomic"

	"github.com/F3kilo/hex-war/engine/core"
)

const exclusiveBorrow = -1

// borrowFlag counts outstanding borrows: n > 0 shared borrows, -1 one exclusive borrow.
type borrowFlag struct {
	state atomic.Int32
}

func (b *borrowFlag) borrow(kind core.ResourceKind) func() {
	for {
		s := b.state.Load()
		if s == exclusiveBorrow {
			panic(fmt.Sprintf("%s manager: read while mutably borrowed", kind))
		}
		if b.state.CompareAndSwap(s, s+1) {
			return b.unborrow
		}
	}
}

func (b *borrowFlag) borrowMut(kind core.ResourceKind) func() {
	if !b.state.CompareAndSwap(0, exclusiveBorrow) {
		panic(fmt.Sprintf("%s manager: concurrent mutable access", kind))
	}
	return b.unborrowMut
}

func (b *borrowFlag) unborrow() {
	b.state.Add(-1)
}

func (b *borrowFlag) unborrowMut() {
	b.state.Store(0)
}
