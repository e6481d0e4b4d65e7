package core

import "sync/atomic"

// Identifier issues monotonically increasing ids starting at zero.
// An id is never handed out twice, even after the resource it named is gone.
type Identifier struct {
	next atomic.Uint64
}

func (i *Identifier) AquireNewID() uint64 {
	return i.next.Add(1) - 1
}

// Peek returns the id the next call to AquireNewID will hand out.
func (i *Identifier) Peek() uint64 {
	return i.next.Load()
}
