// Package resources holds the building blocks shared by every resource manager:
// a Store mapping monotonically allocated ids to records, and a reference-counted
// Handle that gives its id back to the owning manager when the last clone is released.
//
// # Confinement
//
// A Store is owned by a single goroutine. It takes no locks; instead every operation
// borrows the store the way a RefCell would: reads take a shared borrow, mutations an
// exclusive one. Overlapping an exclusive borrow with any other borrow, whether from
// another goroutine or by calling back into the store from an Update callback, panics.
// Work that has to happen elsewhere is handed over through channels.
//
// # Handles
//
//	h := resources.NewHandle(id, manager)
//	shared := h.Clone() // refs == 2
//	h.Release()         // refs == 1, id still alive
//	shared.Release()    // refs == 0, manager.Drop(id) is called
//
// Go has no destructors: every handle must be released exactly once. Release is
// idempotent per clone, and a handle collected without Release is reported in the log.
package resources
