package arena

// Pin is a ref-counted root handle (spec.md §4.2). A cell with at least one
// live Pin is a collection root: it is never swept, and the collector
// starts (or restarts) tracing from it. Cloning a Pin bumps the cell's root
// count; dropping it decrements that count; once it reaches zero the cell
// is an ordinary heap object again, eligible for collection once unreached.
//
// Pin deliberately does not go through Arena.enter/exit — spec.md §4.2
// requires Clone and Drop to keep working even after the arena has been
// closed, the same way a *sync.WaitGroup or *sync.Mutex keeps accepting
// calls after the value it protects has logically shut down.
type Pin[T Traceable] struct {
	a *Arena
	p Ptr[T]
}

// Root wraps p in a new Pin, incrementing its root count (spec.md §4.2,
// "root"). p must belong to a.
func Root[T Traceable](a *Arena, p Ptr[T]) *Pin[T] {
	a.enter("Root")
	defer a.exit()

	p.checkLive("rooted")
	a.incRoot(&p.cellHeader)
	return &Pin[T]{a: a, p: p}
}

// Clone returns a new Pin over the same cell, incrementing its root count
// (spec.md §4.2, "clone_root"). The returned Pin is independent: dropping
// one does not affect the other.
func (pin *Pin[T]) Clone() *Pin[T] {
	pin.p.checkLive("rooted")
	pin.a.incRoot(&pin.p.cellHeader)
	return &Pin[T]{a: pin.a, p: pin.p}
}

// Drop decrements the cell's root count (spec.md §4.2, "drop_root"). Once
// every Pin over a cell has been dropped, the cell becomes collectible
// again; it is not freed immediately, unless the arena has already been
// closed, in which case the last Drop frees it. Drop is idempotent-unsafe: calling it
// twice on the same Pin underflows the root count and is a programmer
// error, exactly as spec.md §7.1 requires.
func (pin *Pin[T]) Drop() {
	pin.a.decRoot(&pin.p.cellHeader)
}

// Get returns the pinned pointer (spec.md §4.2, "pin.get"). It panics with
// a FatalError if the cell has already been swept — which cannot happen
// while this Pin is still held, since a positive root count keeps a cell
// out of the white set, but remains a cheap safety net against holding a
// Pin across an unrelated use-after-free.
func (pin *Pin[T]) Get() Ptr[T] {
	pin.p.checkLive("rooted")
	return pin.p
}
