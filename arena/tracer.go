package arena

// Tracer is the transient handle passed to a Traceable's Trace method
// (spec.md §4.3). It exposes exactly one operation, Mark, matching the
// spec's "single operation: mark a referent reachable". It must not be
// retained past the Trace call that received it.
//
// The shape is grounded on the teacher's gcWork producer side
// (runtime/mgcwork.go's put/putFast): a small, single-purpose handle the
// scanning step hands to whatever is producing new pointers, here turned
// inside-out so the *user* code is the producer and the arena consumes.
type Tracer struct {
	a *Arena
}

// Mark inspects child's color and applies the promotion rules in spec.md
// §4.3:
//
//   - Black or DarkGray: no-op, already known reachable.
//   - LightGray: promote to DarkGray in place (already queued).
//   - White: if the type needs tracing, promote to DarkGray and enqueue
//     at the front (depth-first-ish, lowest latency for hot subgraphs);
//     otherwise promote straight to Black without ever touching the gray
//     queue (the needs-trace fast path spec.md §9 asks for).
//
// Mark is a free generic function rather than a method because Go does
// not allow a method to introduce type parameters beyond its receiver's;
// the free-function shape matches the rest of this package's generic
// surface (Allocate, Root, WriteBarrier).
func Mark[T Traceable](t *Tracer, child Ptr[T]) {
	if child == nil {
		return
	}
	h := &child.cellHeader
	h.checkLive("traced")

	switch h.color {
	case colorBlack, colorDarkGray:
		return
	case colorLightGray:
		h.color = colorDarkGray
		return
	case colorWhite:
		if !h.needsTrace {
			h.color = colorBlack
			return
		}
		h.color = colorDarkGray
		t.a.gray.PushFront(&h.node)
	}
}
