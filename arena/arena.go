// Package arena implements an incremental, tri-color, mark-and-sweep
// garbage collector for a heap of arbitrary heterogeneous objects,
// embeddable as a single-threaded library alongside a host runtime.
//
// The state machine, scheduling, and invariants are grounded on the Go
// runtime's own collector (runtime/malloc.go's mallocgc debt/assist
// dance, runtime/mheap.go's sweep cursor, runtime/mgcwork.go's gray work
// queue) collapsed to the single-threaded, single-arena shape this
// library's specification calls for.
package arena

import (
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tricolorgc/arena/internal/graydeque"
)

// phase is one of Sleeping, Propagating, Sweeping (spec.md §3).
type phase uint8

const (
	phaseSleeping phase = iota
	phasePropagating
	phaseSweeping
)

func (p phase) String() string {
	switch p {
	case phaseSleeping:
		return "sleeping"
	case phasePropagating:
		return "propagating"
	case phaseSweeping:
		return "sweeping"
	default:
		return "invalid"
	}
}

// Arena owns a collected heap: immutable Params, the tri-color state
// machine, the all-list, and the gray queue (spec.md §3's "Arena").
//
// An Arena must not be copied after first use and must not be called into
// concurrently or reentrantly from a Trace callback — see the inCall
// guard in enter, grounded on runtime/malloc.go's mp.mallocing flag.
type Arena struct {
	params Params
	phase  phase

	totalAllocated   int64
	rememberedSize   int64
	wakeupTotal      int64
	allocationDebt   float64
	granularityTimer int64

	all       *cellHeader
	sweep     *cellHeader
	sweepPrev *cellHeader

	gray *graydeque.Deque[*cellHeader]

	destroyed bool
	inCall    bool

	logger    logrus.FieldLogger
	allocHook func() error
}

// New constructs an Arena ready to allocate from. It returns an error if
// any field of params is negative; the zero value is accepted as-is (it is
// not replaced by the defaults), so callers almost always want
// DefaultParams() tweaked via struct literal fields.
func New(params Params, opts ...Option) (*Arena, error) {
	if err := params.validate(); err != nil {
		return nil, errors.Wrap(err, "arena: New")
	}
	a := &Arena{
		params:           params,
		phase:            phaseSleeping,
		wakeupTotal:      params.MinSleep,
		granularityTimer: params.CollectionGranularity,
		gray:             graydeque.New[*cellHeader](),
		logger:           newDiscardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// enter is the reentrancy/liveness guard every public Arena method opens
// with, grounded on runtime/malloc.go's "if mp.mallocing != 0 { throw(...)
// }" pattern: there is no scheduler here to block on, so reentrant or
// post-Close calls panic instead of deadlocking.
func (a *Arena) enter(method string) {
	if a.destroyed {
		fatal(CodeClosed, "Arena."+method+" called after Close")
	}
	if a.inCall {
		fatal(CodeReentrant, "Arena."+method+" called while another Arena call is already in progress (reentrant Trace or concurrent use)")
	}
	a.inCall = true
}

func (a *Arena) exit() {
	a.inCall = false
}

// Phase reports the collector's current phase, for tests and metrics.
func (a *Arena) Phase() string { return a.phase.String() }

// TotalAllocated reports the sum of byte sizes of every cell on the
// all-list (spec.md invariant I5).
func (a *Arena) TotalAllocated() int64 { return a.totalAllocated }

// AllocationDebt reports the collector's outstanding bytes of owed work.
func (a *Arena) AllocationDebt() float64 { return a.allocationDebt }

// GrayQueueLength reports the number of cells currently awaiting
// (re)trace.
func (a *Arena) GrayQueueLength() int { return a.gray.Len() }

// Allocate produces a new cell holding value and returns an unmanaged
// pointer into it (spec.md §4.1). It may trigger a bounded collection
// slice before returning.
func Allocate[T Traceable](a *Arena, value T) (Ptr[T], error) {
	a.enter("Allocate")
	defer a.exit()

	if a.allocHook != nil {
		if err := a.allocHook(); err != nil {
			return nil, errors.Wrap(ErrAllocFailed, err.Error())
		}
	}

	cell := &Cell[T]{Value: value}
	sz := cellSize[T]()
	cell.cellHeader.size = sz
	cell.cellHeader.needsTrace = value.NeedsTrace()
	cell.cellHeader.color = colorWhite
	cell.cellHeader.node.Value = &cell.cellHeader
	cell.cellHeader.trace = func(t *Tracer) bool { return cell.Value.Trace(t) }

	a.accountAllocation(sz)
	a.linkNew(&cell.cellHeader)

	return cell, nil
}

// AllocateRoot is Allocate followed by Root, composed per spec.md §4.2.
func AllocateRoot[T Traceable](a *Arena, value T) (*Pin[T], error) {
	// Allocate and Root each take and release the reentrancy guard
	// themselves, so they are called one after the other here rather than
	// nested: allocate_root is a composition of the two operations, not a
	// third primitive.
	p, err := Allocate(a, value)
	if err != nil {
		return nil, err
	}
	return Root(a, p), nil
}

// linkNew links h at the head of the all-list and handles the
// sweep_prev-on-insertion-during-sweep special case (spec.md §4.1 step 5).
func (a *Arena) linkNew(h *cellHeader) {
	h.next = a.all
	a.all = h

	if a.phase == phaseSweeping && a.sweepPrev == nil {
		// The new cell is now the all-list head, strictly above the
		// sweep cursor; record it as sweep_prev so that when the
		// cursor's current cell is later unlinked, the splice target
		// is this cell rather than a stale "adjust all head" branch
		// that would silently drop every cell allocated mid-sweep.
		a.sweepPrev = a.all
	}
}

// accountAllocation implements spec.md §4.1 steps 1-4: size accounting,
// wakeup test, debt accumulation, and the granularity gate that may run a
// bounded collection slice. It is deliberately non-generic so it can be
// shared by every instantiation of Allocate[T].
func (a *Arena) accountAllocation(size uintptr) {
	sz := int64(size)
	a.totalAllocated += sz

	if a.phase == phaseSleeping && a.totalAllocated > a.wakeupTotal {
		a.logger.WithFields(logrus.Fields{
			"total_allocated": a.totalAllocated,
			"wakeup_total":    a.wakeupTotal,
		}).Debug("arena: waking from sleep")
		a.phase = phasePropagating
	}

	if a.phase != phaseSleeping {
		term := float64(sz)
		if a.params.TimingFactor > 0 {
			term += float64(sz) / a.params.TimingFactor
		} else {
			// TimingFactor == 0 means stop-the-world: front-load an
			// unbounded amount of debt so the very next granularity
			// gate drains the entire cycle.
			term = math.Inf(1)
		}
		a.allocationDebt += term

		if a.granularityTimer+sz >= a.params.CollectionGranularity {
			a.granularityTimer = 0
			a.doCollection(a.allocationDebt)
		} else {
			a.granularityTimer += sz
		}
	}
}

// incRoot increments h's root count and, if h is currently White,
// promotes it to LightGray and enqueues it at the back of the gray
// queue — pushing to the back, not the front, deliberately delays
// reprocessing so an immediately-unrooted cell has the best chance of
// being dropped from the queue before it is ever traced (spec.md §4.2).
func (a *Arena) incRoot(h *cellHeader) {
	if h.rootCount == math.MaxUint32 {
		fatal(CodeRootCountOverflow, "root pin counter overflow")
	}
	h.rootCount++
	if !h.detached && h.color == colorWhite {
		h.color = colorLightGray
		a.gray.PushBack(&h.node)
	}
}

// decRoot decrements h's root count, freeing a detached cell once its
// last pin drops (spec.md §4.2, §4.7).
func (a *Arena) decRoot(h *cellHeader) {
	if h.rootCount == 0 {
		fatal(CodeRootCountUnderflow, "Pin dropped more times than it was rooted or cloned")
	}
	h.rootCount--
	if h.rootCount == 0 && h.detached {
		// Dropping our last reference lets the host's own garbage
		// collector reclaim the memory once nothing else points to
		// it; see Cell's doc comment for the full rationale.
		h.freed = true
	}
}

// WriteBarrier must be called by the host whenever a new managed child
// reference is planted into an already-allocated parent (spec.md §4.4).
// This is a backward barrier: it demotes parent from Black to DarkGray
// rather than eagerly shading the child.
func WriteBarrier[T Traceable](a *Arena, parent Ptr[T]) {
	a.enter("WriteBarrier")
	defer a.exit()

	h := &parent.cellHeader
	h.checkLive("write-barriered")

	if a.phase == phasePropagating && h.color == colorBlack {
		h.color = colorDarkGray
		a.gray.PushBack(&h.node)
	}
}

// CollectGarbage drives a full collection cycle to completion (spec.md
// §4.6). It returns ErrCollectionBlocked if the gray queue is fully
// blocked by Trace calls returning false; the caller must retry once the
// blocking condition clears.
func (a *Arena) CollectGarbage() error {
	a.enter("CollectGarbage")
	defer a.exit()

	if a.phase == phaseSleeping {
		a.phase = phasePropagating
	}
	a.doCollection(math.Inf(1))

	if a.phase != phaseSleeping {
		return ErrCollectionBlocked
	}
	return nil
}

// doCollection runs a bounded amount of work, measured in bytes turned
// Black or freed, and returns when either workBudget is exhausted or the
// arena returns to Sleeping (spec.md §4.5).
func (a *Arena) doCollection(workBudget float64) {
	// spent accumulates actual bytes of work performed, rather than
	// counting a workBudget down to zero, so that CollectGarbage's
	// +Inf budget never participates in an Inf-Inf subtraction below.
	spent := 0.0
	blocked := 0

collecting:
	for spent < workBudget {
		switch a.phase {
		case phaseSleeping:
			break collecting

		case phasePropagating:
			node := a.gray.PopFront()
			if node == nil {
				a.phase = phaseSweeping
				a.sweep = a.all
				a.sweepPrev = nil
				a.rememberedSize = 0
				a.logger.Debug("arena: propagating done, entering sweep")
				continue
			}
			h := node.Value
			if h.color == colorDarkGray || h.rootCount > 0 {
				if h.trace(&Tracer{a: a}) {
					h.color = colorBlack
					spent += float64(h.size)
					blocked = 0
				} else {
					a.gray.PushBack(&h.node)
					blocked++
					if blocked == a.gray.Len() {
						a.logger.Debug("arena: gray queue fully blocked, ending slice early")
						a.allocationDebt = math.Max(0, a.allocationDebt-spent)
						return
					}
				}
			} else {
				// LightGray and unrooted: drop it from the queue and
				// revert it to White.
				h.color = colorWhite
			}

		case phaseSweeping:
			cell := a.sweep
			if cell == nil {
				a.phase = phaseSleeping
				a.sweepPrev = nil
				a.wakeupTotal = a.totalAllocated + maxInt64(a.params.MinSleep, round(float64(a.rememberedSize)*a.params.PauseFactor))
				a.logger.WithFields(logrus.Fields{
					"total_allocated": a.totalAllocated,
					"remembered_size": a.rememberedSize,
					"wakeup_total":    a.wakeupTotal,
				}).Debug("arena: sweep done, sleeping")
				continue
			}

			next := cell.next
			if cell.color == colorWhite {
				a.unlinkSwept(cell)
				a.totalAllocated -= int64(cell.size)
				spent += float64(cell.size)
				cell.freed = true
			} else {
				a.sweepPrev = cell
				a.rememberedSize += int64(cell.size)
				if cell.rootCount > 0 {
					cell.color = colorLightGray
					a.gray.PushBack(&cell.node)
				} else {
					cell.color = colorWhite
				}
			}
			a.sweep = next
		}
	}

	if a.phase == phaseSleeping {
		a.allocationDebt = 0
	} else {
		a.allocationDebt = math.Max(0, a.allocationDebt-spent)
	}
}

// unlinkSwept splices a White cell being freed out of the all-list,
// using sweepPrev when available or adjusting the all-list head
// otherwise (spec.md §4.5's sweeping step).
func (a *Arena) unlinkSwept(cell *cellHeader) {
	if a.sweepPrev != nil {
		a.sweepPrev.next = cell.next
	} else {
		a.all = cell.next
	}
}

// Close destroys the arena (spec.md §4.7). Unrooted cells are simply
// dropped (the host's own garbage collector reclaims them once nothing
// else references them); rooted cells are marked detached and survive
// via their outstanding Pins until the last one drops.
func (a *Arena) Close() error {
	a.enter("Close")
	// Do not defer exit(): a destroyed arena must keep failing enter()
	// with CodeClosed, it must not become reentrant-callable again.

	for c := a.all; c != nil; c = c.next {
		if c.rootCount > 0 {
			c.detached = true
		} else {
			c.freed = true
		}
	}

	a.all = nil
	a.sweep = nil
	a.sweepPrev = nil
	a.gray = graydeque.New[*cellHeader]()
	a.destroyed = true
	return nil
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func round(f float64) int64 {
	return int64(math.Round(f))
}
