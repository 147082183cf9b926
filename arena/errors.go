package arena

import "github.com/pkg/errors"

// FatalCode identifies a programmer-error class (spec.md §7.1). These are
// contract violations, not recoverable runtime conditions: the library
// panics with a *FatalError carrying one of these codes, the same way the
// teacher's runtime calls throw("...") with a fixed message per invariant
// violation (runtime/mfixalloc.go, runtime/mgcwork.go).
type FatalCode string

const (
	// CodeRootCountOverflow: a Pin's ref count would overflow its
	// counter width.
	CodeRootCountOverflow FatalCode = "root_count_overflow"
	// CodeRootCountUnderflow: Drop called more times than Clone/Root.
	CodeRootCountUnderflow FatalCode = "root_count_underflow"
	// CodeUseAfterFree: an arena method observed a cell already
	// reclaimed by a prior sweep.
	CodeUseAfterFree FatalCode = "use_after_free"
	// CodeReentrant: an arena method was called while another call on
	// the same Arena was already in progress (missing exclusive access,
	// or a trace callback calling back into the arena).
	CodeReentrant FatalCode = "reentrant_call"
	// CodeClosed: an arena method was called after Close.
	CodeClosed FatalCode = "arena_closed"
)

// FatalError is the panic value for every programmer-error condition in
// spec.md §7.1. It is exported so a test harness (or a host that chooses
// to recover at a top-level boundary) can inspect Code without string
// matching, e.g.:
//
//	defer func() {
//	    if r := recover(); r != nil {
//	        if fe, ok := r.(*arena.FatalError); ok && fe.Code == arena.CodeUseAfterFree { ... }
//	    }
//	}()
type FatalError struct {
	Code    FatalCode
	Message string
}

func (e *FatalError) Error() string {
	return "arena: " + e.Message
}

func fatal(code FatalCode, msg string) {
	panic(&FatalError{Code: code, Message: msg})
}

// ErrCollectionBlocked is returned by (*Arena).CollectGarbage when the
// entire gray queue is blocked by failing Trace calls and a full cycle
// cannot complete. Per spec.md §4.6 the host must retry once the blocking
// condition clears.
var ErrCollectionBlocked = errors.New("arena: collection blocked: every queued cell's Trace returned false")

// ErrAllocFailed wraps a host-allocator exhaustion (spec.md §7.3). Arena
// invariants are preserved and the failed allocation is not recorded.
var ErrAllocFailed = errors.New("arena: allocation failed")
