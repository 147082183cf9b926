package arena

import "github.com/pkg/errors"

// Params configures an Arena's scheduling behavior. All fields are
// validated once by New and never change afterward, mirroring the
// teacher's fixalloc.init contract (the caller fills in fixed knobs once;
// everything downstream trusts them for the object's lifetime).
type Params struct {
	// PauseFactor multiplies the retained (Black, rooted-or-referenced)
	// size at the end of a sweep to compute how much further allocation
	// is allowed before the next cycle wakes up. Default 0.5.
	PauseFactor float64

	// TimingFactor amplifies the debt charged per allocated byte so the
	// current cycle finishes well before the heap can grow by
	// TimingFactor times its size at cycle start. Zero means
	// stop-the-world: the debt becomes unbounded, so the next collector
	// slice runs the whole remaining cycle. Default 1.5.
	TimingFactor float64

	// CollectionGranularity is the number of allocated bytes between
	// collector slices. Default 1024.
	CollectionGranularity int64

	// MinSleep is the minimum number of bytes the arena must allocate
	// while Sleeping before the next cycle is allowed to wake up.
	// Default 4096.
	MinSleep int64
}

// DefaultParams returns the literal defaults spec.md lists.
func DefaultParams() Params {
	return Params{
		PauseFactor:           0.5,
		TimingFactor:          1.5,
		CollectionGranularity: 1024,
		MinSleep:              4096,
	}
}

func (p Params) validate() error {
	switch {
	case p.PauseFactor < 0:
		return errors.New("arena: PauseFactor must be >= 0")
	case p.TimingFactor < 0:
		return errors.New("arena: TimingFactor must be >= 0")
	case p.CollectionGranularity < 0:
		return errors.New("arena: CollectionGranularity must be >= 0")
	case p.MinSleep < 0:
		return errors.New("arena: MinSleep must be >= 0")
	}
	return nil
}
