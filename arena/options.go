package arena

import "github.com/sirupsen/logrus"

// Option configures optional Arena collaborators at construction time,
// the functional-options idiom used throughout the daemon constructors in
// moby-moby's pack of dependencies.
type Option func(*Arena)

// WithLogger wires a structured logger for phase transitions, blocked
// slices, and sweep summaries. Without it, the arena logs nothing.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(a *Arena) {
		a.logger = logger
	}
}

// WithAllocHook installs a function consulted before every allocation;
// returning a non-nil error simulates host-allocator exhaustion (spec.md
// §7.3) without actually running the process out of memory. Intended for
// tests and fault-injection harnesses.
func WithAllocHook(hook func() error) Option {
	return func(a *Arena) {
		a.allocHook = hook
	}
}
