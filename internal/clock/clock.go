// Package clock supplies the injectable time source used everywhere the
// core reads wall-clock time (BKT forgetting, the spaced scheduler,
// diagnostic wall-clock duration, lastPracticed updates), so tests can
// control simulated time deterministically instead of sleeping in real
// time.
package clock

import "github.com/coder/quartz"

// Clock is re-exported as a named type so callers in this module depend on
// "adaptprep/internal/clock" rather than importing coder/quartz directly
// everywhere.
type Clock = quartz.Clock

// Real returns the production clock, backed by the operating system's
// wall clock.
func Real() Clock {
	return quartz.NewReal()
}
