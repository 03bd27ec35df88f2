package timex

import (
	"time"

	"golang.org/x/exp/constraints"
)

// Ticks is a free-running millisecond counter. It wraps after ~49 days;
// all comparisons go through Since, which is wrap-safe.
type Ticks uint32

// Clock yields the current tick count. The idle loop and the application
// trigger take one so tests can drive time explicitly.
type Clock interface {
	Now() Ticks
}

// Ms converts a duration to ticks, truncating.
func Ms(d time.Duration) Ticks { return Ticks(d / time.Millisecond) }

// Duration converts ticks back to a time.Duration.
func (t Ticks) Duration() time.Duration { return time.Duration(t) * time.Millisecond }

// Since returns now-then for any unsigned counter, correct across one wrap.
func Since[T constraints.Unsigned](now, then T) T { return now - then }

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsElapsedRepetitive reports whether interval has passed since *ts and, if
// so, advances *ts by one interval. A caller that fell more than one interval
// behind is resynchronised to now instead of firing repeatedly.
func IsElapsedRepetitive(ts *Ticks, now, interval Ticks) bool {
	if Since(now, *ts) < interval {
		return false
	}
	*ts += interval
	if Since(now, *ts) >= interval {
		*ts = now
	}
	return true
}

// Timer is a one-shot inactivity timer polled from a loop.
type Timer struct {
	start   Ticks
	timeout Ticks
	now     Ticks
	running bool
}

// Start (re)arms the timer at now.
func (t *Timer) Start(now, timeout Ticks) {
	t.start, t.now, t.timeout, t.running = now, now, timeout, true
}

// Restart re-arms with the current timeout.
func (t *Timer) Restart(now Ticks) { t.Start(now, t.timeout) }

// Update records the current time.
func (t *Timer) Update(now Ticks) { t.now = now }

// Expired reports whether timeout ticks passed between Start and the last Update.
func (t *Timer) Expired() bool {
	return t.running && Since(t.now, t.start) >= t.timeout
}

// Elapsed returns ticks since Start as of the last Update.
func (t *Timer) Elapsed() Ticks { return Since(t.now, t.start) }

// ---- Clocks ----

type system struct{ epoch time.Time }

// System returns a Clock backed by the runtime monotonic clock
// (SysTick/timer peripheral under TinyGo).
func System() Clock { return &system{epoch: time.Now()} }

func (s *system) Now() Ticks { return Ms(time.Since(s.epoch)) }

// Fake is a manual Clock. Each Now call advances it by Step, which models
// the cost of one loop iteration.
type Fake struct {
	T    Ticks
	Step Ticks
}

func (f *Fake) Now() Ticks {
	now := f.T
	f.T += f.Step
	return now
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d Ticks) { f.T += d }
