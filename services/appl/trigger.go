package appl

import "bootcode-go/x/timex"

type phase uint8

const (
	waitPress phase = iota
	waitRelease
	settling
	fired
)

// Trigger turns raw button samples into a single update request: press,
// release, then Debounce with the button left alone. A bounce during the
// settling time restarts it.
type Trigger struct {
	Debounce timex.Ticks

	p     phase
	since timex.Ticks
}

// Update feeds one sample and reports whether the trigger has fired.
// Once fired it stays fired.
func (t *Trigger) Update(now timex.Ticks, pressed bool) bool {
	switch t.p {
	case waitPress:
		if pressed {
			t.p = waitRelease
		}
	case waitRelease:
		if !pressed {
			t.p, t.since = settling, now
		}
	case settling:
		if pressed {
			t.p = waitRelease
		} else if timex.Since(now, t.since) >= t.Debounce {
			t.p = fired
		}
	}
	return t.p == fired
}

// Held reports whether a press has been seen and not yet settled.
func (t *Trigger) Held() bool { return t.p == waitRelease || t.p == settling }
