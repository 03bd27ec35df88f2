// Package idle is the bootloader's update-mode loop: keep the watchdog fed,
// blink the run LED, service the firmware transfer, and give up after a
// period without activity.
package idle

import (
	"time"

	"bootcode-go/x/timex"
)

type Watchdog interface{ Kick() }

type Indicator interface{ Toggle() }

// Transfer is the firmware-update hook. Poll does a bounded amount of work
// and reports whether anything happened (bytes received, a block written).
type Transfer interface {
	Poll(now timex.Ticks) bool
}

// None is a Transfer that never sees activity.
var None Transfer = noTransfer{}

type noTransfer struct{}

func (noTransfer) Poll(timex.Ticks) bool { return false }

const (
	DefaultBlinkInterval = 50 * time.Millisecond
	DefaultIdleTimeout   = 10 * time.Second
)

type Config struct {
	BlinkInterval time.Duration
	IdleTimeout   time.Duration
}

func DefaultConfig() Config {
	return Config{BlinkInterval: DefaultBlinkInterval, IdleTimeout: DefaultIdleTimeout}
}

type Stats struct {
	Iterations uint32
	Kicks      uint32
	Toggles    uint32
	Activity   uint32
	Elapsed    timex.Ticks // from loop start to exit
}

type Loop struct {
	cfg   Config
	clock timex.Clock
	wd    Watchdog
	led   Indicator
	xfer  Transfer
}

// New builds a loop. A nil transfer means None; zero config fields fall
// back to the defaults.
func New(cfg Config, clock timex.Clock, wd Watchdog, led Indicator, xfer Transfer) *Loop {
	if cfg.BlinkInterval <= 0 {
		cfg.BlinkInterval = DefaultBlinkInterval
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if xfer == nil {
		xfer = None
	}
	return &Loop{cfg: cfg, clock: clock, wd: wd, led: led, xfer: xfer}
}

// Run blocks until IdleTimeout has passed since the last activity.
// The watchdog is kicked on every iteration, before anything else.
func (l *Loop) Run() Stats {
	var st Stats
	blink := timex.Ms(l.cfg.BlinkInterval)
	start := l.clock.Now()
	tsLED := start
	var exit timex.Timer
	exit.Start(start, timex.Ms(l.cfg.IdleTimeout))

	for {
		l.wd.Kick()
		st.Kicks++
		st.Iterations++

		now := l.clock.Now()
		exit.Update(now)

		if timex.IsElapsedRepetitive(&tsLED, now, blink) {
			l.led.Toggle()
			st.Toggles++
		} else if l.xfer.Poll(now) {
			st.Activity++
			exit.Restart(now)
		}

		if exit.Expired() {
			st.Elapsed = timex.Since(now, start)
			return st
		}
	}
}
