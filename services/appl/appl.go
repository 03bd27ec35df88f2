// Package appl is the application side of the handoff: a main loop that
// keeps the board alive and, on a button press, asks the bootloader for
// update mode.
package appl

import (
	"time"

	"bootcode-go/diag"
	"bootcode-go/services/board"
	"bootcode-go/services/bootdata"
	"bootcode-go/services/handoff"
	"bootcode-go/x/timex"
)

type Config struct {
	BlinkInterval time.Duration
	Debounce      time.Duration
	Tag           string
}

func DefaultConfig() Config {
	return Config{BlinkInterval: 200 * time.Millisecond, Debounce: 100 * time.Millisecond, Tag: "appl"}
}

type App struct {
	cfg   Config
	b     board.Board
	state *bootdata.Store
	unit  *handoff.Unit
	log   *diag.Logger
}

func New(b board.Board, cfg Config) (*App, error) {
	d := DefaultConfig()
	if cfg.BlinkInterval <= 0 {
		cfg.BlinkInterval = d.BlinkInterval
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = d.Debounce
	}
	r := b.Regions()
	st, err := bootdata.New(r.BootData)
	if err != nil {
		return nil, err
	}
	u, err := handoff.New(b.Layout(), b.Machine(), r.Appl, r.VectorRAM)
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, b: b, state: st, unit: u, log: diag.New(nil, cfg.Tag)}, nil
}

// Run takes over the board configured by the bootloader and does not
// return: the only way out is back into the bootloader.
func (a *App) Run() {
	a.b.InitFull()
	a.log.SetOutput(a.b.Console())
	a.log.Infof("executing application")

	clk := a.b.Clock()
	blink := timex.Ms(a.cfg.BlinkInterval)
	trig := Trigger{Debounce: timex.Ms(a.cfg.Debounce)}
	ts := clk.Now()
	for {
		a.b.Kick()
		now := clk.Now()
		if trig.Update(now, a.b.Pressed()) {
			break
		}
		if !trig.Held() && timex.IsElapsedRepetitive(&ts, now, blink) {
			a.b.Toggle()
		}
	}

	a.log.Infof("update requested")
	a.RequestUpdate()
}

// RequestUpdate sets the update flag and resets into the bootloader.
func (a *App) RequestUpdate() {
	if err := a.state.SignalUpdateRequest(); err != nil {
		a.log.Errorf("signal update request: %v", err)
	}
	a.b.Deinit()
	a.unit.EnterBootloader()
}
