// Package boot is the bootloader's decision engine. On every reset it
// brings the board up to a safe minimum, settles the persistent state
// according to the reset cause, and either starts the application or
// stays in update mode until the link goes quiet.
//
// States: EarlyInit -> Decide -> EnterApplication | BootloaderMode;
// BootloaderMode ends in a software reset, which starts over at EarlyInit.
package boot

import (
	"errors"

	"bootcode-go/diag"
	"bootcode-go/errcode"
	"bootcode-go/services/board"
	"bootcode-go/services/bootdata"
	"bootcode-go/services/handoff"
	"bootcode-go/services/idle"
	"bootcode-go/services/image"
	"bootcode-go/types"
)

type State uint8

const (
	StateEarlyInit State = iota
	StateDecide
	StateEnterApplication
	StateBootloaderMode
)

var stateNames = [...]string{"early_init", "decide", "enter_application", "bootloader_mode"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Reason says why bootloader mode was chosen.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonUpdateRequested
	ReasonBadMagic
	ReasonCRCMismatch
	ReasonStorageFault
)

var reasonNames = [...]string{"none", "update_requested", "bad_magic", "crc_mismatch", "storage_fault"}

func (r Reason) String() string {
	if int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}

type Decision struct {
	Next   State
	Reason Reason
	Err    error // validator error behind BadMagic/CRCMismatch/StorageFault
}

type Engine struct {
	cfg   Config
	b     board.Board
	state *bootdata.Store
	img   *image.Validator
	unit  *handoff.Unit
	log   *diag.Logger

	cur     State
	cause   types.ResetCause
	cleared bool
	initErr error
}

// New wires an engine to b. The regions of b must match its layout.
func New(b board.Board, cfg Config) (*Engine, error) {
	cfg = cfg.Normalised()
	l := b.Layout()
	r := b.Regions()
	st, err := bootdata.New(r.BootData)
	if err != nil {
		return nil, err
	}
	v, err := image.New(l, r.Boot, r.Appl, st)
	if err != nil {
		return nil, err
	}
	u, err := handoff.New(l, b.Machine(), r.Appl, r.VectorRAM)
	if err != nil {
		return nil, err
	}
	log := diag.New(nil, cfg.Tag)
	log.SetLevel(cfg.LogLevel)
	return &Engine{cfg: cfg, b: b, state: st, img: v, unit: u, log: log}, nil
}

func (e *Engine) State() State                 { return e.cur }
func (e *Engine) ResetCause() types.ResetCause { return e.cause }

// Cleared reports whether EarlyInit zeroed BootData.
func (e *Engine) Cleared() bool { return e.cleared }

// EarlyInit performs the minimum board setup and settles BootData. It runs
// before anything that could depend on BootData contents.
func (e *Engine) EarlyInit() {
	e.cur = StateEarlyInit
	e.b.InitMinimum()
	e.cause = e.b.ReadResetCause()
	e.cleared, e.initErr = e.state.MaybeClearOnBoot(e.cause)
	e.cur = StateDecide
}

// Decide picks the next state. The image is only validated when no update
// was requested.
func (e *Engine) Decide() Decision {
	e.cur = StateDecide
	if e.state.IsUpdateRequested() {
		return e.decided(Decision{Next: StateBootloaderMode, Reason: ReasonUpdateRequested})
	}
	err := e.img.Check()
	switch {
	case err == nil:
		return e.decided(Decision{Next: StateEnterApplication})
	case errors.Is(err, errcode.BadMagic):
		return e.decided(Decision{Next: StateBootloaderMode, Reason: ReasonBadMagic, Err: err})
	case errors.Is(err, errcode.CRCMismatch):
		return e.decided(Decision{Next: StateBootloaderMode, Reason: ReasonCRCMismatch, Err: err})
	default:
		return e.decided(Decision{Next: StateBootloaderMode, Reason: ReasonStorageFault, Err: err})
	}
}

func (e *Engine) decided(d Decision) Decision {
	e.cur = d.Next
	return d
}

// EnterApplication hands over without any further initialisation.
func (e *Engine) EnterApplication() { e.unit.EnterApplication() }

// RunBootloaderMode initialises the rest of the board, reports why it is
// here, idles until the link is quiet and resets. It does not return.
func (e *Engine) RunBootloaderMode(d Decision) {
	e.cur = StateBootloaderMode
	e.b.InitFull()
	e.log.SetOutput(e.b.Console())
	e.banner(d)

	loop := idle.New(e.cfg.Idle, e.b.Clock(), e.b, e.b, e.b.Transfer())
	st := loop.Run()
	e.log.Infof("idle for %d ms after %d polls with activity, resetting",
		uint32(st.Elapsed), st.Activity)

	if err := e.state.ResetUpdateRequest(); err != nil {
		e.log.Errorf("reset update request: %v", err)
	}
	e.b.Deinit()
	e.log.SetOutput(nil)
	e.unit.EnterBootloader()
}

func (e *Engine) banner(d Decision) {
	e.log.Infof("bootloader mode entered")
	if bi, err := e.img.BootInfo(); err == nil && e.img.IsBootInfoSane() {
		e.log.Infof("%s v%d", bi.ID(), bi.Version)
	}
	e.log.Infof("reset cause %s, reason %s", e.cause, d.Reason)
	if e.initErr != nil {
		e.log.Errorf("boot_data init: %v", e.initErr)
	}
	if d.Err != nil && d.Reason == ReasonStorageFault {
		e.log.Errorf("image check: %v", d.Err)
	}
	ai, _ := e.img.ApplInfo()
	crc, _ := e.state.ApplCRC()
	e.log.Infof("appl_info.crc = 0x%08x, boot_data.crc = 0x%08x", ai.CRC, crc)
	if ai.CRCIgnored() {
		e.log.Warnf("appl_info.ignore_crc is set")
	}
}

// Run is the bootloader's main. It does not return.
func (e *Engine) Run() {
	e.EarlyInit()
	d := e.Decide()
	if d.Next == StateEnterApplication {
		e.EnterApplication()
	}
	e.RunBootloaderMode(d)
}
