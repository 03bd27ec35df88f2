//go:build !tinygo

package board

import (
	"bytes"
	"io"

	"bootcode-go/region"
	"bootcode-go/services/handoff"
	"bootcode-go/services/idle"
	"bootcode-go/types"
	"bootcode-go/x/timex"
)

// Host simulates a board. Memory is plain byte slices at the layout's
// addresses; the machine records transfers instead of performing them.
type Host struct {
	L      types.Layout
	Clk    *timex.Fake
	Rec    *handoff.Recorder
	Out    bytes.Buffer
	Boot   *region.Mem
	Appl   *region.Mem
	Data   *region.Mem
	VecRAM *region.Mem

	// Cause is what the next boot reports.
	Cause types.ResetCause

	// ButtonFn, if set, overrides Button.
	Button   bool
	ButtonFn func() bool
	// Activity is polled by the idle loop's transfer hook.
	Activity func(now timex.Ticks) bool

	LED    bool
	Kicks  int
	Events []string

	latch   resetLatch
	console bool
}

// NewHost returns a board for l with erased flash and a fake clock
// advancing 1 ms per read. The first boot reports a power-on reset.
func NewHost(l types.Layout) *Host {
	h := &Host{
		L:      l,
		Clk:    &timex.Fake{Step: 1},
		Rec:    &handoff.Recorder{},
		Boot:   region.NewMem(l.BootInfoAddr, types.BootInfoSize),
		Appl:   region.NewMem(l.ApplInfoAddr, l.CRCEnd()-l.ApplInfoAddr),
		Data:   region.NewMem(l.BootDataAddr, types.BootDataSize),
		VecRAM: region.NewMem(l.VectorRAMAddr, l.VectorTableSize()),
		Cause:  types.ResetPowerOn,
	}
	region.Fill(h.Boot, 0xff)
	region.Fill(h.Appl, 0xff)
	// SRAM content after power-up is undefined.
	for i, b := 0, h.Data.Bytes(); i < len(b); i++ {
		b[i] = byte(0x5a ^ i*37)
	}
	return h
}

// Reboot simulates a reset with the given cause. SRAM survives; the
// recorder and board state start over.
func (h *Host) Reboot(cause types.ResetCause) {
	h.Cause = cause
	h.latch = resetLatch{}
	h.Rec = &handoff.Recorder{}
	h.console = false
	h.LED = false
}

func (h *Host) Layout() types.Layout { return h.L }

func (h *Host) Regions() Regions {
	return Regions{Boot: h.Boot, Appl: h.Appl, BootData: h.Data, VectorRAM: h.VecRAM}
}

func (h *Host) Machine() handoff.Machine { return h.Rec }
func (h *Host) Clock() timex.Clock       { return h.Clk }

func (h *Host) InitMinimum() { h.Events = append(h.Events, "init_minimum") }

func (h *Host) InitFull() {
	h.Events = append(h.Events, "init_full")
	h.console = true
}

func (h *Host) Deinit() {
	h.Events = append(h.Events, "deinit")
	h.console = false
	h.LED = false
}

func (h *Host) ReadResetCause() types.ResetCause {
	return h.latch.get(func() types.ResetCause { return h.Cause })
}

func (h *Host) Kick()   { h.Kicks++ }
func (h *Host) Toggle() { h.LED = !h.LED }

func (h *Host) Pressed() bool {
	if h.ButtonFn != nil {
		return h.ButtonFn()
	}
	return h.Button
}

func (h *Host) Console() io.Writer {
	if !h.console {
		return nil
	}
	return &h.Out
}

func (h *Host) Transfer() idle.Transfer { return hostTransfer{h} }

type hostTransfer struct{ h *Host }

func (t hostTransfer) Poll(now timex.Ticks) bool {
	return t.h.Activity != nil && t.h.Activity(now)
}
