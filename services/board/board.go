// Package board holds the per-target external collaborators used by both
// images: clock and pin setup, the diagnostic console, the watchdog, the
// run LED, the user button, the reset-cause register and the memory
// regions of the layout.
//
// Native returns the running target's board under TinyGo; NewHost returns
// a simulation for host builds and tests.
package board

import (
	"io"

	"bootcode-go/region"
	"bootcode-go/services/handoff"
	"bootcode-go/services/idle"
	"bootcode-go/types"
	"bootcode-go/x/timex"
)

// Regions are the fixed-address memory areas a board exposes.
type Regions struct {
	Boot      region.Region // covers BootInfo
	Appl      region.Region // [ApplInfoAddr, CRCEnd)
	BootData  region.Region
	VectorRAM region.Region
}

type Board interface {
	Layout() types.Layout
	Regions() Regions
	Machine() handoff.Machine
	Clock() timex.Clock

	// InitMinimum runs on every boot: clocks, pins into a safe state and
	// whatever bus the BootData region sits on.
	InitMinimum()
	// InitFull brings up the console for bootloader mode.
	InitFull()
	// Deinit returns the board to its reset state before a software reset.
	Deinit()

	// ReadResetCause returns the cause of the last reset and clears the
	// hardware flags. Later calls return the same value.
	ReadResetCause() types.ResetCause

	Kick()
	Toggle()
	Pressed() bool

	// Console is the diagnostic output, nil until InitFull.
	Console() io.Writer
	// Transfer is the firmware-update activity source for the idle loop.
	Transfer() idle.Transfer
}

// resetLatch caches the reset cause so it is read from hardware once.
type resetLatch struct {
	cause types.ResetCause
	read  bool
}

func (l *resetLatch) get(read func() types.ResetCause) types.ResetCause {
	if !l.read {
		l.cause, l.read = read(), true
	}
	return l.cause
}
