//go:build tinygo && rp2040

package handoff

const (
	scbVTOR = 0xe000ed08

	psmWDSEL      = 0x40010008
	psmKeepClocks = 0x3 // ROSC | XOSC
	psmAll        = 0x1ffff

	watchdogCTRL    = 0x40058000
	watchdogTrigger = 1 << 31
)

type rp2040 struct{ cortexM }

// Native returns the machine of the running target.
func Native() Machine { return rp2040{} }

// SoftwareReset forces a watchdog reset of everything but the oscillators.
// SRAM keeps its contents and WATCHDOG_REASON reads FORCE afterwards, which
// the board reports as the handoff reset.
func (rp2040) SoftwareReset() {
	reg(psmWDSEL).Set(psmAll &^ psmKeepClocks)
	reg(watchdogCTRL).SetBits(watchdogTrigger)
	for {
	}
}

func (rp2040) RemapVectors(addr uint32) { reg(scbVTOR).Set(addr) }
