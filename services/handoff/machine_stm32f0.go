//go:build tinygo && stm32f0

package handoff

const (
	rccAPB2ENR  = 0x40021018
	syscfgEN    = 1 << 0
	syscfgCFGR1 = 0x40010000
	memModeMask = 0b11
	memModeSRAM = 0b11
	sramBase    = 0x20000000
)

// stm32f0 has no VTOR. The table is aliased at 0 by mapping SRAM there,
// so it has to live at the very start of SRAM.
type stm32f0 struct{ cortexM }

// Native returns the machine of the running target.
func Native() Machine { return stm32f0{} }

func (stm32f0) RemapVectors(addr uint32) {
	if addr != sramBase {
		return
	}
	reg(rccAPB2ENR).SetBits(syscfgEN)
	cfgr := reg(syscfgCFGR1)
	cfgr.Set(cfgr.Get()&^memModeMask | memModeSRAM)
}
