//go:build tinygo && (stm32f0 || rp2040)

package handoff

import (
	"runtime/volatile"
	"unsafe"

	"device/arm"
)

const (
	systCSR  = 0xe000e010
	nvicICER = 0xe000e180
	nvicICPR = 0xe000e280
)

func reg(addr uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(addr))
}

type cortexM struct{}

func (cortexM) SoftwareReset() { arm.SystemReset() }

func (cortexM) Barrier() {
	arm.Asm("dsb")
	arm.Asm("isb")
}

// Cortex-M0/M0+ implement a single word of 32 external interrupts.
func (cortexM) Quiesce() {
	reg(systCSR).Set(0)
	reg(nvicICER).Set(0xffffffff)
	reg(nvicICPR).Set(0xffffffff)
}

func (cortexM) Jump(addr uint32) {
	arm.AsmFull(`
		ldr r1, [{table}]
		msr msp, r1
		isb
		ldr r1, [{table}, #4]
		bx r1
	`, map[string]interface{}{
		"table": uintptr(addr),
	})
}
