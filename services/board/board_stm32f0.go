//go:build tinygo && stm32f0

package board

import (
	"io"

	"bootcode-go/services/handoff"
	"bootcode-go/services/idle"
	"bootcode-go/types"
	"bootcode-go/x/timex"
)

// NUCLEO-F0 wiring: LD2 on PA5, B1 on PC13 (active low), USART2 on
// PA2/PA3 to the ST-LINK virtual COM port. Clocks stay on the 8 MHz HSI.
const (
	rccAHBENR  = 0x40021014
	rccAPB1ENR = 0x4002101c
	rccCSR     = 0x40021024

	gpioAEN  = 1 << 17
	gpioCEN  = 1 << 19
	usart2EN = 1 << 17

	gpioA = 0x48000000
	gpioC = 0x48000800

	gpioMODER = 0x00
	gpioIDR   = 0x10
	gpioODR   = 0x14
	gpioAFRL  = 0x20

	ledPin    = 5
	buttonPin = 13

	usart2    = 0x40004400
	usartCR1  = 0x00
	usartBRR  = 0x0c
	usartISR  = 0x1c
	usartRDR  = 0x24
	usartTDR  = 0x28
	usartUE   = 1 << 0
	usartRE   = 1 << 2
	usartTE   = 1 << 3
	usartRXNE = 1 << 5
	usartTXE  = 1 << 7
	usartTC   = 1 << 6

	hsiHz = 8_000_000
	baud  = 115200

	iwdgKR     = 0x40003000
	iwdgReload = 0xaaaa
)

// RCC_CSR flags.
const (
	csrRMVF     = 1 << 24
	csrOBLRSTF  = 1 << 25
	csrPINRSTF  = 1 << 26
	csrPORRSTF  = 1 << 27
	csrSFTRSTF  = 1 << 28
	csrIWDGRSTF = 1 << 29
	csrWWDGRSTF = 1 << 30
	csrLPWRRSTF = 1 << 31
)

var csrCauses = [...]struct {
	bit   uint32
	cause types.ResetCause
}{
	{csrOBLRSTF, types.ResetOptionLoad},
	{csrPINRSTF, types.ResetPin},
	{csrPORRSTF, types.ResetPowerOn},
	{csrSFTRSTF, types.ResetSoftware},
	{csrIWDGRSTF, types.ResetWatchdog},
	{csrWWDGRSTF, types.ResetWindowWatchdog},
	{csrLPWRRSTF, types.ResetLowPower},
}

type stm32f0 struct {
	l       types.Layout
	regions Regions
	clock   timex.Clock
	latch   resetLatch
	console io.Writer
}

// Native returns the board of the running target.
func Native() Board {
	return &stm32f0{l: types.STM32F0, regions: mappedRegions(types.STM32F0), clock: timex.System()}
}

func (b *stm32f0) Layout() types.Layout     { return b.l }
func (b *stm32f0) Regions() Regions         { return b.regions }
func (b *stm32f0) Machine() handoff.Machine { return handoff.Native() }
func (b *stm32f0) Clock() timex.Clock       { return b.clock }

func (b *stm32f0) InitMinimum() {
	reg(rccAHBENR).SetBits(gpioAEN | gpioCEN)
	reg(rccAPB1ENR).SetBits(usart2EN)
	// PA2/PA3 to AF1, PA5 output.
	afrl := reg(gpioA + gpioAFRL)
	afrl.Set(afrl.Get()&^(0xff<<8) | 0x11<<8)
	moder := reg(gpioA + gpioMODER)
	moder.Set(moder.Get()&^(3<<4|3<<6|3<<10) | 2<<4 | 2<<6 | 1<<10)
}

func (b *stm32f0) InitFull() {
	reg(usart2 + usartBRR).Set((hsiHz + baud/2) / baud)
	reg(usart2 + usartCR1).Set(usartUE | usartRE | usartTE)
	b.console = usartWriter{}
}

func (b *stm32f0) Deinit() {
	if b.console != nil {
		for !reg(usart2 + usartISR).HasBits(usartTC) {
		}
	}
	reg(usart2 + usartCR1).Set(0)
	reg(gpioA + gpioODR).ClearBits(1 << ledPin)
	b.console = nil
}

func (b *stm32f0) ReadResetCause() types.ResetCause {
	return b.latch.get(func() types.ResetCause {
		csr := reg(rccCSR)
		v := csr.Get()
		var c types.ResetCause
		for _, f := range csrCauses {
			if v&f.bit != 0 {
				c |= f.cause
			}
		}
		csr.SetBits(csrRMVF)
		return c
	})
}

func (b *stm32f0) Kick()   { reg(iwdgKR).Set(iwdgReload) }
func (b *stm32f0) Toggle() { reg(gpioA + gpioODR).Set(reg(gpioA+gpioODR).Get() ^ 1<<ledPin) }

func (b *stm32f0) Pressed() bool { return !reg(gpioC + gpioIDR).HasBits(1 << buttonPin) }

func (b *stm32f0) Console() io.Writer { return b.console }

func (b *stm32f0) Transfer() idle.Transfer { return usartActivity{} }

type usartWriter struct{}

func (usartWriter) Write(p []byte) (int, error) {
	for _, c := range p {
		for !reg(usart2 + usartISR).HasBits(usartTXE) {
		}
		reg(usart2 + usartTDR).Set(uint32(c))
	}
	return len(p), nil
}

// usartActivity drains one received byte per poll. The update protocol
// itself runs elsewhere; here any traffic keeps the bootloader waiting.
type usartActivity struct{}

func (usartActivity) Poll(timex.Ticks) bool {
	if !reg(usart2 + usartISR).HasBits(usartRXNE) {
		return false
	}
	_ = reg(usart2 + usartRDR).Get()
	return true
}
