//go:build tinygo && rp2040

package board

import (
	"context"
	"io"
	"machine"

	"bootcode-go/services/handoff"
	"bootcode-go/services/idle"
	"bootcode-go/types"
	"bootcode-go/x/timex"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// Pico wiring: LED on GP25, update button on GP15 to ground, diagnostic
// UART0 on GP0/GP1.
const (
	buttonPin = machine.GP15
	baud      = 115200

	watchdogTimeoutMs = 2000

	watchdogReason = 0x40058008
	reasonTimer    = 1 << 0
	reasonForce    = 1 << 1

	chipReset     = 0x40064008
	hadPOR        = 1 << 8
	hadRUN        = 1 << 16
	hadPSMRestart = 1 << 20
)

type rp2040 struct {
	l       types.Layout
	regions Regions
	clock   timex.Clock
	latch   resetLatch
	console io.Writer
	rx      [16]byte
	nowait  context.Context
}

// Native returns the board of the running target.
func Native() Board {
	l := types.RP2040
	r := mappedRegions(l)
	r.BootData = bootDataRegion(l, r.BootData)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return &rp2040{l: l, regions: r, clock: timex.System(), nowait: ctx}
}

func (b *rp2040) Layout() types.Layout     { return b.l }
func (b *rp2040) Regions() Regions         { return b.regions }
func (b *rp2040) Machine() handoff.Machine { return handoff.Native() }
func (b *rp2040) Clock() timex.Clock       { return b.clock }

func (b *rp2040) InitMinimum() {
	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	machine.LED.Low()
	buttonPin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	initBootDataBus()
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: watchdogTimeoutMs})
	machine.Watchdog.Start()
}

func (b *rp2040) InitFull() {
	_ = uartx.UART0.Configure(uartx.UARTConfig{
		BaudRate: baud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	b.console = uartx.UART0
}

func (b *rp2040) Deinit() {
	machine.LED.Low()
	b.console = nil
}

// A watchdog FORCE is how both images reset into each other, so it is
// reported as the handoff reset. CHIP_RESET only reflects chip-level
// resets and is consulted when the watchdog did not fire.
func (b *rp2040) ReadResetCause() types.ResetCause {
	return b.latch.get(func() types.ResetCause {
		wd := reg(watchdogReason).Get()
		switch {
		case wd&reasonForce != 0:
			return types.HandoffReset
		case wd&reasonTimer != 0:
			return types.ResetWatchdog
		}
		cr := reg(chipReset).Get()
		var c types.ResetCause
		if cr&hadPOR != 0 {
			c |= types.ResetPowerOn
		}
		if cr&hadRUN != 0 {
			c |= types.ResetPin
		}
		if cr&hadPSMRestart != 0 {
			c |= types.ResetSoftware
		}
		return c
	})
}

func (b *rp2040) Kick() { machine.Watchdog.Update() }

func (b *rp2040) Toggle() {
	if machine.LED.Get() {
		machine.LED.Low()
	} else {
		machine.LED.High()
	}
}

func (b *rp2040) Pressed() bool { return !buttonPin.Get() }

func (b *rp2040) Console() io.Writer { return b.console }

func (b *rp2040) Transfer() idle.Transfer { return b }

// Poll drains whatever the UART has buffered without blocking.
func (b *rp2040) Poll(timex.Ticks) bool {
	if b.console == nil {
		return false
	}
	n, _ := uartx.UART0.RecvSomeContext(b.nowait, b.rx[:])
	return n > 0
}
