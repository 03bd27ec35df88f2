//go:build tinygo && (stm32f0 || rp2040)

// bootloader is the first-stage image. Build it for the board's layout,
// then stamp its BootInfo:
//
//	tinygo build -target=pico -o boot.bin ./cmd/bootloader
//	imgtool stamp --layout rp2040 --boot --version 1 --id "project_template boot" boot.bin
package main

import (
	"bootcode-go/services/board"
	"bootcode-go/services/boot"
)

func main() {
	e, err := boot.New(board.Native(), boot.DefaultConfig())
	if err != nil {
		// Layout and board disagree: nothing here can be trusted to start.
		println("Error: bootloader:", err.Error())
		for {
		}
	}
	e.Run()
}
