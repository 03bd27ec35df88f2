//go:build tinygo && (stm32f0 || rp2040)

// application is the second-stage image, linked at ApplInfoAddr with its
// vector table at ApplVectorTableAddr. imgtool stamps ApplInfo and the CRC
// after linking; an unstamped image keeps the board in the bootloader.
package main

import (
	"bootcode-go/services/appl"
	"bootcode-go/services/board"
)

func main() {
	a, err := appl.New(board.Native(), appl.DefaultConfig())
	if err != nil {
		println("Error: application:", err.Error())
		for {
		}
	}
	a.Run()
}
