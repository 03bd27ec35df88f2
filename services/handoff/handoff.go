// Package handoff moves control between the two images. Both directions
// end the current image: the bootloader is re-entered through a software
// reset, the application through its relocated vector table.
package handoff

import (
	"bootcode-go/errcode"
	"bootcode-go/region"
	"bootcode-go/types"
)

// Machine is the per-target CPU capability. Implementations of
// SoftwareReset and Jump do not return.
type Machine interface {
	SoftwareReset()
	// RemapVectors makes the table at addr the active exception vector table.
	RemapVectors(addr uint32)
	// Barrier completes outstanding memory accesses and flushes the pipeline.
	Barrier()
	// Quiesce stops SysTick and disables and clears pending NVIC lines so the
	// application starts without the bootloader's interrupt sources armed.
	Quiesce()
	// Jump loads MSP from word 0 of the table at addr and branches to word 1
	// without touching the stack in between.
	Jump(addr uint32)
}

// Unit performs the transfers for one layout.
type Unit struct {
	m     Machine
	table region.Region // application vector table in flash
	ram   region.Region // SRAM staging copy
}

// New binds a unit to its machine. table and ram must each cover
// l.VectorTableSize() bytes at l.ApplVectorTableAddr and l.VectorRAMAddr.
func New(l types.Layout, m Machine, table, ram region.Region) (*Unit, error) {
	n := l.VectorTableSize()
	switch {
	case m == nil:
		return nil, errcode.InvalidParams
	case table == nil || !region.Contains(table, l.ApplVectorTableAddr, n):
		return nil, &errcode.E{C: errcode.OutOfBounds, Op: "handoff", Msg: "vector table region"}
	case ram == nil || !region.Contains(ram, l.VectorRAMAddr, n):
		return nil, &errcode.E{C: errcode.OutOfBounds, Op: "handoff", Msg: "vector ram region"}
	}
	t, _ := region.At(table, l.ApplVectorTableAddr, n)
	r, _ := region.At(ram, l.VectorRAMAddr, n)
	return &Unit{m: m, table: t, ram: r}, nil
}

// EnterBootloader resets into the bootloader. Callers signal the update
// request and de-initialise the board first.
func (u *Unit) EnterBootloader() {
	u.m.SoftwareReset()
	for {
	}
}

// EnterApplication copies the application's vector table to SRAM, makes it
// active and branches to the reset handler. If the copy fails the staging
// table cannot be trusted, so the device resets instead of jumping.
func (u *Unit) EnterApplication() {
	if err := region.Copy(u.ram, u.table, u.table.Size()); err != nil {
		u.EnterBootloader()
	}
	u.m.RemapVectors(u.ram.Base())
	u.m.Barrier()
	u.m.Quiesce()
	u.m.Jump(u.ram.Base())
	for {
	}
}
