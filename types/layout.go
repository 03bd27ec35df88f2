package types

import "bootcode-go/errcode"

// Layout is the address contract between the two independently linked
// images and the flashing tool. Both images must be built with the same one.
type Layout struct {
	Name string `yaml:"name"`

	BootInfoAddr        uint32 `yaml:"boot_info"`
	ApplInfoAddr        uint32 `yaml:"appl_info"`
	ApplVectorTableAddr uint32 `yaml:"appl_vector_table"`
	ApplEndAddr         uint32 `yaml:"appl_end"` // last byte of the application flash area

	// VectorTableEntries counts words in the vector table, including the
	// initial stack pointer. Must match the application's startup table.
	VectorTableEntries int `yaml:"vector_table_entries"`

	VectorRAMAddr uint32 `yaml:"vector_ram"` // SRAM staging copy of the vector table
	BootDataAddr  uint32 `yaml:"boot_data"`  // persistent BootData block
}

// STM32F0 is the canonical layout: 8 KiB bootloader, 8 KiB application,
// vector copy at the start of SRAM so MEM_MODE=SRAM aliases it at 0.
var STM32F0 = Layout{
	Name:                "stm32f0",
	BootInfoAddr:        0x080000bc,
	ApplInfoAddr:        0x08002000,
	ApplVectorTableAddr: 0x08002040,
	ApplEndAddr:         0x08003fff,
	VectorTableEntries:  47,
	VectorRAMAddr:       0x20000000,
	BootDataAddr:        0x200000c0,
}

// RP2040 keeps the bootloader in the first 64 KiB of XIP flash (after
// boot2) and relocates through VTOR, which needs a 256-byte aligned table.
var RP2040 = Layout{
	Name:                "rp2040",
	BootInfoAddr:        0x10000100,
	ApplInfoAddr:        0x10010000,
	ApplVectorTableAddr: 0x10010100,
	ApplEndAddr:         0x1003ffff,
	VectorTableEntries:  48,
	VectorRAMAddr:       0x20041f00,
	BootDataAddr:        0x20041ff8,
}

// VectorTableSize is the byte size of the vector table copy.
func (l Layout) VectorTableSize() uint32 { return uint32(l.VectorTableEntries) * 4 }

// CRCStart is the address of ApplInfo.Version, the first CRC-covered word.
func (l Layout) CRCStart() uint32 { return l.ApplInfoAddr + ApplInfoOffVersion }

// CRCEnd is one past the last CRC-covered byte: ApplEnd rounded up to a word.
func (l Layout) CRCEnd() uint32 { return (l.ApplEndAddr &^ 3) + 4 }

// ApplAreaSize is the size of [ApplInfoAddr, ApplEndAddr].
func (l Layout) ApplAreaSize() uint32 { return l.ApplEndAddr - l.ApplInfoAddr + 1 }

// Validate checks the contract is self-consistent.
func (l Layout) Validate() error {
	bad := func(msg string) error {
		return &errcode.E{C: errcode.InvalidLayout, Op: "layout", Msg: msg}
	}
	switch {
	case l.VectorTableEntries < 2:
		return bad("vector table needs at least sp and reset entries")
	case l.ApplInfoAddr&3 != 0 || l.ApplVectorTableAddr&3 != 0 || l.VectorRAMAddr&3 != 0 || l.BootDataAddr&3 != 0:
		return bad("addresses must be word aligned")
	case l.ApplEndAddr <= l.ApplInfoAddr:
		return bad("appl_end before appl_info")
	case l.ApplVectorTableAddr < l.ApplInfoAddr+ApplInfoSize:
		return bad("vector table overlaps appl_info")
	case l.ApplVectorTableAddr+l.VectorTableSize()-1 > l.ApplEndAddr:
		return bad("vector table runs past appl_end")
	case overlaps(l.BootInfoAddr, BootInfoSize, l.ApplInfoAddr, l.ApplAreaSize()):
		return bad("boot_info inside the application area")
	case overlaps(l.VectorRAMAddr, l.VectorTableSize(), l.BootDataAddr, BootDataSize):
		return bad("boot_data overlaps vector ram")
	}
	return nil
}

func overlaps(a, alen, b, blen uint32) bool {
	return a < b+blen && b < a+alen
}
