//go:build tinygo

package region

import "unsafe"

// Mapped is a Region over real memory at a fixed address: flash through the
// bus, or an SRAM section the startup code leaves alone.
type Mapped struct {
	base uint32
	mem  []byte
}

var _ Region = (*Mapped)(nil)

// Map returns the memory at [base, base+size) as a Region.
func Map(base, size uint32) *Mapped {
	return &Mapped{
		base: base,
		mem:  unsafe.Slice((*byte)(unsafe.Pointer(uintptr(base))), size),
	}
}

func (m *Mapped) Base() uint32 { return m.base }
func (m *Mapped) Size() uint32 { return uint32(len(m.mem)) }

func (m *Mapped) ReadAt(p []byte, off int64) (int, error) {
	if err := Check(m.Size(), off, len(p)); err != nil {
		return 0, err
	}
	return copy(p, m.mem[off:]), nil
}

func (m *Mapped) WriteAt(p []byte, off int64) (int, error) {
	if err := Check(m.Size(), off, len(p)); err != nil {
		return 0, err
	}
	return copy(m.mem[off:], p), nil
}
