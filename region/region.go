// Package region describes fixed-address memory areas as an (address, size)
// descriptor with bounds-checked accessors. Firmware maps regions onto real
// SRAM/flash; host builds and tests back them with plain byte slices.
//
// Multi-byte accessors are little-endian, matching the Cortex-M targets.
package region

import (
	"encoding/binary"

	"bootcode-go/errcode"
)

// Region is a bounded window onto memory at a fixed address.
// Offsets are relative to Base. Accesses that do not fit entirely inside
// the region fail with errcode.OutOfBounds and transfer nothing.
type Region interface {
	Base() uint32
	Size() uint32
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
}

// chunk bounds stack buffers used by Copy/Fill; no heap on the boot path.
const chunk = 64

// Check reports whether [off, off+n) fits in a region of size.
func Check(size uint32, off int64, n int) error {
	if off < 0 || n < 0 || uint64(off)+uint64(n) > uint64(size) {
		return errcode.OutOfBounds
	}
	return nil
}

// Contains reports whether [addr, addr+n) lies inside r.
func Contains(r Region, addr uint32, n uint32) bool {
	if addr < r.Base() {
		return false
	}
	return uint64(addr-r.Base())+uint64(n) <= uint64(r.Size())
}

func U16(r Region, off int64) (uint16, error) {
	var b [2]byte
	if _, err := r.ReadAt(b[:], off); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func U32(r Region, off int64) (uint32, error) {
	var b [4]byte
	if _, err := r.ReadAt(b[:], off); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func PutU16(r Region, off int64, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := r.WriteAt(b[:], off)
	return err
}

func PutU32(r Region, off int64, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := r.WriteAt(b[:], off)
	return err
}

// Fill writes v over the whole region.
func Fill(r Region, v byte) error {
	var buf [chunk]byte
	for i := range buf {
		buf[i] = v
	}
	size := int64(r.Size())
	for off := int64(0); off < size; off += chunk {
		n := min(int64(chunk), size-off)
		if _, err := r.WriteAt(buf[:n], off); err != nil {
			return err
		}
	}
	return nil
}

// Zero clears the whole region.
func Zero(r Region) error { return Fill(r, 0) }

// Copy moves n bytes from the start of src to the start of dst.
// Both regions are checked before anything is written.
func Copy(dst, src Region, n uint32) error {
	if n > src.Size() || n > dst.Size() {
		return errcode.OutOfBounds
	}
	var buf [chunk]byte
	for off := uint32(0); off < n; off += chunk {
		k := min(uint32(chunk), n-off)
		if _, err := src.ReadAt(buf[:k], int64(off)); err != nil {
			return err
		}
		if _, err := dst.WriteAt(buf[:k], int64(off)); err != nil {
			return err
		}
	}
	return nil
}

// ---- Views ----

type sub struct {
	r    Region
	off  uint32
	size uint32
}

// Sub returns the window [off, off+size) of r.
func Sub(r Region, off, size uint32) (Region, error) {
	if err := Check(r.Size(), int64(off), int(size)); err != nil {
		return nil, err
	}
	return &sub{r: r, off: off, size: size}, nil
}

// At returns the window [addr, addr+size) of r by absolute address.
func At(r Region, addr, size uint32) (Region, error) {
	if !Contains(r, addr, size) {
		return nil, errcode.OutOfBounds
	}
	return Sub(r, addr-r.Base(), size)
}

func (s *sub) Base() uint32 { return s.r.Base() + s.off }
func (s *sub) Size() uint32 { return s.size }

func (s *sub) ReadAt(p []byte, off int64) (int, error) {
	if err := Check(s.size, off, len(p)); err != nil {
		return 0, err
	}
	return s.r.ReadAt(p, off+int64(s.off))
}

func (s *sub) WriteAt(p []byte, off int64) (int, error) {
	if err := Check(s.size, off, len(p)); err != nil {
		return 0, err
	}
	return s.r.WriteAt(p, off+int64(s.off))
}

type readOnly struct{ Region }

// ReadOnly wraps r so that writes fail with errcode.ReadOnly.
func ReadOnly(r Region) Region { return readOnly{r} }

func (readOnly) WriteAt([]byte, int64) (int, error) { return 0, errcode.ReadOnly }
