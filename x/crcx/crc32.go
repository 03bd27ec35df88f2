// Package crcx implements CRC-32/MPEG-2 as computed by the STM32 CRC unit:
// polynomial 0x04C11DB7, initial value 0xFFFFFFFF, no reflection, no final
// XOR, fed one 32-bit word at a time, MSB first.
package crcx

import "encoding/binary"

const (
	Polynomial uint32 = 0x04c11db7
	Init       uint32 = 0xffffffff
	Size              = 4
)

// UpdateWord feeds one 32-bit word.
func UpdateWord(crc, w uint32) uint32 {
	crc ^= w
	for i := 0; i < 32; i++ {
		if crc&0x80000000 != 0 {
			crc = crc<<1 ^ Polynomial
		} else {
			crc <<= 1
		}
	}
	return crc
}

// UpdateByte feeds one byte (byte-oriented variant of the same CRC).
func UpdateByte(crc uint32, b byte) uint32 {
	crc ^= uint32(b) << 24
	for i := 0; i < 8; i++ {
		if crc&0x80000000 != 0 {
			crc = crc<<1 ^ Polynomial
		} else {
			crc <<= 1
		}
	}
	return crc
}

// UpdateWords feeds p as little-endian words as they sit in memory.
// Trailing bytes that do not fill a word are ignored; use Digest for those.
func UpdateWords(crc uint32, p []byte) uint32 {
	for len(p) >= 4 {
		crc = UpdateWord(crc, binary.LittleEndian.Uint32(p))
		p = p[4:]
	}
	return crc
}

// Checksum returns the word-fed CRC of p from Init.
func Checksum(p []byte) uint32 {
	d := New()
	d.Write(p)
	return d.Sum32()
}

// Digest is a hash.Hash32 over little-endian words. A trailing partial
// word is zero-padded when the sum is taken.
type Digest struct {
	crc  uint32
	tail [4]byte
	n    int
}

func New() *Digest { return &Digest{crc: Init} }

func (d *Digest) Size() int      { return Size }
func (d *Digest) BlockSize() int { return 4 }
func (d *Digest) Reset()         { *d = Digest{crc: Init} }

func (d *Digest) Write(p []byte) (int, error) {
	n := len(p)
	if d.n > 0 {
		k := copy(d.tail[d.n:], p)
		d.n += k
		p = p[k:]
		if d.n < 4 {
			return n, nil
		}
		d.crc = UpdateWord(d.crc, binary.LittleEndian.Uint32(d.tail[:]))
		d.n = 0
	}
	full := len(p) &^ 3
	d.crc = UpdateWords(d.crc, p[:full])
	d.n = copy(d.tail[:], p[full:])
	return n, nil
}

func (d *Digest) Sum32() uint32 {
	crc := d.crc
	if d.n > 0 {
		var w [4]byte
		copy(w[:], d.tail[:d.n])
		crc = UpdateWord(crc, binary.LittleEndian.Uint32(w[:]))
	}
	return crc
}

func (d *Digest) Sum(in []byte) []byte {
	return binary.BigEndian.AppendUint32(in, d.Sum32())
}
