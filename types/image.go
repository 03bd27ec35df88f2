package types

import "encoding/binary"

// ---- Image headers (bit-identical between bootloader, application and imgtool) ----

// IDStringLen is the fixed size of the textual id carried by both headers.
const IDStringLen = 30

// Magic tags. The low byte of a magic is the structure size, so a header
// written against a different layout fails the magic check.
const (
	BootTag = 0xa4
	ApplTag = 0x61
)

// BootInfo identifies the bootloader image.
type BootInfo struct {
	Magic    uint16
	Version  uint32
	IDString [IDStringLen]byte
}

// BootInfo byte offsets. Natural alignment pads magic to 4 and the struct to 40.
const (
	BootInfoOffMagic   = 0
	BootInfoOffVersion = 4
	BootInfoOffID      = 8
	BootInfoSize       = 40
)

// ApplInfo identifies the application image.
type ApplInfo struct {
	Magic     uint16
	IgnoreCRC uint16 // IgnoreCRCKey skips the CRC check
	CRC       uint32 // CRC-32/MPEG-2 from Version to the application end
	Version   uint32
	IDString  [IDStringLen]byte
}

// ApplInfo byte offsets. The struct is padded to 44.
const (
	ApplInfoOffMagic     = 0
	ApplInfoOffIgnoreCRC = 2
	ApplInfoOffCRC       = 4
	ApplInfoOffVersion   = 8
	ApplInfoOffID        = 12
	ApplInfoSize         = 44
)

const (
	BootMagic uint16 = BootTag<<8 | BootInfoSize
	ApplMagic uint16 = ApplTag<<8 | ApplInfoSize

	// IgnoreCRCKey is a development-only bypass baked into the image header.
	// Erased flash reads 0xffff and never matches it.
	IgnoreCRCKey uint16 = 0xb0c1
)

// MagicFor returns tag<<8 | size.
func MagicFor(tag uint8, size int) uint16 { return uint16(tag)<<8 | uint16(size&0xff) }

// DecodeBootInfo reads a BootInfo from b (len >= BootInfoSize).
func DecodeBootInfo(b []byte) (BootInfo, bool) {
	var bi BootInfo
	if len(b) < BootInfoSize {
		return bi, false
	}
	bi.Magic = binary.LittleEndian.Uint16(b[BootInfoOffMagic:])
	bi.Version = binary.LittleEndian.Uint32(b[BootInfoOffVersion:])
	copy(bi.IDString[:], b[BootInfoOffID:BootInfoOffID+IDStringLen])
	return bi, true
}

// Encode writes the header into b (len >= BootInfoSize). Padding is zeroed.
func (bi *BootInfo) Encode(b []byte) bool {
	if len(b) < BootInfoSize {
		return false
	}
	clear(b[:BootInfoSize])
	binary.LittleEndian.PutUint16(b[BootInfoOffMagic:], bi.Magic)
	binary.LittleEndian.PutUint32(b[BootInfoOffVersion:], bi.Version)
	copy(b[BootInfoOffID:], bi.IDString[:])
	return true
}

// ID returns the id string up to the first NUL.
func (bi *BootInfo) ID() string { return cstring(bi.IDString[:]) }

// DecodeApplInfo reads an ApplInfo from b (len >= ApplInfoSize).
func DecodeApplInfo(b []byte) (ApplInfo, bool) {
	var ai ApplInfo
	if len(b) < ApplInfoSize {
		return ai, false
	}
	ai.Magic = binary.LittleEndian.Uint16(b[ApplInfoOffMagic:])
	ai.IgnoreCRC = binary.LittleEndian.Uint16(b[ApplInfoOffIgnoreCRC:])
	ai.CRC = binary.LittleEndian.Uint32(b[ApplInfoOffCRC:])
	ai.Version = binary.LittleEndian.Uint32(b[ApplInfoOffVersion:])
	copy(ai.IDString[:], b[ApplInfoOffID:ApplInfoOffID+IDStringLen])
	return ai, true
}

// Encode writes the header into b (len >= ApplInfoSize). Padding is zeroed.
func (ai *ApplInfo) Encode(b []byte) bool {
	if len(b) < ApplInfoSize {
		return false
	}
	clear(b[:ApplInfoSize])
	binary.LittleEndian.PutUint16(b[ApplInfoOffMagic:], ai.Magic)
	binary.LittleEndian.PutUint16(b[ApplInfoOffIgnoreCRC:], ai.IgnoreCRC)
	binary.LittleEndian.PutUint32(b[ApplInfoOffCRC:], ai.CRC)
	binary.LittleEndian.PutUint32(b[ApplInfoOffVersion:], ai.Version)
	copy(b[ApplInfoOffID:], ai.IDString[:])
	return true
}

// ID returns the id string up to the first NUL.
func (ai *ApplInfo) ID() string { return cstring(ai.IDString[:]) }

// CRCIgnored reports whether the header carries the development override.
func (ai *ApplInfo) CRCIgnored() bool { return ai.IgnoreCRC == IgnoreCRCKey }

// SetID copies s into a NUL-padded id field, truncating to leave one NUL.
func SetID(dst *[IDStringLen]byte, s string) {
	clear(dst[:])
	if len(s) > IDStringLen-1 {
		s = s[:IDStringLen-1]
	}
	copy(dst[:], s)
}

func cstring(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
