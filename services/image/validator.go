// Package image decides whether the flashed application may be started.
//
// Three failure classes are distinguished for diagnostics but handled the
// same way by the caller: structural (magic mismatch: absent, wrong type or
// built against another layout), integrity (CRC mismatch), and storage I/O.
package image

import (
	"bootcode-go/errcode"
	"bootcode-go/region"
	"bootcode-go/services/bootdata"
	"bootcode-go/types"
	"bootcode-go/x/crcx"
)

// Validator reads the image headers through regions and checks them
// against the build's layout.
type Validator struct {
	layout types.Layout
	boot   region.Region // BootInfo, at least types.BootInfoSize bytes
	appl   region.Region // [ApplInfoAddr, ApplEndAddr]
	state  *bootdata.Store
}

// New builds a validator. appl must cover the application area from
// ApplInfoAddr to ApplEndAddr rounded up to a word; boot must cover BootInfo.
// state may be nil (host tooling), in which case the CRC is not recorded.
func New(l types.Layout, boot, appl region.Region, state *bootdata.Store) (*Validator, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if boot != nil && !region.Contains(boot, l.BootInfoAddr, types.BootInfoSize) {
		return nil, &errcode.E{C: errcode.OutOfBounds, Op: "image", Msg: "boot_info region"}
	}
	if appl == nil || !region.Contains(appl, l.ApplInfoAddr, l.CRCEnd()-l.ApplInfoAddr) {
		return nil, &errcode.E{C: errcode.OutOfBounds, Op: "image", Msg: "application region"}
	}
	return &Validator{layout: l, boot: boot, appl: appl, state: state}, nil
}

func (v *Validator) Layout() types.Layout { return v.layout }

// BootInfo decodes the bootloader header.
func (v *Validator) BootInfo() (types.BootInfo, error) {
	var buf [types.BootInfoSize]byte
	if v.boot == nil {
		return types.BootInfo{}, errcode.InvalidParams
	}
	if _, err := v.boot.ReadAt(buf[:], int64(v.layout.BootInfoAddr-v.boot.Base())); err != nil {
		return types.BootInfo{}, err
	}
	bi, _ := types.DecodeBootInfo(buf[:])
	return bi, nil
}

// ApplInfo decodes the application header.
func (v *Validator) ApplInfo() (types.ApplInfo, error) {
	var buf [types.ApplInfoSize]byte
	if _, err := v.appl.ReadAt(buf[:], v.applOff(v.layout.ApplInfoAddr)); err != nil {
		return types.ApplInfo{}, err
	}
	ai, _ := types.DecodeApplInfo(buf[:])
	return ai, nil
}

// IsBootInfoSane reports whether BootInfo carries this build's magic.
func (v *Validator) IsBootInfoSane() bool {
	bi, err := v.BootInfo()
	return err == nil && bi.Magic == types.BootMagic
}

// IsApplInfoSane reports whether ApplInfo carries this build's magic.
func (v *Validator) IsApplInfoSane() bool {
	m, err := region.U16(v.appl, v.applOff(v.layout.ApplInfoAddr)+types.ApplInfoOffMagic)
	return err == nil && m == types.ApplMagic
}

// ComputeApplCRC runs CRC-32/MPEG-2 over the words from ApplInfo.Version to
// the end of the application area. The magic, ignore_crc and crc fields sit
// before the range, so stamping the CRC does not change it.
func (v *Validator) ComputeApplCRC() (uint32, error) {
	var buf [64]byte
	crc := crcx.Init
	off := v.applOff(v.layout.CRCStart())
	end := v.applOff(v.layout.CRCEnd())
	for off < end {
		n := min(int64(len(buf)), end-off)
		if _, err := v.appl.ReadAt(buf[:n], off); err != nil {
			return 0, err
		}
		crc = crcx.UpdateWords(crc, buf[:n])
		off += n
	}
	return crc, nil
}

// Check validates the application; nil means it may be started.
// The computed CRC is always stored in BootData, even when it mismatches.
func (v *Validator) Check() error {
	if !v.IsApplInfoSane() {
		return errcode.BadMagic
	}
	crc, err := v.ComputeApplCRC()
	if err != nil {
		return err
	}
	if v.state != nil {
		_ = v.state.SetApplCRC(crc)
	}
	ai, err := v.ApplInfo()
	if err != nil {
		return err
	}
	if crc == ai.CRC || ai.CRCIgnored() {
		return nil
	}
	return errcode.CRCMismatch
}

// IsApplValid is Check as a predicate for the decision engine.
func (v *Validator) IsApplValid() bool { return v.Check() == nil }

func (v *Validator) applOff(addr uint32) int64 { return int64(addr - v.appl.Base()) }
