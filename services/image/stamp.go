package image

import (
	"bootcode-go/errcode"
	"bootcode-go/region"
	"bootcode-go/types"
)

// StampAppl writes ai into the application header with this build's magic,
// then computes and writes the CRC. With ai.IgnoreCRC set to the override
// key the real CRC is still written. Returns the header as stamped.
func (v *Validator) StampAppl(ai types.ApplInfo) (types.ApplInfo, error) {
	ai.Magic = types.ApplMagic
	ai.CRC = 0
	if err := v.writeAppl(ai); err != nil {
		return ai, err
	}
	crc, err := v.ComputeApplCRC()
	if err != nil {
		return ai, err
	}
	ai.CRC = crc
	off := v.applOff(v.layout.ApplInfoAddr) + types.ApplInfoOffCRC
	return ai, errcode.Wrap("stamp crc", region.PutU32(v.appl, off, crc))
}

// StampBoot writes bi into the bootloader header with this build's magic.
func (v *Validator) StampBoot(bi types.BootInfo) (types.BootInfo, error) {
	if v.boot == nil {
		return bi, errcode.InvalidParams
	}
	bi.Magic = types.BootMagic
	var buf [types.BootInfoSize]byte
	bi.Encode(buf[:])
	_, err := v.boot.WriteAt(buf[:], int64(v.layout.BootInfoAddr-v.boot.Base()))
	return bi, errcode.Wrap("stamp boot_info", err)
}

func (v *Validator) writeAppl(ai types.ApplInfo) error {
	var buf [types.ApplInfoSize]byte
	ai.Encode(buf[:])
	_, err := v.appl.WriteAt(buf[:], v.applOff(v.layout.ApplInfoAddr))
	return errcode.Wrap("stamp appl_info", err)
}
