// Package imagefile is the host side of the image headers: load a raw
// binary as it will sit in flash, inspect and stamp its header, and check
// it exactly the way the bootloader will.
package imagefile

import (
	"fmt"
	"io"
	"os"

	"bootcode-go/errcode"
	"bootcode-go/region"
	"bootcode-go/services/image"
	"bootcode-go/types"
)

type Kind uint8

const (
	KindAppl Kind = iota
	KindBoot
)

func (k Kind) String() string {
	if k == KindBoot {
		return "boot"
	}
	return "appl"
}

// File is a binary image placed at its flash address. Bytes past the end
// of the input read as erased flash.
type File struct {
	Kind   Kind
	Layout types.Layout
	Base   uint32
	Len    int

	mem *region.Mem
	v   *image.Validator
}

// FlashBase is where a bootloader binary for l starts: BootInfo rounded
// down to 64 KiB.
func FlashBase(l types.Layout) uint32 { return l.BootInfoAddr &^ 0xffff }

// Load places data for kind. Application binaries start at ApplInfoAddr;
// bootloader binaries at base.
func Load(data []byte, l types.Layout, kind Kind, base uint32) (*File, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	f := &File{Kind: kind, Layout: l, Len: len(data)}
	var boot, appl region.Region
	switch kind {
	case KindAppl:
		f.Base = l.ApplInfoAddr
		area := int(l.CRCEnd() - l.ApplInfoAddr)
		if len(data) > int(l.ApplAreaSize()) {
			return nil, &errcode.E{C: errcode.OutOfBounds, Op: "load", Msg: fmt.Sprintf("%d bytes exceed the %d byte application area", len(data), l.ApplAreaSize())}
		}
		if len(data) < int(l.ApplVectorTableAddr-l.ApplInfoAddr)+8 {
			return nil, &errcode.E{C: errcode.ShortImage, Op: "load", Msg: "image ends before the reset vector"}
		}
		f.mem = erased(f.Base, area, data)
		appl = f.mem
	case KindBoot:
		f.Base = base
		end := l.BootInfoAddr + types.BootInfoSize
		if base > l.BootInfoAddr {
			return nil, &errcode.E{C: errcode.InvalidParams, Op: "load", Msg: "base above boot_info"}
		}
		if uint64(base)+uint64(len(data)) < uint64(end) {
			return nil, &errcode.E{C: errcode.ShortImage, Op: "load", Msg: "image ends before boot_info"}
		}
		f.mem = erased(f.Base, len(data), data)
		boot = f.mem
		appl = erased(l.ApplInfoAddr, int(l.CRCEnd()-l.ApplInfoAddr), nil)
	default:
		return nil, errcode.InvalidParams
	}
	v, err := image.New(l, boot, appl, nil)
	if err != nil {
		return nil, err
	}
	f.v = v
	return f, nil
}

func erased(base uint32, size int, data []byte) *region.Mem {
	b := make([]byte, size)
	n := copy(b, data)
	for i := n; i < size; i++ {
		b[i] = 0xff
	}
	return region.NewMemFrom(base, b)
}

// ReadFile loads a binary from disk.
func ReadFile(path string, l types.Layout, kind Kind, base uint32) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Load(data, l, kind, base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Bytes returns the image as it should be written back: the input length,
// header included.
func (f *File) Bytes() []byte { return f.mem.Bytes()[:f.Len] }

func (f *File) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f.Bytes())
	return int64(n), err
}

// WriteFile writes the image to path, replacing it atomically.
func (f *File) WriteFile(path string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, f.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Info is a decoded header with the bootloader's verdict.
type Info struct {
	Kind      Kind
	Magic     uint16
	MagicOK   bool
	Version   uint32
	ID        string
	CRC       uint32 // as stamped
	Computed  uint32 // as the bootloader would compute it
	IgnoreCRC bool
	Err       error // nil when the bootloader would start it
}

// Info decodes the header of f.
func (f *File) Info() (Info, error) {
	in := Info{Kind: f.Kind}
	if f.Kind == KindBoot {
		bi, err := f.v.BootInfo()
		if err != nil {
			return in, err
		}
		in.Magic, in.Version, in.ID = bi.Magic, bi.Version, bi.ID()
		in.MagicOK = f.v.IsBootInfoSane()
		if !in.MagicOK {
			in.Err = errcode.BadMagic
		}
		return in, nil
	}
	ai, err := f.v.ApplInfo()
	if err != nil {
		return in, err
	}
	in.Magic, in.Version, in.ID = ai.Magic, ai.Version, ai.ID()
	in.CRC, in.IgnoreCRC = ai.CRC, ai.CRCIgnored()
	in.MagicOK = f.v.IsApplInfoSane()
	if in.Computed, err = f.v.ComputeApplCRC(); err != nil {
		return in, err
	}
	in.Err = f.v.Check()
	return in, nil
}

// Verify reports whether the bootloader would accept f.
func (f *File) Verify() error {
	in, err := f.Info()
	if err != nil {
		return err
	}
	return in.Err
}

// Stamp writes the header described by s, including the CRC for
// application images.
func (f *File) Stamp(s StampSpec) (Info, error) {
	if err := s.Validate(); err != nil {
		return Info{}, err
	}
	if f.Kind == KindBoot {
		bi := types.BootInfo{Version: s.Version}
		types.SetID(&bi.IDString, s.ID)
		if _, err := f.v.StampBoot(bi); err != nil {
			return Info{}, err
		}
		return f.Info()
	}
	ai := types.ApplInfo{Version: s.Version}
	types.SetID(&ai.IDString, s.ID)
	if s.IgnoreCRC {
		ai.IgnoreCRC = types.IgnoreCRCKey
	}
	if _, err := f.v.StampAppl(ai); err != nil {
		return Info{}, err
	}
	return f.Info()
}
