package image

import (
	"errors"
	"testing"

	"bootcode-go/errcode"
	"bootcode-go/region"
	"bootcode-go/services/bootdata"
	"bootcode-go/types"
)

type rig struct {
	l     types.Layout
	boot  *region.Mem
	flash *region.Mem
	state *bootdata.Store
	v     *Validator
}

// newRig lays out an STM32F0 image: erased flash, a vector table and some
// code bytes, header stamped with a matching CRC.
func newRig(t *testing.T) *rig {
	t.Helper()
	l := types.STM32F0
	r := &rig{
		l:     l,
		boot:  region.NewMem(0x08000000, 0x2000),
		flash: region.NewMem(l.ApplInfoAddr, l.CRCEnd()-l.ApplInfoAddr),
	}
	region.Fill(r.flash, 0xff)
	vt, _ := region.At(r.flash, l.ApplVectorTableAddr, l.VectorTableSize())
	region.PutU32(vt, 0, 0x20002000)
	region.PutU32(vt, 4, l.ApplVectorTableAddr+l.VectorTableSize()+1)
	for i := uint32(0x100); i < 0x400; i++ {
		r.flash.Bytes()[i] = byte(i * 31)
	}
	var err error
	r.state, err = bootdata.New(region.NewMem(l.BootDataAddr, types.BootDataSize))
	if err != nil {
		t.Fatal(err)
	}
	r.v, err = New(l, r.boot, r.flash, r.state)
	if err != nil {
		t.Fatal(err)
	}
	ai := types.ApplInfo{Version: 1}
	types.SetID(&ai.IDString, "project_template appl")
	if _, err := r.v.StampAppl(ai); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestStampedImageIsValid(t *testing.T) {
	r := newRig(t)
	if !r.v.IsApplInfoSane() {
		t.Fatal("stamped header not sane")
	}
	if !r.v.IsApplValid() {
		t.Fatalf("stamped image invalid: %v", r.v.Check())
	}
	ai, _ := r.v.ApplInfo()
	crc, _ := r.state.ApplCRC()
	if crc != ai.CRC {
		t.Fatalf("BootData.appl_crc = %#x, header crc = %#x", crc, ai.CRC)
	}
}

func TestSingleBitCorruptionIsDetected(t *testing.T) {
	r := newRig(t)
	start := r.l.CRCStart() - r.l.ApplInfoAddr
	end := r.l.CRCEnd() - r.l.ApplInfoAddr
	b := r.flash.Bytes()
	// Every bit of the version/id words and a stride across the rest.
	for off := start; off < end; off++ {
		if off >= start+64 && off%61 != 0 {
			continue
		}
		for bit := 0; bit < 8; bit++ {
			b[off] ^= 1 << bit
			if err := r.v.Check(); !errors.Is(err, errcode.CRCMismatch) {
				t.Fatalf("flip at %#x bit %d: got %v", off, bit, err)
			}
			b[off] ^= 1 << bit
		}
	}
	if !r.v.IsApplValid() {
		t.Fatal("restored image should validate")
	}
}

func TestIgnoreCRCOverridesCorruption(t *testing.T) {
	r := newRig(t)
	r.flash.Bytes()[0x200] ^= 0x10
	if r.v.IsApplValid() {
		t.Fatal("corrupted image passed")
	}
	region.PutU16(r.flash, types.ApplInfoOffIgnoreCRC, types.IgnoreCRCKey)
	if !r.v.IsApplValid() {
		t.Fatal("override sentinel must bypass the CRC")
	}
	// The diagnostic CRC is still recorded.
	crc, _ := r.state.ApplCRC()
	want, _ := r.v.ComputeApplCRC()
	if crc != want {
		t.Fatalf("appl_crc %#x want %#x", crc, want)
	}
}

func TestHeaderFieldsOutsideCRCRange(t *testing.T) {
	r := newRig(t)
	before, _ := r.v.ComputeApplCRC()
	region.PutU16(r.flash, types.ApplInfoOffIgnoreCRC, 0x1234)
	region.PutU32(r.flash, types.ApplInfoOffCRC, 0)
	after, _ := r.v.ComputeApplCRC()
	if before != after {
		t.Fatal("magic/ignore_crc/crc must not feed the CRC")
	}
}

func TestBadMagicIsStructuralFailure(t *testing.T) {
	r := newRig(t)
	region.PutU32(r.state.Region(), types.BootDataOffApplCRC, 0x5a5a5a5a)
	for _, m := range []uint16{0xffff, 0, types.MagicFor(types.ApplTag, types.ApplInfoSize+4), types.BootMagic} {
		region.PutU16(r.flash, types.ApplInfoOffMagic, m)
		if r.v.IsApplInfoSane() {
			t.Fatalf("magic %#04x accepted", m)
		}
		if err := r.v.Check(); err != errcode.BadMagic {
			t.Fatalf("magic %#04x: got %v", m, err)
		}
	}
	if crc, _ := r.state.ApplCRC(); crc != 0x5a5a5a5a {
		t.Fatal("CRC must not be computed for an insane header")
	}
}

func TestErasedFlashIsInvalid(t *testing.T) {
	r := newRig(t)
	region.Fill(r.flash, 0xff)
	if r.v.IsApplValid() {
		t.Fatal("erased flash validated")
	}
}

func TestBootInfo(t *testing.T) {
	r := newRig(t)
	if r.v.IsBootInfoSane() {
		t.Fatal("blank boot_info sane")
	}
	bi := types.BootInfo{Version: 1}
	types.SetID(&bi.IDString, "project_template boot")
	if _, err := r.v.StampBoot(bi); err != nil {
		t.Fatal(err)
	}
	if !r.v.IsBootInfoSane() {
		t.Fatal("stamped boot_info not sane")
	}
	got, _ := r.v.BootInfo()
	if got.ID() != "project_template boot" || got.Version != 1 {
		t.Fatalf("boot info %+v", got)
	}
	if off := r.l.BootInfoAddr - 0x08000000; r.boot.Bytes()[off] != 0x28 {
		t.Fatal("boot_info not at its fixed address")
	}
}

func TestNewChecksRegions(t *testing.T) {
	l := types.STM32F0
	short := region.NewMem(l.ApplInfoAddr, l.ApplAreaSize()-4)
	if _, err := New(l, nil, short, nil); !errors.Is(err, errcode.OutOfBounds) {
		t.Fatalf("short flash: %v", err)
	}
	wrongBoot := region.NewMem(0x08001000, 0x100)
	full := region.NewMem(l.ApplInfoAddr, l.CRCEnd()-l.ApplInfoAddr)
	if _, err := New(l, wrongBoot, full, nil); !errors.Is(err, errcode.OutOfBounds) {
		t.Fatalf("boot region: %v", err)
	}
	bad := l
	bad.VectorTableEntries = 0
	if _, err := New(bad, nil, full, nil); !errors.Is(err, errcode.InvalidLayout) {
		t.Fatalf("layout: %v", err)
	}
	v, err := New(l, nil, full, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.StampBoot(types.BootInfo{}); err != errcode.InvalidParams {
		t.Fatal("StampBoot without a boot region")
	}
	if v.IsBootInfoSane() {
		t.Fatal("no boot region cannot be sane")
	}
	// Without a BootData store the check still works.
	if _, err := v.StampAppl(types.ApplInfo{}); err != nil || !v.IsApplValid() {
		t.Fatal("stateless validator")
	}
}
