package imagefile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bootcode-go/errcode"
	"bootcode-go/types"
)

// applBin builds a linked-looking application binary: a zeroed header
// placeholder, a vector table and some code.
func applBin(l types.Layout, code int) []byte {
	vt := int(l.ApplVectorTableAddr - l.ApplInfoAddr)
	b := make([]byte, vt+int(l.VectorTableSize())+code)
	for i := vt + int(l.VectorTableSize()); i < len(b); i++ {
		b[i] = byte(i * 7)
	}
	return b
}

func TestStampThenVerify(t *testing.T) {
	for _, l := range []types.Layout{types.STM32F0, types.RP2040} {
		t.Run(l.Name, func(t *testing.T) {
			f, err := Load(applBin(l, 1001), l, KindAppl, 0)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.Verify(); !errors.Is(err, errcode.BadMagic) {
				t.Fatalf("unstamped: %v", err)
			}
			in, err := f.Stamp(StampSpec{Version: 3, ID: "project_template appl"})
			if err != nil {
				t.Fatal(err)
			}
			if in.Err != nil || !in.MagicOK || in.CRC != in.Computed || in.IgnoreCRC {
				t.Fatalf("info = %+v", in)
			}
			if in.ID != "project_template appl" || in.Version != 3 {
				t.Fatalf("info = %+v", in)
			}

			// Round trip through the written bytes.
			g, err := Load(f.Bytes(), l, KindAppl, 0)
			if err != nil {
				t.Fatal(err)
			}
			if err := g.Verify(); err != nil {
				t.Fatalf("reloaded: %v", err)
			}
			if len(g.Bytes()) != 1001+int(l.ApplVectorTableAddr-l.ApplInfoAddr+l.VectorTableSize()) {
				t.Fatal("stamping changed the image length")
			}
		})
	}
}

func TestTamperedImageFailsVerify(t *testing.T) {
	l := types.STM32F0
	f, _ := Load(applBin(l, 256), l, KindAppl, 0)
	if _, err := f.Stamp(StampSpec{Version: 1, ID: "x"}); err != nil {
		t.Fatal(err)
	}
	b := f.Bytes()
	b[len(b)-1] ^= 0x80
	if err := f.Verify(); !errors.Is(err, errcode.CRCMismatch) {
		t.Fatalf("got %v", err)
	}
}

func TestIgnoreCRCNeedsDev(t *testing.T) {
	l := types.STM32F0
	f, _ := Load(applBin(l, 64), l, KindAppl, 0)
	if _, err := f.Stamp(StampSpec{IgnoreCRC: true}); err == nil {
		t.Fatal("ignore_crc accepted without dev")
	}
	in, err := f.Stamp(StampSpec{IgnoreCRC: true, Dev: true})
	if err != nil {
		t.Fatal(err)
	}
	if !in.IgnoreCRC || in.CRC != in.Computed {
		t.Fatalf("info = %+v", in)
	}
	b := f.Bytes()
	b[len(b)-1] ^= 1
	if err := f.Verify(); err != nil {
		t.Fatalf("override image rejected: %v", err)
	}
}

func TestLoadLimits(t *testing.T) {
	l := types.STM32F0
	if _, err := Load(make([]byte, l.ApplAreaSize()+1), l, KindAppl, 0); !errors.Is(err, errcode.OutOfBounds) {
		t.Fatalf("oversize: %v", err)
	}
	if _, err := Load(make([]byte, 0x40), l, KindAppl, 0); !errors.Is(err, errcode.ShortImage) {
		t.Fatalf("short: %v", err)
	}
	if _, err := Load(make([]byte, 0x80), l, KindBoot, FlashBase(l)); !errors.Is(err, errcode.ShortImage) {
		t.Fatalf("short boot: %v", err)
	}
	if _, err := Load(make([]byte, 0x1000), l, KindBoot, l.BootInfoAddr+4); !errors.Is(err, errcode.InvalidParams) {
		t.Fatalf("base: %v", err)
	}
}

func TestStampBoot(t *testing.T) {
	l := types.STM32F0
	f, err := Load(make([]byte, 0x400), l, KindBoot, FlashBase(l))
	if err != nil {
		t.Fatal(err)
	}
	in, err := f.Stamp(StampSpec{Version: 2, ID: "project_template boot"})
	if err != nil {
		t.Fatal(err)
	}
	if !in.MagicOK || in.Err != nil || in.ID != "project_template boot" {
		t.Fatalf("info = %+v", in)
	}
	off := l.BootInfoAddr - FlashBase(l)
	if got := f.Bytes()[off : off+2]; got[0] != 0x28 || got[1] != 0xa4 {
		t.Fatalf("magic bytes % x", got)
	}
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout([]byte("base: stm32f0\nname: custom\nappl_end: 0x08007fff\n"))
	if err != nil {
		t.Fatal(err)
	}
	if l.Name != "custom" || l.ApplEndAddr != 0x08007fff || l.ApplInfoAddr != types.STM32F0.ApplInfoAddr {
		t.Fatalf("layout = %+v", l)
	}
	if _, err := ParseLayout([]byte("base: stm32f0\nvector_table_entries: 0\n")); !errors.Is(err, errcode.InvalidLayout) {
		t.Fatalf("invalid layout: %v", err)
	}
	if _, err := ParseLayout([]byte("base: nosuch\n")); err == nil || !strings.Contains(err.Error(), "nosuch") {
		t.Fatalf("unknown base: %v", err)
	}
}

func TestFilesOnDisk(t *testing.T) {
	dir := t.TempDir()
	spec := filepath.Join(dir, "stamp.yaml")
	if err := os.WriteFile(spec, []byte("version: 7\nid: from yaml\nignore_crc: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadStampSpec(spec)
	if err != nil {
		t.Fatal(err)
	}
	if s.Version != 7 || s.ID != "from yaml" || !s.IgnoreCRC || s.Dev {
		t.Fatalf("spec = %+v", s)
	}
	if s.Validate() == nil {
		t.Fatal("file-borne ignore_crc must still need dev")
	}

	l := types.STM32F0
	bin := filepath.Join(dir, "appl.bin")
	if err := os.WriteFile(bin, applBin(l, 100), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := ReadFile(bin, l, KindAppl, 0)
	if err != nil {
		t.Fatal(err)
	}
	s.IgnoreCRC = false
	if _, err := f.Stamp(s); err != nil {
		t.Fatal(err)
	}
	if err := f.WriteFile(bin); err != nil {
		t.Fatal(err)
	}
	g, err := ReadFile(bin, l, KindAppl, 0)
	if err != nil {
		t.Fatal(err)
	}
	if in, _ := g.Info(); in.Err != nil || in.Version != 7 {
		t.Fatalf("info = %+v", in)
	}
}
