package region

import (
	"errors"
	"testing"
	"time"

	"bootcode-go/errcode"
)

// fakeEEPROM emulates a 24C32: 4 KiB, 32-byte pages that wrap inside the
// page, and NACKs for busyPolls polls after each page write.
type fakeEEPROM struct {
	mem       [4096]byte
	busy      int
	busyPolls int
	writes    int
	fail      error
}

var errNack = errors.New("nack")

func (f *fakeEEPROM) Tx(addr uint16, w, r []byte) error {
	if f.fail != nil {
		return f.fail
	}
	if addr != 0x50 {
		return errNack
	}
	if f.busy > 0 {
		f.busy--
		return errNack
	}
	if len(w) < 2 {
		return nil // current-address read used for ACK polling
	}
	a := int(w[0])<<8 | int(w[1])
	if r != nil {
		for i := range r {
			r[i] = f.mem[(a+i)%len(f.mem)]
		}
		return nil
	}
	page := a &^ 31
	for i, b := range w[2:] {
		f.mem[page+(a-page+i)%32] = b
	}
	f.writes++
	f.busy = f.busyPolls
	return nil
}

func TestEEPROMRoundTripAcrossPages(t *testing.T) {
	chip := &fakeEEPROM{busyPolls: 2}
	var slept time.Duration
	e, err := NewEEPROM(chip, 0x20000000, 64, EEPROMConfig{
		Offset: 0x1c,
		Sleep:  func(d time.Duration) { slept += d },
	})
	if err != nil {
		t.Fatal(err)
	}
	data := make([]byte, 40)
	for i := range data {
		data[i] = byte(0xa0 + i)
	}
	if n, err := e.WriteAt(data, 0); err != nil || n != len(data) {
		t.Fatalf("write n=%d err=%v", n, err)
	}
	// 0x1c..0x1f, 0x20..0x3f, 0x40..0x43: three page writes.
	if chip.writes != 3 {
		t.Fatalf("page writes = %d, want 3", chip.writes)
	}
	if slept == 0 {
		t.Fatal("write cycle was not waited out")
	}
	got := make([]byte, 40)
	if _, err := e.ReadAt(got, 0); err != nil {
		t.Fatal(err)
	}
	for i := range got {
		if got[i] != data[i] {
			t.Fatalf("byte %d = %#x want %#x", i, got[i], data[i])
		}
	}
	if e.Base() != 0x20000000 || e.Size() != 64 {
		t.Fatal("descriptor wrong")
	}
}

func TestEEPROMBoundsAndErrors(t *testing.T) {
	chip := &fakeEEPROM{}
	e, _ := NewEEPROM(chip, 0, 8, EEPROMConfig{Sleep: func(time.Duration) {}})
	if _, err := e.WriteAt(make([]byte, 9), 0); !errors.Is(err, errcode.OutOfBounds) {
		t.Fatalf("want out_of_bounds, got %v", err)
	}
	chip.fail = errNack
	if _, err := e.ReadAt(make([]byte, 2), 0); errcode.Of(err) != errcode.IO {
		t.Fatalf("want io, got %v", err)
	}
	chip.fail = nil
	chip.busyPolls = 100
	if _, err := e.WriteAt([]byte{1}, 0); errcode.Of(err) != errcode.Timeout {
		t.Fatalf("want timeout, got %v", err)
	}
	if _, err := NewEEPROM(nil, 0, 8, EEPROMConfig{}); err != errcode.InvalidParams {
		t.Fatal("nil bus must be rejected")
	}
	if _, err := NewEEPROM(chip, 0, 8, EEPROMConfig{Offset: 0xfffc}); err != errcode.InvalidParams {
		t.Fatal("region past chip end must be rejected")
	}
}
