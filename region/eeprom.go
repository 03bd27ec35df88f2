package region

import (
	"time"

	"bootcode-go/errcode"

	"tinygo.org/x/drivers"
)

// EEPROM is a Region stored in a 24Cxx-style I²C EEPROM or FRAM with
// two-byte memory addressing. Boards without a retained SRAM section keep
// BootData here; the bootloader still clears it on a cold boot, so the
// reset semantics are the same as SRAM.
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when
// both w and r are provided.
type EEPROM struct {
	bus  drivers.I2C
	addr uint16

	base   uint32 // logical address reported by Base
	offset uint16 // first chip byte used by the region
	size   uint32

	pageSize int
	// Write-cycle completion is ACK polled every pollEvery, up to maxPolls.
	pollEvery time.Duration
	maxPolls  int
	sleep     func(time.Duration)

	w [2 + chunk]byte
}

var _ Region = (*EEPROM)(nil)

// EEPROMConfig configures NewEEPROM. Zero fields take the 24C32 defaults.
type EEPROMConfig struct {
	Address   uint16 // 7-bit I²C address; default 0x50
	Offset    uint16 // chip address of the first region byte
	PageSize  int    // write page size; default 32
	PollEvery time.Duration
	MaxPolls  int
	Sleep     func(time.Duration) // injected by tests
}

// NewEEPROM maps size bytes of the chip at logical address base.
func NewEEPROM(bus drivers.I2C, base, size uint32, cfg EEPROMConfig) (*EEPROM, error) {
	if bus == nil || size == 0 || uint32(cfg.Offset)+size > 1<<16 {
		return nil, errcode.InvalidParams
	}
	e := &EEPROM{
		bus:       bus,
		addr:      cfg.Address,
		base:      base,
		offset:    cfg.Offset,
		size:      size,
		pageSize:  cfg.PageSize,
		pollEvery: cfg.PollEvery,
		maxPolls:  cfg.MaxPolls,
		sleep:     cfg.Sleep,
	}
	if e.addr == 0 {
		e.addr = 0x50
	}
	if e.pageSize <= 0 || e.pageSize > chunk {
		e.pageSize = 32
	}
	if e.pollEvery <= 0 {
		e.pollEvery = time.Millisecond
	}
	if e.maxPolls <= 0 {
		e.maxPolls = 10
	}
	if e.sleep == nil {
		e.sleep = time.Sleep
	}
	return e, nil
}

func (e *EEPROM) Base() uint32 { return e.base }
func (e *EEPROM) Size() uint32 { return e.size }

func (e *EEPROM) ReadAt(p []byte, off int64) (int, error) {
	if err := Check(e.size, off, len(p)); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	a := e.offset + uint16(off)
	e.w[0], e.w[1] = byte(a>>8), byte(a)
	if err := e.bus.Tx(e.addr, e.w[:2], p); err != nil {
		return 0, &errcode.E{C: errcode.IO, Op: "eeprom read", Err: err}
	}
	return len(p), nil
}

// WriteAt splits p on page boundaries and waits out each write cycle.
func (e *EEPROM) WriteAt(p []byte, off int64) (int, error) {
	if err := Check(e.size, off, len(p)); err != nil {
		return 0, err
	}
	done := 0
	for done < len(p) {
		a := e.offset + uint16(off) + uint16(done)
		room := e.pageSize - int(a)%e.pageSize
		n := min(room, len(p)-done)

		e.w[0], e.w[1] = byte(a>>8), byte(a)
		copy(e.w[2:], p[done:done+n])
		if err := e.bus.Tx(e.addr, e.w[:2+n], nil); err != nil {
			return done, &errcode.E{C: errcode.IO, Op: "eeprom write", Err: err}
		}
		if err := e.waitReady(); err != nil {
			return done, err
		}
		done += n
	}
	return done, nil
}

// waitReady polls with a one-byte current-address read; the chip NACKs
// its address while programming.
func (e *EEPROM) waitReady() error {
	var r [1]byte
	for i := 0; i < e.maxPolls; i++ {
		e.sleep(e.pollEvery)
		if err := e.bus.Tx(e.addr, nil, r[:]); err == nil {
			return nil
		}
	}
	return &errcode.E{C: errcode.Timeout, Op: "eeprom write cycle"}
}
