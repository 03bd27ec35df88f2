// Package bootdata manages the BootData block that survives warm resets and
// carries the application's "enter update mode" request to the bootloader.
package bootdata

import (
	"bootcode-go/errcode"
	"bootcode-go/region"
	"bootcode-go/types"
)

// Store is the only code allowed to touch the BootData region. Both images
// link it, so both agree on the layout in types.
type Store struct {
	r region.Region
}

// New wraps r, which must hold at least types.BootDataSize bytes.
func New(r region.Region) (*Store, error) {
	if r == nil || r.Size() < types.BootDataSize {
		return nil, errcode.Wrap("bootdata", errcode.OutOfBounds)
	}
	return &Store{r: r}, nil
}

// Region returns the backing region.
func (s *Store) Region() region.Region { return s.r }

// IsUpdateRequested reports whether the request sentinel is set.
// A read failure counts as "not requested"; the image is still validated.
func (s *Store) IsUpdateRequested() bool {
	v, err := region.U16(s.r, types.BootDataOffUpdateRequested)
	return err == nil && v == types.UpdateRequestedKey
}

// SignalUpdateRequest is called by the application before it resets into
// the bootloader.
func (s *Store) SignalUpdateRequest() error {
	return region.PutU16(s.r, types.BootDataOffUpdateRequested, types.UpdateRequestedKey)
}

// ResetUpdateRequest is called by the bootloader when leaving update mode,
// so the next ordinary reset does not loop back.
func (s *Store) ResetUpdateRequest() error {
	return region.PutU16(s.r, types.BootDataOffUpdateRequested, 0)
}

// ApplCRC returns the CRC last stored by the validator.
func (s *Store) ApplCRC() (uint32, error) { return region.U32(s.r, types.BootDataOffApplCRC) }

// SetApplCRC stores the computed application CRC for a debugger to read.
func (s *Store) SetApplCRC(crc uint32) error {
	return region.PutU32(s.r, types.BootDataOffApplCRC, crc)
}

// Load decodes the whole block.
func (s *Store) Load() (types.BootData, error) {
	var d types.BootData
	var err error
	if d.UpdateRequested, err = region.U16(s.r, types.BootDataOffUpdateRequested); err != nil {
		return d, err
	}
	d.ApplCRC, err = region.U32(s.r, types.BootDataOffApplCRC)
	return d, err
}

// MaybeClearOnBoot zeroes the block on every reset except the application's
// own handoff reset (software+pin) made with the request flag already set.
// It reports whether the block was cleared.
func (s *Store) MaybeClearOnBoot(cause types.ResetCause) (bool, error) {
	if cause == types.HandoffReset && s.IsUpdateRequested() {
		return false, nil
	}
	sub, err := region.Sub(s.r, 0, types.BootDataSize)
	if err != nil {
		return false, err
	}
	return true, region.Zero(sub)
}
