package types

// BootData is the persistent block shared by both images in SRAM.
// Startup code must not zero it; only the bootloader clears it.
type BootData struct {
	UpdateRequested uint16 // UpdateRequestedKey when the application asks for update mode
	ApplCRC         uint32 // last CRC computed by the bootloader, for a debugger
}

const (
	BootDataOffUpdateRequested = 0
	BootDataOffApplCRC         = 4
	BootDataSize               = 8

	// UpdateRequestedKey is a sentinel, not a bool, so SRAM noise after
	// power-up is unlikely to read as a request.
	UpdateRequestedKey uint16 = 0xd989
)
