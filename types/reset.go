package types

// ResetCause is the hardware-latched reason for the last reset.
type ResetCause uint16

const (
	ResetPowerOn ResetCause = 1 << iota
	ResetPin
	ResetWatchdog
	ResetWindowWatchdog
	ResetSoftware
	ResetLowPower
	ResetOptionLoad
)

// HandoffReset is the cause produced when an image resets itself to hand
// over control. On STM32 a software reset also pulls NRST, so both bits latch.
const HandoffReset = ResetSoftware | ResetPin

func (c ResetCause) Has(f ResetCause) bool { return c&f == f }

var resetNames = [...]struct {
	f ResetCause
	s string
}{
	{ResetPowerOn, "por"},
	{ResetPin, "pin"},
	{ResetWatchdog, "wdg"},
	{ResetWindowWatchdog, "wwdg"},
	{ResetSoftware, "sw"},
	{ResetLowPower, "lpwr"},
	{ResetOptionLoad, "obl"},
}

// String renders the set as "pin|sw"; the empty set is "none".
func (c ResetCause) String() string {
	if c == 0 {
		return "none"
	}
	var b []byte
	for _, n := range resetNames {
		if c&n.f != 0 {
			if len(b) > 0 {
				b = append(b, '|')
			}
			b = append(b, n.s...)
		}
	}
	return string(b)
}
