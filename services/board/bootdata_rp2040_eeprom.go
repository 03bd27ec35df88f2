//go:build tinygo && rp2040 && bootdata_eeprom

package board

import (
	"machine"
	"time"

	"bootcode-go/region"
	"bootcode-go/types"
)

// BootData on a 24C32 at 0x50 on I2C0 (GP4/GP5), for boards whose linker
// script cannot reserve retained SRAM.
func bootDataRegion(l types.Layout, sram region.Region) region.Region {
	e, err := region.NewEEPROM(machine.I2C0, l.BootDataAddr, types.BootDataSize, region.EEPROMConfig{
		Address:   0x50,
		PollEvery: time.Millisecond,
	})
	if err != nil {
		return sram
	}
	return e
}

func initBootDataBus() {
	_ = machine.I2C0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})
}
