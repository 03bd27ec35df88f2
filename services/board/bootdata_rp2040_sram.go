//go:build tinygo && rp2040 && !bootdata_eeprom

package board

import (
	"bootcode-go/region"
	"bootcode-go/types"
)

// BootData lives in the top of SRAM5, which the linker script keeps out of
// .bss so startup leaves it alone.
func bootDataRegion(_ types.Layout, sram region.Region) region.Region { return sram }

func initBootDataBus() {}
