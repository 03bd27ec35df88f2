//go:build tinygo

package board

import (
	"runtime/volatile"
	"unsafe"

	"bootcode-go/region"
	"bootcode-go/types"
)

func reg(addr uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(addr))
}

// mappedRegions maps the layout onto the running chip. Flash is read-only
// through the bus.
func mappedRegions(l types.Layout) Regions {
	return Regions{
		Boot:      region.ReadOnly(region.Map(l.BootInfoAddr, types.BootInfoSize)),
		Appl:      region.ReadOnly(region.Map(l.ApplInfoAddr, l.CRCEnd()-l.ApplInfoAddr)),
		BootData:  region.Map(l.BootDataAddr, types.BootDataSize),
		VectorRAM: region.Map(l.VectorRAMAddr, l.VectorTableSize()),
	}
}
