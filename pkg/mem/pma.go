package mem

import "github.com/rv32mcu/rv32mcu/pkg/trap"

// Physical memory map. Region bounds are exclusive on the high end.
const (
	EEPROMBase = 0x0000_0000
	EEPROMEnd  = 0x0040_0000

	IOBase = 0x1000_0000
	IOEnd  = 0x1000_0080

	RAMBase = 0x2000_0000
	RAMEnd  = 0x2040_0000
)

// Memory-mapped register addresses within the I/O region.
const (
	MTimeLowAddr     = 0x1000_0000
	MTimeHighAddr    = 0x1000_0004
	MTimeCmpLowAddr  = 0x1000_0008
	MTimeCmpHighAddr = 0x1000_000C
	SoftIntCtrlAddr  = 0x1000_0010
	ExtIntCtrlAddr   = 0x1000_0014
	UARTTXAddr       = 0x1000_0018
)

// PMA classifies addresses into EEPROM, I/O, RAM, or vacant, and
// gates instruction fetch, load, and store accesses accordingly.
//
// The ordering rule that every check here preserves: access class is
// checked before alignment. A misaligned fetch into vacant memory is
// an access fault, never a misalignment fault.
type PMA struct{}

// inRegion reports whether the whole [addr, addr+width) span lies
// within [start, end).
func inRegion(addr uint32, width Width, start, end uint32) bool {
	w := uint32(width)
	return addr >= start && addr <= end-w && addr+w >= addr
}

// CheckInstructionFetch validates a 4-byte instruction fetch at addr.
// Fetches are only ever word-wide.
func (PMA) CheckInstructionFetch(addr uint32) (trap.Exception, bool) {
	if !inRegion(addr, Word, EEPROMBase, EEPROMEnd) {
		return trap.InstructionAccessFault, false
	}
	if !aligned(addr, 4) {
		return trap.InstructionAddressMisaligned, false
	}
	return 0, true
}

// CheckLoad validates a load of the given width at addr.
func (PMA) CheckLoad(addr uint32, width Width) (trap.Exception, bool) {
	switch {
	case inRegion(addr, width, EEPROMBase, EEPROMEnd):
		return 0, true // any width, any alignment
	case inRegion(addr, width, IOBase, IOEnd):
		if width != Word {
			return trap.LoadAccessFault, false
		}
		if !aligned(addr, 4) {
			return trap.LoadAddressMisaligned, false
		}
		return 0, true
	case inRegion(addr, width, RAMBase, RAMEnd):
		if !validWidth(width) {
			return trap.LoadAccessFault, false
		}
		return 0, true // any alignment
	default:
		return trap.LoadAccessFault, false
	}
}

// CheckStore validates a store of the given width at addr. EEPROM
// never accepts stores through this path: the hart's store path is
// always PMA-checked and rejects EEPROM, unlike the loader's direct
// ByteLoader writes used to populate a program at startup.
func (PMA) CheckStore(addr uint32, width Width) (trap.Exception, bool) {
	switch {
	case inRegion(addr, width, IOBase, IOEnd):
		if width != Word {
			return trap.StoreAccessFault, false
		}
		if !aligned(addr, 4) {
			return trap.StoreAddressMisaligned, false
		}
		return 0, true
	case inRegion(addr, width, RAMBase, RAMEnd):
		if !validWidth(width) {
			return trap.StoreAccessFault, false
		}
		return 0, true
	default:
		return trap.StoreAccessFault, false
	}
}

func validWidth(w Width) bool {
	return w == Byte || w == Halfword || w == Word
}

func aligned(addr uint32, width uint32) bool {
	return addr%width == 0
}
