package trap

// Interrupt-enable bit positions mirror the Interrupt.code() values
// for mie/mip: software=3, timer=7, external=11.
const (
	mieMSIEBit = 1 << 3
	mieMTIEBit = 1 << 7
	mieMEIEBit = 1 << 11

	mipMSIPBit = 1 << 3
	mipMEIPBit = 1 << 11
)

// mcauseWARLMask is the set of bits mcause may legally hold: the
// interrupt bit (31), bit 11, and the low 8 bits of the code.
const mcauseWARLMask = 0x8000_08FF

// mtvec is fixed at this platform's trap vector base (0) in vectored
// mode: (base<<2)|1, base being a word index.
const mtvecValue = 0x0000_0001

// exceptionVector is the fixed trap target for synchronous
// exceptions, distinct from the reset vector at 0 and from the
// vectored interrupt entries (see mtvecTrapTarget).
const exceptionVector = 0x08

// Machine holds the M-mode architectural state: performance
// counters, the timer, and the trap controller (mstatus/mie/mip/
// mcause/mepc).
//
// maxPhysicalAddr bounds the legal range for mepc; it is supplied by
// the platform at construction time since trap does not know about
// the memory map.
type Machine struct {
	mcycle   uint64
	minstret uint64
	mtime    uint64
	mtimecmp uint64
	mscratch uint32

	mstatusMIE  bool
	mstatusMPIE bool
	mie         uint32
	mipLatched  uint32 // only MSIP (bit 3) and MEIP (bit 11) are stored here
	mcause      uint32
	mepc        uint32

	maxPhysicalAddr uint32
}

// NewMachine returns a reset Machine whose mepc WARL range is
// [0, maxPhysicalAddr).
func NewMachine(maxPhysicalAddr uint32) *Machine {
	m := &Machine{maxPhysicalAddr: maxPhysicalAddr}
	m.Reset()
	return m
}

// Reset clears counters, mcause, and mstatus.MIE.
func (m *Machine) Reset() {
	m.mcycle = 0
	m.minstret = 0
	m.mtime = 0
	m.mtimecmp = 0
	m.mscratch = 0
	m.mstatusMIE = false
	m.mstatusMPIE = false
	m.mie = 0
	m.mipLatched = 0
	m.mcause = 0
	m.mepc = 0
}

// MCycle, MInstret, MTime, MTimeCmp are the raw 64-bit counter
// values.
func (m *Machine) MCycle() uint64    { return m.mcycle }
func (m *Machine) MInstret() uint64  { return m.minstret }
func (m *Machine) MTime() uint64     { return m.mtime }
func (m *Machine) MTimeCmp() uint64  { return m.mtimecmp }
func (m *Machine) SetMTime(v uint64) { m.mtime = v }
func (m *Machine) SetMTimeCmp(v uint64) {
	m.mtimecmp = v
}

// AdvanceCounters advances mcycle and mtime by one tick. Call
// exactly once per platform step, regardless of whether the step
// retired.
func (m *Machine) AdvanceCounters() {
	m.mcycle++
	m.mtime++
}

// Retire advances minstret by one. Call only when an instruction
// completes without raising an exception.
func (m *Machine) Retire() {
	m.minstret++
}

// MEPC returns the current mepc value.
func (m *Machine) MEPC() uint32 { return m.mepc }

// MCause returns the current mcause value.
func (m *Machine) MCause() uint32 { return m.mcause }

// MTVec returns the constant mtvec value.
func (m *Machine) MTVec() uint32 { return mtvecValue }

// setMEPC applies the WARL mask for mepc: the value is masked to a
// 4-byte-aligned address within the valid physical range.
func (m *Machine) setMEPC(v uint32) {
	v &^= 0b11
	if m.maxPhysicalAddr != 0 && v >= m.maxPhysicalAddr {
		v %= m.maxPhysicalAddr
		v &^= 0b11
	}
	m.mepc = v
}

// setMCause applies the WARL mask for mcause.
func (m *Machine) setMCause(v uint32) {
	m.mcause = v & mcauseWARLMask
}

// MIP returns the live mip value: MSIP/MEIP as latched by the host,
// and MTIP recomputed as mtime >= mtimecmp.
func (m *Machine) MIP() uint32 {
	v := m.mipLatched
	if m.mtime >= m.mtimecmp {
		v |= mipMTIPBit
	}
	return v
}

const mipMTIPBit = 1 << 7

// SetSoftwareInterruptPending latches or clears mip.MSIP. This is a
// host-driven method: call it only from the stepping thread.
func (m *Machine) SetSoftwareInterruptPending(pending bool) {
	if pending {
		m.mipLatched |= mipMSIPBit
	} else {
		m.mipLatched &^= mipMSIPBit
	}
}

// SetExternalInterruptPending latches or clears mip.MEIP.
func (m *Machine) SetExternalInterruptPending(pending bool) {
	if pending {
		m.mipLatched |= mipMEIPBit
	} else {
		m.mipLatched &^= mipMEIPBit
	}
}

// MIE returns the current mie value.
func (m *Machine) MIE() uint32 { return m.mie }

// MStatus returns mstatus with MPP reading back as 0b11.
func (m *Machine) MStatus() uint32 {
	var v uint32
	if m.mstatusMIE {
		v |= 1 << 3
	}
	if m.mstatusMPIE {
		v |= 1 << 7
	}
	v |= 0b11 << 11 // MPP always reads as 0b11
	return v
}

// setMStatus applies MIE and MPIE from v; MPP writes are ignored.
func (m *Machine) setMStatus(v uint32) {
	m.mstatusMIE = v&(1<<3) != 0
	m.mstatusMPIE = v&(1<<7) != 0
}

// setMIE stores the mie CSR. Only bits 3, 7, 11 are architecturally
// meaningful but all bits are writable.
func (m *Machine) setMIE(v uint32) {
	m.mie = v
}

// TrapInterrupt evaluates whether an interrupt should trap, in the
// fixed priority order external, software, timer. If one does, it
// updates mcause and mepc and returns the vectored trap target;
// otherwise it returns (0, false) and leaves state unchanged.
func (m *Machine) TrapInterrupt(pc uint32) (uint32, bool) {
	for _, i := range [...]Interrupt{External, Software, Timer} {
		if m.interruptShouldTrap(i) {
			cause := InterruptCause(i)
			m.setMCause(cause.MCause())
			m.setMEPC(pc)
			m.mstatusMPIE = m.mstatusMIE
			m.mstatusMIE = false
			return mtvecTrapTarget(i), true
		}
	}
	return 0, false
}

// mtvecTrapTarget returns the fixed trap-vector-table entry for i:
// MSIP=0x14, MTIP=0x24, MEIP=0x34. These offsets are not 4*code
// (code is the mie/mip bit position, 3/7/11, used for mcause); they
// are the platform's fixed vectored-interrupt table layout, reserving
// the first three word slots for reset/NMI/the single exception
// vector.
func mtvecTrapTarget(i Interrupt) uint32 {
	switch i {
	case Software:
		return 0x14
	case Timer:
		return 0x24
	case External:
		return 0x34
	default:
		panic("trap: unknown interrupt variant")
	}
}

func (m *Machine) interruptShouldTrap(i Interrupt) bool {
	if !m.mstatusMIE {
		return false
	}
	enableBit := uint32(1) << i.code()
	if m.mie&enableBit == 0 {
		return false
	}
	return m.MIP()&enableBit != 0
}

// RaiseException enters the exception trap procedure: it records
// mcause and mepc (the trapping instruction's own pc) and returns the
// single exception trap vector.
func (m *Machine) RaiseException(pc uint32, e Exception) uint32 {
	m.setMCause(ExceptionCause(e).MCause())
	m.setMEPC(pc)
	return exceptionVector
}

// MRet implements the mret instruction: restore MPIE->MIE, set
// MPIE=1, and return the pc to resume at (the saved mepc).
func (m *Machine) MRet() uint32 {
	m.mstatusMIE = m.mstatusMPIE
	m.mstatusMPIE = true
	return m.mepc
}

// MScratch returns the scratch register.
func (m *Machine) MScratch() uint32 { return m.mscratch }

// SetMScratch stores the scratch register unconstrained.
func (m *Machine) SetMScratch(v uint32) { m.mscratch = v }
