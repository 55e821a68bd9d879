package trap

import "errors"

// CSR addresses implemented by this core.
const (
	CSRMStatus    = 0x300
	CSRMIE        = 0x304
	CSRMTVec      = 0x305
	CSRMScratch   = 0x340
	CSRMEPC       = 0x341
	CSRMCause     = 0x342
	CSRMIP        = 0x344
	CSRMCycle     = 0xB00
	CSRMCycleH    = 0xB80
	CSRMInstret   = 0xB02
	CSRMInstretH  = 0xB82
	CSRMVendorID  = 0xF11
	CSRMArchID    = 0xF12
	CSRMImpID     = 0xF13
	CSRMHartID    = 0xF14
	CSRMConfigPtr = 0xF15
)

// ErrCSRNotPresent is returned when no CSR is mapped at the given
// address.
var ErrCSRNotPresent = errors.New("trap: csr not present")

// ErrCSRReadOnly is returned on an attempt to write a read-only CSR.
var ErrCSRReadOnly = errors.New("trap: csr is read-only")

// csrKind distinguishes the three CSR handle shapes this core
// supports: read-only, RW with a WARL mask applied on write, and RW
// with no masking. Rather than modelling each CSR as its own
// subclass, behaviour is captured entirely by this variant plus the
// address-indexed read/write closures below.
type csrKind int

const (
	csrReadOnly csrKind = iota
	csrRWMasked
	csrRWAny
)

type read = func(m *Machine) uint32
type write = func(m *Machine, v uint32)

type csrEntry struct {
	kind  csrKind
	read  read
	write write // nil for csrReadOnly
}

// CSRMap is the address-indexed table of CSR handles. It is
// stateless; all CSR state lives in the Machine it is handed.
type CSRMap struct {
	entries map[uint32]csrEntry
}

// NewCSRMap builds the CSR map implemented by this core.
func NewCSRMap() *CSRMap {
	c := &CSRMap{entries: make(map[uint32]csrEntry)}
	readOnlyZero := func(*Machine) uint32 { return 0 }

	c.entries[CSRMStatus] = csrEntry{csrRWMasked, func(m *Machine) uint32 { return m.MStatus() }, func(m *Machine, v uint32) { m.setMStatus(v) }}
	c.entries[CSRMIE] = csrEntry{csrRWAny, func(m *Machine) uint32 { return m.MIE() }, func(m *Machine, v uint32) { m.setMIE(v) }}
	c.entries[CSRMTVec] = csrEntry{csrReadOnly, func(m *Machine) uint32 { return m.MTVec() }, nil}
	c.entries[CSRMScratch] = csrEntry{csrRWAny, func(m *Machine) uint32 { return m.MScratch() }, func(m *Machine, v uint32) { m.SetMScratch(v) }}
	c.entries[CSRMEPC] = csrEntry{csrRWMasked, func(m *Machine) uint32 { return m.MEPC() }, func(m *Machine, v uint32) { m.setMEPC(v) }}
	c.entries[CSRMCause] = csrEntry{csrRWMasked, func(m *Machine) uint32 { return m.MCause() }, func(m *Machine, v uint32) { m.setMCause(v) }}
	c.entries[CSRMIP] = csrEntry{csrRWMasked, func(m *Machine) uint32 { return m.MIP() }, func(m *Machine, v uint32) {
		// Only the latched bits (MSIP, MEIP) are settable through the
		// CSR path; MTIP is a pure function of mtime/mtimecmp and
		// writes to it are ignored.
		m.mipLatched = v & (mipMSIPBit | mipMEIPBit)
	}}
	c.entries[CSRMCycle] = csrEntry{csrReadOnly, func(m *Machine) uint32 { return uint32(m.mcycle) }, nil}
	c.entries[CSRMCycleH] = csrEntry{csrReadOnly, func(m *Machine) uint32 { return uint32(m.mcycle >> 32) }, nil}
	c.entries[CSRMInstret] = csrEntry{csrReadOnly, func(m *Machine) uint32 { return uint32(m.minstret) }, nil}
	c.entries[CSRMInstretH] = csrEntry{csrReadOnly, func(m *Machine) uint32 { return uint32(m.minstret >> 32) }, nil}
	c.entries[CSRMVendorID] = csrEntry{csrReadOnly, readOnlyZero, nil}
	c.entries[CSRMArchID] = csrEntry{csrReadOnly, readOnlyZero, nil}
	c.entries[CSRMImpID] = csrEntry{csrReadOnly, readOnlyZero, nil}
	c.entries[CSRMHartID] = csrEntry{csrReadOnly, readOnlyZero, nil}
	c.entries[CSRMConfigPtr] = csrEntry{csrReadOnly, readOnlyZero, nil}
	return c
}

// Read returns the current value of the CSR at addr.
func (c *CSRMap) Read(m *Machine, addr uint32) (uint32, error) {
	e, ok := c.entries[addr]
	if !ok {
		return 0, ErrCSRNotPresent
	}
	return e.read(m), nil
}

// Write stores v into the CSR at addr. Read-only CSRs return
// ErrCSRReadOnly; RW-masked CSRs silently mask v into their legal
// domain and never error.
func (c *CSRMap) Write(m *Machine, addr uint32, v uint32) error {
	e, ok := c.entries[addr]
	if !ok {
		return ErrCSRNotPresent
	}
	if e.kind == csrReadOnly {
		return ErrCSRReadOnly
	}
	e.write(m, v)
	return nil
}
