// Package mem implements the hart's byte-addressed memory and the
// physical-memory-attributes checker that classifies every access
// before it reaches the store.
//
// The storage itself is a flat, value-only store with no notion of
// regions; region policy is kept entirely separate, in PMA.
package mem

// Width is a memory access width in bytes.
type Width uint32

// The three access widths this architecture supports.
const (
	Byte     Width = 1
	Halfword Width = 2
	Word     Width = 4
)

// Memory is a sparse, byte-addressed, little-endian store. Unset
// bytes read as zero. Addresses wrap around modulo 2^32.
type Memory struct {
	bytes map[uint32]byte
}

// NewMemory returns an empty memory store.
func NewMemory() *Memory {
	return &Memory{bytes: make(map[uint32]byte)}
}

// ReadByte returns the byte stored at addr, or 0 if unset.
func (m *Memory) ReadByte(addr uint32) byte {
	return m.bytes[addr]
}

// WriteByte stores v at addr, bypassing any region policy. This is
// the ByteLoader primitive that the ELF loader and trace-file reader
// use to populate EEPROM directly, since loading a program is
// external setup, not a hart-issued store.
//
// Writing zero clears the underlying map entry, keeping the store
// sparse; this has no observable effect on ReadByte.
func (m *Memory) WriteByte(addr uint32, v byte) {
	if v == 0 {
		delete(m.bytes, addr)
		return
	}
	m.bytes[addr] = v
}

// Read performs a little-endian read of width bytes starting at
// addr. addr+i wraps modulo 2^32 for i in [0,width).
func (m *Memory) Read(addr uint32, width Width) uint32 {
	var v uint32
	for i := Width(0); i < width; i++ {
		v |= uint32(m.ReadByte(addr+uint32(i))) << (8 * i)
	}
	return v
}

// Write performs a little-endian write of the low width bytes of
// value starting at addr. addr+i wraps modulo 2^32 for i in
// [0,width).
func (m *Memory) Write(addr uint32, value uint32, width Width) {
	for i := Width(0); i < width; i++ {
		m.WriteByte(addr+uint32(i), byte(value>>(8*i)))
	}
}
