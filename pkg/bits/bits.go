// Package bits implements the small set of bit-field primitives the
// rest of the emulator is built on: masking, field extraction, and
// sign extension. Every function here operates on 32-bit quantities.
package bits

// Mask returns a mask with the low n bits set, i.e. (1<<n)-1.
// Mask(0) returns 0; n must be in [0,32].
func Mask(n uint) uint32 {
	if n == 0 {
		return 0
	}
	if n >= 32 {
		return 0xFFFF_FFFF
	}
	return (uint32(1) << n) - 1
}

// Extract returns value[end:start] (Verilog notation, inclusive on
// both ends) right-justified in the result.
func Extract(value uint32, end, start uint) uint32 {
	return (value >> start) & Mask(end-start+1)
}

// SignExtend duplicates bit signBitPos of value into every bit above
// it, treating value as a signBitPos+1-bit two's complement quantity.
func SignExtend(value uint32, signBitPos uint) uint32 {
	signBit := uint32(1) << signBitPos
	if value&signBit != 0 {
		return value | ^Mask(signBitPos+1)
	}
	return value &^ ^Mask(signBitPos + 1)
}

// ToSigned reinterprets value as a signed 32-bit two's complement
// integer. The bit pattern is unchanged.
func ToSigned(value uint32) int32 {
	return int32(value)
}

// ToUnsigned reinterprets a signed 32-bit integer as its unsigned bit
// pattern. The bit pattern is unchanged.
func ToUnsigned(value int32) uint32 {
	return uint32(value)
}

// Aligned reports whether addr is a multiple of width.
func Aligned(addr, width uint32) bool {
	return addr%width == 0
}
