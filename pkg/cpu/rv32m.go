package cpu

// This file implements the M-extension instructions:
// mul/mulh/mulhu/mulhsu and div/divu/rem/remu.
//
// Division by zero is special-cased per the RISC-V architecture
// (div by zero yields -1 / all-ones, rem by zero yields the
// dividend unchanged); the INT_MIN/-1 overflow case needs no special
// handling because Go's own int32 division wraps silently rather
// than panicking there (only division by zero panics in Go), which
// happens to match the architectural result exactly.

func ExecMUL(eei EEI, instr uint32) *Exception {
	f := decodeR(instr)
	eei.SetX(f.rd, eei.X(f.rs1)*eei.X(f.rs2))
	eei.IncrementPC()
	return nil
}

func ExecMULH(eei EEI, instr uint32) *Exception {
	f := decodeR(instr)
	a := int64(int32(eei.X(f.rs1)))
	b := int64(int32(eei.X(f.rs2)))
	eei.SetX(f.rd, uint32((a*b)>>32))
	eei.IncrementPC()
	return nil
}

func ExecMULHU(eei EEI, instr uint32) *Exception {
	f := decodeR(instr)
	a := uint64(eei.X(f.rs1))
	b := uint64(eei.X(f.rs2))
	eei.SetX(f.rd, uint32((a*b)>>32))
	eei.IncrementPC()
	return nil
}

func ExecMULHSU(eei EEI, instr uint32) *Exception {
	f := decodeR(instr)
	a := int64(int32(eei.X(f.rs1)))
	b := int64(uint64(eei.X(f.rs2)))
	eei.SetX(f.rd, uint32((a*b)>>32))
	eei.IncrementPC()
	return nil
}

func ExecDIV(eei EEI, instr uint32) *Exception {
	f := decodeR(instr)
	a := int32(eei.X(f.rs1))
	b := int32(eei.X(f.rs2))
	var v int32
	if b == 0 {
		v = -1
	} else {
		v = a / b
	}
	eei.SetX(f.rd, uint32(v))
	eei.IncrementPC()
	return nil
}

func ExecDIVU(eei EEI, instr uint32) *Exception {
	f := decodeR(instr)
	a := eei.X(f.rs1)
	b := eei.X(f.rs2)
	var v uint32
	if b == 0 {
		v = 0xFFFF_FFFF
	} else {
		v = a / b
	}
	eei.SetX(f.rd, v)
	eei.IncrementPC()
	return nil
}

func ExecREM(eei EEI, instr uint32) *Exception {
	f := decodeR(instr)
	a := int32(eei.X(f.rs1))
	b := int32(eei.X(f.rs2))
	var v int32
	if b == 0 {
		v = a
	} else {
		v = a % b
	}
	eei.SetX(f.rd, uint32(v))
	eei.IncrementPC()
	return nil
}

func ExecREMU(eei EEI, instr uint32) *Exception {
	f := decodeR(instr)
	a := eei.X(f.rs1)
	b := eei.X(f.rs2)
	var v uint32
	if b == 0 {
		v = a
	} else {
		v = a % b
	}
	eei.SetX(f.rd, v)
	eei.IncrementPC()
	return nil
}
