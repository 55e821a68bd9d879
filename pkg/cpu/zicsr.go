package cpu

// This file implements the Zicsr instructions: csrrw/csrrs/csrrc and
// their immediate forms. All six share the same
// read-then-write ordering: rd receives the CSR's value from before
// this instruction's write takes effect.
//
// The zero-operand optimization means csrrs/csrrc must not write the
// CSR when rs1==x0, and csrrsi/csrrci must not write when the
// immediate is zero — in both cases the instruction is read-only and
// must not trip a read-only-CSR write fault. csrrw(i) always writes.

func csrReadModifyWrite(eei EEI, instr uint32, newValue func(old, operand uint32) uint32, write bool, operand uint32) *Exception {
	f := decodeCSRI(instr)
	old, exc := eei.ReadCSR(f.csr)
	if exc != nil {
		return exc
	}
	if write {
		if exc := eei.WriteCSR(f.csr, newValue(old, operand)); exc != nil {
			return exc
		}
	}
	eei.SetX(f.rd, old)
	eei.IncrementPC()
	return nil
}

func ExecCSRRW(eei EEI, instr uint32) *Exception {
	f := decodeCSRI(instr)
	return csrReadModifyWrite(eei, instr, func(_, operand uint32) uint32 { return operand }, true, eei.X(f.rs1))
}

func ExecCSRRS(eei EEI, instr uint32) *Exception {
	f := decodeCSRI(instr)
	return csrReadModifyWrite(eei, instr, func(old, operand uint32) uint32 { return old | operand }, f.rs1 != 0, eei.X(f.rs1))
}

func ExecCSRRC(eei EEI, instr uint32) *Exception {
	f := decodeCSRI(instr)
	return csrReadModifyWrite(eei, instr, func(old, operand uint32) uint32 { return old &^ operand }, f.rs1 != 0, eei.X(f.rs1))
}

func ExecCSRRWI(eei EEI, instr uint32) *Exception {
	f := decodeCSRI(instr)
	return csrReadModifyWrite(eei, instr, func(_, operand uint32) uint32 { return operand }, true, f.rs1)
}

func ExecCSRRSI(eei EEI, instr uint32) *Exception {
	f := decodeCSRI(instr)
	return csrReadModifyWrite(eei, instr, func(old, operand uint32) uint32 { return old | operand }, f.rs1 != 0, f.rs1)
}

func ExecCSRRCI(eei EEI, instr uint32) *Exception {
	f := decodeCSRI(instr)
	return csrReadModifyWrite(eei, instr, func(old, operand uint32) uint32 { return old &^ operand }, f.rs1 != 0, f.rs1)
}
