package cpu

import (
	"testing"

	"github.com/rv32mcu/rv32mcu/pkg/mem"
	"github.com/rv32mcu/rv32mcu/pkg/trap"
)

// fakeEEI is a minimal in-memory EEI stand-in for unit-testing
// individual executers in isolation, against a bare struct rather
// than a full platform.
type fakeEEI struct {
	pc    uint32
	x     [32]uint32
	mem   map[uint32]uint32 // word-addressed fake memory, keyed by aligned addr
	csrs  map[uint32]uint32
	mretN int
}

func newFakeEEI() *fakeEEI {
	return &fakeEEI{mem: make(map[uint32]uint32), csrs: make(map[uint32]uint32)}
}

func (f *fakeEEI) PC() uint32     { return f.pc }
func (f *fakeEEI) SetPC(v uint32) { f.pc = v }
func (f *fakeEEI) IncrementPC()   { f.pc += 4 }

func (f *fakeEEI) X(i uint32) uint32 {
	if i == 0 {
		return 0
	}
	return f.x[i]
}

func (f *fakeEEI) SetX(i uint32, v uint32) {
	if i == 0 {
		return
	}
	f.x[i] = v
}

func (f *fakeEEI) Load(addr uint32, width mem.Width) (uint32, *Exception) {
	v := f.mem[addr]
	switch width {
	case mem.Byte:
		return v & 0xFF, nil
	case mem.Halfword:
		return v & 0xFFFF, nil
	default:
		return v, nil
	}
}

func (f *fakeEEI) Store(addr uint32, data uint32, width mem.Width) *Exception {
	switch width {
	case mem.Byte:
		f.mem[addr] = data & 0xFF
	case mem.Halfword:
		f.mem[addr] = data & 0xFFFF
	default:
		f.mem[addr] = data
	}
	return nil
}

func (f *fakeEEI) ReadCSR(addr uint32) (uint32, *Exception) {
	return f.csrs[addr], nil
}

func (f *fakeEEI) WriteCSR(addr uint32, v uint32) *Exception {
	f.csrs[addr] = v
	return nil
}

func (f *fakeEEI) Mret() {
	f.mretN++
	f.pc = 0xDEAD
}

func encodeR(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return opcode | rd<<7 | funct3<<12 | rs1<<15 | rs2<<20 | funct7<<25
}

func encodeI(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return opcode | rd<<7 | funct3<<12 | rs1<<15 | (uint32(imm)&0xFFF)<<20
}

func encodeJ(opcode, rd uint32, imm int32) uint32 {
	u := uint32(imm)
	bit20 := (u >> 20) & 1
	bits19to12 := (u >> 12) & 0xFF
	bit11 := (u >> 11) & 1
	bits10to1 := (u >> 1) & 0x3FF
	return opcode | rd<<7 | bits19to12<<12 | bit11<<20 | bits10to1<<21 | bit20<<31
}

func TestADDI(t *testing.T) {
	eei := newFakeEEI()
	eei.SetX(1, 5)
	instr := encodeI(0x13, 2, 0, 1, -3)
	if exc := ExecADDI(eei, instr); exc != nil {
		t.Fatalf("unexpected exception: %v", *exc)
	}
	if eei.X(2) != 2 {
		t.Errorf("x2 = %d, want 2", eei.X(2))
	}
	if eei.PC() != 4 {
		t.Errorf("pc = %d, want 4", eei.PC())
	}
}

func TestADD(t *testing.T) {
	eei := newFakeEEI()
	eei.SetX(1, 10)
	eei.SetX(2, 20)
	instr := encodeR(0x33, 3, 0, 1, 2, 0)
	if exc := ExecADD(eei, instr); exc != nil {
		t.Fatalf("unexpected exception: %v", *exc)
	}
	if eei.X(3) != 30 {
		t.Errorf("x3 = %d, want 30", eei.X(3))
	}
}

func TestSUBDistinguishedByFunct7(t *testing.T) {
	eei := newFakeEEI()
	eei.SetX(1, 10)
	eei.SetX(2, 3)
	instr := encodeR(0x33, 3, 0, 1, 2, 0x20)
	if exc := ExecSUB(eei, instr); exc != nil {
		t.Fatalf("unexpected exception: %v", *exc)
	}
	if eei.X(3) != 7 {
		t.Errorf("x3 = %d, want 7", eei.X(3))
	}
}

func TestSRAISignExtends(t *testing.T) {
	eei := newFakeEEI()
	eei.SetX(1, 0x8000_0000)
	instr := encodeI(0x13, 2, 5, 1, 0) | (0x20 << 25) | (4 << 20)
	if exc := ExecSRLISRAI(eei, instr); exc != nil {
		t.Fatalf("unexpected exception: %v", *exc)
	}
	if eei.X(2) != 0xF800_0000 {
		t.Errorf("x2 = %#x, want 0xF8000000", eei.X(2))
	}
}

func TestSRLIZeroFills(t *testing.T) {
	eei := newFakeEEI()
	eei.SetX(1, 0x8000_0000)
	instr := encodeI(0x13, 2, 5, 1, 4)
	if exc := ExecSRLISRAI(eei, instr); exc != nil {
		t.Fatalf("unexpected exception: %v", *exc)
	}
	if eei.X(2) != 0x0800_0000 {
		t.Errorf("x2 = %#x, want 0x08000000", eei.X(2))
	}
}

func TestJALWritesReturnAddressOnSuccess(t *testing.T) {
	eei := newFakeEEI()
	eei.pc = 0x100
	instr := encodeJ(0x6F, 1, 16)
	if exc := ExecJAL(eei, instr); exc != nil {
		t.Fatalf("unexpected exception: %v", *exc)
	}
	if eei.X(1) != 0x104 {
		t.Errorf("x1 = %#x, want 0x104", eei.X(1))
	}
	if eei.PC() != 0x110 {
		t.Errorf("pc = %#x, want 0x110", eei.PC())
	}
}

func TestJALMisalignedFaultsLeavesDestUnchanged(t *testing.T) {
	eei := newFakeEEI()
	eei.pc = 0x2
	eei.SetX(1, 0xBEEF)
	instr := encodeJ(0x6F, 1, 0) // offset 0, target = pc = 0x2, misaligned
	exc := ExecJAL(eei, instr)
	if exc == nil || *exc != trap.InstructionAddressMisaligned {
		t.Fatalf("expected InstructionAddressMisaligned, got %v", exc)
	}
	if eei.X(1) != 0xBEEF {
		t.Error("dest register must be unchanged on misalignment fault")
	}
}

func TestBranchAlignmentOnlyCheckedWhenTaken(t *testing.T) {
	eei := newFakeEEI()
	eei.pc = 0x2
	eei.SetX(1, 1)
	eei.SetX(2, 2)
	// beq x1, x2 (not equal -> not taken): must not fault even though
	// pc+imm would be misaligned.
	instr := uint32(0x63) | 1<<15 | 2<<20
	if exc := ExecBEQ(eei, instr); exc != nil {
		t.Fatalf("untaken branch must not check alignment, got %v", *exc)
	}
	if eei.PC() != 0x6 {
		t.Errorf("pc = %#x, want 0x6", eei.PC())
	}
}

func TestLoadsSignAndZeroExtend(t *testing.T) {
	eei := newFakeEEI()
	eei.mem[0] = 0xFF
	instrLB := encodeI(0x03, 1, 0, 0, 0)
	if exc := ExecLB(eei, instrLB); exc != nil {
		t.Fatal(exc)
	}
	if eei.X(1) != 0xFFFF_FFFF {
		t.Errorf("lb = %#x, want sign-extended 0xFFFFFFFF", eei.X(1))
	}

	instrLBU := encodeI(0x03, 2, 4, 0, 0)
	if exc := ExecLBU(eei, instrLBU); exc != nil {
		t.Fatal(exc)
	}
	if eei.X(2) != 0xFF {
		t.Errorf("lbu = %#x, want 0xFF", eei.X(2))
	}
}

func TestDIVByZero(t *testing.T) {
	eei := newFakeEEI()
	eei.SetX(1, 10)
	eei.SetX(2, 0)
	instr := encodeR(0x33, 3, 4, 1, 2, 1)
	if exc := ExecDIV(eei, instr); exc != nil {
		t.Fatal(exc)
	}
	if eei.X(3) != 0xFFFF_FFFF {
		t.Errorf("div by zero = %#x, want -1", eei.X(3))
	}
}

func TestDIVOverflowDoesNotPanic(t *testing.T) {
	eei := newFakeEEI()
	eei.SetX(1, 0x8000_0000) // INT32_MIN
	eei.SetX(2, 0xFFFF_FFFF) // -1
	instr := encodeR(0x33, 3, 4, 1, 2, 1)
	if exc := ExecDIV(eei, instr); exc != nil {
		t.Fatal(exc)
	}
	if eei.X(3) != 0x8000_0000 {
		t.Errorf("INT_MIN/-1 = %#x, want 0x80000000 (wrap)", eei.X(3))
	}
}

func TestREMUByZeroReturnsDividend(t *testing.T) {
	eei := newFakeEEI()
	eei.SetX(1, 42)
	eei.SetX(2, 0)
	instr := encodeR(0x33, 3, 6, 1, 2, 1)
	if exc := ExecREMU(eei, instr); exc != nil {
		t.Fatal(exc)
	}
	if eei.X(3) != 42 {
		t.Errorf("remu by zero = %d, want 42", eei.X(3))
	}
}

func TestCSRRSZeroOperandOptimizationSkipsWrite(t *testing.T) {
	eei := newFakeEEI()
	eei.csrs[0x300] = 0xAAAA_AAAA
	// csrrs x1, mstatus, x0 (rs1 = x0): must not write.
	instr := encodeI(0x73, 1, 2, 0, 0) | (0x300 << 20)
	if exc := ExecCSRRS(eei, instr); exc != nil {
		t.Fatal(exc)
	}
	if eei.X(1) != 0xAAAA_AAAA {
		t.Errorf("x1 = %#x, want pre-write csr value", eei.X(1))
	}
	if eei.csrs[0x300] != 0xAAAA_AAAA {
		t.Error("csrrs with rs1=x0 must not write the csr")
	}
}

func TestCSRRWAlwaysWrites(t *testing.T) {
	eei := newFakeEEI()
	eei.csrs[0x340] = 1
	eei.SetX(1, 99)
	instr := encodeI(0x73, 2, 1, 1, 0) | (0x340 << 20)
	if exc := ExecCSRRW(eei, instr); exc != nil {
		t.Fatal(exc)
	}
	if eei.X(2) != 1 {
		t.Errorf("x2 (old value) = %d, want 1", eei.X(2))
	}
	if eei.csrs[0x340] != 99 {
		t.Errorf("csr = %d, want 99", eei.csrs[0x340])
	}
}

func TestECALLRaisesMmodeEcall(t *testing.T) {
	eei := newFakeEEI()
	exc := ExecECALL(eei, 0)
	if exc == nil || *exc != trap.MmodeEcall {
		t.Fatalf("expected MmodeEcall, got %v", exc)
	}
}

func TestMRETDelegatesToEEI(t *testing.T) {
	eei := newFakeEEI()
	if exc := ExecMRET(eei, 0); exc != nil {
		t.Fatal(exc)
	}
	if eei.mretN != 1 {
		t.Error("ExecMRET must call eei.Mret()")
	}
	if eei.pc != 0xDEAD {
		t.Error("pc should reflect the EEI's Mret restore")
	}
}
