package cpu

import (
	"github.com/rv32mcu/rv32mcu/pkg/mem"
	"github.com/rv32mcu/rv32mcu/pkg/trap"
)

// This file implements the RV32I base integer instructions, each as
// an Executer bound by the decoder (pkg/decode) to the
// opcode/funct3/funct7 bit pattern that selects it.

// ExecLUI implements "lui rd, imm": rd <- imm<<12 (already shifted
// by decodeU), pc <- pc+4.
func ExecLUI(eei EEI, instr uint32) *Exception {
	f := decodeU(instr)
	eei.SetX(f.rd, f.imm)
	eei.IncrementPC()
	return nil
}

// ExecAUIPC implements "auipc rd, imm": rd <- pc + (imm<<12),
// wrapping; pc <- pc+4.
func ExecAUIPC(eei EEI, instr uint32) *Exception {
	f := decodeU(instr)
	eei.SetX(f.rd, eei.PC()+f.imm)
	eei.IncrementPC()
	return nil
}

// ExecJAL implements "jal rd, offset". The return address is only
// written on a successful, aligned jump.
func ExecJAL(eei EEI, instr uint32) *Exception {
	f := decodeJ(instr)
	target := eei.PC() + f.imm
	if target%4 != 0 {
		return raise(trap.InstructionAddressMisaligned)
	}
	eei.SetX(f.rd, eei.PC()+4)
	eei.SetPC(target)
	return nil
}

// ExecJALR implements "jalr rd, rs1, offset". The target masks bit 0
// to zero; the return address is only written on success.
func ExecJALR(eei EEI, instr uint32) *Exception {
	f := decodeI(instr)
	target := (eei.X(f.rs1) + f.imm) &^ 1
	if target%4 != 0 {
		return raise(trap.InstructionAddressMisaligned)
	}
	eei.SetX(f.rd, eei.PC()+4)
	eei.SetPC(target)
	return nil
}

func branch(eei EEI, instr uint32, taken bool) *Exception {
	f := decodeB(instr)
	if !taken {
		eei.IncrementPC()
		return nil
	}
	target := eei.PC() + f.imm
	if target%4 != 0 {
		return raise(trap.InstructionAddressMisaligned)
	}
	eei.SetPC(target)
	return nil
}

func ExecBEQ(eei EEI, instr uint32) *Exception {
	f := decodeB(instr)
	return branch(eei, instr, eei.X(f.rs1) == eei.X(f.rs2))
}

func ExecBNE(eei EEI, instr uint32) *Exception {
	f := decodeB(instr)
	return branch(eei, instr, eei.X(f.rs1) != eei.X(f.rs2))
}

func ExecBLT(eei EEI, instr uint32) *Exception {
	f := decodeB(instr)
	return branch(eei, instr, int32(eei.X(f.rs1)) < int32(eei.X(f.rs2)))
}

func ExecBGE(eei EEI, instr uint32) *Exception {
	f := decodeB(instr)
	return branch(eei, instr, int32(eei.X(f.rs1)) >= int32(eei.X(f.rs2)))
}

func ExecBLTU(eei EEI, instr uint32) *Exception {
	f := decodeB(instr)
	return branch(eei, instr, eei.X(f.rs1) < eei.X(f.rs2))
}

func ExecBGEU(eei EEI, instr uint32) *Exception {
	f := decodeB(instr)
	return branch(eei, instr, eei.X(f.rs1) >= eei.X(f.rs2))
}

func load(eei EEI, instr uint32, width mem.Width, signExtend bool) *Exception {
	f := decodeI(instr)
	addr := eei.X(f.rs1) + f.imm
	v, exc := eei.Load(addr, width)
	if exc != nil {
		return exc
	}
	if signExtend {
		v = signExtendWidth(v, width)
	}
	eei.SetX(f.rd, v)
	eei.IncrementPC()
	return nil
}

func signExtendWidth(v uint32, width mem.Width) uint32 {
	switch width {
	case mem.Byte:
		if v&0x80 != 0 {
			return v | 0xFFFF_FF00
		}
	case mem.Halfword:
		if v&0x8000 != 0 {
			return v | 0xFFFF_0000
		}
	}
	return v
}

func ExecLB(eei EEI, instr uint32) *Exception  { return load(eei, instr, mem.Byte, true) }
func ExecLH(eei EEI, instr uint32) *Exception  { return load(eei, instr, mem.Halfword, true) }
func ExecLW(eei EEI, instr uint32) *Exception  { return load(eei, instr, mem.Word, false) }
func ExecLBU(eei EEI, instr uint32) *Exception { return load(eei, instr, mem.Byte, false) }
func ExecLHU(eei EEI, instr uint32) *Exception { return load(eei, instr, mem.Halfword, false) }

func store(eei EEI, instr uint32, width mem.Width) *Exception {
	f := decodeS(instr)
	addr := eei.X(f.rs1) + f.imm
	if exc := eei.Store(addr, eei.X(f.rs2), width); exc != nil {
		return exc
	}
	eei.IncrementPC()
	return nil
}

func ExecSB(eei EEI, instr uint32) *Exception { return store(eei, instr, mem.Byte) }
func ExecSH(eei EEI, instr uint32) *Exception { return store(eei, instr, mem.Halfword) }
func ExecSW(eei EEI, instr uint32) *Exception { return store(eei, instr, mem.Word) }

func ExecADDI(eei EEI, instr uint32) *Exception {
	f := decodeI(instr)
	eei.SetX(f.rd, eei.X(f.rs1)+f.imm)
	eei.IncrementPC()
	return nil
}

func ExecSLTI(eei EEI, instr uint32) *Exception {
	f := decodeI(instr)
	v := uint32(0)
	if int32(eei.X(f.rs1)) < int32(f.imm) {
		v = 1
	}
	eei.SetX(f.rd, v)
	eei.IncrementPC()
	return nil
}

func ExecSLTIU(eei EEI, instr uint32) *Exception {
	f := decodeI(instr)
	v := uint32(0)
	if eei.X(f.rs1) < f.imm {
		v = 1
	}
	eei.SetX(f.rd, v)
	eei.IncrementPC()
	return nil
}

func ExecXORI(eei EEI, instr uint32) *Exception {
	f := decodeI(instr)
	eei.SetX(f.rd, eei.X(f.rs1)^f.imm)
	eei.IncrementPC()
	return nil
}

func ExecORI(eei EEI, instr uint32) *Exception {
	f := decodeI(instr)
	eei.SetX(f.rd, eei.X(f.rs1)|f.imm)
	eei.IncrementPC()
	return nil
}

func ExecANDI(eei EEI, instr uint32) *Exception {
	f := decodeI(instr)
	eei.SetX(f.rd, eei.X(f.rs1)&f.imm)
	eei.IncrementPC()
	return nil
}

func ExecSLLI(eei EEI, instr uint32) *Exception {
	f := decodeShamtI(instr)
	eei.SetX(f.rd, eei.X(f.rs1)<<f.shamt)
	eei.IncrementPC()
	return nil
}

// ExecSRLISRAI implements both srli and srai; funct7 bit 5
// (0x20) selects arithmetic (sign-extending) shift.
func ExecSRLISRAI(eei EEI, instr uint32) *Exception {
	f := decodeShamtI(instr)
	v := eei.X(f.rs1)
	if f.funct7&0x20 != 0 {
		v = uint32(int32(v) >> f.shamt)
	} else {
		v = v >> f.shamt
	}
	eei.SetX(f.rd, v)
	eei.IncrementPC()
	return nil
}

func ExecADD(eei EEI, instr uint32) *Exception {
	f := decodeR(instr)
	eei.SetX(f.rd, eei.X(f.rs1)+eei.X(f.rs2))
	eei.IncrementPC()
	return nil
}

func ExecSUB(eei EEI, instr uint32) *Exception {
	f := decodeR(instr)
	eei.SetX(f.rd, eei.X(f.rs1)-eei.X(f.rs2))
	eei.IncrementPC()
	return nil
}

func ExecSLL(eei EEI, instr uint32) *Exception {
	f := decodeR(instr)
	eei.SetX(f.rd, eei.X(f.rs1)<<(eei.X(f.rs2)&0x1F))
	eei.IncrementPC()
	return nil
}

func ExecSLT(eei EEI, instr uint32) *Exception {
	f := decodeR(instr)
	v := uint32(0)
	if int32(eei.X(f.rs1)) < int32(eei.X(f.rs2)) {
		v = 1
	}
	eei.SetX(f.rd, v)
	eei.IncrementPC()
	return nil
}

func ExecSLTU(eei EEI, instr uint32) *Exception {
	f := decodeR(instr)
	v := uint32(0)
	if eei.X(f.rs1) < eei.X(f.rs2) {
		v = 1
	}
	eei.SetX(f.rd, v)
	eei.IncrementPC()
	return nil
}

func ExecXOR(eei EEI, instr uint32) *Exception {
	f := decodeR(instr)
	eei.SetX(f.rd, eei.X(f.rs1)^eei.X(f.rs2))
	eei.IncrementPC()
	return nil
}

func ExecSRL(eei EEI, instr uint32) *Exception {
	f := decodeR(instr)
	eei.SetX(f.rd, eei.X(f.rs1)>>(eei.X(f.rs2)&0x1F))
	eei.IncrementPC()
	return nil
}

func ExecSRA(eei EEI, instr uint32) *Exception {
	f := decodeR(instr)
	shamt := eei.X(f.rs2) & 0x1F
	eei.SetX(f.rd, uint32(int32(eei.X(f.rs1))>>shamt))
	eei.IncrementPC()
	return nil
}

func ExecOR(eei EEI, instr uint32) *Exception {
	f := decodeR(instr)
	eei.SetX(f.rd, eei.X(f.rs1)|eei.X(f.rs2))
	eei.IncrementPC()
	return nil
}

func ExecAND(eei EEI, instr uint32) *Exception {
	f := decodeR(instr)
	eei.SetX(f.rd, eei.X(f.rs1)&eei.X(f.rs2))
	eei.IncrementPC()
	return nil
}
