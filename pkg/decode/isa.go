package decode

import "github.com/rv32mcu/rv32mcu/pkg/cpu"

// Bit-field masks used to key the tree: opcode, funct3, funct7, and
// (for the three zero-operand SYSTEM instructions) the full imm12
// field, which is the only way to tell ecall/ebreak/mret apart since
// they all share opcode 0x73, funct3 0.
const (
	opcodeMask    = 0x0000_007F
	funct3Mask    = 0x0000_7000
	funct7Mask    = 0xFE00_0000
	systemImmMask = 0xFFF0_0000
)

const (
	opLUI    = 0x37
	opAUIPC  = 0x17
	opJAL    = 0x6F
	opJALR   = 0x67
	opBranch = 0x63
	opLoad   = 0x03
	opStore  = 0x23
	opImm    = 0x13
	opReg    = 0x33
	opSystem = 0x73
)

func f3(v uint32) uint32 { return v << 12 }
func f7(v uint32) uint32 { return v << 25 }
func imm12(v uint32) uint32 { return v << 20 }

// entryDef pairs a dispatch path with the executer it resolves to.
type entryDef struct {
	path []MaskValue
	exec cpu.Executer
}

func op(opcode uint32) MaskValue          { return MaskValue{Mask: opcodeMask, Value: opcode} }
func funct3(v uint32) MaskValue           { return MaskValue{Mask: funct3Mask, Value: f3(v)} }
func funct7(v uint32) MaskValue           { return MaskValue{Mask: funct7Mask, Value: f7(v)} }
func systemImm(v uint32) MaskValue        { return MaskValue{Mask: systemImmMask, Value: imm12(v)} }

// New32IMZicsrM returns a Tree populated with every RV32IM + Zicsr +
// M-mode instruction this core implements.
//
// Panics on the first conflicting insertion: misconfiguring the ISA
// table is a programmer error, not a runtime fault.
func New32IMZicsrM() *Tree {
	t := New()
	for _, d := range isaTable() {
		if err := t.Insert(d.path, d.exec); err != nil {
			panic("decode: " + err.Error())
		}
	}
	return t
}

func isaTable() []entryDef {
	defs := []entryDef{
		{[]MaskValue{op(opLUI)}, cpu.ExecLUI},
		{[]MaskValue{op(opAUIPC)}, cpu.ExecAUIPC},
		{[]MaskValue{op(opJAL)}, cpu.ExecJAL},
		{[]MaskValue{op(opJALR), funct3(0)}, cpu.ExecJALR},

		{[]MaskValue{op(opBranch), funct3(0)}, cpu.ExecBEQ},
		{[]MaskValue{op(opBranch), funct3(1)}, cpu.ExecBNE},
		{[]MaskValue{op(opBranch), funct3(4)}, cpu.ExecBLT},
		{[]MaskValue{op(opBranch), funct3(5)}, cpu.ExecBGE},
		{[]MaskValue{op(opBranch), funct3(6)}, cpu.ExecBLTU},
		{[]MaskValue{op(opBranch), funct3(7)}, cpu.ExecBGEU},

		{[]MaskValue{op(opLoad), funct3(0)}, cpu.ExecLB},
		{[]MaskValue{op(opLoad), funct3(1)}, cpu.ExecLH},
		{[]MaskValue{op(opLoad), funct3(2)}, cpu.ExecLW},
		{[]MaskValue{op(opLoad), funct3(4)}, cpu.ExecLBU},
		{[]MaskValue{op(opLoad), funct3(5)}, cpu.ExecLHU},

		{[]MaskValue{op(opStore), funct3(0)}, cpu.ExecSB},
		{[]MaskValue{op(opStore), funct3(1)}, cpu.ExecSH},
		{[]MaskValue{op(opStore), funct3(2)}, cpu.ExecSW},

		{[]MaskValue{op(opImm), funct3(0)}, cpu.ExecADDI},
		{[]MaskValue{op(opImm), funct3(2)}, cpu.ExecSLTI},
		{[]MaskValue{op(opImm), funct3(3)}, cpu.ExecSLTIU},
		{[]MaskValue{op(opImm), funct3(4)}, cpu.ExecXORI},
		{[]MaskValue{op(opImm), funct3(6)}, cpu.ExecORI},
		{[]MaskValue{op(opImm), funct3(7)}, cpu.ExecANDI},
		{[]MaskValue{op(opImm), funct3(1), funct7(0x00)}, cpu.ExecSLLI},
		{[]MaskValue{op(opImm), funct3(5), funct7(0x00)}, cpu.ExecSRLISRAI},
		{[]MaskValue{op(opImm), funct3(5), funct7(0x20)}, cpu.ExecSRLISRAI},

		{[]MaskValue{op(opReg), funct3(0), funct7(0x00)}, cpu.ExecADD},
		{[]MaskValue{op(opReg), funct3(0), funct7(0x20)}, cpu.ExecSUB},
		{[]MaskValue{op(opReg), funct3(1), funct7(0x00)}, cpu.ExecSLL},
		{[]MaskValue{op(opReg), funct3(2), funct7(0x00)}, cpu.ExecSLT},
		{[]MaskValue{op(opReg), funct3(3), funct7(0x00)}, cpu.ExecSLTU},
		{[]MaskValue{op(opReg), funct3(4), funct7(0x00)}, cpu.ExecXOR},
		{[]MaskValue{op(opReg), funct3(5), funct7(0x00)}, cpu.ExecSRL},
		{[]MaskValue{op(opReg), funct3(5), funct7(0x20)}, cpu.ExecSRA},
		{[]MaskValue{op(opReg), funct3(6), funct7(0x00)}, cpu.ExecOR},
		{[]MaskValue{op(opReg), funct3(7), funct7(0x00)}, cpu.ExecAND},

		{[]MaskValue{op(opReg), funct3(0), funct7(0x01)}, cpu.ExecMUL},
		{[]MaskValue{op(opReg), funct3(1), funct7(0x01)}, cpu.ExecMULH},
		{[]MaskValue{op(opReg), funct3(2), funct7(0x01)}, cpu.ExecMULHSU},
		{[]MaskValue{op(opReg), funct3(3), funct7(0x01)}, cpu.ExecMULHU},
		{[]MaskValue{op(opReg), funct3(4), funct7(0x01)}, cpu.ExecDIV},
		{[]MaskValue{op(opReg), funct3(5), funct7(0x01)}, cpu.ExecDIVU},
		{[]MaskValue{op(opReg), funct3(6), funct7(0x01)}, cpu.ExecREM},
		{[]MaskValue{op(opReg), funct3(7), funct7(0x01)}, cpu.ExecREMU},

		{[]MaskValue{op(opSystem), funct3(1)}, cpu.ExecCSRRW},
		{[]MaskValue{op(opSystem), funct3(2)}, cpu.ExecCSRRS},
		{[]MaskValue{op(opSystem), funct3(3)}, cpu.ExecCSRRC},
		{[]MaskValue{op(opSystem), funct3(5)}, cpu.ExecCSRRWI},
		{[]MaskValue{op(opSystem), funct3(6)}, cpu.ExecCSRRSI},
		{[]MaskValue{op(opSystem), funct3(7)}, cpu.ExecCSRRCI},

		{[]MaskValue{op(opSystem), funct3(0), systemImm(0x000)}, cpu.ExecECALL},
		{[]MaskValue{op(opSystem), funct3(0), systemImm(0x001)}, cpu.ExecEBREAK},
		{[]MaskValue{op(opSystem), funct3(0), systemImm(0x302)}, cpu.ExecMRET},
	}
	return defs
}
