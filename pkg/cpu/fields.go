package cpu

import "github.com/rv32mcu/rv32mcu/pkg/bits"

// The standard RISC-V instruction field layouts (unprivileged spec
// v20191213, §2.3). Each decode* helper extracts one instruction
// format's operands from the raw 32-bit word.

func opcode(instr uint32) uint32 { return bits.Extract(instr, 6, 0) }
func rd(instr uint32) uint32     { return bits.Extract(instr, 11, 7) }
func funct3(instr uint32) uint32 { return bits.Extract(instr, 14, 12) }
func rs1(instr uint32) uint32    { return bits.Extract(instr, 19, 15) }
func rs2(instr uint32) uint32    { return bits.Extract(instr, 24, 20) }
func funct7(instr uint32) uint32 { return bits.Extract(instr, 31, 25) }

type rType struct {
	rd, rs1, rs2 uint32
}

func decodeR(instr uint32) rType {
	return rType{rd: rd(instr), rs1: rs1(instr), rs2: rs2(instr)}
}

type iType struct {
	rd, rs1 uint32
	imm     uint32 // sign-extended 12-bit immediate
}

func decodeI(instr uint32) iType {
	raw := bits.Extract(instr, 31, 20)
	return iType{rd: rd(instr), rs1: rs1(instr), imm: bits.SignExtend(raw, 11)}
}

// shamtIType is for shift-immediate instructions, whose shift amount
// is the low 5 bits of the would-be I-immediate (not sign-extended).
type shamtIType struct {
	rd, rs1 uint32
	shamt   uint32
	funct7  uint32
}

func decodeShamtI(instr uint32) shamtIType {
	return shamtIType{
		rd:     rd(instr),
		rs1:    rs1(instr),
		shamt:  bits.Extract(instr, 24, 20),
		funct7: funct7(instr),
	}
}

// csrIType is for the Zicsr instructions: rs1 doubles as a 5-bit
// unsigned immediate for the *i forms, and the CSR address occupies
// the top 12 bits.
type csrIType struct {
	rd, rs1 uint32
	csr     uint32
}

func decodeCSRI(instr uint32) csrIType {
	return csrIType{rd: rd(instr), rs1: rs1(instr), csr: bits.Extract(instr, 31, 20)}
}

type sType struct {
	rs1, rs2 uint32
	imm      uint32
}

func decodeS(instr uint32) sType {
	hi := bits.Extract(instr, 31, 25)
	lo := bits.Extract(instr, 11, 7)
	raw := (hi << 5) | lo
	return sType{rs1: rs1(instr), rs2: rs2(instr), imm: bits.SignExtend(raw, 11)}
}

type bType struct {
	rs1, rs2 uint32
	imm      uint32 // sign-extended byte offset
}

func decodeB(instr uint32) bType {
	bit12 := bits.Extract(instr, 31, 31)
	bit11 := bits.Extract(instr, 7, 7)
	bits10to5 := bits.Extract(instr, 30, 25)
	bits4to1 := bits.Extract(instr, 11, 8)
	raw := (bit12 << 12) | (bit11 << 11) | (bits10to5 << 5) | (bits4to1 << 1)
	return bType{rs1: rs1(instr), rs2: rs2(instr), imm: bits.SignExtend(raw, 12)}
}

type uType struct {
	rd  uint32
	imm uint32 // upper 20 bits, already shifted into position
}

func decodeU(instr uint32) uType {
	return uType{rd: rd(instr), imm: instr &^ bits.Mask(12)}
}

type jType struct {
	rd  uint32
	imm uint32 // sign-extended byte offset
}

func decodeJ(instr uint32) jType {
	bit20 := bits.Extract(instr, 31, 31)
	bits19to12 := bits.Extract(instr, 19, 12)
	bit11 := bits.Extract(instr, 20, 20)
	bits10to1 := bits.Extract(instr, 30, 21)
	raw := (bit20 << 20) | (bits19to12 << 12) | (bit11 << 11) | (bits10to1 << 1)
	return jType{rd: rd(instr), imm: bits.SignExtend(raw, 20)}
}
