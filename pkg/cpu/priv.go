package cpu

import "github.com/rv32mcu/rv32mcu/pkg/trap"

// This file implements the M-mode privileged instructions used by
// this platform: mret, ecall, ebreak.

// ExecMRET implements "mret". The EEI owns the mepc restore and the
// mstatus.MIE/MPIE dance (trap.Machine.MRet); the executer never
// increments pc itself since Mret already repositions it.
func ExecMRET(eei EEI, instr uint32) *Exception {
	eei.Mret()
	return nil
}

// ExecECALL implements "ecall" from M-mode: it always raises
// MmodeEcall; the platform's trap entry takes it from there.
func ExecECALL(eei EEI, instr uint32) *Exception {
	return raise(trap.MmodeEcall)
}

// ExecEBREAK implements "ebreak": raises Breakpoint.
func ExecEBREAK(eei EEI, instr uint32) *Exception {
	return raise(trap.Breakpoint)
}
