// Package cpu implements the execution-environment interface and the
// RV32I/RV32M/Zicsr/M-mode instruction semantics.
//
// Instructions are written against the EEI interface rather than
// against a concrete platform struct, so that the same executer code
// runs against the production platform, a restricted test stub, or
// any future memory map.
package cpu

import (
	"github.com/rv32mcu/rv32mcu/pkg/mem"
	"github.com/rv32mcu/rv32mcu/pkg/trap"
)

// Exception is returned by EEI methods and Executers that can fault.
// A nil Exception means success.
type Exception = trap.Exception

// EEI is the capability set an instruction executer needs: program
// counter control, general-purpose register access, memory access
// gated by PMA, CSR access, and mret delegation.
type EEI interface {
	PC() uint32
	SetPC(v uint32)
	IncrementPC()

	X(i uint32) uint32
	SetX(i uint32, v uint32)

	Load(addr uint32, width mem.Width) (uint32, *Exception)
	Store(addr uint32, data uint32, width mem.Width) *Exception

	ReadCSR(addr uint32) (uint32, *Exception)
	WriteCSR(addr uint32, v uint32) *Exception

	Mret()
}

// Executer executes one instruction against eei. It returns a
// non-nil Exception if the instruction faults; the caller (the
// platform step loop) is responsible for entering the trap vector.
type Executer func(eei EEI, instr uint32) *Exception

// raise is a small helper that boxes an Exception value for return.
func raise(e Exception) *Exception {
	return &e
}
