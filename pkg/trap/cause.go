// Package trap implements the M-mode privileged architecture: trap
// causes, the trap controller (interrupt evaluation, exception and
// mret procedures), machine-mode counters, and the CSR address map.
package trap

// Exception identifies one of the nine synchronous trap causes this
// core can raise.
type Exception int

// The exception variants implemented by this core.
const (
	InstructionAddressMisaligned Exception = iota
	InstructionAccessFault
	IllegalInstruction
	Breakpoint
	LoadAddressMisaligned
	LoadAccessFault
	StoreAddressMisaligned
	StoreAccessFault
	MmodeEcall
)

func (e Exception) String() string {
	switch e {
	case InstructionAddressMisaligned:
		return "instruction address misaligned"
	case InstructionAccessFault:
		return "instruction access fault"
	case IllegalInstruction:
		return "illegal instruction"
	case Breakpoint:
		return "breakpoint"
	case LoadAddressMisaligned:
		return "load address misaligned"
	case LoadAccessFault:
		return "load access fault"
	case StoreAddressMisaligned:
		return "store address misaligned"
	case StoreAccessFault:
		return "store access fault"
	case MmodeEcall:
		return "environment call from M-mode"
	default:
		return "unknown exception"
	}
}

// code returns the mcause exception code for e.
func (e Exception) code() uint32 {
	switch e {
	case InstructionAddressMisaligned:
		return 0
	case InstructionAccessFault:
		return 1
	case IllegalInstruction:
		return 2
	case Breakpoint:
		return 3
	case LoadAddressMisaligned:
		return 4
	case LoadAccessFault:
		return 5
	case StoreAddressMisaligned:
		return 6
	case StoreAccessFault:
		return 7
	case MmodeEcall:
		return 11
	default:
		panic("trap: unknown exception variant")
	}
}

// Interrupt identifies one of the three asynchronous trap causes
// this core can raise, in the fixed priority order evaluated on
// entry: external, then software, then timer.
type Interrupt int

const (
	Software Interrupt = iota
	Timer
	External
)

func (i Interrupt) String() string {
	switch i {
	case Software:
		return "machine software interrupt"
	case Timer:
		return "machine timer interrupt"
	case External:
		return "machine external interrupt"
	default:
		return "unknown interrupt"
	}
}

// code returns the mie/mip bit position and mcause exception code
// for i (bit positions 3, 7, 11 per the privileged spec).
func (i Interrupt) code() uint32 {
	switch i {
	case Software:
		return 3
	case Timer:
		return 7
	case External:
		return 11
	default:
		panic("trap: unknown interrupt variant")
	}
}

// Cause is a tagged trap cause: either an Exception or an Interrupt.
// Exactly one of the two fields is meaningful; use IsInterrupt to
// find out which.
type Cause struct {
	isInterrupt bool
	exception   Exception
	interrupt   Interrupt
}

// ExceptionCause wraps an Exception as a Cause.
func ExceptionCause(e Exception) Cause {
	return Cause{isInterrupt: false, exception: e}
}

// InterruptCause wraps an Interrupt as a Cause.
func InterruptCause(i Interrupt) Cause {
	return Cause{isInterrupt: true, interrupt: i}
}

// IsInterrupt reports whether c is an interrupt (as opposed to an
// exception).
func (c Cause) IsInterrupt() bool {
	return c.isInterrupt
}

// Exception returns the exception this cause wraps. Only valid if
// !c.IsInterrupt().
func (c Cause) Exception() Exception {
	return c.exception
}

// Interrupt returns the interrupt this cause wraps. Only valid if
// c.IsInterrupt().
func (c Cause) Interrupt() Interrupt {
	return c.interrupt
}

// MCause encodes c the way the mcause CSR stores it:
// (interrupt_bit<<31) | code.
func (c Cause) MCause() uint32 {
	if c.isInterrupt {
		return 0x8000_0000 | c.interrupt.code()
	}
	return c.exception.code()
}

func (c Cause) String() string {
	if c.isInterrupt {
		return c.interrupt.String()
	}
	return c.exception.String()
}
