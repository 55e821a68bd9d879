// Package platform wires the hart's components — registers, memory,
// the PMA checker, the trap controller, the CSR map, the decoder,
// and the UART queue — into the step loop the architecture describes,
// and implements cpu.EEI against that composition so the cpu
// package's executers never need to know about any of this wiring.
package platform

import (
	"github.com/rv32mcu/rv32mcu/pkg/cpu"
	"github.com/rv32mcu/rv32mcu/pkg/decode"
	"github.com/rv32mcu/rv32mcu/pkg/mem"
	"github.com/rv32mcu/rv32mcu/pkg/regfile"
	"github.com/rv32mcu/rv32mcu/pkg/trap"
	"github.com/rv32mcu/rv32mcu/pkg/uart"
)

// ResetVector is the pc value after Reset.
const ResetVector = 0x0000_0000

// Platform composes every hart component and implements cpu.EEI.
type Platform struct {
	pc uint32

	regs  regfile.File
	mem   *mem.Memory
	pma   mem.PMA
	trap  *trap.Machine
	csrs  *trap.CSRMap
	tree  *decode.Tree
	uart  *uart.Queue

	// Diagnostic is the "exceptions-are-errors" mode: when set, a
	// faulting fetch/decode/execute is returned to the caller instead
	// of entering the exception vector, and pc is left unadvanced.
	Diagnostic bool
}

// New returns a Platform with its decoder populated once, at
// construction.
func New() *Platform {
	p := &Platform{
		mem:  mem.NewMemory(),
		trap: trap.NewMachine(mem.EEPROMEnd),
		csrs: trap.NewCSRMap(),
		tree: decode.New32IMZicsrM(),
		uart: uart.New(),
	}
	p.Reset()
	return p
}

// Reset clears registers, sets pc to the reset vector, and clears
// the trap controller's mstatus.MIE/mcause.
func (p *Platform) Reset() {
	p.regs.Reset()
	p.pc = ResetVector
	p.trap.Reset()
}

// LoadByte writes v at addr, bypassing the PMA. This is the
// ByteLoader contract loaders use to populate EEPROM before the hart
// starts running.
func (p *Platform) LoadByte(addr uint32, v byte) {
	p.mem.WriteByte(addr, v)
}

// SetExternalInterrupt and SetSoftwareInterrupt are the host-facing
// knobs for the two level-triggered interrupt lines.
func (p *Platform) SetExternalInterrupt(pending bool) {
	p.trap.SetExternalInterruptPending(pending)
}

func (p *Platform) SetSoftwareInterrupt(pending bool) {
	p.trap.SetSoftwareInterruptPending(pending)
}

// SetMTimeCmp programs the timer compare register.
func (p *Platform) SetMTimeCmp(v uint64) {
	p.trap.SetMTimeCmp(v)
}

// FlushUART drains and returns everything written to uarttx so far.
func (p *Platform) FlushUART() string {
	return p.uart.Flush()
}

// MCycle, MInstret expose the performance counters for diagnostics
// and cmd/emulate's -d flag.
func (p *Platform) MCycle() uint64   { return p.trap.MCycle() }
func (p *Platform) MInstret() uint64 { return p.trap.MInstret() }
func (p *Platform) PC() uint32       { return p.pc }

// cpu.EEI implementation.

func (p *Platform) SetPC(v uint32) { p.pc = v }
func (p *Platform) IncrementPC()   { p.pc += 4 }

func (p *Platform) X(i uint32) uint32      { return p.regs.Read(i) }
func (p *Platform) SetX(i uint32, v uint32) { p.regs.Write(i, v) }

// Load routes through the PMA check, then the memory-mapped register
// table, then plain Memory.
func (p *Platform) Load(addr uint32, width mem.Width) (uint32, *cpu.Exception) {
	if e, ok := p.pma.CheckLoad(addr, width); !ok {
		return 0, &e
	}
	if v, ok := p.readMMIO(addr); ok {
		return v, nil
	}
	return p.mem.Read(addr, width), nil
}

// Store routes through the PMA check, then the memory-mapped
// register table, then plain Memory.
func (p *Platform) Store(addr uint32, data uint32, width mem.Width) *cpu.Exception {
	if e, ok := p.pma.CheckStore(addr, width); !ok {
		return &e
	}
	if p.writeMMIO(addr, data) {
		return nil
	}
	p.mem.Write(addr, data, width)
	return nil
}

func (p *Platform) readMMIO(addr uint32) (uint32, bool) {
	switch addr {
	case mem.MTimeLowAddr:
		return uint32(p.trap.MTime()), true
	case mem.MTimeHighAddr:
		return uint32(p.trap.MTime() >> 32), true
	case mem.MTimeCmpLowAddr:
		return uint32(p.trap.MTimeCmp()), true
	case mem.MTimeCmpHighAddr:
		return uint32(p.trap.MTimeCmp() >> 32), true
	case mem.SoftIntCtrlAddr:
		if p.trap.MIP()&(1<<3) != 0 {
			return 1, true
		}
		return 0, true
	case mem.ExtIntCtrlAddr:
		if p.trap.MIP()&(1<<11) != 0 {
			return 1, true
		}
		return 0, true
	case mem.UARTTXAddr:
		return 0, true // write-only register; reads as 0
	default:
		return 0, false
	}
}

func (p *Platform) writeMMIO(addr uint32, data uint32) bool {
	switch addr {
	case mem.MTimeLowAddr:
		p.trap.SetMTime((p.trap.MTime() &^ 0xFFFF_FFFF) | uint64(data))
		return true
	case mem.MTimeHighAddr:
		p.trap.SetMTime((p.trap.MTime() & 0xFFFF_FFFF) | uint64(data)<<32)
		return true
	case mem.MTimeCmpLowAddr:
		p.trap.SetMTimeCmp((p.trap.MTimeCmp() &^ 0xFFFF_FFFF) | uint64(data))
		return true
	case mem.MTimeCmpHighAddr:
		p.trap.SetMTimeCmp((p.trap.MTimeCmp() & 0xFFFF_FFFF) | uint64(data)<<32)
		return true
	case mem.SoftIntCtrlAddr:
		p.trap.SetSoftwareInterruptPending(data&1 != 0)
		return true
	case mem.ExtIntCtrlAddr:
		p.trap.SetExternalInterruptPending(data&1 != 0)
		return true
	case mem.UARTTXAddr:
		p.uart.Push(byte(data))
		return true
	default:
		return false
	}
}

func (p *Platform) ReadCSR(addr uint32) (uint32, *cpu.Exception) {
	v, err := p.csrs.Read(p.trap, addr)
	if err != nil {
		e := trap.IllegalInstruction
		return 0, &e
	}
	return v, nil
}

func (p *Platform) WriteCSR(addr uint32, v uint32) *cpu.Exception {
	if err := p.csrs.Write(p.trap, addr, v); err != nil {
		e := trap.IllegalInstruction
		return &e
	}
	return nil
}

func (p *Platform) Mret() {
	p.pc = p.trap.MRet()
}

// Step performs exactly one platform step: interrupt check,
// PMA-checked fetch, decode, execute, counter advance.
//
// It returns the exception, if any, that occurred this step (nil on
// a clean retirement or on an interrupt taken). In Diagnostic mode a
// fetch/decode/execute fault is returned without entering the trap
// vector and without advancing pc; otherwise the platform always
// enters the relevant vector itself and the return value is
// informational only.
func (p *Platform) Step() *cpu.Exception {
	defer p.trap.AdvanceCounters()

	if target, ok := p.trap.TrapInterrupt(p.pc); ok {
		p.pc = target
		return nil
	}

	fetchExc, ok := p.pma.CheckInstructionFetch(p.pc)
	if !ok {
		if p.Diagnostic {
			return &fetchExc
		}
		p.pc = p.trap.RaiseException(p.pc, fetchExc)
		return &fetchExc
	}

	instr := p.mem.Read(p.pc, mem.Word)

	exec, err := p.tree.Dispatch(instr)
	if err != nil {
		e := trap.IllegalInstruction
		if !p.Diagnostic {
			p.pc = p.trap.RaiseException(p.pc, e)
		}
		return &e
	}

	faultPC := p.pc
	if exc := exec(p, instr); exc != nil {
		if p.Diagnostic {
			return exc
		}
		p.pc = p.trap.RaiseException(faultPC, *exc)
		return exc
	}

	p.trap.Retire()
	return nil
}

// Run steps the platform up to maxSteps times, stopping early if
// stop returns true after a step. It logs nothing on success; the
// caller (cmd/emulate) is responsible for reporting.
func (p *Platform) Run(maxSteps uint64, stop func(p *Platform) bool) {
	for i := uint64(0); i < maxSteps; i++ {
		p.Step()
		if stop != nil && stop(p) {
			return
		}
	}
}

var _ cpu.EEI = (*Platform)(nil)
