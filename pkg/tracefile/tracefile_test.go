package tracefile

import (
	"testing"

	"github.com/rv32mcu/rv32mcu/pkg/platform"
)

// loadWord writes a little-endian instruction word directly into
// EEPROM via the loader bypass, the same way a real loader would.
func loadWord(p *platform.Platform, addr uint32, instr uint32) {
	for i := uint32(0); i < 4; i++ {
		p.LoadByte(addr+i, byte(instr>>(8*i)))
	}
}

func TestLUIScenario(t *testing.T) {
	p := platform.New()
	// lui x2, 53 -> imm = 53<<12 already placed in the U-immediate field
	loadWord(p, 0, 0x37|2<<7|uint32(53<<12))
	if err := Run(p, []TracePoint{
		{Cycle: 1, Properties: []Property{PC(4), Reg(2, 53<<12)}},
	}, 10); err != nil {
		t.Fatal(err)
	}
}

func TestUARTScenario(t *testing.T) {
	p := platform.New()
	// addi x1, x0, 0x41 ('A')
	loadWord(p, 0, 0x13|1<<7|uint32(0x41)<<20)
	// lui x2, 0x10000 (UARTTXAddr's upper bits: 0x1000_0000 >> 12 = 0x1_0000)
	loadWord(p, 4, 0x37|2<<7|uint32(0x1000_0000))
	// ori x2, x2, 0x18 (low bits of UARTTXAddr)
	loadWord(p, 8, 0x13|2<<7|6<<12|2<<15|uint32(0x18)<<20)
	// sw x1, 0(x2)
	loadWord(p, 12, 0x23|0<<7|2<<12|2<<15|1<<20)

	if err := Run(p, []TracePoint{
		{Cycle: 4, Properties: []Property{UART("A")}},
	}, 10); err != nil {
		t.Fatal(err)
	}
}

func TestCannotAdvanceToCycleWhenAlreadyPast(t *testing.T) {
	p := platform.New()
	loadWord(p, 0, 0x13) // addi x0, x0, 0 (nop)
	if err := Run(p, []TracePoint{{Cycle: 1}}, 10); err != nil {
		t.Fatal(err)
	}
	if err := Run(p, []TracePoint{{Cycle: 0}}, 10); err != ErrCannotAdvanceToCycle {
		t.Errorf("err = %v, want ErrCannotAdvanceToCycle", err)
	}
}

func TestMismatchReported(t *testing.T) {
	p := platform.New()
	loadWord(p, 0, 0x13) // nop
	err := Run(p, []TracePoint{{Cycle: 1, Properties: []Property{Reg(1, 99)}}}, 10)
	if err == nil {
		t.Fatal("expected a mismatch")
	}
	if _, ok := err.(Mismatch); !ok {
		t.Errorf("err type = %T, want Mismatch", err)
	}
}
