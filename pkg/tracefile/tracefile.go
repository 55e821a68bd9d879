// Package tracefile implements the trace-check harness: replaying a
// sequence of cycle-stamped property assertions against a live
// platform and reporting the first mismatch.
package tracefile

import (
	"errors"
	"fmt"

	"github.com/rv32mcu/rv32mcu/pkg/platform"
)

// ErrCannotAdvanceToCycle is returned when the platform's mcycle has
// already passed a TracePoint's target cycle, or when Run exhausts its
// per-point step bound before reaching it.
var ErrCannotAdvanceToCycle = errors.New("tracefile: mcycle already past target cycle")

// PropertyKind distinguishes the three property shapes a TracePoint
// can assert.
type PropertyKind int

const (
	PropertyPC PropertyKind = iota
	PropertyReg
	PropertyUART
)

// Property is one assertion to check at a TracePoint's cycle.
// Exactly the fields relevant to Kind are meaningful.
type Property struct {
	Kind     PropertyKind
	PCValue  uint32
	RegIndex uint32
	RegValue uint32
	UARTText string
}

// PC returns a PropertyPC assertion.
func PC(v uint32) Property { return Property{Kind: PropertyPC, PCValue: v} }

// Reg returns a PropertyReg assertion.
func Reg(index, value uint32) Property {
	return Property{Kind: PropertyReg, RegIndex: index, RegValue: value}
}

// UART returns a PropertyUART assertion (drains the UART FIFO for
// comparison).
func UART(text string) Property { return Property{Kind: PropertyUART, UARTText: text} }

// TracePoint asserts a set of Properties hold once the platform's
// mcycle reaches Cycle.
type TracePoint struct {
	Cycle      uint64
	Properties []Property
}

// Mismatch describes one failed property comparison.
type Mismatch struct {
	Cycle    uint64
	Property Property
	Found    string
	Expected string
}

func (m Mismatch) Error() string {
	return fmt.Sprintf("tracefile: at cycle %d: found %s, expected %s", m.Cycle, m.Found, m.Expected)
}

// Run steps p through every TracePoint in order, stepping until
// mcycle reaches each point's cycle and then checking its
// properties. It returns the first Mismatch encountered, or nil if
// every point matched. maxStepsPerPoint bounds how far Run will step
// looking for a given cycle, guarding against a point that never
// arrives; a point already passed or not reached within that bound
// yields ErrCannotAdvanceToCycle.
func Run(p *platform.Platform, points []TracePoint, maxStepsPerPoint uint64) error {
	for _, tp := range points {
		if p.MCycle() > tp.Cycle {
			return ErrCannotAdvanceToCycle
		}
		var stepped uint64
		for p.MCycle() < tp.Cycle {
			if stepped >= maxStepsPerPoint {
				return ErrCannotAdvanceToCycle
			}
			p.Step()
			stepped++
		}
		for _, prop := range tp.Properties {
			if mismatch := checkProperty(p, tp.Cycle, prop); mismatch != nil {
				return *mismatch
			}
		}
	}
	return nil
}

func checkProperty(p *platform.Platform, cycle uint64, prop Property) *Mismatch {
	switch prop.Kind {
	case PropertyPC:
		if p.PC() != prop.PCValue {
			return &Mismatch{
				Cycle: cycle, Property: prop,
				Found:    fmt.Sprintf("pc=%#x", p.PC()),
				Expected: fmt.Sprintf("pc=%#x", prop.PCValue),
			}
		}
	case PropertyReg:
		got := p.X(prop.RegIndex)
		if got != prop.RegValue {
			return &Mismatch{
				Cycle: cycle, Property: prop,
				Found:    fmt.Sprintf("x%d=%#x", prop.RegIndex, got),
				Expected: fmt.Sprintf("x%d=%#x", prop.RegIndex, prop.RegValue),
			}
		}
	case PropertyUART:
		got := p.FlushUART()
		if got != prop.UARTText {
			return &Mismatch{
				Cycle: cycle, Property: prop,
				Found:    fmt.Sprintf("uart=%q", got),
				Expected: fmt.Sprintf("uart=%q", prop.UARTText),
			}
		}
	}
	return nil
}
