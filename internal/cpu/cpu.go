// Package cpu implements the machine's fetch-decode-execute loop: the
// register file, the flags, the stack protocol, and the 28-opcode
// instruction set.
//
// The core is entirely synchronous. Step executes exactly one instruction
// and returns; there are no goroutines, channels, or internal locks here —
// a CPU value is meant to be driven by exactly one caller at a time, the
// same discipline the teacher project's single-threaded core CPUs use
// before any concurrency is layered on by callers.
package cpu

import (
	"github.com/ninebit/ninebit/internal/isa"
	"github.com/ninebit/ninebit/internal/ram"
)

// LoadAddress is the reference boot address: boot code is placed here and
// the CPU's instruction pointer starts here on reset.
const LoadAddress uint16 = 0x00FF

// Flags holds the machine's two condition bits.
type Flags struct {
	Z bool
	C bool
}

// CPU is the machine's register file plus its bound RAM and device bus.
type CPU struct {
	A, B, C, D byte
	IP         uint16
	IR         byte
	SP, BP     byte
	SS         byte

	Flags   Flags
	Running bool

	RAM *ram.RAM
	Bus DeviceBus

	alu alu
}

// New constructs a CPU bound to the given RAM and device bus. The CPU does
// not own the RAM's lifetime; callers may preload it before the first
// Reset.
func New(r *ram.RAM, bus DeviceBus) *CPU {
	if bus == nil {
		bus = NullBus{}
	}
	c := &CPU{RAM: r, Bus: bus}
	c.alu.flags = &c.Flags
	return c
}

// Reset clears the register file and flags, sets the instruction pointer
// to loadAddress, sets the stack segment/pointer to their reference
// defaults (SS=0x00, SP=0xFF), and marks the CPU running.
func (c *CPU) Reset(loadAddress uint16) {
	c.A, c.B, c.C, c.D = 0, 0, 0, 0
	c.IR = 0
	c.BP = 0
	c.SS = 0x00
	c.SP = 0xFF
	c.Flags = Flags{}
	c.IP = loadAddress
	c.Running = true
}

// IsRunning reports whether the CPU will still act on a call to Step.
func (c *CPU) IsRunning() bool {
	return c.Running
}

// regHandle is a width-tagged reference to one register, returned by
// regRef. Exactly one of b or w is non-nil.
type regHandle struct {
	b *byte
	w *uint16
}

func (h regHandle) get() uint16 {
	if h.w != nil {
		return *h.w
	}
	return uint16(*h.b)
}

func (h regHandle) getByte() byte {
	if h.w != nil {
		return byte(*h.w)
	}
	return *h.b
}

func (h regHandle) set(v uint16) {
	if h.w != nil {
		*h.w = v
		return
	}
	*h.b = byte(v)
}

// regRef resolves a register selector byte to a handle on the
// corresponding field. This replaces a selector-keyed map of boxed
// register objects with direct field addressing.
func (c *CPU) regRef(selector byte) (regHandle, error) {
	switch selector {
	case isa.RegA:
		return regHandle{b: &c.A}, nil
	case isa.RegB:
		return regHandle{b: &c.B}, nil
	case isa.RegC:
		return regHandle{b: &c.C}, nil
	case isa.RegD:
		return regHandle{b: &c.D}, nil
	case isa.RegIP:
		return regHandle{w: &c.IP}, nil
	case isa.RegIR:
		return regHandle{b: &c.IR}, nil
	case isa.RegSP:
		return regHandle{b: &c.SP}, nil
	case isa.RegBP:
		return regHandle{b: &c.BP}, nil
	case isa.RegSS:
		return regHandle{b: &c.SS}, nil
	default:
		return regHandle{}, &Fault{Kind: IllegalOpcode, Address: c.IP, Detail: "invalid register selector"}
	}
}

// fetchByte reads the byte at IP into IR and advances IP by one, per the
// CPU's fetch contract. IP wraps modulo 65536 via ordinary uint16
// arithmetic.
func (c *CPU) fetchByte() (byte, error) {
	v, err := c.RAM.Read(c.IP)
	if err != nil {
		return 0, &Fault{Kind: OutOfBounds, Address: c.IP, Detail: err.Error()}
	}
	c.IR = v
	c.IP++
	return v, nil
}

// stackAddress computes the effective physical address of the current top
// of stack.
func (c *CPU) stackAddress() uint16 {
	return uint16(c.SS)*256 + uint16(c.SP)
}

// push decrements SP (mod 256) then writes v at the new top of stack.
func (c *CPU) push(v byte) error {
	c.SP--
	addr := c.stackAddress()
	if err := c.RAM.Write(addr, v); err != nil {
		return &Fault{Kind: OutOfBounds, Address: addr, Detail: err.Error()}
	}
	return nil
}

// pop reads the current top of stack then increments SP (mod 256).
func (c *CPU) pop() (byte, error) {
	addr := c.stackAddress()
	v, err := c.RAM.Read(addr)
	if err != nil {
		return 0, &Fault{Kind: OutOfBounds, Address: addr, Detail: err.Error()}
	}
	c.SP++
	return v, nil
}

// Step executes exactly one instruction if the CPU is running, otherwise
// it does nothing. A returned error is always a *Fault and the CPU is left
// with Running == false.
func (c *CPU) Step() error {
	if !c.Running {
		return nil
	}
	if err := c.execute(); err != nil {
		c.Running = false
		return err
	}
	return nil
}

// Run steps the CPU until it halts or faults.
func (c *CPU) Run() error {
	for c.Running {
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}
