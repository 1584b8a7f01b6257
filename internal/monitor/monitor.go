// Package monitor implements an interactive single-step debugger driven by
// raw single-keystroke commands from stdin.
package monitor

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/ninebit/ninebit/internal/cpu"
)

// Command keystrokes recognized by Run.
const (
	keyStep     = 's'
	keyContinue = 'c'
	keyRegs     = 'r'
	keyQuit     = 'q'
	keyHelp     = 'h'
)

// Monitor drives a CPU one step (or one run) at a time under operator
// control, printing register state after every step. It never runs the
// CPU concurrently with itself: each command is handled to completion
// before the next keystroke is read, keeping the machine synchronous.
type Monitor struct {
	cpu *cpu.CPU
	out io.Writer
}

// New returns a Monitor driving c, printing to stdout.
func New(c *cpu.CPU) *Monitor {
	return &Monitor{cpu: c, out: os.Stdout}
}

// Run puts stdin into raw mode and dispatches keystrokes until the operator
// quits or the CPU halts or faults. It restores the terminal before
// returning in every case.
func (m *Monitor) Run() error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("monitor: failed to set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	fmt.Fprintln(m.out, "monitor: s=step c=continue r=registers q=quit h=help\r")
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return nil
		}
		switch buf[0] {
		case keyStep:
			if m.step() {
				return nil
			}
		case keyContinue:
			if m.cont() {
				return nil
			}
		case keyRegs:
			m.printRegs()
		case keyQuit:
			fmt.Fprintln(m.out, "monitor: quit\r")
			return nil
		case keyHelp:
			fmt.Fprintln(m.out, "s=step c=continue r=registers q=quit\r")
		}
	}
}

// step executes a single instruction and reports whether the session
// should end (halt, fault, or a CPU that was never running).
func (m *Monitor) step() bool {
	if !m.cpu.Running {
		fmt.Fprintln(m.out, "monitor: cpu not running\r")
		return true
	}
	if err := m.cpu.Step(); err != nil {
		fmt.Fprintf(m.out, "monitor: fault: %v\r\n", err)
		return true
	}
	m.printRegs()
	if !m.cpu.Running {
		fmt.Fprintln(m.out, "monitor: halted\r")
		return true
	}
	return false
}

// cont runs to completion (halt or fault), printing registers after the
// final instruction.
func (m *Monitor) cont() bool {
	for m.cpu.Running {
		if err := m.cpu.Step(); err != nil {
			fmt.Fprintf(m.out, "monitor: fault: %v\r\n", err)
			return true
		}
	}
	m.printRegs()
	fmt.Fprintln(m.out, "monitor: halted\r")
	return true
}

func (m *Monitor) printRegs() {
	c := m.cpu
	fmt.Fprintf(m.out, "A=%02X B=%02X C=%02X D=%02X IP=%04X IR=%02X SP=%02X BP=%02X SS=%02X Z=%v C=%v\r\n",
		c.A, c.B, c.C, c.D, c.IP, c.IR, c.SP, c.BP, c.SS, c.Flags.Z, c.Flags.C)
}
