package cpu

import (
	"testing"

	"github.com/ninebit/ninebit/internal/isa"
	"github.com/ninebit/ninebit/internal/ram"
)

func newTestCPU(t *testing.T) *CPU {
	t.Helper()
	r := ram.New(ram.DefaultSize)
	c := New(r, NullBus{})
	c.Reset(0x0000)
	return c
}

func load(t *testing.T, c *CPU, addr uint16, program []byte) {
	t.Helper()
	if err := c.RAM.Load(addr, program); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestResetDefaults(t *testing.T) {
	c := newTestCPU(t)
	if c.SS != 0x00 || c.SP != 0xFF {
		t.Fatalf("reset: SS=0x%02X SP=0x%02X, want SS=0x00 SP=0xFF", c.SS, c.SP)
	}
	if !c.Running {
		t.Fatal("reset: expected Running == true")
	}
}

func TestMinimumProgramHalts(t *testing.T) {
	c := newTestCPU(t)
	load(t, c, 0, []byte{byte(isa.HLT)})
	if err := c.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if c.Running {
		t.Fatal("expected Running == false after hlt")
	}
}

func TestRegisterArithmeticScenario(t *testing.T) {
	c := newTestCPU(t)
	// mov a, 5 ; mov b, 3 ; add a, b ; hlt
	program := []byte{
		byte(isa.LDR), isa.RegA, 5, 0,
		byte(isa.LDR), isa.RegB, 3, 0,
		byte(isa.ADDR), isa.RegA, isa.RegB,
		byte(isa.HLT),
	}
	load(t, c, 0, program)
	if err := c.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.A != 8 {
		t.Fatalf("A = %d, want 8", c.A)
	}
	if c.B != 3 {
		t.Fatalf("B = %d, want 3", c.B)
	}
	if c.Flags.Z || c.Flags.C {
		t.Fatalf("flags = %+v, want Z=false C=false", c.Flags)
	}
}

func TestPushPopSymmetry(t *testing.T) {
	c := newTestCPU(t)
	c.A = 0x42
	if err := c.push(c.A); err != nil {
		t.Fatalf("push: %v", err)
	}
	got, err := c.pop()
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if got != 0x42 {
		t.Fatalf("pop = 0x%02X, want 0x42", got)
	}
}

func TestStackPointerWraps(t *testing.T) {
	c := newTestCPU(t)
	c.SP = 0x00
	if err := c.push(1); err != nil {
		t.Fatalf("push: %v", err)
	}
	if c.SP != 0xFF {
		t.Fatalf("SP = 0x%02X, want 0xFF after wraparound push", c.SP)
	}
}

func TestInstructionPointerWraps(t *testing.T) {
	c := newTestCPU(t)
	big := ram.New(0x10000)
	c.RAM = big
	c.IP = 0xFFFF
	if err := c.RAM.Load(0xFFFF, []byte{byte(isa.NOP)}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := c.RAM.Load(0x0000, []byte{byte(isa.HLT)}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := c.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if c.IP != 0x0000 {
		t.Fatalf("IP = 0x%04X, want 0x0000 after wraparound fetch", c.IP)
	}
}

func TestCallReturnSymmetry(t *testing.T) {
	c := newTestCPU(t)
	// at 0x0100: call 0x0200 ; hlt
	// at 0x0200: ret
	program := []byte{byte(isa.CALL), 0x02, 0x00, byte(isa.HLT)}
	load(t, c, 0x0100, program)
	load(t, c, 0x0200, []byte{byte(isa.RET)})
	c.Reset(0x0100)
	initialSP := c.SP
	if err := c.Step(); err != nil { // call
		t.Fatalf("call: %v", err)
	}
	if c.IP != 0x0200 {
		t.Fatalf("IP after call = 0x%04X, want 0x0200", c.IP)
	}
	if err := c.Step(); err != nil { // ret
		t.Fatalf("ret: %v", err)
	}
	if c.IP != 0x0103 {
		t.Fatalf("IP after ret = 0x%04X, want 0x0103", c.IP)
	}
	if c.SP != initialSP {
		t.Fatalf("SP after call/ret = 0x%02X, want 0x%02X (stack balanced)", c.SP, initialSP)
	}
	if err := c.Step(); err != nil { // hlt
		t.Fatalf("hlt: %v", err)
	}
	if c.Running {
		t.Fatal("expected Running == false after hlt")
	}
}

func TestCmpImmImmSetsFlagsOnly(t *testing.T) {
	c := newTestCPU(t)
	c.A, c.B = 9, 9
	program := []byte{byte(isa.CMPR), 5, 5, isa.CmpImmImm}
	load(t, c, 0, program)
	if err := c.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if !c.Flags.Z {
		t.Fatal("expected Z set for equal immediates")
	}
	if c.A != 9 || c.B != 9 {
		t.Fatalf("registers mutated by cmp: A=%d B=%d", c.A, c.B)
	}
}

func TestIllegalOpcodeFaultsAndHalts(t *testing.T) {
	c := newTestCPU(t)
	load(t, c, 0, []byte{0xAB})
	err := c.Step()
	if err == nil {
		t.Fatal("expected fault for illegal opcode")
	}
	var fault *Fault
	if !asFault(err, &fault) {
		t.Fatalf("expected *Fault, got %T", err)
	}
	if fault.Kind != IllegalOpcode {
		t.Fatalf("fault kind = %v, want IllegalOpcode", fault.Kind)
	}
	if c.Running {
		t.Fatal("expected Running == false after fault")
	}
}

func TestOutOfBoundsFault(t *testing.T) {
	c := newTestCPU(t)
	c.IP = uint16(c.RAM.Size())
	err := c.Step()
	if err == nil {
		t.Fatal("expected fault for out-of-bounds fetch")
	}
	var fault *Fault
	if !asFault(err, &fault) || fault.Kind != OutOfBounds {
		t.Fatalf("expected OutOfBounds fault, got %v", err)
	}
}

func asFault(err error, target **Fault) bool {
	f, ok := err.(*Fault)
	if !ok {
		return false
	}
	*target = f
	return true
}
