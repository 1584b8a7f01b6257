package asm

import (
	"bytes"
	"testing"
)

func TestMinimumProgram(t *testing.T) {
	got, err := Assemble("#org 0x0000\nhlt\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []byte{0xFF}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestRegisterArithmeticScenario(t *testing.T) {
	src := "#org 0x0000\nmov a, 5\nmov b, 3\nadd a, b\nhlt\n"
	got, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []byte{
		0x02, 0x01, 0x05, 0x00,
		0x02, 0x02, 0x03, 0x00,
		0x03, 0x01, 0x02,
		0xFF,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestForwardReferencedJump(t *testing.T) {
	// #org 0x0100: jmp(3 bytes, 0x0100-0x0102) + nop(1 byte, 0x0103) puts
	// "done" at 0x0104, per the first-pass algorithm (running logical
	// address advances by each statement's encoded size).
	src := "#org 0x0100\njmp done\nnop\ndone:\nhlt\n"
	got, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []byte{0x0A, 0x01, 0x04, 0x00, 0xFF}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestLocalLabelScoping(t *testing.T) {
	src := "#org 0x0000\nf1:\n  jmp .loop\n.loop:\n  hlt\nf2:\n  jmp .loop\n.loop:\n  hlt\n"
	lexer := NewLexer(src)
	tokens, err := lexer.Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	statements, err := NewParser(tokens).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	compiler := NewCompiler()
	code, err := compiler.Compile(statements)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	labels := compiler.Labels()
	if labels["f1.loop"] == labels["f2.loop"] {
		t.Fatalf("expected distinct addresses for f1.loop and f2.loop, both got 0x%04X", labels["f1.loop"])
	}
	// jmp f1.loop at 0x0000 (3 bytes) then hlt at 0x0003 (f1.loop),
	// then jmp f2.loop at 0x0004, hlt at 0x0007 (f2.loop).
	want := []byte{
		0x0A, 0x00, 0x03,
		0xFF,
		0x0A, 0x00, 0x07,
		0xFF,
	}
	if !bytes.Equal(code, want) {
		t.Fatalf("got %#v, want %#v", code, want)
	}
}

func TestDefinePreprocessorTruncatesToThirdToken(t *testing.T) {
	// Only the third whitespace-delimited token becomes the value; a
	// fourth token is silently dropped.
	src := "#define FOO 0x05 extra_ignored\n#org 0\nld a, FOO\nhlt\n"
	got, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []byte{0x02, 0x01, 0x05, 0x00, 0xFF}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestDefineLongestNameSubstitutedFirst(t *testing.T) {
	src := "#define FOOBAR 7\n#define FOO 3\n#org 0\nld a, FOOBAR\nhlt\n"
	got, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []byte{0x02, 0x01, 0x07, 0x00, 0xFF}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %#v, want %#v (FOOBAR must not be clobbered by FOO's substitution)", got, want)
	}
}

func TestUnknownLabelFails(t *testing.T) {
	_, err := Assemble("#org 0\njmp nowhere\n")
	if err == nil {
		t.Fatal("expected unknown-label error")
	}
	asmErr, ok := err.(*Error)
	if !ok || asmErr.Kind != KindUnknownLabel {
		t.Fatalf("got %v, want KindUnknownLabel", err)
	}
}

func TestDisassembleRoundTrip(t *testing.T) {
	src := "#org 0\nmov a, 5\nmov b, 3\nadd a, b\nhlt\n"
	code, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	text, err := Disassemble(code)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	for _, want := range []string{"ld a, 5", "ld b, 3", "add a, b", "hlt"} {
		if !bytes.Contains([]byte(text), []byte(want)) {
			t.Fatalf("disassembly %q missing %q", text, want)
		}
	}
}
