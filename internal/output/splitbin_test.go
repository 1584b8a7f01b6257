package output

import (
	"bytes"
	"os"
	"testing"
)

func TestWriteReadRoundTripSmall(t *testing.T) {
	dir := t.TempDir()
	code := []byte{0x0A, 0x01, 0x04, 0x00, 0xFF}
	if err := WriteSplit(dir, code); err != nil {
		t.Fatalf("WriteSplit: %v", err)
	}
	if _, err := os.Stat(dir + "/1.bin"); !os.IsNotExist(err) {
		t.Fatalf("expected no 1.bin for a %d-byte program", len(code))
	}
	got, err := ReadSplit(dir)
	if err != nil {
		t.Fatalf("ReadSplit: %v", err)
	}
	if !bytes.Equal(got, code) {
		t.Fatalf("got %#v, want %#v", got, code)
	}
}

func TestWriteReadRoundTripExactlyAtThreshold(t *testing.T) {
	dir := t.TempDir()
	code := make([]byte, splitThreshold)
	for i := range code {
		code[i] = byte(i)
	}
	if err := WriteSplit(dir, code); err != nil {
		t.Fatalf("WriteSplit: %v", err)
	}
	if _, err := os.Stat(dir + "/1.bin"); !os.IsNotExist(err) {
		t.Fatalf("expected no 1.bin at exactly the split threshold")
	}
	got, err := ReadSplit(dir)
	if err != nil {
		t.Fatalf("ReadSplit: %v", err)
	}
	if !bytes.Equal(got, code) {
		t.Fatalf("round trip mismatch at threshold size")
	}
}

func TestWriteReadRoundTripAcrossBothFiles(t *testing.T) {
	dir := t.TempDir()
	code := make([]byte, splitThreshold+17)
	for i := range code {
		code[i] = byte(i)
	}
	if err := WriteSplit(dir, code); err != nil {
		t.Fatalf("WriteSplit: %v", err)
	}
	first, err := os.ReadFile(dir + "/0.bin")
	if err != nil {
		t.Fatalf("read 0.bin: %v", err)
	}
	if len(first) != splitThreshold {
		t.Fatalf("0.bin has %d bytes, want %d", len(first), splitThreshold)
	}
	second, err := os.ReadFile(dir + "/1.bin")
	if err != nil {
		t.Fatalf("read 1.bin: %v", err)
	}
	if len(second) != 17 {
		t.Fatalf("1.bin has %d bytes, want 17", len(second))
	}
	got, err := ReadSplit(dir)
	if err != nil {
		t.Fatalf("ReadSplit: %v", err)
	}
	if !bytes.Equal(got, code) {
		t.Fatalf("round trip mismatch across both files")
	}
}

func TestWriteRejectsOversizedProgram(t *testing.T) {
	dir := t.TempDir()
	code := make([]byte, MaxSize+1)
	err := WriteSplit(dir, code)
	if err == nil {
		t.Fatal("expected ProgramTooLargeError")
	}
	if _, ok := err.(*ProgramTooLargeError); !ok {
		t.Fatalf("got %T, want *ProgramTooLargeError", err)
	}
}
