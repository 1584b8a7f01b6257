// Package output implements the split-bin binary format: the compiled
// byte vector written as one or two files, "0.bin" and "1.bin", which a
// loader concatenates in numeric order before placing them in RAM.
package output

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// splitThreshold is the size of the first file; programs at or under
	// this many bytes produce only "0.bin".
	splitThreshold = 256
	// MaxSize is the largest program split-bin output can represent.
	MaxSize = 512
)

// ProgramTooLargeError reports a byte vector exceeding MaxSize.
type ProgramTooLargeError struct {
	Size int
}

func (e *ProgramTooLargeError) Error() string {
	return fmt.Sprintf("output: program of %d bytes exceeds the %d-byte split-bin limit", e.Size, MaxSize)
}

// WriteSplit writes code into dir as "0.bin" (and "1.bin" if code is
// longer than splitThreshold bytes). Returns *ProgramTooLargeError if code
// exceeds MaxSize.
func WriteSplit(dir string, code []byte) error {
	if len(code) > MaxSize {
		return &ProgramTooLargeError{Size: len(code)}
	}
	if len(code) <= splitThreshold {
		return os.WriteFile(filepath.Join(dir, "0.bin"), code, 0644)
	}
	if err := os.WriteFile(filepath.Join(dir, "0.bin"), code[:splitThreshold], 0644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "1.bin"), code[splitThreshold:], 0644)
}

// ReadSplit reads "0.bin" and, if present, "1.bin" from dir and
// concatenates them in numeric order.
func ReadSplit(dir string) ([]byte, error) {
	first, err := os.ReadFile(filepath.Join(dir, "0.bin"))
	if err != nil {
		return nil, err
	}
	second, err := os.ReadFile(filepath.Join(dir, "1.bin"))
	if err != nil {
		if os.IsNotExist(err) {
			return first, nil
		}
		return nil, err
	}
	return append(first, second...), nil
}
