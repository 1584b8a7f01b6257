// Package ram implements the machine's flat byte-addressable memory.
//
// Unlike the teacher project's SystemBus, this RAM has no page-mapped MMIO
// regions and no internal locking: the machine is single-threaded end to
// end (one CPU, stepped synchronously), so there is exactly one writer and
// no concurrent readers to guard against.
package ram

import "fmt"

// DefaultSize is the reference RAM size: 4096 bytes, the minimum the
// machine's address space requires.
const DefaultSize = 4096

// OutOfBoundsError reports an access outside the RAM's addressable range.
type OutOfBoundsError struct {
	Address uint16
	Size    int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("ram: address 0x%04X out of bounds (size %d)", e.Address, e.Size)
}

// RAM is a fixed-size, zero-initialized byte array.
type RAM struct {
	bytes []byte
}

// New allocates RAM of the given size. Size must be at least DefaultSize;
// callers that don't care pass DefaultSize directly.
func New(size int) *RAM {
	if size < DefaultSize {
		size = DefaultSize
	}
	return &RAM{bytes: make([]byte, size)}
}

// Size reports the RAM's total addressable length.
func (r *RAM) Size() int {
	return len(r.bytes)
}

// Read returns the byte at addr.
func (r *RAM) Read(addr uint16) (byte, error) {
	if int(addr) >= len(r.bytes) {
		return 0, &OutOfBoundsError{Address: addr, Size: len(r.bytes)}
	}
	return r.bytes[addr], nil
}

// Write stores v at addr.
func (r *RAM) Write(addr uint16, v byte) error {
	if int(addr) >= len(r.bytes) {
		return &OutOfBoundsError{Address: addr, Size: len(r.bytes)}
	}
	r.bytes[addr] = v
	return nil
}

// Load copies data into RAM starting at addr, as the boot sequence does
// before the CPU begins stepping. It is the one bulk-write path into RAM;
// the CPU itself only ever reads and writes single bytes.
func (r *RAM) Load(addr uint16, data []byte) error {
	end := int(addr) + len(data)
	if end > len(r.bytes) {
		return &OutOfBoundsError{Address: uint16(end), Size: len(r.bytes)}
	}
	copy(r.bytes[addr:end], data)
	return nil
}

// Clear zeroes the entire RAM. CPU.Reset does not call it; RAM contents
// survive a reset.
func (r *RAM) Clear() {
	for i := range r.bytes {
		r.bytes[i] = 0
	}
}
