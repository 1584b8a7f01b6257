package cpu

// alu implements the machine's flag-producing operations. Every method
// updates both flags as a unit: Z is always (result == 0); C carries
// operation-specific meaning (overflow for add, borrow for sub/cmp, the
// shifted-out bit for shl/shr, and unconditionally false for the bitwise
// operators). This mirrors the reference ALU exactly, including the
// bitwise ops' habit of clearing carry regardless of operand values.
type alu struct {
	flags *Flags
}

func (a *alu) updateFlags(result byte, carry bool) {
	a.flags.Z = result == 0
	a.flags.C = carry
}

func (a *alu) add(x, y byte) byte {
	sum := int(x) + int(y)
	result := byte(sum & 0xFF)
	a.updateFlags(result, sum > 0xFF)
	return result
}

func (a *alu) sub(x, y byte) byte {
	result := x - y
	a.updateFlags(result, x < y)
	return result
}

func (a *alu) xor(x, y byte) byte {
	result := x ^ y
	a.updateFlags(result, false)
	return result
}

func (a *alu) or(x, y byte) byte {
	result := x | y
	a.updateFlags(result, false)
	return result
}

func (a *alu) and(x, y byte) byte {
	result := x & y
	a.updateFlags(result, false)
	return result
}

func (a *alu) not(x byte) byte {
	result := ^x
	a.updateFlags(result, false)
	return result
}

func (a *alu) shl(x byte) byte {
	carry := x&0x80 != 0
	result := x << 1
	a.updateFlags(result, carry)
	return result
}

func (a *alu) shr(x byte) byte {
	carry := x&0x01 != 0
	result := x >> 1
	a.updateFlags(result, carry)
	return result
}

// cmp computes x-y for flag purposes only; the result is discarded and no
// register is written.
func (a *alu) cmp(x, y byte) {
	a.updateFlags(x-y, x < y)
}

// inc and dec share add/sub's flag semantics with a fixed operand of 1.
func (a *alu) inc(x byte) byte { return a.add(x, 1) }
func (a *alu) dec(x byte) byte { return a.sub(x, 1) }
