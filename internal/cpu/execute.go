package cpu

import "github.com/ninebit/ninebit/internal/isa"

// execute fetches one opcode and dispatches it. Each case fetches exactly
// as many operand bytes as the opcode's encoding defines (see
// isa.InstructionSize), so IP naturally ends pointing at the next
// instruction regardless of which branch runs.
func (c *CPU) execute() error {
	opcodeByte, err := c.fetchByte()
	if err != nil {
		return err
	}
	opcode := isa.Opcode(opcodeByte)

	switch opcode {
	case isa.NOP:
		// Operation: no effect.

	case isa.MOVR:
		// Operation: 1. fetch dst, src, bias. 2. dst <- reg[src] + bias.
		dst, err := c.fetchByte()
		if err != nil {
			return err
		}
		src, err := c.fetchByte()
		if err != nil {
			return err
		}
		bias, err := c.fetchByte()
		if err != nil {
			return err
		}
		dstH, err := c.regRef(dst)
		if err != nil {
			return err
		}
		srcH, err := c.regRef(src)
		if err != nil {
			return err
		}
		dstH.set(srcH.get() + uint16(bias))

	case isa.LDR:
		// Operation: 1. fetch dst, imm, pad (pad is consumed, not used).
		// 2. dst <- imm.
		dst, err := c.fetchByte()
		if err != nil {
			return err
		}
		imm, err := c.fetchByte()
		if err != nil {
			return err
		}
		if _, err := c.fetchByte(); err != nil { // pad byte
			return err
		}
		dstH, err := c.regRef(dst)
		if err != nil {
			return err
		}
		dstH.set(uint16(imm))

	case isa.ADDR, isa.SUBR, isa.XORR, isa.ORR, isa.ANDR:
		// Operation: 1. fetch a, b. 2. a <- alu(a, b); flags updated.
		a, err := c.fetchByte()
		if err != nil {
			return err
		}
		b, err := c.fetchByte()
		if err != nil {
			return err
		}
		aH, err := c.regRef(a)
		if err != nil {
			return err
		}
		bH, err := c.regRef(b)
		if err != nil {
			return err
		}
		x, y := aH.getByte(), bH.getByte()
		var result byte
		switch opcode {
		case isa.ADDR:
			result = c.alu.add(x, y)
		case isa.SUBR:
			result = c.alu.sub(x, y)
		case isa.XORR:
			result = c.alu.xor(x, y)
		case isa.ORR:
			result = c.alu.or(x, y)
		case isa.ANDR:
			result = c.alu.and(x, y)
		}
		aH.set(uint16(result))

	case isa.NOTR:
		// Operation: 1. fetch a, b (b is consumed, not used — preserves
		// the reference encoding's byte count). 2. a <- ~a.
		a, err := c.fetchByte()
		if err != nil {
			return err
		}
		if _, err := c.fetchByte(); err != nil {
			return err
		}
		aH, err := c.regRef(a)
		if err != nil {
			return err
		}
		aH.set(uint16(c.alu.not(aH.getByte())))

	case isa.CMPR:
		// Operation: 1. fetch x, y, mode. 2. resolve x/y per mode.
		// 3. update flags from x-y; no register is written.
		x, err := c.fetchByte()
		if err != nil {
			return err
		}
		y, err := c.fetchByte()
		if err != nil {
			return err
		}
		mode, err := c.fetchByte()
		if err != nil {
			return err
		}
		xv, yv, err := c.resolveCmpOperands(x, y, mode)
		if err != nil {
			return err
		}
		c.alu.cmp(xv, yv)

	case isa.JMP:
		// Operation: 1. fetch hi, lo. 2. IP <- (hi<<8)|lo.
		target, err := c.fetchAddress()
		if err != nil {
			return err
		}
		c.IP = target

	case isa.JE:
		// Operation: 1. fetch hi, lo. 2. if Z, IP <- (hi<<8)|lo.
		target, err := c.fetchAddress()
		if err != nil {
			return err
		}
		if c.Flags.Z {
			c.IP = target
		}

	case isa.JNE:
		// Operation: 1. fetch hi, lo. 2. if !Z, IP <- (hi<<8)|lo.
		target, err := c.fetchAddress()
		if err != nil {
			return err
		}
		if !c.Flags.Z {
			c.IP = target
		}

	case isa.SHLR, isa.SHRR:
		// Operation: 1. fetch r. 2. shift r by one bit; C <- shifted-out
		// bit; Z updated.
		r, err := c.fetchByte()
		if err != nil {
			return err
		}
		rH, err := c.regRef(r)
		if err != nil {
			return err
		}
		if opcode == isa.SHLR {
			rH.set(uint16(c.alu.shl(rH.getByte())))
		} else {
			rH.set(uint16(c.alu.shr(rH.getByte())))
		}

	case isa.CALL:
		// Operation: 1. fetch hi, lo. 2. push IP.low, then IP.high.
		// 3. IP <- (hi<<8)|lo.
		target, err := c.fetchAddress()
		if err != nil {
			return err
		}
		if err := c.push(byte(c.IP & 0xFF)); err != nil {
			return err
		}
		if err := c.push(byte(c.IP >> 8)); err != nil {
			return err
		}
		c.IP = target

	case isa.RET:
		// Operation: 1. pop high, then pop low (symmetric with CALL's
		// push order). 2. IP <- (hi<<8)|lo.
		hi, err := c.pop()
		if err != nil {
			return err
		}
		lo, err := c.pop()
		if err != nil {
			return err
		}
		c.IP = uint16(hi)<<8 | uint16(lo)

	case isa.INR:
		// Operation: 1. fetch port_reg, dst_reg. 2. dst <- bus.read(port).
		portReg, err := c.fetchByte()
		if err != nil {
			return err
		}
		dstReg, err := c.fetchByte()
		if err != nil {
			return err
		}
		portH, err := c.regRef(portReg)
		if err != nil {
			return err
		}
		dstH, err := c.regRef(dstReg)
		if err != nil {
			return err
		}
		dstH.set(uint16(c.Bus.Read(portH.getByte())))

	case isa.OUTR:
		// Operation: 1. fetch port_reg, val_reg. 2. bus.write(port, val).
		portReg, err := c.fetchByte()
		if err != nil {
			return err
		}
		valReg, err := c.fetchByte()
		if err != nil {
			return err
		}
		portH, err := c.regRef(portReg)
		if err != nil {
			return err
		}
		valH, err := c.regRef(valReg)
		if err != nil {
			return err
		}
		c.Bus.Write(portH.getByte(), valH.getByte())

	case isa.LDM:
		// Operation: 1. fetch dst, hi, lo. 2. dst <- ram[(hi<<8)|lo].
		dst, err := c.fetchByte()
		if err != nil {
			return err
		}
		addr, err := c.fetchAddress()
		if err != nil {
			return err
		}
		v, err := c.RAM.Read(addr)
		if err != nil {
			return &Fault{Kind: OutOfBounds, Address: addr, Detail: err.Error()}
		}
		dstH, err := c.regRef(dst)
		if err != nil {
			return err
		}
		dstH.set(uint16(v))

	case isa.LDMPAIR:
		// Operation: 1. fetch dst, hi_reg, lo_reg. 2. dst <-
		// ram[(reg[hi_reg]<<8)|reg[lo_reg]].
		dst, err := c.fetchByte()
		if err != nil {
			return err
		}
		addr, err := c.fetchPairAddress()
		if err != nil {
			return err
		}
		v, err := c.RAM.Read(addr)
		if err != nil {
			return &Fault{Kind: OutOfBounds, Address: addr, Detail: err.Error()}
		}
		dstH, err := c.regRef(dst)
		if err != nil {
			return err
		}
		dstH.set(uint16(v))

	case isa.PUSHR:
		// Operation: 1. fetch r. 2. push reg[r].
		r, err := c.fetchByte()
		if err != nil {
			return err
		}
		rH, err := c.regRef(r)
		if err != nil {
			return err
		}
		if err := c.push(rH.getByte()); err != nil {
			return err
		}

	case isa.POPR:
		// Operation: 1. fetch r. 2. reg[r] <- pop().
		r, err := c.fetchByte()
		if err != nil {
			return err
		}
		rH, err := c.regRef(r)
		if err != nil {
			return err
		}
		v, err := c.pop()
		if err != nil {
			return err
		}
		rH.set(uint16(v))

	case isa.INCR, isa.DECR:
		// Operation: 1. fetch r. 2. r <- r+1 or r-1; flags updated.
		r, err := c.fetchByte()
		if err != nil {
			return err
		}
		rH, err := c.regRef(r)
		if err != nil {
			return err
		}
		if opcode == isa.INCR {
			rH.set(uint16(c.alu.inc(rH.getByte())))
		} else {
			rH.set(uint16(c.alu.dec(rH.getByte())))
		}

	case isa.STM:
		// Operation: 1. fetch hi, lo, src. 2. ram[(hi<<8)|lo] <- reg[src].
		addr, err := c.fetchAddress()
		if err != nil {
			return err
		}
		src, err := c.fetchByte()
		if err != nil {
			return err
		}
		srcH, err := c.regRef(src)
		if err != nil {
			return err
		}
		if err := c.RAM.Write(addr, srcH.getByte()); err != nil {
			return &Fault{Kind: OutOfBounds, Address: addr, Detail: err.Error()}
		}

	case isa.STMPAIR:
		// Operation: 1. fetch hi_reg, lo_reg, src. 2. ram[pair] <-
		// reg[src].
		addr, err := c.fetchPairAddress()
		if err != nil {
			return err
		}
		src, err := c.fetchByte()
		if err != nil {
			return err
		}
		srcH, err := c.regRef(src)
		if err != nil {
			return err
		}
		if err := c.RAM.Write(addr, srcH.getByte()); err != nil {
			return &Fault{Kind: OutOfBounds, Address: addr, Detail: err.Error()}
		}

	case isa.HLT:
		// Operation: running <- false.
		c.Running = false

	default:
		return &Fault{Kind: IllegalOpcode, Address: c.IP - 1, Detail: "unrecognized opcode"}
	}

	return nil
}

// fetchAddress reads a big-endian (hi, lo) address pair.
func (c *CPU) fetchAddress() (uint16, error) {
	hi, err := c.fetchByte()
	if err != nil {
		return 0, err
	}
	lo, err := c.fetchByte()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// fetchPairAddress reads two register selectors and combines the
// registers they name into a big-endian address.
func (c *CPU) fetchPairAddress() (uint16, error) {
	hiReg, err := c.fetchByte()
	if err != nil {
		return 0, err
	}
	loReg, err := c.fetchByte()
	if err != nil {
		return 0, err
	}
	hiH, err := c.regRef(hiReg)
	if err != nil {
		return 0, err
	}
	loH, err := c.regRef(loReg)
	if err != nil {
		return 0, err
	}
	return uint16(hiH.getByte())<<8 | uint16(loH.getByte()), nil
}

// resolveCmpOperands resolves the two comparison operands according to the
// CMP_R mode byte: 0x00 reg-reg, 0x01 reg-imm, 0x02 imm-reg, 0x03 imm-imm.
func (c *CPU) resolveCmpOperands(x, y, mode byte) (byte, byte, error) {
	switch mode {
	case isa.CmpRegReg:
		xH, err := c.regRef(x)
		if err != nil {
			return 0, 0, err
		}
		yH, err := c.regRef(y)
		if err != nil {
			return 0, 0, err
		}
		return xH.getByte(), yH.getByte(), nil
	case isa.CmpRegImm:
		xH, err := c.regRef(x)
		if err != nil {
			return 0, 0, err
		}
		return xH.getByte(), y, nil
	case isa.CmpImmReg:
		yH, err := c.regRef(y)
		if err != nil {
			return 0, 0, err
		}
		return x, yH.getByte(), nil
	case isa.CmpImmImm:
		return x, y, nil
	default:
		return 0, 0, &Fault{Kind: IllegalOpcode, Address: c.IP, Detail: "invalid cmp mode"}
	}
}
