package asm

import (
	"fmt"
	"strings"

	"github.com/ninebit/ninebit/internal/isa"
)

// Disassemble decodes a byte stream back into one mnemonic-form text line
// per instruction, in the same encoding the compiler produces. It has no
// equivalent in the reference assembler; it exists because a compiler's
// byte tables have a natural, useful inverse, and because every opcode's
// shape is already known here.
func Disassemble(code []byte) (string, error) {
	var sb strings.Builder
	pos := 0
	for pos < len(code) {
		op := isa.Opcode(code[pos])
		size, ok := isa.InstructionSize(op)
		if !ok {
			return "", fmt.Errorf("asm: disassemble: unrecognized opcode 0x%02X at offset %d", op, pos)
		}
		if pos+size > len(code) {
			return "", fmt.Errorf("asm: disassemble: truncated instruction at offset %d", pos)
		}
		operands := code[pos+1 : pos+size]
		fmt.Fprintf(&sb, "%04X: %s\n", pos, disassembleOne(op, operands))
		pos += size
	}
	return sb.String(), nil
}

func regName(selector byte) string {
	if name, ok := isa.RegisterSelectorName[selector]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", selector)
}

func disassembleOne(op isa.Opcode, b []byte) string {
	switch op {
	case isa.NOP, isa.RET, isa.HLT:
		return op.Name()
	case isa.MOVR:
		if b[2] != 0 {
			return fmt.Sprintf("mov %s, %s+%d", regName(b[0]), regName(b[1]), b[2])
		}
		return fmt.Sprintf("mov %s, %s", regName(b[0]), regName(b[1]))
	case isa.LDR:
		return fmt.Sprintf("ld %s, %d", regName(b[0]), b[1])
	case isa.ADDR, isa.SUBR, isa.XORR, isa.ORR, isa.ANDR, isa.INR, isa.OUTR:
		return fmt.Sprintf("%s %s, %s", op.Name(), regName(b[0]), regName(b[1]))
	case isa.NOTR:
		return fmt.Sprintf("not %s", regName(b[0]))
	case isa.CMPR:
		return fmt.Sprintf("cmp %s, %s ; mode=0x%02X", formatCmpOperand(b[0], b[2] == isa.CmpImmReg || b[2] == isa.CmpImmImm), formatCmpOperand(b[1], b[2] == isa.CmpRegImm || b[2] == isa.CmpImmImm), b[2])
	case isa.JMP, isa.JE, isa.JNE, isa.CALL:
		return fmt.Sprintf("%s 0x%04X", op.Name(), uint16(b[0])<<8|uint16(b[1]))
	case isa.SHLR, isa.SHRR, isa.PUSHR, isa.POPR, isa.INCR, isa.DECR:
		return fmt.Sprintf("%s %s", op.Name(), regName(b[0]))
	case isa.LDM:
		return fmt.Sprintf("ldm %s, [0x%04X]", regName(b[0]), uint16(b[1])<<8|uint16(b[2]))
	case isa.LDMPAIR:
		return fmt.Sprintf("ldm_pair %s, [%s, %s]", regName(b[0]), regName(b[1]), regName(b[2]))
	case isa.STM:
		return fmt.Sprintf("stm [0x%04X], %s", uint16(b[0])<<8|uint16(b[1]), regName(b[2]))
	case isa.STMPAIR:
		return fmt.Sprintf("stm_pair [%s, %s], %s", regName(b[0]), regName(b[1]), regName(b[2]))
	default:
		return fmt.Sprintf("??? (0x%02X)", byte(op))
	}
}

// formatCmpOperand renders a CMP_R operand byte as either a register name
// or a literal, depending on whether the mode byte marks it immediate.
func formatCmpOperand(v byte, isImmediate bool) string {
	if isImmediate {
		return fmt.Sprintf("%d", v)
	}
	return regName(v)
}
