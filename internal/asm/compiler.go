package asm

import (
	"fmt"

	"github.com/ninebit/ninebit/internal/isa"
)

// Compiler turns a parsed statement sequence into a byte vector via the
// classic two-pass approach: pass one walks the statements purely to
// compute label addresses, pass two emits bytes using those addresses.
//
// #org resets the logical-address cursor used for label bookkeeping but
// never moves the output cursor: emission is always contiguous in
// statement order. A loader is responsible for placing the resulting
// bytes at the address named by the program's (first) #org.
type Compiler struct {
	labels map[string]uint16
}

// NewCompiler returns a Compiler ready to compile one statement sequence.
func NewCompiler() *Compiler {
	return &Compiler{labels: make(map[string]uint16)}
}

// Compile runs both passes and returns the emitted byte vector.
func (c *Compiler) Compile(statements []Statement) ([]byte, error) {
	if err := c.firstPass(statements); err != nil {
		return nil, err
	}
	return c.secondPass(statements)
}

// Labels exposes the symbol table computed by the first pass, useful for
// the disassembler and for diagnostics.
func (c *Compiler) Labels() map[string]uint16 {
	return c.labels
}

func (c *Compiler) firstPass(statements []Statement) error {
	var logical uint16
	for _, stmt := range statements {
		switch s := stmt.(type) {
		case OrgDirective:
			logical = s.Address
		case Label:
			c.labels[s.Name] = logical
		case Instruction:
			size, ok := mnemonicSize(s.Mnemonic)
			if !ok {
				return &Error{Kind: KindUnsupportedOperands, Line: s.Line, Msg: fmt.Sprintf("unknown mnemonic %q", s.Mnemonic)}
			}
			logical += uint16(size)
		case DataBytes:
			logical += uint16(len(s.Data))
		}
	}
	return nil
}

func (c *Compiler) secondPass(statements []Statement) ([]byte, error) {
	var out []byte
	for _, stmt := range statements {
		switch s := stmt.(type) {
		case Instruction:
			encoded, err := c.encode(s)
			if err != nil {
				return nil, err
			}
			out = append(out, encoded...)
		case DataBytes:
			out = append(out, s.Data...)
		case Label, OrgDirective:
			// Contribute nothing to the emitted bytes.
		}
	}
	return out, nil
}

// mnemonicSize reports the total encoded length for a mnemonic. mov and
// cmp are polymorphic but every one of their encodings is 4 bytes wide, so
// they need no special case here.
func mnemonicSize(mnemonic string) (int, bool) {
	switch mnemonic {
	case "mov", "cmp":
		return 4, true
	default:
		op, ok := isa.Mnemonics[mnemonic]
		if !ok {
			return 0, false
		}
		return isa.InstructionSize(op)
	}
}

func (c *Compiler) resolveLabel(name string, line int) (uint16, error) {
	addr, ok := c.labels[name]
	if !ok {
		return 0, &Error{Kind: KindUnknownLabel, Line: line, Msg: fmt.Sprintf("unknown label %q", name)}
	}
	return addr, nil
}

func splitAddr(v uint16) (hi, lo byte) {
	return byte(v >> 8), byte(v & 0xFF)
}

// encode dispatches by mnemonic. Every opcode but mov and cmp is encoded
// generically: each operand contributes its raw bytes in order, and the
// result is padded with zeros up to the opcode's declared width — the
// same "pad remaining width with zeros" rule the reference compiler
// applies, which is what gives not's unused second operand byte and
// ld's unused third byte their zero padding.
func (c *Compiler) encode(inst Instruction) ([]byte, error) {
	switch inst.Mnemonic {
	case "mov":
		return c.encodeMov(inst)
	case "cmp":
		return c.encodeCmp(inst)
	default:
		op, ok := isa.Mnemonics[inst.Mnemonic]
		if !ok {
			return nil, &Error{Kind: KindUnsupportedOperands, Line: inst.Line, Msg: fmt.Sprintf("unknown mnemonic %q", inst.Mnemonic)}
		}
		return c.encodeGeneric(op, inst)
	}
}

func (c *Compiler) encodeGeneric(op isa.Opcode, inst Instruction) ([]byte, error) {
	size, ok := isa.InstructionSize(op)
	if !ok {
		return nil, &Error{Kind: KindUnsupportedOperands, Line: inst.Line, Msg: fmt.Sprintf("no size known for %q", inst.Mnemonic)}
	}
	var body []byte
	for _, operand := range inst.Operands {
		b, err := c.operandBytes(operand, inst.Line)
		if err != nil {
			return nil, err
		}
		body = append(body, b...)
	}
	if len(body) > size-1 {
		return nil, &Error{Kind: KindUnsupportedOperands, Line: inst.Line, Msg: fmt.Sprintf("%q: operands encode to %d bytes, opcode only has room for %d", inst.Mnemonic, len(body), size-1)}
	}
	out := make([]byte, 0, size)
	out = append(out, byte(op))
	out = append(out, body...)
	for len(out) < size {
		out = append(out, 0)
	}
	return out, nil
}

// operandBytes mirrors the reference compiler's compile_operand: each
// operand kind has one fixed encoding, independent of which instruction it
// appears in.
func (c *Compiler) operandBytes(op Operand, line int) ([]byte, error) {
	switch op.Kind {
	case OperandRegister:
		return []byte{op.Register}, nil
	case OperandImmediate:
		return []byte{byte(op.Value & 0xFF)}, nil
	case OperandRegisterOffset:
		return []byte{op.Register, op.Offset}, nil
	case OperandMemoryDirect:
		hi, lo := splitAddr(op.Value)
		return []byte{hi, lo}, nil
	case OperandMemoryPair:
		return []byte{op.Register, op.Register2}, nil
	case OperandLabelRef:
		addr, err := c.resolveLabel(op.Label, line)
		if err != nil {
			return nil, err
		}
		hi, lo := splitAddr(addr)
		return []byte{hi, lo}, nil
	default:
		return nil, &Error{Kind: KindUnsupportedOperands, Line: line, Msg: "unrecognized operand kind"}
	}
}

// encodeMov picks the concrete opcode for mov's several forms by
// inspecting the shape of its two operands, per the encoding-choice table.
func (c *Compiler) encodeMov(inst Instruction) ([]byte, error) {
	if len(inst.Operands) != 2 {
		return nil, &Error{Kind: KindUnsupportedOperands, Line: inst.Line, Msg: "mov requires exactly 2 operands"}
	}
	dst, src := inst.Operands[0], inst.Operands[1]

	switch dst.Kind {
	case OperandRegister:
		switch src.Kind {
		case OperandRegister:
			return []byte{byte(isa.MOVR), dst.Register, src.Register, 0}, nil
		case OperandRegisterOffset:
			return []byte{byte(isa.MOVR), dst.Register, src.Register, src.Offset}, nil
		case OperandImmediate:
			return []byte{byte(isa.LDR), dst.Register, byte(src.Value & 0xFF), 0}, nil
		case OperandMemoryPair:
			return []byte{byte(isa.LDMPAIR), dst.Register, src.Register, src.Register2}, nil
		case OperandMemoryDirect:
			hi, lo := splitAddr(src.Value)
			return []byte{byte(isa.LDM), dst.Register, hi, lo}, nil
		case OperandLabelRef:
			addr, err := c.resolveLabel(src.Label, inst.Line)
			if err != nil {
				return nil, err
			}
			hi, lo := splitAddr(addr)
			return []byte{byte(isa.LDM), dst.Register, hi, lo}, nil
		default:
			return nil, &Error{Kind: KindUnsupportedOperands, Line: inst.Line, Msg: "unsupported mov source for register destination"}
		}

	case OperandMemoryDirect:
		if src.Kind != OperandRegister {
			return nil, &Error{Kind: KindUnsupportedOperands, Line: inst.Line, Msg: "mov [addr], x requires a register source"}
		}
		hi, lo := splitAddr(dst.Value)
		return []byte{byte(isa.STM), hi, lo, src.Register}, nil

	case OperandLabelRef:
		if src.Kind != OperandRegister {
			return nil, &Error{Kind: KindUnsupportedOperands, Line: inst.Line, Msg: "mov label, x requires a register source"}
		}
		addr, err := c.resolveLabel(dst.Label, inst.Line)
		if err != nil {
			return nil, err
		}
		hi, lo := splitAddr(addr)
		return []byte{byte(isa.STM), hi, lo, src.Register}, nil

	case OperandMemoryPair:
		if src.Kind != OperandRegister {
			return nil, &Error{Kind: KindUnsupportedOperands, Line: inst.Line, Msg: "mov [r,r], x requires a register source"}
		}
		return []byte{byte(isa.STMPAIR), dst.Register, dst.Register2, src.Register}, nil

	default:
		return nil, &Error{Kind: KindUnsupportedOperands, Line: inst.Line, Msg: "unsupported mov destination"}
	}
}

// encodeCmp picks the addressing-mode byte (0x00-0x03) by inspecting
// whether each of cmp's two operands is a register or an immediate.
func (c *Compiler) encodeCmp(inst Instruction) ([]byte, error) {
	if len(inst.Operands) != 2 {
		return nil, &Error{Kind: KindUnsupportedOperands, Line: inst.Line, Msg: "cmp requires exactly 2 operands"}
	}
	x, y := inst.Operands[0], inst.Operands[1]

	xByte, xIsReg, err := cmpOperandByte(x, inst.Line)
	if err != nil {
		return nil, err
	}
	yByte, yIsReg, err := cmpOperandByte(y, inst.Line)
	if err != nil {
		return nil, err
	}

	var mode byte
	switch {
	case xIsReg && yIsReg:
		mode = isa.CmpRegReg
	case xIsReg && !yIsReg:
		mode = isa.CmpRegImm
	case !xIsReg && yIsReg:
		mode = isa.CmpImmReg
	default:
		mode = isa.CmpImmImm
	}
	return []byte{byte(isa.CMPR), xByte, yByte, mode}, nil
}

func cmpOperandByte(op Operand, line int) (value byte, isReg bool, err error) {
	switch op.Kind {
	case OperandRegister:
		return op.Register, true, nil
	case OperandImmediate:
		return byte(op.Value & 0xFF), false, nil
	default:
		return 0, false, &Error{Kind: KindUnsupportedOperands, Line: line, Msg: "cmp operands must be register or immediate"}
	}
}
