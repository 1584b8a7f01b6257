// Package isa holds the instruction and register encodings shared by the
// assembler and the CPU engine. Keeping both sides of the encoding in one
// place means the compiler's byte tables and the CPU's dispatch table can
// never drift apart.
package isa

// Opcode identifies one of the 28 machine instructions.
type Opcode byte

const (
	NOP     Opcode = 0x00
	MOVR    Opcode = 0x01
	LDR     Opcode = 0x02
	ADDR    Opcode = 0x03
	SUBR    Opcode = 0x04
	XORR    Opcode = 0x05
	ORR     Opcode = 0x06
	ANDR    Opcode = 0x07
	NOTR    Opcode = 0x08
	CMPR    Opcode = 0x09
	JMP     Opcode = 0x0A
	JE      Opcode = 0x0B
	JNE     Opcode = 0x0C
	SHLR    Opcode = 0x0D
	SHRR    Opcode = 0x0E
	CALL    Opcode = 0x0F
	RET     Opcode = 0x10
	INR     Opcode = 0x11
	OUTR    Opcode = 0x12
	LDM     Opcode = 0x13
	LDMPAIR Opcode = 0x14
	PUSHR   Opcode = 0x15
	POPR    Opcode = 0x16
	INCR    Opcode = 0x17
	DECR    Opcode = 0x18
	STM     Opcode = 0x19
	STMPAIR Opcode = 0x1A
	HLT     Opcode = 0xFF
)

// Register selectors, as written into the second byte of MOV_R/LD_R/etc and
// read back by the CPU's register lookup.
const (
	RegA  byte = 0x01
	RegB  byte = 0x02
	RegC  byte = 0x03
	RegD  byte = 0x04
	RegIP byte = 0x05
	RegIR byte = 0x06
	RegSP byte = 0x07
	RegBP byte = 0x08
	RegSS byte = 0x09
)

// CMP_R addressing-mode discriminator, the fourth operand byte.
const (
	CmpRegReg byte = 0x00
	CmpRegImm byte = 0x01
	CmpImmReg byte = 0x02
	CmpImmImm byte = 0x03
)

// RegisterNames maps assembly-source register names to their selector byte.
// Lookup is case-insensitive at the lexer; keys here are already lowercase.
var RegisterNames = map[string]byte{
	"a":  RegA,
	"b":  RegB,
	"c":  RegC,
	"d":  RegD,
	"ip": RegIP,
	"ir": RegIR,
	"sp": RegSP,
	"bp": RegBP,
	"ss": RegSS,
}

// RegisterSelectorName is the inverse of RegisterNames, used by the
// disassembler and by diagnostics.
var RegisterSelectorName = map[byte]string{
	RegA:  "a",
	RegB:  "b",
	RegC:  "c",
	RegD:  "d",
	RegIP: "ip",
	RegIR: "ir",
	RegSP: "sp",
	RegBP: "bp",
	RegSS: "ss",
}

// Mnemonics maps each assembly mnemonic to one opcode. A handful of
// mnemonics (mov, cmp) are polymorphic: the compiler picks their concrete
// encoding from operand shape rather than through this table.
var Mnemonics = map[string]Opcode{
	"nop":      NOP,
	"jmp":      JMP,
	"je":       JE,
	"jne":      JNE,
	"shl":      SHLR,
	"shr":      SHRR,
	"call":     CALL,
	"ret":      RET,
	"in":       INR,
	"out":      OUTR,
	"push":     PUSHR,
	"pop":      POPR,
	"inc":      INCR,
	"dec":      DECR,
	"hlt":      HLT,
	"mov":      MOVR, // resolved further by the compiler
	"cmp":      CMPR,
	"ld":       LDR,
	"ldm":      LDM,
	"stm":      STM,
	"stm_pair": STMPAIR,
	"add":      ADDR,
	"sub":      SUBR,
	"xor":      XORR,
	"or":       ORR,
	"and":      ANDR,
	"not":      NOTR,
}

// InstructionSize gives the total encoded length, in bytes, of an
// instruction with the given opcode: one opcode byte plus its operand
// bytes. Used by the compiler's first pass to lay out addresses, and by the
// CPU to know nothing at all — the CPU fetches operand bytes one at a time
// as each case requires, so this table exists only on the assembler side
// and here, shared, so the two never disagree.
func InstructionSize(op Opcode) (int, bool) {
	switch op {
	case NOP, RET, HLT:
		return 1, true
	case SHLR, SHRR, PUSHR, POPR, INCR, DECR:
		return 2, true
	case ADDR, SUBR, XORR, ORR, ANDR, NOTR, JMP, JE, JNE, CALL, INR, OUTR:
		return 3, true
	case MOVR, LDR, CMPR, LDM, LDMPAIR, STM, STMPAIR:
		return 4, true
	default:
		return 0, false
	}
}

// Name returns the canonical mnemonic for an opcode, used by the
// disassembler. Opcodes with more than one source mnemonic (mov's several
// forms) return the family name.
func (op Opcode) Name() string {
	switch op {
	case NOP:
		return "nop"
	case MOVR:
		return "mov"
	case LDR:
		return "ld"
	case ADDR:
		return "add"
	case SUBR:
		return "sub"
	case XORR:
		return "xor"
	case ORR:
		return "or"
	case ANDR:
		return "and"
	case NOTR:
		return "not"
	case CMPR:
		return "cmp"
	case JMP:
		return "jmp"
	case JE:
		return "je"
	case JNE:
		return "jne"
	case SHLR:
		return "shl"
	case SHRR:
		return "shr"
	case CALL:
		return "call"
	case RET:
		return "ret"
	case INR:
		return "in"
	case OUTR:
		return "out"
	case LDM:
		return "ldm"
	case LDMPAIR:
		return "ldm_pair"
	case PUSHR:
		return "push"
	case POPR:
		return "pop"
	case INCR:
		return "inc"
	case DECR:
		return "dec"
	case STM:
		return "stm"
	case STMPAIR:
		return "stm_pair"
	case HLT:
		return "hlt"
	default:
		return "???"
	}
}
