package asm

import (
	"fmt"
	"strings"

	"github.com/ninebit/ninebit/internal/isa"
)

// Parser consumes a token stream and produces an AST. It tracks exactly
// one piece of state across statements: the name of the most recent
// non-local label, used to qualify local label references.
type Parser struct {
	tokens  []Token
	pos     int
	context string
}

// NewParser builds a Parser over an already-tokenized stream.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(t TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) expect(t TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != t {
		return Token{}, &Error{Kind: KindParse, Line: tok.Line, Column: tok.Column, Msg: fmt.Sprintf("expected %s, got %s %q", t, tok.Type, tok.Value)}
	}
	return p.advance(), nil
}

// Parse runs to EOF, returning the statement sequence.
func (p *Parser) Parse() ([]Statement, error) {
	var statements []Statement
	for {
		tok := p.peek()
		switch tok.Type {
		case TokEOF:
			return statements, nil
		case TokNewline, TokComment:
			p.advance()
		case TokDirective:
			stmt, err := p.parseDirective()
			if err != nil {
				return nil, err
			}
			statements = append(statements, stmt)
		case TokLabel:
			p.advance()
			p.context = tok.Value
			statements = append(statements, Label{Name: tok.Value, Line: tok.Line})
		case TokLocalLabel:
			p.advance()
			statements = append(statements, Label{Name: p.resolveLabelName(tok.Value), Line: tok.Line})
		case TokInstruction:
			stmt, err := p.parseInstruction()
			if err != nil {
				return nil, err
			}
			statements = append(statements, stmt)
		default:
			return nil, &Error{Kind: KindParse, Line: tok.Line, Column: tok.Column, Msg: fmt.Sprintf("unexpected token %s %q", tok.Type, tok.Value)}
		}
	}
}

// resolveLabelName qualifies a local label (leading '.') with the current
// label context. A local label with no enclosing context keeps its name
// unqualified.
func (p *Parser) resolveLabelName(name string) string {
	if strings.HasPrefix(name, ".") && p.context != "" {
		return p.context + name
	}
	return name
}

func (p *Parser) parseDirective() (Statement, error) {
	tok, err := p.expect(TokDirective)
	if err != nil {
		return nil, err
	}
	switch tok.Value {
	case "org":
		num, err := p.expect(TokNumber)
		if err != nil {
			return nil, err
		}
		return OrgDirective{Address: uint16(num.Number), Line: tok.Line}, nil
	case "db":
		var data []byte
		for {
			num, err := p.expect(TokNumber)
			if err != nil {
				return nil, err
			}
			data = append(data, byte(num.Number&0xFF))
			if p.check(TokComma) {
				p.advance()
				continue
			}
			break
		}
		return DataBytes{Data: data, Line: tok.Line}, nil
	default:
		return nil, &Error{Kind: KindParse, Line: tok.Line, Column: tok.Column, Msg: fmt.Sprintf("unsupported directive #%s", tok.Value)}
	}
}

func (p *Parser) parseInstruction() (Statement, error) {
	tok, err := p.expect(TokInstruction)
	if err != nil {
		return nil, err
	}
	var operands []Operand
	for !p.atStatementEnd() {
		operand, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
		if p.check(TokComma) {
			p.advance()
			continue
		}
		break
	}
	return Instruction{Mnemonic: tok.Value, Operands: operands, Line: tok.Line}, nil
}

func (p *Parser) atStatementEnd() bool {
	switch p.peek().Type {
	case TokNewline, TokComment, TokEOF:
		return true
	default:
		return false
	}
}

func (p *Parser) parseOperand() (Operand, error) {
	tok := p.peek()
	switch tok.Type {
	case TokRegister:
		p.advance()
		reg := isa.RegisterNames[tok.Value]
		if p.check(TokPlus) {
			p.advance()
			num, err := p.expect(TokNumber)
			if err != nil {
				return Operand{}, err
			}
			return Operand{Kind: OperandRegisterOffset, Register: reg, Offset: byte(num.Number & 0xFF)}, nil
		}
		return Operand{Kind: OperandRegister, Register: reg}, nil

	case TokNumber:
		p.advance()
		return Operand{Kind: OperandImmediate, Value: uint16(tok.Number & 0xFF)}, nil

	case TokLBracket:
		p.advance()
		operand, err := p.parseMemoryOperand()
		if err != nil {
			return Operand{}, err
		}
		if _, err := p.expect(TokRBracket); err != nil {
			return Operand{}, err
		}
		return operand, nil

	case TokIdentifier:
		p.advance()
		return Operand{Kind: OperandLabelRef, Label: p.resolveLabelName(tok.Value)}, nil

	default:
		return Operand{}, &Error{Kind: KindParse, Line: tok.Line, Column: tok.Column, Msg: fmt.Sprintf("unexpected operand token %s %q", tok.Type, tok.Value)}
	}
}

func (p *Parser) parseMemoryOperand() (Operand, error) {
	tok := p.peek()
	switch tok.Type {
	case TokRegister:
		p.advance()
		reg := isa.RegisterNames[tok.Value]
		if p.check(TokComma) {
			p.advance()
			reg2tok, err := p.expect(TokRegister)
			if err != nil {
				return Operand{}, err
			}
			return Operand{Kind: OperandMemoryPair, Register: reg, Register2: isa.RegisterNames[reg2tok.Value]}, nil
		}
		return Operand{Kind: OperandMemoryReg, Register: reg}, nil

	case TokNumber:
		p.advance()
		return Operand{Kind: OperandMemoryDirect, Value: uint16(tok.Number)}, nil

	default:
		return Operand{}, &Error{Kind: KindParse, Line: tok.Line, Column: tok.Column, Msg: fmt.Sprintf("unexpected memory-operand token %s %q", tok.Type, tok.Value)}
	}
}
