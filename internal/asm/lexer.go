package asm

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ninebit/ninebit/internal/isa"
)

var directiveNames = map[string]bool{
	"org":    true,
	"db":     true,
	"define": true,
}

// Lexer turns source text into a flat token stream. Preprocessing
// (#define expansion) runs once, up front, over the whole source; the
// resulting text is what actually gets tokenized.
type Lexer struct {
	text   []rune
	pos    int
	line   int
	column int
}

// NewLexer prepares source for tokenization, expanding #define directives
// first.
func NewLexer(source string) *Lexer {
	return &Lexer{text: []rune(preprocessDefines(source)), line: 1, column: 1}
}

// Tokenize runs the lexer to completion, returning every token including a
// trailing TokEOF, or the first *Error encountered.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) peekRune() (rune, bool) {
	if l.pos >= len(l.text) {
		return 0, false
	}
	return l.text[l.pos], true
}

func (l *Lexer) advance() rune {
	r := l.text[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *Lexer) next() (Token, error) {
	for {
		r, ok := l.peekRune()
		if !ok {
			return Token{Type: TokEOF, Line: l.line, Column: l.column}, nil
		}

		line, col := l.line, l.column

		switch {
		case r == ' ' || r == '\t' || r == '\r':
			l.advance()
			continue
		case r == '\n':
			l.advance()
			return Token{Type: TokNewline, Line: line, Column: col}, nil
		case r == ',':
			l.advance()
			return Token{Type: TokComma, Value: ",", Line: line, Column: col}, nil
		case r == '+':
			l.advance()
			return Token{Type: TokPlus, Value: "+", Line: line, Column: col}, nil
		case r == '[':
			l.advance()
			return Token{Type: TokLBracket, Value: "[", Line: line, Column: col}, nil
		case r == ']':
			l.advance()
			return Token{Type: TokRBracket, Value: "]", Line: line, Column: col}, nil
		case r == ';':
			return l.readComment(line, col), nil
		case r == '#':
			return l.readDirective(line, col)
		case isDigit(r):
			return l.readNumber(line, col)
		case isIdentStart(r):
			return l.readIdentifierOrKeyword(line, col)
		default:
			return Token{}, &Error{Kind: KindLex, Line: line, Column: col, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
}

func (l *Lexer) readComment(line, col int) Token {
	var sb strings.Builder
	for {
		r, ok := l.peekRune()
		if !ok || r == '\n' {
			break
		}
		sb.WriteRune(l.advance())
	}
	return Token{Type: TokComment, Value: sb.String(), Line: line, Column: col}
}

func (l *Lexer) readDirective(line, col int) (Token, error) {
	l.advance() // consume '#'
	start := l.pos
	for {
		r, ok := l.peekRune()
		if !ok || !isIdentPart(r) {
			break
		}
		l.advance()
	}
	name := strings.ToLower(string(l.text[start:l.pos]))
	if !directiveNames[name] {
		return Token{}, &Error{Kind: KindLex, Line: line, Column: col, Msg: fmt.Sprintf("unknown directive #%s", name)}
	}
	return Token{Type: TokDirective, Value: name, Line: line, Column: col}, nil
}

func (l *Lexer) readNumber(line, col int) (Token, error) {
	start := l.pos
	for {
		r, ok := l.peekRune()
		if !ok || !isIdentPart(r) {
			break
		}
		l.advance()
	}
	text := string(l.text[start:l.pos])
	n, err := parseNumber(text)
	if err != nil {
		return Token{}, &Error{Kind: KindLex, Line: line, Column: col, Msg: err.Error()}
	}
	return Token{Type: TokNumber, Value: text, Number: n, Line: line, Column: col}, nil
}

func (l *Lexer) readIdentifierOrKeyword(line, col int) (Token, error) {
	start := l.pos
	for {
		r, ok := l.peekRune()
		if !ok || !isIdentPart(r) {
			break
		}
		l.advance()
	}
	name := string(l.text[start:l.pos])
	lower := strings.ToLower(name)

	// A name immediately followed by ':' is a label definition.
	if r, ok := l.peekRune(); ok && r == ':' {
		l.advance()
		if strings.HasPrefix(name, ".") {
			return Token{Type: TokLocalLabel, Value: name, Line: line, Column: col}, nil
		}
		return Token{Type: TokLabel, Value: name, Line: line, Column: col}, nil
	}

	if _, ok := isa.Mnemonics[lower]; ok {
		return Token{Type: TokInstruction, Value: lower, Line: line, Column: col}, nil
	}
	if _, ok := isa.RegisterNames[lower]; ok {
		return Token{Type: TokRegister, Value: lower, Line: line, Column: col}, nil
	}
	return Token{Type: TokIdentifier, Value: name, Line: line, Column: col}, nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || r == '.' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

// parseNumber accepts decimal, 0x/0X-prefixed hex, and 0b/0B-prefixed
// binary literals.
func parseNumber(text string) (uint32, error) {
	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lower, "0x"):
		v, err := strconv.ParseUint(lower[2:], 16, 32)
		return uint32(v), err
	case strings.HasPrefix(lower, "0b"):
		v, err := strconv.ParseUint(lower[2:], 2, 32)
		return uint32(v), err
	default:
		v, err := strconv.ParseUint(lower, 10, 32)
		return uint32(v), err
	}
}

// preprocessDefines implements the #define preprocessor: a first pass
// collects "#define NAME VALUE" lines (only the third whitespace-delimited
// token is used as the value — anything after it is silently dropped, a
// quirk of the reference preprocessor preserved here deliberately; a value
// that names an earlier define takes that define's value), then a second
// pass replaces every whole-word occurrence of each name in the remaining
// text, longest names first so that one name being a prefix of another
// can't cause a partial substitution.
func preprocessDefines(source string) string {
	lines := strings.Split(source, "\n")
	defines := make(map[string]string)
	var kept []string

	for _, line := range lines {
		trimmed := stripComment(line)
		fields := strings.Fields(trimmed)
		if len(fields) >= 2 && strings.EqualFold(fields[0], "#define") {
			name := fields[1]
			if len(fields) >= 3 {
				value := fields[2]
				if earlier, ok := defines[value]; ok {
					value = earlier
				}
				defines[name] = value
			}
			continue
		}
		kept = append(kept, line)
	}

	text := strings.Join(kept, "\n")
	if len(defines) == 0 {
		return text
	}

	names := make([]string, 0, len(defines))
	for name := range defines {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	for _, name := range names {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
		text = re.ReplaceAllString(text, defines[name])
	}
	return text
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		return line[:i]
	}
	return line
}
