package asm

// Assemble runs the full Lexer -> Parser -> Compiler pipeline over source
// text and returns the emitted byte vector.
func Assemble(source string) ([]byte, error) {
	lexer := NewLexer(source)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, err
	}
	statements, err := NewParser(tokens).Parse()
	if err != nil {
		return nil, err
	}
	return NewCompiler().Compile(statements)
}
