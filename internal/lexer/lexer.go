// Package lexer implements the lexical analysis (tokenization) for the robot DSL.
//
// The lexer is lazy: Next produces one token at a time and Peek looks one
// token ahead without committing. Comments are expected to have been stripped
// already (see package prepro).
package lexer

import (
	"robo-lang/internal/diag"
	"robo-lang/internal/span"
	"robo-lang/internal/token"
)

// Lexer tokenizes source code into a stream of tokens.
type Lexer struct {
	source   string
	filename string

	pos  int // current read position in source
	line int // current line (1-based)
	col  int // current column (1-based)

	cur token.Token // most recently produced token
}

// New creates a new Lexer for the given source text. No token is produced
// until the first call to Next.
func New(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

// Filename returns the name the lexer was created with.
func (l *Lexer) Filename() string {
	return l.filename
}

// Current returns the most recently produced token.
func (l *Lexer) Current() token.Token {
	return l.cur
}

// Next advances to the next token and returns it. Once the input is
// exhausted every call returns EOF.
func (l *Lexer) Next() (token.Token, error) {
	tok, err := l.nextToken()
	if err != nil {
		return tok, err
	}
	l.cur = tok
	return tok, nil
}

// Peek returns the token after the current one without advancing. The read
// position and current token are restored exactly.
func (l *Lexer) Peek() (token.Token, error) {
	pos, line, col, cur := l.pos, l.line, l.col, l.cur
	tok, err := l.Next()
	l.pos, l.line, l.col, l.cur = pos, line, col, cur
	return tok, err
}

// Tokenize scans the entire source and returns all tokens up to and
// including EOF. It stops at the first invalid character.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens, nil
		}
	}
}

// ---- internal helpers ----

// peek returns the current character without advancing, or 0 if at end.
func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

// peekNext returns the character after current, or 0 if at end.
func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

// advance consumes the current character and returns it.
func (l *Lexer) advance() byte {
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

// curPos returns the current position as a span.Position.
func (l *Lexer) curPos() span.Position {
	return span.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// makeSpan returns a span from start to current position.
func (l *Lexer) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: l.curPos()}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) && isSpace(l.source[l.pos]) {
		l.advance()
	}
}

// ---- token reading ----

func (l *Lexer) nextToken() (token.Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.source) {
		return token.Token{Kind: token.EOF, Lexeme: "", Span: l.makeSpan(l.curPos())}, nil
	}

	start := l.curPos()
	ch := l.peek()

	if tok, ok := l.readTwoCharOperator(start); ok {
		return tok, nil
	}

	switch {
	case isDigit(ch):
		return l.readNumber(start), nil
	case ch == '"':
		return l.readString(start), nil
	case isLetter(ch):
		return l.readIdentifier(start), nil
	}

	return l.readSingle(start)
}

var twoCharOps = []struct {
	text string
	kind token.Kind
}{
	{"==", token.EQ},
	{"!=", token.NEQ},
	{"<=", token.LTE},
	{">=", token.GTE},
	{"&&", token.AND},
	{"||", token.OR},
}

// readTwoCharOperator matches the two-character operators greedily, before
// any single-character fallback.
func (l *Lexer) readTwoCharOperator(start span.Position) (token.Token, bool) {
	ch, next := l.peek(), l.peekNext()
	for _, op := range twoCharOps {
		if ch == op.text[0] && next == op.text[1] {
			l.advance()
			l.advance()
			return token.Token{Kind: op.kind, Lexeme: op.text, Span: l.makeSpan(start)}, true
		}
	}
	return token.Token{}, false
}

// readString reads a string literal. There are no escape sequences; an
// unterminated literal runs to the end of input.
func (l *Lexer) readString(start span.Position) token.Token {
	l.advance() // skip opening "
	valueStart := l.pos

	for l.pos < len(l.source) && l.peek() != '"' {
		l.advance()
	}
	value := l.source[valueStart:l.pos]
	if l.pos < len(l.source) {
		l.advance() // skip closing "
	}
	return token.Token{Kind: token.STRING, Lexeme: value, Span: l.makeSpan(start)}
}

// readNumber reads a maximal run of digits.
func (l *Lexer) readNumber(start span.Position) token.Token {
	numStart := l.pos
	for l.pos < len(l.source) && isDigit(l.peek()) {
		l.advance()
	}
	return token.Token{Kind: token.INT, Lexeme: l.source[numStart:l.pos], Span: l.makeSpan(start)}
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier(start span.Position) token.Token {
	identStart := l.pos
	for l.pos < len(l.source) && isIdentPart(l.peek()) {
		l.advance()
	}
	lexeme := l.source[identStart:l.pos]
	return token.Token{Kind: token.LookupIdent(lexeme), Lexeme: lexeme, Span: l.makeSpan(start)}
}

var singleChars = map[byte]token.Kind{
	':': token.COLON,
	';': token.SEMICOLON,
	'(': token.LPAREN,
	')': token.RPAREN,
	'{': token.LBRACE,
	'}': token.RBRACE,
	',': token.COMMA,
	'.': token.DOT,
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.STAR,
	'/': token.SLASH,
	'<': token.LT,
	'>': token.GT,
	'!': token.BANG,
	'=': token.ASSIGN,
}

// readSingle reads a punctuation or single-character operator token.
func (l *Lexer) readSingle(start span.Position) (token.Token, error) {
	ch := l.advance()
	kind, ok := singleChars[ch]
	if !ok {
		s := l.makeSpan(start)
		return token.Token{Kind: token.ILLEGAL, Lexeme: string(ch), Span: s},
			diag.Errorf(diag.InvalidCharacter, s, "invalid character found: %q", ch)
	}
	return token.Token{Kind: kind, Lexeme: string(ch), Span: l.makeSpan(start)}, nil
}

// ---- character classification ----

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}
