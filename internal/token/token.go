// Package token defines the token kinds produced by the lexer.
package token

import (
	"fmt"
	"robo-lang/internal/span"
)

// Kind represents the type of a token.
type Kind int

const (
	// Special tokens
	ILLEGAL Kind = iota
	EOF

	// Literals
	IDENT  // identifiers: x, count, fac
	INT    // integer literals: 123
	STRING // string literals: "wall"
	BOOL   // true, false

	// Single-character operators
	ASSIGN // =
	PLUS   // +
	MINUS  // -
	STAR   // *
	SLASH  // /
	BANG   // !
	LT     // <
	GT     // >

	// Two-character operators
	EQ  // ==
	NEQ // !=
	LTE // <=
	GTE // >=
	AND // &&
	OR  // ||

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	COMMA     // ,
	DOT       // .
	SEMICOLON // ;
	COLON     // :

	// Keywords
	KW_VAR
	KW_IF
	KW_ELSE
	KW_FOR
	KW_TO
	KW_WHILE
	KW_FUNC
	KW_RETURN
	KW_SENSOR
	KW_PRINTLN
	KW_SCAN
	TYPE       // int, bool, string
	COMMAND    // moveForward, turnLeft, turnRight, pick, drop
	SENSOR_POS // front, left, right, back
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	IDENT:  "IDENT",
	INT:    "INT",
	STRING: "STRING",
	BOOL:   "BOOL",

	ASSIGN: "=",
	PLUS:   "+",
	MINUS:  "-",
	STAR:   "*",
	SLASH:  "/",
	BANG:   "!",
	LT:     "<",
	GT:     ">",
	EQ:     "==",
	NEQ:    "!=",
	LTE:    "<=",
	GTE:    ">=",
	AND:    "&&",
	OR:     "||",

	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	COMMA:     ",",
	DOT:       ".",
	SEMICOLON: ";",
	COLON:     ":",

	KW_VAR:     "var",
	KW_IF:      "if",
	KW_ELSE:    "else",
	KW_FOR:     "for",
	KW_TO:      "to",
	KW_WHILE:   "while",
	KW_FUNC:    "func",
	KW_RETURN:  "return",
	KW_SENSOR:  "sensor",
	KW_PRINTLN: "Println",
	KW_SCAN:    "Scan",
	TYPE:       "TYPE",
	COMMAND:    "COMMAND",
	SENSOR_POS: "SENSOR_POS",
}

// String returns the human-readable name for a token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword returns true if the kind is a keyword.
func (k Kind) IsKeyword() bool {
	return k >= KW_VAR && k <= SENSOR_POS
}

// IsLiteral returns true if the kind is a literal (ident/int/string/bool).
func (k Kind) IsLiteral() bool {
	return k >= IDENT && k <= BOOL
}

// IsRelational reports whether k is one of == != < > <= >=.
func (k Kind) IsRelational() bool {
	switch k {
	case EQ, NEQ, LT, GT, LTE, GTE:
		return true
	}
	return false
}

// Robot command names and sensor positions. The host-side robot package
// validates against the same lists.
var (
	Commands        = []string{"moveForward", "turnLeft", "turnRight", "pick", "drop"}
	SensorPositions = []string{"front", "left", "right", "back"}
	TypeNames       = []string{"int", "bool", "string"}
)

var keywords = map[string]Kind{
	"var":     KW_VAR,
	"if":      KW_IF,
	"else":    KW_ELSE,
	"for":     KW_FOR,
	"to":      KW_TO,
	"while":   KW_WHILE,
	"func":    KW_FUNC,
	"return":  KW_RETURN,
	"sensor":  KW_SENSOR,
	"Println": KW_PRINTLN,
	"Scan":    KW_SCAN,
	"true":    BOOL,
	"false":   BOOL,
}

func init() {
	for _, name := range TypeNames {
		keywords[name] = TYPE
	}
	for _, name := range Commands {
		keywords[name] = COMMAND
	}
	for _, name := range SensorPositions {
		keywords[name] = SENSOR_POS
	}
}

// LookupIdent returns the keyword Kind for ident, or IDENT if it is not a keyword.
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return IDENT
}

// Token represents a lexical token with its kind, text, and source location.
type Token struct {
	Kind   Kind      `json:"kind"`
	Lexeme string    `json:"lexeme"`
	Span   span.Span `json:"span"`
}

// String returns a human-readable representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Span.Start)
}

// Describe renders the token for error messages: the lexeme when there is
// one, the kind otherwise.
func (t Token) Describe() string {
	switch {
	case t.Kind == EOF:
		return "end of input"
	case t.Kind == STRING:
		return fmt.Sprintf("%q", t.Lexeme)
	case t.Lexeme != "":
		return fmt.Sprintf("'%s'", t.Lexeme)
	default:
		return t.Kind.String()
	}
}
