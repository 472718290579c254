package lexer

import (
	"errors"
	"robo-lang/internal/diag"
	"robo-lang/internal/token"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kindsOf(t *testing.T, source string) []token.Kind {
	t.Helper()
	tokens, err := New(source, "test.robo").Tokenize()
	require.NoError(t, err)
	kinds := make([]token.Kind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	return kinds
}

func TestTokenizeSimple(t *testing.T) {
	got := kindsOf(t, `var x: int = 1 + 2;`)
	want := []token.Kind{
		token.KW_VAR, token.IDENT, token.COLON, token.TYPE, token.ASSIGN,
		token.INT, token.PLUS, token.INT, token.SEMICOLON, token.EOF,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeKeywords(t *testing.T) {
	got := kindsOf(t, `var if else for to while func return sensor Println Scan`)
	want := []token.Kind{
		token.KW_VAR, token.KW_IF, token.KW_ELSE, token.KW_FOR, token.KW_TO,
		token.KW_WHILE, token.KW_FUNC, token.KW_RETURN, token.KW_SENSOR,
		token.KW_PRINTLN, token.KW_SCAN, token.EOF,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeDomainWords(t *testing.T) {
	got := kindsOf(t, `int bool string moveForward turnLeft turnRight pick drop front left right back true false robot`)
	want := []token.Kind{
		token.TYPE, token.TYPE, token.TYPE,
		token.COMMAND, token.COMMAND, token.COMMAND, token.COMMAND, token.COMMAND,
		token.SENSOR_POS, token.SENSOR_POS, token.SENSOR_POS, token.SENSOR_POS,
		token.BOOL, token.BOOL, token.IDENT, token.EOF,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeOperators(t *testing.T) {
	got := kindsOf(t, `= == != < <= > >= + - * / ! && ||`)
	want := []token.Kind{
		token.ASSIGN, token.EQ, token.NEQ,
		token.LT, token.LTE, token.GT, token.GTE,
		token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.BANG, token.AND, token.OR,
		token.EOF,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeGreedyTwoChar(t *testing.T) {
	// "===" is "==" followed by "=", never "=" "==".
	got := kindsOf(t, `a===b`)
	want := []token.Kind{token.IDENT, token.EQ, token.ASSIGN, token.IDENT, token.EOF}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeDelimiters(t *testing.T) {
	got := kindsOf(t, `( ) { } , . ; :`)
	want := []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE,
		token.COMMA, token.DOT, token.SEMICOLON, token.COLON,
		token.EOF,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeString(t *testing.T) {
	tokens, err := New(`"hello" "a\nb"`, "test.robo").Tokenize()
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, "hello", tokens[0].Lexeme)
	// no escape processing
	assert.Equal(t, `a\nb`, tokens[1].Lexeme)
}

func TestTokenizeUnterminatedString(t *testing.T) {
	tokens, err := New(`x = "open ended`, "test.robo").Tokenize()
	require.NoError(t, err)
	require.Len(t, tokens, 4)
	assert.Equal(t, token.STRING, tokens[2].Kind)
	assert.Equal(t, "open ended", tokens[2].Lexeme)
	assert.Equal(t, token.EOF, tokens[3].Kind)
}

func TestTokenizeIdentifiers(t *testing.T) {
	tokens, err := New(`count_2 x9 Scanner`, "test.robo").Tokenize()
	require.NoError(t, err)
	require.Len(t, tokens, 4)
	for i, want := range []string{"count_2", "x9", "Scanner"} {
		assert.Equal(t, token.IDENT, tokens[i].Kind)
		assert.Equal(t, want, tokens[i].Lexeme)
	}
}

func TestTokenizeInteger(t *testing.T) {
	tokens, err := New(`007 42x`, "test.robo").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, "007", tokens[0].Lexeme)
	assert.Equal(t, token.INT, tokens[1].Kind)
	assert.Equal(t, "42", tokens[1].Lexeme)
	assert.Equal(t, token.IDENT, tokens[2].Kind)
}

func TestInvalidCharacter(t *testing.T) {
	for _, src := range []string{"x = 1 @ 2;", "a & b", "a | b", "_x", "10 % 3"} {
		_, err := New(src, "test.robo").Tokenize()
		require.Error(t, err, src)
		assert.True(t, errors.Is(err, diag.ErrInvalidCharacter), "%s: %v", src, err)
	}
}

func TestTokenPositions(t *testing.T) {
	tokens, err := New("var x: int;\n  x = 5;", "test.robo").Tokenize()
	require.NoError(t, err)

	x := tokens[5]
	assert.Equal(t, "x", x.Lexeme)
	assert.Equal(t, 2, x.Span.Start.Line)
	assert.Equal(t, 3, x.Span.Start.Column)
}

func TestPeekDoesNotAdvance(t *testing.T) {
	l := New(`foo ( bar`, "test.robo")

	first, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, "foo", first.Lexeme)

	peeked, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, token.LPAREN, peeked.Kind)
	assert.Equal(t, first, l.Current(), "peek must restore the current token")

	again, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, peeked, again)

	next, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, peeked, next)

	last, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, "bar", last.Lexeme)
	assert.Equal(t, 1, last.Span.Start.Line)
	assert.Equal(t, 7, last.Span.Start.Column)
}

func TestPeekAtEnd(t *testing.T) {
	l := New(`x`, "test.robo")
	_, err := l.Next()
	require.NoError(t, err)

	tok, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, token.EOF, tok.Kind)

	_, _ = l.Next()
	tok, err = l.Next()
	require.NoError(t, err)
	assert.Equal(t, token.EOF, tok.Kind, "EOF is sticky")
}
