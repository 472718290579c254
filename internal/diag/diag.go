// Package diag provides the error taxonomy and diagnostic types shared by the
// front end and the interpreter.
package diag

import (
	"errors"
	"fmt"
	"robo-lang/internal/span"
)

// Severity indicates the severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Kind classifies a failure. Every Kind except None is terminal: the run
// that raised it is aborted.
type Kind int

const (
	None Kind = iota
	InvalidCharacter
	UnexpectedToken
	EmptyBlock
	UndefinedName
	TypeMismatch
	NotAFunction
	ArgumentCountMismatch
	InvalidVoidReturn
	CallDepthExceeded
)

// Sentinel errors, one per Kind. Diagnostics and runtime errors unwrap to
// these so callers can use errors.Is.
var (
	ErrInvalidCharacter      = errors.New("invalid character")
	ErrUnexpectedToken       = errors.New("unexpected token")
	ErrEmptyBlock            = errors.New("empty block")
	ErrUndefinedName         = errors.New("undefined name")
	ErrTypeMismatch          = errors.New("type mismatch")
	ErrNotAFunction          = errors.New("not a function")
	ErrArgumentCountMismatch = errors.New("argument count mismatch")
	ErrInvalidVoidReturn     = errors.New("invalid void return")
	ErrCallDepthExceeded     = errors.New("call depth exceeded")
)

var kindInfo = map[Kind]struct {
	code string
	err  error
}{
	InvalidCharacter:      {"E1001", ErrInvalidCharacter},
	UnexpectedToken:       {"E2001", ErrUnexpectedToken},
	EmptyBlock:            {"E2002", ErrEmptyBlock},
	UndefinedName:         {"E3001", ErrUndefinedName},
	TypeMismatch:          {"E3002", ErrTypeMismatch},
	NotAFunction:          {"E3003", ErrNotAFunction},
	ArgumentCountMismatch: {"E3004", ErrArgumentCountMismatch},
	InvalidVoidReturn:     {"E3005", ErrInvalidVoidReturn},
	CallDepthExceeded:     {"E3006", ErrCallDepthExceeded},
}

// Code returns the stable error code for k, or "" for None.
func (k Kind) Code() string {
	return kindInfo[k].code
}

// Sentinel returns the sentinel error for k, or nil for None.
func (k Kind) Sentinel() error {
	return kindInfo[k].err
}

func (k Kind) String() string {
	if err := k.Sentinel(); err != nil {
		return err.Error()
	}
	return "none"
}

// Warning codes. Warnings never abort a run.
const (
	WarnReturnOutsideFunc = "W0001"
	WarnFuncRedeclared    = "W0002"
)

// Diagnostic represents a front-end message: an error that aborted lexing or
// parsing, or a warning collected along the way.
type Diagnostic struct {
	Code     string    `json:"code"`           // stable code, e.g. "E2001"
	Kind     Kind      `json:"-"`              // None for warnings
	Severity Severity  `json:"severity"`       // error or warning
	Message  string    `json:"message"`        // human-readable description
	Span     span.Span `json:"span"`           // source location
	Hint     string    `json:"hint,omitempty"` // optional hint
}

// String returns a human-readable representation of the diagnostic.
func (d Diagnostic) String() string {
	prefix := d.Severity.String()
	loc := fmt.Sprintf("%d:%d", d.Span.Start.Line, d.Span.Start.Column)
	msg := fmt.Sprintf("[%s] %s at %s: %s", d.Code, prefix, loc, d.Message)
	if d.Hint != "" {
		msg += " (hint: " + d.Hint + ")"
	}
	return msg
}

func (d *Diagnostic) Error() string {
	return d.String()
}

func (d *Diagnostic) Unwrap() error {
	return d.Kind.Sentinel()
}

// Errorf creates an error diagnostic of the given kind at s.
func Errorf(kind Kind, s span.Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Code:     kind.Code(),
		Kind:     kind,
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}

// Warningf creates a warning diagnostic at the given span.
func Warningf(code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}

// WithHint sets the hint and returns d for chaining.
func (d *Diagnostic) WithHint(hint string) *Diagnostic {
	d.Hint = hint
	return d
}
