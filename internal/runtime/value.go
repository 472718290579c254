// Package runtime implements the tree-walking interpreter and runtime value
// system for the robot DSL.
package runtime

import (
	"fmt"
	"robo-lang/internal/ast"
	"strconv"
)

// Value is the interface for all runtime values.
type Value interface {
	Type() ast.Type
	String() string
}

// ---- Primitive values ----

// IntVal represents an integer value.
type IntVal int64

func (v IntVal) Type() ast.Type { return ast.TypeInt }
func (v IntVal) String() string { return strconv.FormatInt(int64(v), 10) }

// StringVal represents a string value.
type StringVal string

func (v StringVal) Type() ast.Type { return ast.TypeString }
func (v StringVal) String() string { return string(v) }

// BoolVal represents a boolean value.
type BoolVal bool

func (v BoolVal) Type() ast.Type { return ast.TypeBool }
func (v BoolVal) String() string { return strconv.FormatBool(bool(v)) }

// NoValue is the result of a typed function that finished without an
// explicit return. It carries the declared type but no payload; every
// operator rejects it.
type NoValue struct {
	Of ast.Type
}

func (v NoValue) Type() ast.Type { return v.Of }
func (v NoValue) String() string { return "none" }

// ---- Callable values ----

// FuncVal is a user-defined function. Functions do not capture their
// defining scope: a call runs in a child of the caller's scope.
type FuncVal struct {
	Decl *ast.FuncDecl
}

func (v *FuncVal) Type() ast.Type { return ast.TypeFunc }
func (v *FuncVal) String() string { return fmt.Sprintf("<func %s>", v.Decl.Name) }

// Zero returns the default value bound by an uninitialized declaration.
func Zero(t ast.Type) Value {
	switch t {
	case ast.TypeInt:
		return IntVal(0)
	case ast.TypeBool:
		return BoolVal(false)
	case ast.TypeString:
		return StringVal("")
	default:
		return NoValue{Of: t}
	}
}

// isNoValue reports whether v is the fall-through marker.
func isNoValue(v Value) bool {
	_, ok := v.(NoValue)
	return ok
}
