// Package ast defines the abstract syntax tree for the robot DSL.
package ast

import (
	"robo-lang/internal/span"
	"robo-lang/internal/token"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// Types
// ============================================================

// Type is a runtime type tag. TypeVoid marks a function without a declared
// return type; TypeFunc is the type of a function binding.
type Type int

const (
	TypeVoid Type = iota
	TypeInt
	TypeBool
	TypeString
	TypeFunc
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeFunc:
		return "func"
	default:
		return "void"
	}
}

// LookupType maps a type keyword to its Type.
func LookupType(name string) (Type, bool) {
	switch name {
	case "int":
		return TypeInt, true
	case "bool":
		return TypeBool, true
	case "string":
		return TypeString, true
	}
	return TypeVoid, false
}

// ============================================================
// Program (top-level AST root)
// ============================================================

// Program is a parsed source file: the top-level block plus every function
// signature collected while parsing.
type Program struct {
	NodeBase
	Body  *BlockStmt
	Funcs *FuncTable
}

// ============================================================
// Expressions
// ============================================================

// IdentExpr represents a variable reference.
type IdentExpr struct {
	ExprBase
	Name string
}

// IntLiteral represents an integer literal.
type IntLiteral struct {
	ExprBase
	Value int64
}

// StringLiteral represents a string literal.
type StringLiteral struct {
	ExprBase
	Value string
}

// BoolLiteral represents true or false.
type BoolLiteral struct {
	ExprBase
	Value bool
}

// UnaryExpr represents a unary operation: !x, -x, +x.
type UnaryExpr struct {
	ExprBase
	Op      token.Kind
	Operand Expr
}

// BinaryExpr represents a binary operation: a + b, x == y.
type BinaryExpr struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// CallExpr represents a call to a user-defined function: f(a, b).
type CallExpr struct {
	ExprBase
	Name string
	Args []Expr
}

// SensorExpr represents a sensor read: sensor.front.
type SensorExpr struct {
	ExprBase
	Position string
}

// ScanExpr represents the integer-read built-in: Scan().
type ScanExpr struct {
	ExprBase
}

// ============================================================
// Statements
// ============================================================

// ExprStmt wraps a call used as a statement.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// AssignStmt represents an assignment: name = value;
type AssignStmt struct {
	StmtBase
	Name  string
	Value Expr
}

// VarDeclStmt represents a declaration: var name: type [= init];
type VarDeclStmt struct {
	StmtBase
	Name string
	Type Type
	Init Expr // may be nil if no initializer
}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	StmtBase
	Value Expr
}

// BlockStmt represents a block of statements: { ... }.
type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

// IfStmt represents if/else.
type IfStmt struct {
	StmtBase
	Condition Expr
	Body      *BlockStmt
	ElseBody  *BlockStmt // may be nil
}

// WhileStmt represents a while loop.
type WhileStmt struct {
	StmtBase
	Condition Expr
	Body      *BlockStmt
}

// ForStmt represents a bounded loop: for name = start to end { body }.
// Both bounds are inclusive.
type ForStmt struct {
	StmtBase
	VarName string
	Start   Expr
	End     Expr
	Body    *BlockStmt
}

// CommandStmt represents a robot command: moveForward();
type CommandStmt struct {
	StmtBase
	Name string
}

// PrintStmt represents Println(expr);
type PrintStmt struct {
	StmtBase
	Value Expr
}

// ============================================================
// Declarations
// ============================================================

// Param is a typed function parameter.
type Param struct {
	Span span.Span
	Name string
	Type Type
}

// FuncDecl represents a function declaration:
// func name(a: int, b: string) int { ... }.
type FuncDecl struct {
	StmtBase
	Name   string
	Params []Param
	Result Type // TypeVoid when no return type is declared
	Body   *BlockStmt
}
