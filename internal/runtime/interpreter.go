package runtime

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"robo-lang/internal/ast"
	"robo-lang/internal/diag"
	"robo-lang/internal/span"
	"robo-lang/internal/token"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultMaxDepth bounds nested user function calls.
const DefaultMaxDepth = 10000

// ============================================================
// Control flow signals
// ============================================================

// ExecSignal represents a control flow signal from statement execution.
type ExecSignal int

const (
	SigNone   ExecSignal = iota
	SigReturn            // return value in flight
)

// ExecResult carries a control flow signal and an optional value (for return).
type ExecResult struct {
	Signal ExecSignal
	Value  Value
}

var resultNone = ExecResult{Signal: SigNone}

// ============================================================
// Runtime error
// ============================================================

// RuntimeError represents an error during interpretation.
type RuntimeError struct {
	Kind    diag.Kind
	Message string
	Span    span.Span
	Hint    string
	Err     error // underlying host error, if any
}

func (e *RuntimeError) Error() string {
	msg := "runtime error"
	if e.Span.Start.IsValid() {
		msg += fmt.Sprintf(" at %d:%d", e.Span.Start.Line, e.Span.Start.Column)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += " (hint: " + e.Hint + ")"
	}
	return msg
}

// Code returns the stable error code, or "" for host failures.
func (e *RuntimeError) Code() string {
	return e.Kind.Code()
}

// Unwrap exposes both the taxonomy sentinel and the host cause.
func (e *RuntimeError) Unwrap() []error {
	var errs []error
	if sentinel := e.Kind.Sentinel(); sentinel != nil {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func runtimeErr(kind diag.Kind, s span.Span, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...), Span: s}
}

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks the AST and executes it. An Interpreter owns its scope
// chain and must not be shared between goroutines; independent runs use
// independent interpreters.
type Interpreter struct {
	root   *Environment
	env    *Environment
	output io.Writer
	host   Host
	logger *slog.Logger

	maxDepth int
	depth    int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithHost sets the command, sensor and input hooks.
func WithHost(h Host) Option {
	return func(i *Interpreter) { i.host = h }
}

// WithLogger sets the logger for call and robot tracing.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interpreter) { i.logger = l }
}

// WithMaxDepth sets the nested call limit. Non-positive values keep the
// default.
func WithMaxDepth(n int) Option {
	return func(i *Interpreter) {
		if n > 0 {
			i.maxDepth = n
		}
	}
}

// NewInterpreter creates an interpreter with a fresh root scope. Println
// output goes to output.
func NewInterpreter(output io.Writer, opts ...Option) *Interpreter {
	root := NewEnvironment(nil)
	i := &Interpreter{
		root:     root,
		env:      root,
		output:   output,
		host:     nullHost{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run executes a program: the program block runs in the root scope, then
// main is called with no arguments if the root scope binds it to a function.
func (i *Interpreter) Run(prog *ast.Program) error {
	if err := i.Exec(prog); err != nil {
		return err
	}

	b, ok := i.root.values["main"]
	if !ok || b.Type != ast.TypeFunc {
		return nil
	}
	i.logger.Debug("invoking main")
	_, err := i.callFunc(b.Value.(*FuncVal), nil, span.Span{})
	return err
}

// Exec runs the program block in the root scope without calling main. A
// return at top level stops the block. The REPL calls Exec once per input.
func (i *Interpreter) Exec(prog *ast.Program) error {
	if prog.Funcs != nil {
		for _, decl := range prog.Funcs.Decls() {
			i.root.Define(decl.Name, funcBinding(decl))
		}
	}
	_, err := i.execBlock(prog.Body, i.root)
	return err
}

// Root returns the root scope (useful for REPL and tests).
func (i *Interpreter) Root() *Environment {
	return i.root
}

func funcBinding(decl *ast.FuncDecl) Binding {
	return Binding{Type: ast.TypeFunc, Value: &FuncVal{Decl: decl}}
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execStmt(stmt ast.Stmt) (ExecResult, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := i.evalExpr(s.Expr)
		return resultNone, err

	case *ast.VarDeclStmt:
		return i.execVarDecl(s)

	case *ast.AssignStmt:
		return i.execAssign(s)

	case *ast.ReturnStmt:
		val, err := i.evalExpr(s.Value)
		if err != nil {
			return resultNone, err
		}
		return ExecResult{Signal: SigReturn, Value: val}, nil

	case *ast.BlockStmt:
		return i.execBlock(s, NewEnvironment(i.env))

	case *ast.IfStmt:
		return i.execIf(s)

	case *ast.WhileStmt:
		return i.execWhile(s)

	case *ast.ForStmt:
		return i.execFor(s)

	case *ast.CommandStmt:
		return i.execCommand(s)

	case *ast.PrintStmt:
		return i.execPrint(s)

	case *ast.FuncDecl:
		i.env.Set(s.Name, funcBinding(s))
		return resultNone, nil

	default:
		return resultNone, runtimeErr(diag.None, stmt.GetSpan(), "unhandled statement type: %T", stmt)
	}
}

func (i *Interpreter) execVarDecl(s *ast.VarDeclStmt) (ExecResult, error) {
	val := Zero(s.Type)
	if s.Init != nil {
		v, err := i.evalExpr(s.Init)
		if err != nil {
			return resultNone, err
		}
		if v.Type() != s.Type {
			return resultNone, runtimeErr(diag.TypeMismatch, s.Init.GetSpan(),
				"cannot initialize '%s' of type %s with a %s value", s.Name, s.Type, v.Type())
		}
		val = v
	}
	i.env.Define(s.Name, Binding{Type: s.Type, Value: val})
	return resultNone, nil
}

func (i *Interpreter) execAssign(s *ast.AssignStmt) (ExecResult, error) {
	b, ok := i.env.Get(s.Name)
	if !ok {
		return resultNone, i.undefined(s.GetSpan(), s.Name, "cannot assign to undeclared variable '%s'", s.Name)
	}

	val, err := i.evalExpr(s.Value)
	if err != nil {
		return resultNone, err
	}
	if val.Type() != b.Type {
		return resultNone, runtimeErr(diag.TypeMismatch, s.Value.GetSpan(),
			"cannot assign a %s value to '%s' of type %s", val.Type(), s.Name, b.Type)
	}

	i.env.Set(s.Name, Binding{Type: b.Type, Value: val})
	return resultNone, nil
}

func (i *Interpreter) execIf(s *ast.IfStmt) (ExecResult, error) {
	cond, err := i.evalCondition(s.Condition, "if")
	if err != nil {
		return resultNone, err
	}

	if cond {
		return i.execBlock(s.Body, NewEnvironment(i.env))
	}
	if s.ElseBody != nil {
		return i.execBlock(s.ElseBody, NewEnvironment(i.env))
	}
	return resultNone, nil
}

// execWhile runs the body while the condition holds. A return inside the
// body ends the current iteration only; loops never forward it.
func (i *Interpreter) execWhile(s *ast.WhileStmt) (ExecResult, error) {
	for {
		cond, err := i.evalCondition(s.Condition, "while")
		if err != nil {
			return resultNone, err
		}
		if !cond {
			return resultNone, nil
		}
		if _, err := i.execBlock(s.Body, NewEnvironment(i.env)); err != nil {
			return resultNone, err
		}
	}
}

// execFor runs the body once per value in [start, end]. The bounds are
// evaluated once. The loop variable is written with Set, so an undeclared
// name is created in the root scope.
func (i *Interpreter) execFor(s *ast.ForStmt) (ExecResult, error) {
	start, err := i.evalBound(s.Start, "start")
	if err != nil {
		return resultNone, err
	}
	end, err := i.evalBound(s.End, "end")
	if err != nil {
		return resultNone, err
	}

	for n := start; n <= end; n++ {
		i.env.Set(s.VarName, Binding{Type: ast.TypeInt, Value: IntVal(n)})
		if _, err := i.execBlock(s.Body, NewEnvironment(i.env)); err != nil {
			return resultNone, err
		}
		if n == math.MaxInt64 {
			break
		}
	}
	return resultNone, nil
}

func (i *Interpreter) execBlock(block *ast.BlockStmt, blockEnv *Environment) (ExecResult, error) {
	prevEnv := i.env
	i.env = blockEnv
	defer func() { i.env = prevEnv }()

	for _, stmt := range block.Stmts {
		result, err := i.execStmt(stmt)
		if err != nil {
			return resultNone, err
		}
		if result.Signal != SigNone {
			return result, nil // propagate return
		}
	}
	return resultNone, nil
}

func (i *Interpreter) evalCondition(expr ast.Expr, construct string) (bool, error) {
	val, err := i.evalExpr(expr)
	if err != nil {
		return false, err
	}
	b, ok := val.(BoolVal)
	if !ok {
		return false, runtimeErr(diag.TypeMismatch, expr.GetSpan(),
			"%s condition must be bool, got %s", construct, describe(val))
	}
	return bool(b), nil
}

func (i *Interpreter) evalBound(expr ast.Expr, which string) (int64, error) {
	val, err := i.evalExpr(expr)
	if err != nil {
		return 0, err
	}
	n, ok := val.(IntVal)
	if !ok {
		return 0, runtimeErr(diag.TypeMismatch, expr.GetSpan(),
			"for loop %s must be int, got %s", which, describe(val))
	}
	return int64(n), nil
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return IntVal(e.Value), nil
	case *ast.StringLiteral:
		return StringVal(e.Value), nil
	case *ast.BoolLiteral:
		return BoolVal(e.Value), nil
	case *ast.IdentExpr:
		return i.evalIdent(e)
	case *ast.UnaryExpr:
		return i.evalUnary(e)
	case *ast.BinaryExpr:
		return i.evalBinary(e)
	case *ast.CallExpr:
		return i.evalCall(e)
	case *ast.SensorExpr:
		return i.evalSensor(e)
	case *ast.ScanExpr:
		return i.evalScan(e)
	default:
		return nil, runtimeErr(diag.None, expr.GetSpan(), "unhandled expression type: %T", expr)
	}
}

func (i *Interpreter) evalIdent(e *ast.IdentExpr) (Value, error) {
	b, ok := i.env.Get(e.Name)
	if !ok {
		return nil, i.undefined(e.GetSpan(), e.Name, "undefined variable '%s'", e.Name)
	}
	return b.Value, nil
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, error) {
	operand, err := i.evalExpr(e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.MINUS:
		if n, ok := operand.(IntVal); ok {
			return -n, nil
		}
	case token.PLUS:
		if n, ok := operand.(IntVal); ok {
			return n, nil
		}
	case token.BANG:
		if b, ok := operand.(BoolVal); ok {
			return !b, nil
		}
	}
	return nil, runtimeErr(diag.TypeMismatch, e.GetSpan(),
		"unary '%s' not supported for %s", e.Op, describe(operand))
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	if val, ok := binaryOp(e.Op, left, right); ok {
		return val, nil
	}
	return nil, runtimeErr(diag.TypeMismatch, e.GetSpan(),
		"operator '%s' not supported for %s and %s", e.Op, describe(left), describe(right))
}

// binaryOp applies op to two evaluated operands. It reports false for any
// combination of operator and operand types the language does not define.
func binaryOp(op token.Kind, left, right Value) (Value, bool) {
	if !isOperand(left) || !isOperand(right) {
		return nil, false
	}

	switch op {
	case token.PLUS:
		switch l := left.(type) {
		case IntVal:
			if r, ok := right.(IntVal); ok {
				return l + r, true
			}
		case StringVal:
			return l + StringVal(right.String()), true
		}
		if _, ok := right.(StringVal); ok {
			return StringVal(left.String()) + right.(StringVal), true
		}
		return nil, false

	case token.MINUS, token.STAR, token.SLASH:
		l, lok := left.(IntVal)
		r, rok := right.(IntVal)
		if !lok || !rok {
			return nil, false
		}
		switch op {
		case token.MINUS:
			return l - r, true
		case token.STAR:
			return l * r, true
		default:
			if r == 0 {
				return IntVal(0), true
			}
			return l / r, true
		}

	case token.AND, token.OR:
		l, lok := left.(BoolVal)
		r, rok := right.(BoolVal)
		if !lok || !rok {
			return nil, false
		}
		if op == token.AND {
			return l && r, true
		}
		return l || r, true
	}

	if op.IsRelational() {
		if left.Type() != right.Type() {
			return nil, false
		}
		c := compareValues(left, right)
		switch op {
		case token.EQ:
			return BoolVal(c == 0), true
		case token.NEQ:
			return BoolVal(c != 0), true
		case token.LT:
			return BoolVal(c < 0), true
		case token.LTE:
			return BoolVal(c <= 0), true
		case token.GT:
			return BoolVal(c > 0), true
		case token.GTE:
			return BoolVal(c >= 0), true
		}
	}
	return nil, false
}

// isOperand reports whether v may appear under an operator: functions and
// the fall-through marker may not.
func isOperand(v Value) bool {
	switch v.(type) {
	case IntVal, StringVal, BoolVal:
		return true
	}
	return false
}

// compareValues orders two values of the same primitive type; false sorts
// before true.
func compareValues(a, b Value) int {
	switch av := a.(type) {
	case IntVal:
		bv := b.(IntVal)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case StringVal:
		bv := b.(StringVal)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case BoolVal:
		bv := b.(BoolVal)
		if av != bv {
			if !av {
				return -1
			}
			return 1
		}
	}
	return 0
}

// ============================================================
// Function calls
// ============================================================

func (i *Interpreter) evalCall(e *ast.CallExpr) (Value, error) {
	b, ok := i.env.Get(e.Name)
	if !ok {
		return nil, i.undefined(e.GetSpan(), e.Name, "undefined function '%s'", e.Name)
	}
	fn, ok := b.Value.(*FuncVal)
	if !ok || b.Type != ast.TypeFunc {
		return nil, runtimeErr(diag.NotAFunction, e.GetSpan(),
			"'%s' is a %s, not a function", e.Name, b.Type)
	}
	return i.callFunc(fn, e.Args, e.GetSpan())
}

// callFunc invokes fn. The new scope's parent is the caller's current
// scope; arguments are evaluated there, one at a time, and checked against
// the parameter types before anything is bound.
func (i *Interpreter) callFunc(fn *FuncVal, argExprs []ast.Expr, s span.Span) (Value, error) {
	decl := fn.Decl
	if len(argExprs) != len(decl.Params) {
		return nil, runtimeErr(diag.ArgumentCountMismatch, s,
			"%s() expects %d arguments, got %d", decl.Name, len(decl.Params), len(argExprs))
	}
	if i.depth >= i.maxDepth {
		return nil, runtimeErr(diag.CallDepthExceeded, s,
			"maximum call depth of %d exceeded calling %s()", i.maxDepth, decl.Name)
	}

	args := make([]Value, len(argExprs))
	for idx, argExpr := range argExprs {
		val, err := i.evalExpr(argExpr)
		if err != nil {
			return nil, err
		}
		param := decl.Params[idx]
		if val.Type() != param.Type {
			return nil, runtimeErr(diag.TypeMismatch, argExpr.GetSpan(),
				"argument '%s' of %s() must be %s, got %s", param.Name, decl.Name, param.Type, describe(val))
		}
		args[idx] = val
	}

	funcEnv := NewEnvironment(i.env)
	for idx, param := range decl.Params {
		funcEnv.Define(param.Name, Binding{Type: param.Type, Value: args[idx]})
	}

	i.depth++
	defer func() { i.depth-- }()
	i.logger.Debug("function call",
		slog.String("func", decl.Name),
		slog.Int("args", len(args)),
		slog.Int("depth", i.depth))

	result, err := i.execBlock(decl.Body, funcEnv)
	if err != nil {
		return nil, err
	}

	if decl.Result == ast.TypeVoid {
		if result.Signal == SigReturn {
			return nil, runtimeErr(diag.InvalidVoidReturn, s,
				"%s() has no return type but returned %s", decl.Name, describe(result.Value))
		}
		return NoValue{Of: ast.TypeVoid}, nil
	}

	if result.Signal != SigReturn {
		return NoValue{Of: decl.Result}, nil
	}
	if result.Value.Type() != decl.Result {
		return nil, runtimeErr(diag.TypeMismatch, s,
			"%s() must return %s, got %s", decl.Name, decl.Result, describe(result.Value))
	}
	return result.Value, nil
}

// ============================================================
// Helpers
// ============================================================

// undefined builds an UndefinedName error with a "did you mean" hint drawn
// from the names visible in the current scope.
func (i *Interpreter) undefined(s span.Span, name, format string, args ...interface{}) *RuntimeError {
	err := runtimeErr(diag.UndefinedName, s, format, args...)
	if suggestion := closestName(name, i.env.Names()); suggestion != "" {
		err.Hint = fmt.Sprintf("did you mean '%s'?", suggestion)
	}
	return err
}

func closestName(name string, candidates []string) string {
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", 3
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(name, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// describe renders a value's type for error messages.
func describe(v Value) string {
	if v == nil {
		return "nothing"
	}
	if isNoValue(v) {
		return "no value"
	}
	return v.Type().String()
}
