package runtime

import (
	"errors"
	"fmt"
	"log/slog"
	"robo-lang/internal/ast"
	"robo-lang/internal/diag"
	"robo-lang/internal/span"
)

// Host supplies the effects the language delegates to its environment:
// robot commands, sensor readings and integer input.
type Host interface {
	// Dispatch performs a robot command such as "moveForward".
	Dispatch(command string) error
	// ReadSensor returns the reading at a position such as "front".
	ReadSensor(position string) (string, error)
	// ReadInt blocks until one integer of input is available.
	ReadInt() (int64, error)
}

// ErrNoInput is returned by the default host when a program calls Scan().
var ErrNoInput = errors.New("no integer input available")

// nullHost ignores commands, reads every sensor as "none" and has no input.
type nullHost struct{}

func (nullHost) Dispatch(string) error              { return nil }
func (nullHost) ReadSensor(string) (string, error) { return "none", nil }
func (nullHost) ReadInt() (int64, error)            { return 0, ErrNoInput }

// ---- built-in statements and expressions ----

func (i *Interpreter) execCommand(s *ast.CommandStmt) (ExecResult, error) {
	i.logger.Debug("robot command", slog.String("command", s.Name))
	if err := i.host.Dispatch(s.Name); err != nil {
		return resultNone, hostErr(s.GetSpan(), err, "%s()", s.Name)
	}
	return resultNone, nil
}

func (i *Interpreter) execPrint(s *ast.PrintStmt) (ExecResult, error) {
	val, err := i.evalExpr(s.Value)
	if err != nil {
		return resultNone, err
	}
	fmt.Fprintln(i.output, val.String())
	return resultNone, nil
}

func (i *Interpreter) evalSensor(e *ast.SensorExpr) (Value, error) {
	reading, err := i.host.ReadSensor(e.Position)
	if err != nil {
		return nil, hostErr(e.GetSpan(), err, "sensor.%s", e.Position)
	}
	i.logger.Debug("sensor read",
		slog.String("position", e.Position),
		slog.String("reading", reading))
	return StringVal(reading), nil
}

func (i *Interpreter) evalScan(e *ast.ScanExpr) (Value, error) {
	n, err := i.host.ReadInt()
	if err != nil {
		return nil, hostErr(e.GetSpan(), err, "Scan()")
	}
	return IntVal(n), nil
}

// hostErr wraps a failure reported by the host. It carries no taxonomy
// kind; the cause stays reachable through errors.Is and errors.As.
func hostErr(s span.Span, err error, format string, args ...interface{}) *RuntimeError {
	what := fmt.Sprintf(format, args...)
	return &RuntimeError{
		Kind:    diag.None,
		Message: fmt.Sprintf("%s failed: %v", what, err),
		Span:    s,
		Err:     err,
	}
}
