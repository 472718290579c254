package runtime

import (
	"bytes"
	"errors"
	"fmt"
	"robo-lang/internal/diag"
	"robo-lang/internal/parser"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// recordingHost captures commands and serves canned sensor readings and
// integer input.
type recordingHost struct {
	commands []string
	sensors  map[string]string
	ints     []int64
}

func (h *recordingHost) Dispatch(command string) error {
	h.commands = append(h.commands, command)
	return nil
}

func (h *recordingHost) ReadSensor(position string) (string, error) {
	if r, ok := h.sensors[position]; ok {
		return r, nil
	}
	return "none", nil
}

func (h *recordingHost) ReadInt() (int64, error) {
	if len(h.ints) == 0 {
		return 0, ErrNoInput
	}
	n := h.ints[0]
	h.ints = h.ints[1:]
	return n, nil
}

// runSource parses and executes source code, returning captured output and any error.
func runSource(source string, opts ...Option) (string, error) {
	prog, _, err := parser.ParseString(source, "test.robo")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	interp := NewInterpreter(&buf, opts...)
	err = interp.Run(prog)
	return buf.String(), err
}

func expectOutput(t *testing.T, source, expected string, opts ...Option) {
	t.Helper()
	out, err := runSource(source, opts...)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	if strings.TrimRight(out, "\n") != strings.TrimRight(expected, "\n") {
		t.Errorf("output mismatch:\nexpected: %q\ngot:      %q", expected, out)
	}
}

func expectError(t *testing.T, source string, kind error) *RuntimeError {
	t.Helper()
	_, err := runSource(source)
	require.Error(t, err)
	require.True(t, errors.Is(err, kind), "expected %v, got: %v", kind, err)
	var rerr *RuntimeError
	require.True(t, errors.As(err, &rerr), "expected *RuntimeError, got %T", err)
	return rerr
}

// ---- Tests ----

func TestPrintLiterals(t *testing.T) {
	expectOutput(t, `Println(42); Println("hello"); Println(true);`, "42\nhello\ntrue\n")
}

func TestArithmetic(t *testing.T) {
	expectOutput(t, `Println(1 + 2 * 3);`, "7")
	expectOutput(t, `Println((1 + 2) * 3);`, "9")
	expectOutput(t, `Println(10 - 3 - 2);`, "5")
	expectOutput(t, `Println(-4 + +2);`, "-2")
	expectOutput(t, `Println(- -5);`, "5")
}

func TestDivisionTruncatesTowardZero(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{10, 3, 3},
		{-7, 2, -3},
		{7, -2, -3},
		{-7, -2, 3},
		{0, 5, 0},
	}
	for _, tt := range tests {
		expectOutput(t, fmt.Sprintf(`Println(%d / %d);`, tt.a, tt.b), fmt.Sprint(tt.want))
	}
}

func TestDivisionByZeroYieldsZero(t *testing.T) {
	expectOutput(t, `Println(7 / 0); Println(-3 / (1 - 1));`, "0\n0\n")
}

func TestStringConcat(t *testing.T) {
	expectOutput(t, `Println("a" + "b");`, "ab")
	expectOutput(t, `Println("n=" + 5);`, "n=5")
	expectOutput(t, `Println(5 + "!");`, "5!")
	expectOutput(t, `Println("ok: " + true);`, "ok: true")
	expectOutput(t, `Println(false + "?");`, "false?")
}

func TestPlusTypeMismatch(t *testing.T) {
	expectError(t, `Println(true + false);`, diag.ErrTypeMismatch)
	expectError(t, `Println(1 + true);`, diag.ErrTypeMismatch)
}

func TestArithmeticTypeMismatch(t *testing.T) {
	for _, src := range []string{
		`Println("a" - 1);`,
		`Println(2 * "b");`,
		`Println(true / 1);`,
		`Println(-"x");`,
		`Println(!1);`,
		`Println(1 && true);`,
		`Println(true || "x");`,
	} {
		t.Run(src, func(t *testing.T) {
			expectError(t, src, diag.ErrTypeMismatch)
		})
	}
}

func TestRelational(t *testing.T) {
	expectOutput(t, `Println(1 < 2); Println(2 <= 2); Println(3 > 4); Println(3 >= 4);`,
		"true\ntrue\nfalse\nfalse\n")
	expectOutput(t, `Println("abc" < "abd"); Println("x" == "x"); Println("x" != "y");`,
		"true\ntrue\ntrue\n")
	expectOutput(t, `Println(false < true); Println(true == true);`, "true\ntrue\n")
	expectError(t, `Println(1 == "1");`, diag.ErrTypeMismatch)
}

func TestLogical(t *testing.T) {
	expectOutput(t, `Println(true && false); Println(true || false); Println(!false);`,
		"false\ntrue\ntrue\n")
	expectOutput(t, `Println(!(1 > 2) && 3 == 3);`, "true")
}

func TestOperandsEvaluatedEagerly(t *testing.T) {
	// || does not short-circuit: the right operand's error surfaces
	expectError(t, `Println(true || missing);`, diag.ErrUndefinedName)
}

func TestVarDefaults(t *testing.T) {
	expectOutput(t, `
var x: int;
var b: bool;
var s: string;
Println(x);
Println(b);
Println("[" + s + "]");
`, "0\nfalse\n[]\n")
}

func TestVarInitializer(t *testing.T) {
	expectOutput(t, `var x: int = 2 * 21; Println(x);`, "42")
	expectError(t, `var x: int = "no";`, diag.ErrTypeMismatch)
}

func TestAssignUndeclared(t *testing.T) {
	rerr := expectError(t, `x = 5;`, diag.ErrUndefinedName)
	assert.Equal(t, "E3001", rerr.Code())
	assert.Equal(t, 1, rerr.Span.Start.Line)
}

func TestAssignWrongType(t *testing.T) {
	expectError(t, `var x: int; x = "five";`, diag.ErrTypeMismatch)
	expectError(t, `var b: bool; b = 1;`, diag.ErrTypeMismatch)
}

func TestUndefinedNameHint(t *testing.T) {
	rerr := expectError(t, `var count: int; Println(cout);`, diag.ErrUndefinedName)
	assert.Contains(t, rerr.Hint, "count")
	assert.Contains(t, rerr.Error(), "did you mean 'count'?")

	rerr = expectError(t, `var count: int; conut = 1;`, diag.ErrUndefinedName)
	assert.Contains(t, rerr.Hint, "count")
}

func TestIfElse(t *testing.T) {
	expectOutput(t, `
var x: int = 5;
if (x > 3) { Println("big"); } else { Println("small"); }
if (x > 10) { Println("huge"); }
`, "big\n")
	expectError(t, `if (1) { Println("x"); }`, diag.ErrTypeMismatch)
}

func TestWhile(t *testing.T) {
	expectOutput(t, `
var i: int = 0;
while (i < 3) {
  Println(i);
  i = i + 1;
}
`, "0\n1\n2\n")
	expectError(t, `while ("yes") { Println(1); }`, diag.ErrTypeMismatch)
}

func TestForInclusiveRange(t *testing.T) {
	expectOutput(t, `for i = 1 to 3 { Println(i); }`, "1\n2\n3\n")
	expectOutput(t, `for i = 3 to 1 { Println(i); }`, "")
	expectOutput(t, `for i = 2 to 2 { Println(i); }`, "2")
}

func TestForBoundsEvaluatedOnce(t *testing.T) {
	expectOutput(t, `
var n: int = 3;
for i = 1 to n {
  n = n + 10;
  Println(i);
}
Println(n);
`, "1\n2\n3\n33\n")
}

func TestForVariableCreatedInRoot(t *testing.T) {
	expectOutput(t, `for i = 1 to 2 { Println("tick"); } Println(i);`, "tick\ntick\n2\n")
}

func TestForBoundTypeMismatch(t *testing.T) {
	expectError(t, `for i = "a" to 3 { Println(i); }`, diag.ErrTypeMismatch)
	expectError(t, `for i = 1 to true { Println(i); }`, diag.ErrTypeMismatch)
}

func TestRecursiveFactorial(t *testing.T) {
	expectOutput(t, `
func fac(n: int) int {
  if (n <= 1) { return 1; }
  return n * fac(n - 1);
}
func main() {
  Println(fac(5));
}
`, "120")
}

func TestForwardCall(t *testing.T) {
	expectOutput(t, `Println(twice(4)); func twice(n int) int { return n * 2; }`, "8")
}

func TestArgumentCountMismatch(t *testing.T) {
	rerr := expectError(t, `
func add(a: int, b: int) int { return a + b; }
Println(add(1));
`, diag.ErrArgumentCountMismatch)
	assert.Contains(t, rerr.Message, "expects 2 arguments, got 1")
}

func TestArityCheckedBeforeArguments(t *testing.T) {
	expectError(t, `
func one(a: int) int { return a; }
Println(one(1, missing));
`, diag.ErrArgumentCountMismatch)
}

func TestArgumentTypeMismatch(t *testing.T) {
	expectError(t, `
func inc(a: int) int { return a + 1; }
Println(inc("x"));
`, diag.ErrTypeMismatch)
}

func TestCallUndeclared(t *testing.T) {
	expectError(t, `nothing(1);`, diag.ErrUndefinedName)
}

func TestCallNonFunction(t *testing.T) {
	expectError(t, `var x: int; x(1);`, diag.ErrNotAFunction)
}

func TestBlockShadowing(t *testing.T) {
	expectOutput(t, `
var x: int = 1;
{
  var x: int = 2;
  Println(x);
}
Println(x);
`, "2\n1\n")
}

func TestInnerBlockAssignsOuter(t *testing.T) {
	expectOutput(t, `
var x: int = 1;
{ x = 5; }
Println(x);
`, "5")
}

func TestFunctionSeesCallerScope(t *testing.T) {
	expectOutput(t, `
func show() { Println(y); }
func main() {
  var y: int = 7;
  show();
}
`, "7")
}

func TestParametersShadowCaller(t *testing.T) {
	expectOutput(t, `
var n: int = 100;
func f(n: int) { Println(n); }
f(1);
Println(n);
`, "1\n100\n")
}

func TestReturnInsideLoopEndsIterationOnly(t *testing.T) {
	expectOutput(t, `
func f() int {
  var i: int = 0;
  while (i < 3) {
    i = i + 1;
    return 99;
  }
  for k = 1 to 2 {
    return 98;
  }
  return i;
}
func main() { Println(f()); }
`, "3")
}

func TestReturnFromNestedIf(t *testing.T) {
	expectOutput(t, `
func sign(n: int) string {
  if (n < 0) { return "neg"; } else { if (n == 0) { return "zero"; } }
  return "pos";
}
Println(sign(-2));
Println(sign(0));
Println(sign(9));
`, "neg\nzero\npos\n")
}

func TestVoidReturn(t *testing.T) {
	expectError(t, `func f() { return 1; } f();`, diag.ErrInvalidVoidReturn)
}

func TestReturnTypeMismatch(t *testing.T) {
	expectError(t, `func f() int { return "s"; } Println(f());`, diag.ErrTypeMismatch)
}

func TestFallThroughYieldsNoValue(t *testing.T) {
	expectOutput(t, `func f() int { Println("body"); } Println(f());`, "body\nnone\n")
	expectError(t, `func f() int { Println("body"); } Println(f() + 1);`, diag.ErrTypeMismatch)
}

func TestCallDepthLimit(t *testing.T) {
	_, err := runSource(`
func loop(n: int) int { return loop(n + 1); }
func main() { Println(loop(0)); }
`, WithMaxDepth(50))
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrCallDepthExceeded), "got %v", err)
}

func TestDeepRecursionWithinLimit(t *testing.T) {
	expectOutput(t, `
func sum(n: int) int {
  if (n == 0) { return 0; }
  return n + sum(n - 1);
}
Println(sum(1000));
`, "500500")
}

func TestMainInvokedAfterProgram(t *testing.T) {
	expectOutput(t, `
func main() { Println("main"); }
Println("top");
`, "top\nmain\n")
}

func TestMainMustBeFunction(t *testing.T) {
	expectOutput(t, `var main: int = 1; Println(main);`, "1")
}

func TestTopLevelReturnStopsProgram(t *testing.T) {
	expectOutput(t, `
func main() { Println("main"); }
Println("before");
return 0;
Println("after");
`, "before\nmain\n")
}

func TestExecDoesNotCallMain(t *testing.T) {
	prog, _, err := parser.ParseString(`func main() { Println("main"); } Println("top");`, "test.robo")
	require.NoError(t, err)

	var buf bytes.Buffer
	interp := NewInterpreter(&buf)
	require.NoError(t, interp.Exec(prog))
	assert.Equal(t, "top\n", buf.String())

	b, ok := interp.Root().Get("main")
	require.True(t, ok)
	assert.Equal(t, "func", b.Type.String())
}

func TestRobotHooks(t *testing.T) {
	host := &recordingHost{
		sensors: map[string]string{"front": "wall"},
		ints:    []int64{3},
	}
	expectOutput(t, `
var n: int = Scan();
for i = 1 to n { moveForward(); }
if (sensor.front == "wall") { turnLeft(); }
Println(sensor.back);
pick();
`, "none\n", WithHost(host))

	assert.Equal(t, []string{"moveForward", "moveForward", "moveForward", "turnLeft", "pick"}, host.commands)
}

func TestScanWithoutInput(t *testing.T) {
	_, err := runSource(`var n: int = Scan();`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoInput))
	assert.Contains(t, err.Error(), "Scan()")
}

func TestHostFailureWrapped(t *testing.T) {
	boom := errors.New("motor stalled")
	_, err := runSource(`moveForward();`, WithHost(failingHost{err: boom}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	var rerr *RuntimeError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, diag.None, rerr.Kind)
}

type failingHost struct {
	nullHost
	err error
}

func (h failingHost) Dispatch(string) error { return h.err }

func TestIndependentRunsInParallel(t *testing.T) {
	const src = `
var total: int;
func add(n: int) { total = total + n; }
func main() {
  for i = 1 to 100 { add(i); }
  Println(total);
}
`
	prog, _, err := parser.ParseString(src, "test.robo")
	require.NoError(t, err)

	var g errgroup.Group
	outputs := make([]string, 8)
	for idx := range outputs {
		idx := idx
		g.Go(func() error {
			var buf bytes.Buffer
			if err := NewInterpreter(&buf).Run(prog); err != nil {
				return err
			}
			outputs[idx] = buf.String()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, out := range outputs {
		assert.Equal(t, "5050\n", out)
	}
}

func TestRuntimeErrorPosition(t *testing.T) {
	_, err := runSource("var x: int;\nx = \"s\";")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "runtime error at 2:5:"), err.Error())
}
