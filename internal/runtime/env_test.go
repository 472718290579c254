package runtime

import (
	"robo-lang/internal/ast"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intBinding(n int64) Binding {
	return Binding{Type: ast.TypeInt, Value: IntVal(n)}
}

func TestEnvDefineShadows(t *testing.T) {
	root := NewEnvironment(nil)
	root.Define("x", intBinding(1))
	inner := NewEnvironment(root)
	inner.Define("x", intBinding(2))

	b, ok := inner.Get("x")
	require.True(t, ok)
	assert.Equal(t, IntVal(2), b.Value)

	b, ok = root.Get("x")
	require.True(t, ok)
	assert.Equal(t, IntVal(1), b.Value)
}

func TestEnvSetUpdatesNearest(t *testing.T) {
	root := NewEnvironment(nil)
	root.Define("x", intBinding(1))
	mid := NewEnvironment(root)
	leaf := NewEnvironment(mid)

	leaf.Set("x", intBinding(9))
	b, _ := root.Get("x")
	assert.Equal(t, IntVal(9), b.Value)

	mid.Define("x", intBinding(5))
	leaf.Set("x", intBinding(6))
	b, _ = mid.Get("x")
	assert.Equal(t, IntVal(6), b.Value)
	b, _ = root.Get("x")
	assert.Equal(t, IntVal(9), b.Value, "outer binding untouched once shadowed")
}

func TestEnvSetCreatesInRoot(t *testing.T) {
	root := NewEnvironment(nil)
	leaf := NewEnvironment(NewEnvironment(root))

	leaf.Set("fresh", intBinding(3))
	_, ok := root.values["fresh"]
	assert.True(t, ok)
	assert.Same(t, root, leaf.Root())
	assert.Nil(t, root.Parent())
}

func TestEnvGetMissing(t *testing.T) {
	_, ok := NewEnvironment(NewEnvironment(nil)).Get("nope")
	assert.False(t, ok)
}

func TestEnvNames(t *testing.T) {
	root := NewEnvironment(nil)
	root.Define("b", intBinding(1))
	root.Define("a", intBinding(1))
	inner := NewEnvironment(root)
	inner.Define("z", intBinding(1))
	inner.Define("a", intBinding(2))

	assert.Equal(t, []string{"a", "z", "b"}, inner.Names())
}

func TestZeroValues(t *testing.T) {
	assert.Equal(t, IntVal(0), Zero(ast.TypeInt))
	assert.Equal(t, BoolVal(false), Zero(ast.TypeBool))
	assert.Equal(t, StringVal(""), Zero(ast.TypeString))
	assert.Equal(t, "none", Zero(ast.TypeVoid).String())
}
