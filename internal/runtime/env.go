package runtime

import (
	"robo-lang/internal/ast"
	"sort"
)

// Binding is a typed slot in a scope. Type is fixed by the declaration;
// assignments must match it.
type Binding struct {
	Type  ast.Type
	Value Value
}

// Environment represents a variable scope with a parent chain.
type Environment struct {
	values map[string]Binding
	parent *Environment
}

// NewEnvironment creates a new environment with an optional parent scope.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Binding),
		parent: parent,
	}
}

// Parent returns the enclosing scope, or nil for the root.
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Root walks to the outermost scope.
func (e *Environment) Root() *Environment {
	env := e
	for env.parent != nil {
		env = env.parent
	}
	return env
}

// Define binds name in the current scope, shadowing any outer binding and
// overwriting an earlier one in this scope.
func (e *Environment) Define(name string, b Binding) {
	e.values[name] = b
}

// Get looks up a binding by walking the scope chain.
func (e *Environment) Get(name string) (Binding, bool) {
	for env := e; env != nil; env = env.parent {
		if b, exists := env.values[name]; exists {
			return b, true
		}
	}
	return Binding{}, false
}

// Set overwrites the nearest binding of name. If no scope on the chain has
// one, the binding is created in the root scope.
func (e *Environment) Set(name string, b Binding) {
	env := e
	for {
		if _, exists := env.values[name]; exists || env.parent == nil {
			env.values[name] = b
			return
		}
		env = env.parent
	}
}

// Names returns every name visible from e, innermost first, without
// duplicates. Names in the same scope are sorted.
func (e *Environment) Names() []string {
	seen := make(map[string]bool)
	var out []string
	for env := e; env != nil; env = env.parent {
		local := make([]string, 0, len(env.values))
		for name := range env.values {
			if !seen[name] {
				seen[name] = true
				local = append(local, name)
			}
		}
		sort.Strings(local)
		out = append(out, local...)
	}
	return out
}
