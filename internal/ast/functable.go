package ast

// FuncTable holds every function declaration seen while parsing, in
// declaration order. The parser registers a signature before parsing its
// body; the interpreter seeds the root scope from the table so calls may
// appear before the declaration, or inside it.
type FuncTable struct {
	order []string
	decls map[string]*FuncDecl
}

// NewFuncTable returns an empty table.
func NewFuncTable() *FuncTable {
	return &FuncTable{decls: make(map[string]*FuncDecl)}
}

// Declare registers decl, replacing any earlier declaration of the same
// name. It reports whether an earlier declaration was replaced.
func (t *FuncTable) Declare(decl *FuncDecl) bool {
	_, exists := t.decls[decl.Name]
	if !exists {
		t.order = append(t.order, decl.Name)
	}
	t.decls[decl.Name] = decl
	return exists
}

// Lookup returns the declaration registered under name.
func (t *FuncTable) Lookup(name string) (*FuncDecl, bool) {
	decl, ok := t.decls[name]
	return decl, ok
}

// Decls returns the declarations in first-declaration order.
func (t *FuncTable) Decls() []*FuncDecl {
	out := make([]*FuncDecl, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.decls[name])
	}
	return out
}

// Len returns the number of distinct function names.
func (t *FuncTable) Len() int {
	return len(t.order)
}
