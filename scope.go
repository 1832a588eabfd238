// scope.go: declaration visibility tracking.
//
// Two tables rather than one table with visibility flags: a persistent
// global table holding given types, free types and their constructors,
// abbreviations, axdef/gendef variables and schema *names*; and a
// block-local table pushed on schema entry and discarded at 'end'. Schema
// components therefore cannot leak structurally. Bound variables
// (quantifiers, lambda, mu, comprehensions, generic formals) live in a stack
// of frames pushed and popped around the binding form.
package txt2tex

// SymKind classifies a declared name.
type SymKind int

const (
	SymGiven SymKind = iota
	SymFreeType
	SymConstructor
	SymAbbrev
	SymVar    // axdef/gendef variable
	SymSchema // schema name (components are not globally visible)
	SymComponent
	SymBound
	SymBuiltin
)

// builtins are the names of the mathematical toolkit that need no
// declaration. The core does not assign them meanings; the external type
// checker validates their use.
var builtins = map[string]bool{
	"N": true, "N1": true, "Z": true,
	"dom": true, "ran": true, "id": true, "succ": true, "pred": true,
	"min": true, "max": true, "first": true, "second": true,
	"seq": true, "seq1": true, "iseq": true, "bag": true,
	"head": true, "tail": true, "last": true, "front": true, "rev": true,
	"squash": true, "items": true, "count": true,
	"dunion": true, "dinter": true, "disjoint": true, "partition": true,
}

// SymTab tracks everything visible at the current parse position.
type SymTab struct {
	globals map[string]SymKind
	local   map[string]SymKind // schema components; nil outside schema blocks
	frames  []map[string]bool  // bound-variable frames, innermost last
}

// NewSymTab returns an empty symbol table.
func NewSymTab() *SymTab {
	return &SymTab{globals: make(map[string]SymKind)}
}

// DeclareGlobal records a globally-visible name. It reports false when the
// name is already taken by another global declaration.
func (st *SymTab) DeclareGlobal(name string, kind SymKind) bool {
	if _, dup := st.globals[name]; dup {
		return false
	}
	st.globals[name] = kind
	return true
}

// IsSchema reports whether name is a declared schema name. Schema names are
// global even though their components are not.
func (st *SymTab) IsSchema(name string) bool {
	return st.globals[name] == SymSchema
}

// EnterSchema opens a block-local component table.
func (st *SymTab) EnterSchema() {
	st.local = make(map[string]SymKind)
}

// LeaveSchema discards the component table; components become unresolvable.
func (st *SymTab) LeaveSchema() {
	st.local = nil
}

// DeclareComponent records a schema component in the block-local table.
// Outside a schema block it records nothing and reports false.
func (st *SymTab) DeclareComponent(name string) bool {
	if st.local == nil {
		return false
	}
	if _, dup := st.local[name]; dup {
		return false
	}
	st.local[name] = SymComponent
	return true
}

// InSchema reports whether a schema block is currently open.
func (st *SymTab) InSchema() bool { return st.local != nil }

// PushFrame opens a bound-variable frame with the given names.
func (st *SymTab) PushFrame(names []string) {
	f := make(map[string]bool, len(names))
	for _, n := range names {
		f[n] = true
	}
	st.frames = append(st.frames, f)
}

// AddToFrame binds one more name in the innermost frame.
func (st *SymTab) AddToFrame(name string) {
	if len(st.frames) > 0 {
		st.frames[len(st.frames)-1][name] = true
	}
}

// PopFrame closes the innermost bound-variable frame.
func (st *SymTab) PopFrame() {
	if len(st.frames) > 0 {
		st.frames = st.frames[:len(st.frames)-1]
	}
}

// Resolve looks a name up: bound frames innermost-first, then schema
// components, then globals, then the builtin toolkit.
func (st *SymTab) Resolve(name string) (SymKind, bool) {
	for i := len(st.frames) - 1; i >= 0; i-- {
		if st.frames[i][name] {
			return SymBound, true
		}
	}
	if st.local != nil {
		if k, ok := st.local[name]; ok {
			return k, true
		}
	}
	if k, ok := st.globals[name]; ok {
		return k, true
	}
	if builtins[name] {
		return SymBuiltin, true
	}
	return 0, false
}
