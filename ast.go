// ast.go: abstract syntax tree produced by the parser.
//
// Nodes fall into three families: expressions, declarations, and document
// structure. Every node carries a byte span into the original source;
// children's spans nest inside their parent's. The tree is owned by the
// caller of Parse and is never shared or cyclic: the renderer receives it
// read-only.
package txt2tex

// Span is a half-open byte interval [Start, End) in the source text.
type Span struct {
	Start int // inclusive
	End   int // exclusive
}

// Bounds returns the node's span; it is promoted through the embedded field
// on every node type.
func (s Span) Bounds() Span { return s }

// Node is anything with a source span.
type Node interface {
	Bounds() Span
}

// Expr is an expression or predicate node.
type Expr interface {
	Node
	exprNode()
}

// Item is a top-level document item: a declaration or a structural element.
type Item interface {
	Node
	itemNode()
}

// DeclEntry is one entry of a declaration section: a typed variable group or
// a schema inclusion.
type DeclEntry interface {
	Node
	declEntry()
}

// Document is the root. It exists only if parsing completed without error.
type Document struct {
	Span
	Items []Item
}

// ───────────────────────────── expressions ──────────────────────────────────

// NumLit is a natural number literal.
type NumLit struct {
	Span
	Value int64
}

// Name references a declared or bound name. Decorations (', ?, !) are part
// of Text; Sub carries the braced subscript modifier, if any. Tight
// superscripts never join a name: they parse as Super or Postfix nodes.
type Name struct {
	Span
	Text string
	Sub  string // from '_{...}'
}

// Truth is the literal predicate 'true' or 'false'.
type Truth struct {
	Span
	Value bool
}

// EmptySet is the empty-set literal.
type EmptySet struct {
	Span
}

// Unary is a prefix operator application: NOT, MINUS, HASH, POWERSET, FINSET.
type Unary struct {
	Span
	Op Kind
	X  Expr
}

// Binary is an infix operator application. Grouped records whether the
// source parenthesized this node, preserving grouping intent beyond what
// precedence alone would require.
type Binary struct {
	Span
	Op      Kind
	X, Y    Expr
	Grouped bool
}

// Quant is a quantified expression: FORALL, EXISTS, EXISTS1, LAMBDA or MU,
// with bound-variable groups, an optional constraint and a body.
type Quant struct {
	Span
	Op         Kind
	Decls      []*VarGroup
	Constraint Expr // nil when absent
	Body       Expr
}

// SetLit is an extensional set literal { a, b, c }.
type SetLit struct {
	Span
	Elems []Expr
}

// SetComp is a set comprehension { decls | constraint . selector }. Both
// Constraint and Selector may be nil.
type SetComp struct {
	Span
	Decls      []*VarGroup
	Constraint Expr
	Selector   Expr
}

// SeqLit is a sequence literal <a, b, c>; Elems may be empty for '<>'.
type SeqLit struct {
	Span
	Elems []Expr
}

// BagLit is a bag literal [[a, b]].
type BagLit struct {
	Span
	Elems []Expr
}

// TupleLit is an ordered tuple (a, b, ...), always with two or more elements.
type TupleLit struct {
	Span
	Elems []Expr
}

// Apply is function application or sequence indexing: f(x, y), s(i).
type Apply struct {
	Span
	Fn   Expr
	Args []Expr
}

// Image is a relational image R(| S |).
type Image struct {
	Span
	Rel Expr
	Arg Expr
}

// Cond is 'if p then a else b'.
type Cond struct {
	Span
	Cond Expr
	Then Expr
	Else Expr
}

// Project is a field or positional projection on a projectable base:
// p.name, t.2, f(x).name.
type Project struct {
	Span
	X       Expr
	Field   string // set when the suffix is a name
	Index   int64  // set when the suffix is positional
	IsIndex bool
}

// Postfix is a postfix operator: TILDE (inverse), CLOSEPLUS, CLOSESTAR.
type Postfix struct {
	Span
	Op Kind
	X  Expr
}

// Super is relational iteration / exponentiation via a tight superscript:
// r^k or r^{n+1}. Mod holds the raw modifier text.
type Super struct {
	Span
	X   Expr
	Mod string
}

func (*NumLit) exprNode()   {}
func (*Name) exprNode()     {}
func (*Truth) exprNode()    {}
func (*EmptySet) exprNode() {}
func (*Unary) exprNode()    {}
func (*Binary) exprNode()   {}
func (*Quant) exprNode()    {}
func (*SetLit) exprNode()   {}
func (*SetComp) exprNode()  {}
func (*SeqLit) exprNode()   {}
func (*BagLit) exprNode()   {}
func (*TupleLit) exprNode() {}
func (*Apply) exprNode()    {}
func (*Image) exprNode()    {}
func (*Cond) exprNode()     {}
func (*Project) exprNode()  {}
func (*Postfix) exprNode()  {}
func (*Super) exprNode()    {}

// ───────────────────────────── declarations ─────────────────────────────────

// VarGroup declares one or more names sharing a type: "x, y : N".
type VarGroup struct {
	Span
	Names []*Name
	Type  Expr
}

// Include is a schema inclusion inside a declaration section: a bare schema
// name standing for that schema's components and predicates.
type Include struct {
	Span
	Name *Name
}

func (*VarGroup) declEntry() {}
func (*Include) declEntry()  {}

// Given introduces opaque base types, globally visible.
type Given struct {
	Span
	Names []*Name
}

// Branch is one alternative of a free type: a bare constant or a constructor
// with an argument type (possibly referencing the type being defined).
type Branch struct {
	Span
	Name *Name
	Arg  Expr // nil for bare constants
}

// FreeType defines a type by exhaustive alternatives: T ::= a | b <<T>>.
type FreeType struct {
	Span
	Name     *Name
	Branches []*Branch
}

// Abbrev is a horizontal definition NAME == expr, optionally generic.
type Abbrev struct {
	Span
	Name   *Name
	Params []*Name // generic formal parameters, nil when absent
	Value  Expr
}

// AxBlock is an axiomatic definition: globally-scoped declarations with
// optional predicates.
type AxBlock struct {
	Span
	Decls []DeclEntry
	Preds []Expr
}

// GenBlock is a generic definition: an axiomatic block with formal generic
// parameters.
type GenBlock struct {
	Span
	Params []*Name
	Decls  []DeclEntry
	Preds  []Expr
}

// SchemaBlock is a named schema. Component names are visible only inside the
// block; the schema name itself is global.
type SchemaBlock struct {
	Span
	Name   *Name
	Params []*Name
	Decls  []DeclEntry
	Preds  []Expr
}

func (*Given) itemNode()       {}
func (*FreeType) itemNode()    {}
func (*Abbrev) itemNode()      {}
func (*AxBlock) itemNode()     {}
func (*GenBlock) itemNode()    {}
func (*SchemaBlock) itemNode() {}

// ─────────────────────────── document structure ─────────────────────────────

// Section is a section header with optional parent sections.
type Section struct {
	Span
	Name    string
	Parents []string
}

// SolutionMark labels the solution that follows.
type SolutionMark struct {
	Span
	Label string
}

// PartMark labels a part within a solution.
type PartMark struct {
	Span
	Label string
}

// ProseSeg is one segment of a prose paragraph: raw text, or an embedded
// expression from a '$...$' span (exactly one of the two is set).
type ProseSeg struct {
	Span
	Text string
	Expr Expr
}

// Prose is a free-text paragraph with embedded expression spans.
type Prose struct {
	Span
	Segs []*ProseSeg
}

// TruthTable is a tabular truth table: variables, formula columns, and rows
// of truth-value cells (variables first, then formula values).
type TruthTable struct {
	Span
	Vars     []*Name
	Formulas []Expr
	Rows     [][]bool
}

// EquivStep is one step of an equivalence chain with its justification.
type EquivStep struct {
	Span
	Just string
	Expr Expr
}

// EquivChain is a justified chain of equivalences.
type EquivChain struct {
	Span
	First Expr
	Steps []*EquivStep
}

// StepKind classifies a proof step.
type StepKind int

const (
	StepDerive StepKind = iota
	StepAssume
	StepCase
)

// ProofStep is one line of a proof tree. Children are the steps indented
// beneath it; From and Discharge reference labels of earlier steps.
type ProofStep struct {
	Span
	Label     string
	Kind      StepKind
	Expr      Expr
	Rule      string   // from 'by RULE'
	From      []string // from 'from N, M'
	Discharge string   // from 'discharge N'
	Children  []*ProofStep
}

// Proof is an indentation-structured proof tree.
type Proof struct {
	Span
	Steps []*ProofStep
}

func (*Section) itemNode()      {}
func (*SolutionMark) itemNode() {}
func (*PartMark) itemNode()     {}
func (*Prose) itemNode()        {}
func (*TruthTable) itemNode()   {}
func (*EquivChain) itemNode()   {}
func (*Proof) itemNode()        {}
