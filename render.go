// render.go: LaTeX rendering of a parsed Document.
//
// The renderer is a table-driven visitor: every operator Kind maps to a
// LaTeX control word in opLatex, and the two output modes differ only in
// spelling and environment choice, never in structure. ModeFuzz emits the
// zed/fuzz macro environments accepted by the external type checker;
// ModePlain emits self-contained article-style math.
//
// Output is deterministic: a Document renders to the same string every time.
package txt2tex

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode selects the LaTeX dialect.
type Mode int

const (
	// ModeFuzz targets the fuzz/zed macro packages.
	ModeFuzz Mode = iota
	// ModePlain targets plain LaTeX math with no zed dependency.
	ModePlain
)

// Render renders a parsed Document as LaTeX in the given mode.
func Render(doc *Document, mode Mode) string {
	r := &renderer{mode: mode}
	for i, item := range doc.Items {
		if i > 0 {
			r.nl()
		}
		r.item(item)
		r.nl()
	}
	return r.b.String()
}

// RenderExpr renders a single expression, math-mode body only.
func RenderExpr(e Expr, mode Mode) string {
	r := &renderer{mode: mode}
	r.expr(e, 0)
	return r.b.String()
}

// opLatex maps operator kinds to fuzz/zed control words. ModePlain
// substitutions live in plainLatex; kinds absent there render the same in
// both modes.
var opLatex = map[Kind]string{
	IFF:      `\iff`,
	IMPLIES:  `\implies`,
	OR:       `\lor`,
	AND:      `\land`,
	NOT:      `\lnot`,
	UNION:    `\cup`,
	INTER:    `\cap`,
	SETMINUS: `\setminus`,
	CROSS:    `\cross`,
	MAPLET:   `\mapsto`,
	REL:      `\rel`,
	TFUN:     `\fun`,
	PFUN:     `\pfun`,
	TINJ:     `\inj`,
	PINJ:     `\pinj`,
	TSURJ:    `\surj`,
	PSURJ:    `\psurj`,
	BIJ:      `\bij`,
	PBIJ:     `\pbij`,
	DRES:     `\dres`,
	RRES:     `\rres`,
	NDRES:    `\ndres`,
	NRRES:    `\nrres`,
	COMP:     `\comp`,
	CIRC:     `\circ`,
	UPTO:     `\upto`,
	EQ:       `=`,
	NEQ:      `\neq`,
	LSS:      `<`,
	LEQ:      `\leq`,
	GTR:      `>`,
	GEQ:      `\geq`,
	IN:       `\in`,
	NOTIN:    `\notin`,
	SUBSET:   `\subset`,
	SUBSETEQ: `\subseteq`,
	PLUS:     `+`,
	MINUS:    `-`,
	STAR:     `*`,
	DIV:      `\div`,
	MOD:      `\mod`,
	CAT:      `\cat`,
	HASH:     `\#`,
	POWERSET: `\power`,
	FINSET:   `\finset`,
	FORALL:   `\forall`,
	EXISTS:   `\exists`,
	EXISTS1:  `\exists_1`,
	LAMBDA:   `\lambda`,
	MU:       `\mu`,
}

// plainLatex overrides fuzz-only control words for zed-free output.
var plainLatex = map[Kind]string{
	IFF:      `\Leftrightarrow`,
	IMPLIES:  `\Rightarrow`,
	CROSS:    `\times`,
	REL:      `\leftrightarrow`,
	TFUN:     `\rightarrow`,
	PFUN:     `\nrightarrow`,
	TINJ:     `\rightarrowtail`,
	PINJ:     `\rightarrowtail`,
	TSURJ:    `\twoheadrightarrow`,
	PSURJ:    `\twoheadrightarrow`,
	BIJ:      `\rightarrowtail`,
	PBIJ:     `\rightarrowtail`,
	DRES:     `\lhd`,
	RRES:     `\rhd`,
	NDRES:    `\!\lhd\!`,
	NRRES:    `\!\rhd\!`,
	COMP:     `\fatsemi`,
	UPTO:     `\,..\,`,
	CAT:      `\frown`,
	POWERSET: `\mathbb{P}`,
	FINSET:   `\mathbb{F}`,
	MOD:      `\bmod`,
	EXISTS1:  `\exists!`,
}

// binding powers shared with the parser; used to decide where the rendered
// form needs parentheses beyond what Grouped requests.
func renderBP(k Kind) int {
	if bp, _, ok := lbp(k); ok {
		return bp
	}
	if isComparison(k) {
		return lbpCmp
	}
	return 0
}

type renderer struct {
	b    strings.Builder
	mode Mode
}

func (r *renderer) write(s string) { r.b.WriteString(s) }
func (r *renderer) nl()            { r.b.WriteByte('\n') }

func (r *renderer) op(k Kind) string {
	if r.mode == ModePlain {
		if s, ok := plainLatex[k]; ok {
			return s
		}
	}
	return opLatex[k]
}

// name renders an identifier with decorations and modifiers. Multi-letter
// names are set upright in plain mode; fuzz handles them natively.
func (r *renderer) name(n *Name) {
	base := n.Text
	var deco string
	for len(base) > 0 {
		switch base[len(base)-1] {
		case '\'':
			deco = "'" + deco
			base = base[:len(base)-1]
			continue
		case '?', '!':
			deco = string(base[len(base)-1]) + deco
			base = base[:len(base)-1]
			continue
		}
		break
	}
	switch {
	case r.mode == ModePlain && len([]rune(base)) > 1 && !isToolkitName(base):
		r.write(`\mathit{` + escapeText(base) + `}`)
	default:
		r.write(escapeText(base))
	}
	r.write(deco)
	if n.Sub != "" {
		r.write("_{" + escapeText(n.Sub) + "}")
	}
}

// toolkitLatex maps builtin names to their control words; names absent here
// render as themselves.
var toolkitLatex = map[string]string{
	"N":  `\nat`,
	"N1": `\nat_1`,
	"Z":  `\num`,
}

var toolkitPlain = map[string]string{
	"N":  `\mathbb{N}`,
	"N1": `\mathbb{N}_1`,
	"Z":  `\mathbb{Z}`,
}

func isToolkitName(s string) bool {
	_, ok := builtins[s]
	return ok
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\backslash `)
	s = strings.ReplaceAll(s, "_", `\_`)
	s = strings.ReplaceAll(s, "#", `\#`)
	s = strings.ReplaceAll(s, "&", `\&`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return s
}

// ─────────────────────────────── items ──────────────────────────────────────

func (r *renderer) item(it Item) {
	switch n := it.(type) {
	case *Section:
		r.section(n)
	case *SolutionMark:
		r.write(`\section*{Solution ` + escapeText(n.Label) + `}`)
	case *PartMark:
		r.write(`\subsection*{Part (` + escapeText(n.Label) + `)}`)
	case *Given:
		r.given(n)
	case *FreeType:
		r.freeType(n)
	case *Abbrev:
		r.abbrev(n)
	case *AxBlock:
		r.axdef(n)
	case *GenBlock:
		r.gendef(n)
	case *SchemaBlock:
		r.schema(n)
	case *Prose:
		r.prose(n)
	case *TruthTable:
		r.truthTable(n)
	case *EquivChain:
		r.equivChain(n)
	case *Proof:
		r.proof(n)
	default:
		panic(fmt.Sprintf("render: unknown item %T", it))
	}
}

func (r *renderer) section(s *Section) {
	if r.mode == ModeFuzz {
		r.write(`\begin{zsection}`)
		r.nl()
		r.write(`  \SECTION ` + escapeText(s.Name))
		if len(s.Parents) > 0 {
			r.write(` \parents `)
			for i, p := range s.Parents {
				if i > 0 {
					r.write(", ")
				}
				r.write(escapeText(p))
			}
		}
		r.nl()
		r.write(`\end{zsection}`)
		return
	}
	r.write(`\section{` + escapeText(s.Name) + `}`)
}

func (r *renderer) given(g *Given) {
	r.beginZed()
	r.write("  [")
	for i, n := range g.Names {
		if i > 0 {
			r.write(", ")
		}
		r.name(n)
	}
	r.write("]")
	r.endZed()
}

func (r *renderer) freeType(ft *FreeType) {
	r.beginZed()
	r.write("  ")
	r.name(ft.Name)
	r.write(` ::= `)
	for i, br := range ft.Branches {
		if i > 0 {
			r.write(` | `)
		}
		r.name(br.Name)
		if br.Arg != nil {
			r.write(` \ldata `)
			r.expr(br.Arg, 0)
			r.write(` \rdata`)
		}
	}
	r.endZed()
}

func (r *renderer) abbrev(ab *Abbrev) {
	r.beginZed()
	r.write("  ")
	r.name(ab.Name)
	if len(ab.Params) > 0 {
		r.write("[")
		for i, p := range ab.Params {
			if i > 0 {
				r.write(", ")
			}
			r.name(p)
		}
		r.write("]")
	}
	r.write(` == `)
	r.expr(ab.Value, 0)
	r.endZed()
}

// beginZed/endZed wrap a one-line paragraph in the mode's display form.
func (r *renderer) beginZed() {
	if r.mode == ModeFuzz {
		r.write(`\begin{zed}`)
	} else {
		r.write(`\[`)
	}
	r.nl()
}

func (r *renderer) endZed() {
	r.nl()
	if r.mode == ModeFuzz {
		r.write(`\end{zed}`)
	} else {
		r.write(`\]`)
	}
}

func (r *renderer) axdef(blk *AxBlock) {
	if r.mode == ModeFuzz {
		r.write(`\begin{axdef}`)
	} else {
		r.write(`\[\begin{array}{l}`)
	}
	r.nl()
	r.declLines(blk.Decls)
	r.whereLines(blk.Preds)
	if r.mode == ModeFuzz {
		r.write(`\end{axdef}`)
	} else {
		r.write(`\end{array}\]`)
	}
}

func (r *renderer) gendef(blk *GenBlock) {
	if r.mode == ModeFuzz {
		r.write(`\begin{gendef}`)
		if len(blk.Params) > 0 {
			r.write("[")
			for i, p := range blk.Params {
				if i > 0 {
					r.write(", ")
				}
				r.name(p)
			}
			r.write("]")
		}
	} else {
		r.write(`\[\begin{array}{l}`)
	}
	r.nl()
	r.declLines(blk.Decls)
	r.whereLines(blk.Preds)
	if r.mode == ModeFuzz {
		r.write(`\end{gendef}`)
	} else {
		r.write(`\end{array}\]`)
	}
}

func (r *renderer) schema(blk *SchemaBlock) {
	if r.mode == ModeFuzz {
		r.write(`\begin{schema}{`)
		r.name(blk.Name)
		r.write(`}`)
		if len(blk.Params) > 0 {
			r.write("[")
			for i, p := range blk.Params {
				if i > 0 {
					r.write(", ")
				}
				r.name(p)
			}
			r.write("]")
		}
	} else {
		r.write(`\[\textbf{`)
		r.name(blk.Name)
		r.write(`}\qquad\begin{array}{l}`)
	}
	r.nl()
	r.declLines(blk.Decls)
	r.whereLines(blk.Preds)
	if r.mode == ModeFuzz {
		r.write(`\end{schema}`)
	} else {
		r.write(`\end{array}\]`)
	}
}

func (r *renderer) declLines(decls []DeclEntry) {
	for i, d := range decls {
		r.write("  ")
		switch e := d.(type) {
		case *VarGroup:
			for j, n := range e.Names {
				if j > 0 {
					r.write(", ")
				}
				r.name(n)
			}
			r.write(": ")
			r.expr(e.Type, 0)
		case *Include:
			r.name(e.Name)
		}
		if i < len(decls)-1 {
			r.write(` \\`)
		}
		r.nl()
	}
}

func (r *renderer) whereLines(preds []Expr) {
	if len(preds) == 0 {
		return
	}
	if r.mode == ModeFuzz {
		r.write(`\where`)
	} else {
		r.write(`\hline`)
	}
	r.nl()
	for i, pd := range preds {
		r.write("  ")
		r.expr(pd, 0)
		if i < len(preds)-1 {
			r.write(` \\`)
		}
		r.nl()
	}
}

func (r *renderer) prose(pr *Prose) {
	for _, seg := range pr.Segs {
		if seg.Expr != nil {
			r.write("$")
			r.expr(seg.Expr, 0)
			r.write("$")
			continue
		}
		r.write(escapeText(seg.Text))
	}
}

func (r *renderer) truthTable(tt *TruthTable) {
	cols := strings.Repeat("c", len(tt.Vars)) + "|" + strings.Repeat("c", len(tt.Formulas))
	r.write(`\[\begin{array}{` + cols + `}`)
	r.nl()
	var hdr []string
	for _, v := range tt.Vars {
		hdr = append(hdr, escapeText(v.Text))
	}
	for _, f := range tt.Formulas {
		hdr = append(hdr, RenderExpr(f, r.mode))
	}
	r.write("  " + strings.Join(hdr, " & ") + ` \\ \hline`)
	r.nl()
	for _, row := range tt.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v {
				cells[i] = "T"
			} else {
				cells[i] = "F"
			}
		}
		r.write("  " + strings.Join(cells, " & ") + ` \\`)
		r.nl()
	}
	r.write(`\end{array}\]`)
}

func (r *renderer) equivChain(ch *EquivChain) {
	r.write(`\begin{align*}`)
	r.nl()
	r.write(`  & `)
	r.expr(ch.First, 0)
	r.write(` \\`)
	r.nl()
	for i, st := range ch.Steps {
		r.write(`  ` + r.op(IFF) + ` \; & `)
		r.expr(st.Expr, 0)
		r.write(` && \text{` + escapeText(st.Just) + `}`)
		if i < len(ch.Steps)-1 {
			r.write(` \\`)
		}
		r.nl()
	}
	r.write(`\end{align*}`)
}

func (r *renderer) proof(pf *Proof) {
	r.write(`\begin{itemize}`)
	r.nl()
	for _, st := range pf.Steps {
		r.proofStep(st, 1)
	}
	r.write(`\end{itemize}`)
}

func (r *renderer) proofStep(st *ProofStep, depth int) {
	pad := strings.Repeat("  ", depth)
	r.write(pad + `\item `)
	if st.Label != "" {
		r.write(`[` + st.Label + `] `)
	}
	switch st.Kind {
	case StepAssume:
		r.write(`\textit{assume} `)
	case StepCase:
		r.write(`\textit{case} `)
	}
	r.write("$")
	r.expr(st.Expr, 0)
	r.write("$")
	if st.Rule != "" {
		r.write(` \hfill [` + escapeText(st.Rule))
		if len(st.From) > 0 {
			r.write(` from ` + strings.Join(st.From, ", "))
		}
		if st.Discharge != "" {
			r.write(` discharge ` + st.Discharge)
		}
		r.write(`]`)
	}
	r.nl()
	if len(st.Children) > 0 {
		r.write(pad + `\begin{itemize}`)
		r.nl()
		for _, c := range st.Children {
			r.proofStep(c, depth+1)
		}
		r.write(pad + `\end{itemize}`)
		r.nl()
	}
}

// ───────────────────────────── expressions ──────────────────────────────────

// expr renders e, parenthesizing when its top operator binds looser than the
// context or when the source grouped it explicitly.
func (r *renderer) expr(e Expr, ctxBP int) {
	switch n := e.(type) {
	case *NumLit:
		r.write(strconv.FormatInt(n.Value, 10))

	case *Name:
		if tk := r.toolkit(n); tk != "" {
			r.write(tk)
			return
		}
		r.name(n)

	case *Truth:
		if n.Value {
			r.write(`\textit{true}`)
		} else {
			r.write(`\textit{false}`)
		}

	case *EmptySet:
		r.write(`\emptyset`)

	case *Unary:
		r.unary(n)

	case *Binary:
		r.binary(n, ctxBP)

	case *Quant:
		r.quant(n)

	case *SetLit:
		r.write(`\{`)
		r.exprList(n.Elems)
		r.write(`\}`)

	case *SetComp:
		r.setComp(n)

	case *SeqLit:
		r.write(`\langle `)
		r.exprList(n.Elems)
		r.write(` \rangle`)

	case *BagLit:
		r.write(`\lbag `)
		r.exprList(n.Elems)
		r.write(` \rbag`)

	case *TupleLit:
		r.write("(")
		r.exprList(n.Elems)
		r.write(")")

	case *Apply:
		r.expr(n.Fn, lbpPrefix+1)
		r.write("(")
		r.exprList(n.Args)
		r.write(")")

	case *Image:
		r.expr(n.Rel, lbpPrefix+1)
		r.write(`\limg `)
		r.expr(n.Arg, 0)
		r.write(` \rimg`)

	case *Cond:
		if r.mode == ModeFuzz {
			r.write(`\IF `)
			r.expr(n.Cond, 0)
			r.write(` \THEN `)
			r.expr(n.Then, 0)
			r.write(` \ELSE `)
			r.expr(n.Else, 0)
		} else {
			r.write(`\textit{if}\ `)
			r.expr(n.Cond, 0)
			r.write(`\ \textit{then}\ `)
			r.expr(n.Then, 0)
			r.write(`\ \textit{else}\ `)
			r.expr(n.Else, 0)
		}

	case *Project:
		r.expr(n.X, lbpPrefix+1)
		if n.IsIndex {
			r.write("." + strconv.FormatInt(n.Index, 10))
		} else {
			r.write("." + escapeText(n.Field))
		}

	case *Postfix:
		r.expr(n.X, lbpPrefix+1)
		switch n.Op {
		case TILDE:
			r.write(`\inv`)
		case CLOSEPLUS:
			r.write(`^{+}`)
		case CLOSESTAR:
			r.write(`^{*}`)
		}

	case *Super:
		r.expr(n.X, lbpPrefix+1)
		r.write(`^{` + escapeText(n.Mod) + `}`)

	default:
		panic(fmt.Sprintf("render: unknown expression %T", e))
	}
}

func (r *renderer) toolkit(n *Name) string {
	if n.Sub != "" {
		return ""
	}
	if r.mode == ModePlain {
		if s, ok := toolkitPlain[n.Text]; ok {
			return s
		}
	}
	if s, ok := toolkitLatex[n.Text]; ok {
		return s
	}
	return ""
}

func (r *renderer) exprList(es []Expr) {
	for i, e := range es {
		if i > 0 {
			r.write(", ")
		}
		r.expr(e, 0)
	}
}

func (r *renderer) unary(n *Unary) {
	switch n.Op {
	case NOT:
		r.write(r.op(NOT) + ` `)
		r.expr(n.X, lbpNot)
	case MINUS:
		r.write("-")
		r.expr(n.X, lbpPrefix)
	case HASH:
		r.write(`\# `)
		r.expr(n.X, lbpPrefix)
	case POWERSET, FINSET:
		r.write(r.op(n.Op) + ` `)
		r.expr(n.X, lbpPrefix)
	}
}

func (r *renderer) binary(n *Binary, ctxBP int) {
	bp := renderBP(n.Op)
	parens := n.Grouped || bp < ctxBP
	if parens {
		r.write("(")
	}
	r.expr(n.X, bp)
	r.write(" " + r.op(n.Op) + " ")
	r.expr(n.Y, bp+1)
	if parens {
		r.write(")")
	}
}

// spot is the rendered body separator: fuzz spells it '@', plain '\bullet'.
func (r *renderer) spot() string {
	if r.mode == ModeFuzz {
		return ` @ `
	}
	return ` \bullet `
}

func (r *renderer) quant(q *Quant) {
	r.write(r.op(q.Op) + ` `)
	r.declGroups(q.Decls)
	if q.Constraint != nil {
		r.write(` | `)
		r.expr(q.Constraint, 0)
	}
	if q.Body != nil {
		r.write(r.spot())
		r.expr(q.Body, 0)
	}
}

func (r *renderer) setComp(c *SetComp) {
	r.write(`\{`)
	r.declGroups(c.Decls)
	if c.Constraint != nil {
		r.write(` | `)
		r.expr(c.Constraint, 0)
	}
	if c.Selector != nil {
		r.write(r.spot())
		r.expr(c.Selector, 0)
	}
	r.write(`\}`)
}

func (r *renderer) declGroups(groups []*VarGroup) {
	for i, g := range groups {
		if i > 0 {
			r.write("; ")
		}
		for j, n := range g.Names {
			if j > 0 {
				r.write(", ")
			}
			r.name(n)
		}
		r.write(": ")
		r.expr(g.Type, 0)
	}
}
