// parser.go: recursive-descent, precedence-climbing parser for txt2tex.
//
// OVERVIEW
// --------
// The parser consumes the token stream produced by the whitespace-sensitive
// lexer (lexer.go) and builds the typed AST of ast.go. It is a Pratt parser
// for expressions plus hand-written productions for declaration blocks and
// document structure.
//
// Design points:
//   - Expression precedence lives in one binding-power table, lbp().
//   - The two roles of the '.' separator inside quantifiers and
//     comprehensions are resolved positionally: each quantified form
//     consumes its own SPOT, so a separator belongs to the innermost form
//     still awaiting its body, and outer forms become eligible once the
//     inner one completes. A SPOT with no open form at all is a parse
//     error, never a silent guess.
//   - Tight '.' (DOT) is a projection only when the immediately preceding
//     completed sub-expression is projectable: an identifier, an
//     application/indexing, a relational image, or a projection chain.
//     Projection therefore works on call results: the base's syntactic
//     class is what decides, not whether it is a bare identifier.
//   - Quantifiers extend maximally rightward. Negation takes a quantified
//     operand directly; under a conjunction or disjunction the quantifier
//     must be parenthesized, and the parser rejects the unparenthesized
//     form with a hint.
//   - Chained comparisons are pairwise: a < b < c becomes
//     (a < b) and (b < c), never a re-associated tree.
//   - Scope is tracked while parsing (scope.go): given/free/abbreviation/
//     axdef/gendef names and schema *names* are global; schema components
//     live in a block-local table discarded at 'end'; bound variables in
//     per-binder frames. An identifier that resolves nowhere is a parse
//     error.
//
// Failure policy: the first structural violation aborts the whole parse with
// a *ParseError. There is no resynchronization and no partial Document.
package txt2tex

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse tokenizes and parses a complete source buffer into a Document.
func Parse(src string) (*Document, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, src: src, syms: NewSymTab()}
	return p.document()
}

// ParseExpr parses a single expression or predicate, binding free names
// automatically. This is the entry point used by the REPL and by embedded
// tooling that has no document scope to resolve against.
func ParseExpr(src string) (Expr, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, src: src, syms: NewSymTab(), autobind: true}
	p.syms.PushFrame(nil)
	e, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if !p.at(EOF) {
		return nil, p.errExpect("end of expression")
	}
	return e, nil
}

type parser struct {
	toks []Token
	i    int
	src  string

	syms *SymTab

	// openForms counts quantifier/comprehension productions currently on
	// the call stack. Separator ownership is positional: each production
	// consumes its own SPOT, innermost first, so the expression loop only
	// needs to know whether any form is open at all. A SPOT with the count
	// at zero is an error, never a silent stop.
	openForms int

	// stopLine bounds expression operators to a single source line when
	// nonzero. Proof steps are one line each; without the bound a step
	// beginning with an infix-continuable glyph would merge into the
	// previous step's expression.
	stopLine int

	// autobind binds unresolved identifiers into the innermost frame
	// instead of failing. Proof trees, equivalence chains and truth-table
	// formulas bind their propositional letters this way; everywhere else
	// an unresolved name is an error.
	autobind bool
}

// ───────────────────────────── token plumbing ───────────────────────────────

func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}

func (p *parser) peekAt(n int) Token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *parser) prev() Token { return p.toks[p.i-1] }

func (p *parser) at(k Kind) bool { return p.peek().Kind == k }

func (p *parser) match(kinds ...Kind) bool {
	for _, k := range kinds {
		if p.peek().Kind == k {
			p.i++
			return true
		}
	}
	return false
}

func (p *parser) need(k Kind, what string) (Token, error) {
	if p.match(k) {
		return p.prev(), nil
	}
	return Token{}, p.errExpect(what)
}

func describe(t Token) string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case IDENT:
		return fmt.Sprintf("identifier '%s'", t.Text)
	case NUMBER:
		return fmt.Sprintf("number %s", t.Text)
	default:
		return t.Kind.String()
	}
}

func (p *parser) errExpect(expected string) error {
	t := p.peek()
	return &ParseError{Line: t.Line, Col: t.Col, Expected: expected, Found: describe(t)}
}

func (p *parser) errAt(t Token, expected string) error {
	return &ParseError{Line: t.Line, Col: t.Col, Expected: expected, Found: describe(t)}
}

func (p *parser) errHintAt(t Token, expected, hint string) error {
	return &ParseError{Line: t.Line, Col: t.Col, Expected: expected, Found: describe(t), Hint: hint}
}

// spanFrom builds the byte span from the token at index start through the
// most recently consumed token.
func (p *parser) spanFrom(start int) Span {
	return Span{Start: p.toks[start].Start, End: p.prev().End}
}

func (p *parser) sameLine(a, b Token) bool { return a.Line == b.Line }

// ─────────────────────────────── document ───────────────────────────────────

func (p *parser) document() (*Document, error) {
	doc := &Document{}
	start := p.i
	for !p.at(EOF) {
		item, err := p.documentItem()
		if err != nil {
			return nil, err
		}
		doc.Items = append(doc.Items, item)
	}
	if len(doc.Items) > 0 {
		doc.Span = p.spanFrom(start)
	}
	return doc, nil
}

func (p *parser) documentItem() (Item, error) {
	switch p.peek().Kind {
	case SECTION:
		return p.sectionItem()
	case SOLUTION:
		return p.solutionItem()
	case PART:
		return p.partItem()
	case GIVEN:
		return p.givenItem()
	case AXDEF:
		return p.axdefItem()
	case GENDEF:
		return p.gendefItem()
	case SCHEMA:
		return p.schemaItem()
	case TEXT:
		return p.proseItem()
	case TRUTHTABLE:
		return p.truthTableItem()
	case EQUIV:
		return p.equivItem()
	case PROOF:
		return p.proofItem()
	case IDENT:
		return p.namedDefinitionItem()
	case SPOT:
		return nil, p.errHintAt(p.peek(),
			"a document item (a separator '.' has no open quantifier or comprehension here)",
			"the spaced '.' is the quantifier body separator; write it inside the quantified form")
	default:
		return nil, p.errExpect("a document item (section, given, axdef, gendef, schema, definition, text, truthtable, equiv, proof)")
	}
}

func (p *parser) sectionItem() (Item, error) {
	start := p.i
	p.i++ // 'section'
	name, err := p.need(IDENT, "section name")
	if err != nil {
		return nil, err
	}
	s := &Section{Name: name.Text}
	if p.match(PARENTS) {
		for {
			par, err := p.need(IDENT, "parent section name")
			if err != nil {
				return nil, err
			}
			s.Parents = append(s.Parents, par.Text)
			if !p.match(COMMA) {
				break
			}
		}
	}
	s.Span = p.spanFrom(start)
	return s, nil
}

func (p *parser) solutionItem() (Item, error) {
	start := p.i
	p.i++ // 'solution'
	if !p.match(NUMBER, IDENT) {
		return nil, p.errExpect("solution label")
	}
	label := p.prev().Text
	// Allow dotted labels such as 'solution 3.2'.
	if p.at(DOT) && p.peekAt(1).Kind == NUMBER {
		p.i++
		p.i++
		label += "." + p.prev().Text
	}
	return &SolutionMark{Span: p.spanFrom(start), Label: label}, nil
}

func (p *parser) partItem() (Item, error) {
	start := p.i
	p.i++ // 'part'
	if p.match(LPAREN, CLPAREN) {
		if !p.match(IDENT, NUMBER) {
			return nil, p.errExpect("part label")
		}
		label := p.prev().Text
		if _, err := p.need(RPAREN, "')' after part label"); err != nil {
			return nil, err
		}
		return &PartMark{Span: p.spanFrom(start), Label: label}, nil
	}
	if !p.match(IDENT, NUMBER) {
		return nil, p.errExpect("part label")
	}
	return &PartMark{Span: p.spanFrom(start), Label: p.prev().Text}, nil
}

// ───────────────────────── given / free type / abbrev ───────────────────────

func (p *parser) givenItem() (Item, error) {
	start := p.i
	p.i++ // 'given'
	g := &Given{}
	for {
		name, err := p.declName()
		if err != nil {
			return nil, err
		}
		if !p.syms.DeclareGlobal(name.Text, SymGiven) {
			return nil, p.errAt(p.prev(), fmt.Sprintf("a fresh name ('%s' is already declared)", name.Text))
		}
		g.Names = append(g.Names, name)
		if !p.match(COMMA) {
			break
		}
	}
	g.Span = p.spanFrom(start)
	return g, nil
}

// namedDefinitionItem parses the items introduced by a bare identifier:
// an abbreviation 'NAME == expr', a generic abbreviation 'NAME[X] == expr',
// or a free type 'NAME ::= branches'.
func (p *parser) namedDefinitionItem() (Item, error) {
	start := p.i
	name, err := p.declName()
	if err != nil {
		return nil, err
	}
	switch p.peek().Kind {
	case FREE:
		return p.freeTypeItem(start, name)
	case DEFEQ, LBRACK:
		return p.abbrevItem(start, name)
	default:
		return nil, p.errExpect(fmt.Sprintf("'==', '[' or '::=' after '%s'", name.Text))
	}
}

func (p *parser) freeTypeItem(start int, name *Name) (Item, error) {
	p.i++ // '::='
	// The type name is visible inside its own branches (recursive types).
	if !p.syms.DeclareGlobal(name.Text, SymFreeType) {
		return nil, p.errAt(p.toks[start], fmt.Sprintf("a fresh name ('%s' is already declared)", name.Text))
	}
	ft := &FreeType{Name: name}
	for {
		bstart := p.i
		bname, err := p.declName()
		if err != nil {
			return nil, err
		}
		if !p.syms.DeclareGlobal(bname.Text, SymConstructor) {
			return nil, p.errAt(p.toks[bstart], fmt.Sprintf("a fresh name ('%s' is already declared)", bname.Text))
		}
		br := &Branch{Name: bname}
		if p.match(LDATA) {
			arg, err := p.expr(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.need(RDATA, "'>>' closing the constructor argument"); err != nil {
				return nil, err
			}
			br.Arg = arg
		}
		br.Span = p.spanFrom(bstart)
		ft.Branches = append(ft.Branches, br)
		if !p.match(BAR) {
			break
		}
	}
	ft.Span = p.spanFrom(start)
	return ft, nil
}

func (p *parser) abbrevItem(start int, name *Name) (Item, error) {
	ab := &Abbrev{Name: name}
	if p.match(LBRACK) {
		params, err := p.genericParams()
		if err != nil {
			return nil, err
		}
		ab.Params = params
	}
	if _, err := p.need(DEFEQ, "'==' in abbreviation definition"); err != nil {
		return nil, err
	}
	if len(ab.Params) > 0 {
		names := make([]string, len(ab.Params))
		for i, n := range ab.Params {
			names[i] = n.Text
		}
		p.syms.PushFrame(names)
		defer p.syms.PopFrame()
	}
	val, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	ab.Value = val
	if !p.syms.DeclareGlobal(name.Text, SymAbbrev) {
		return nil, p.errAt(p.toks[start], fmt.Sprintf("a fresh name ('%s' is already declared)", name.Text))
	}
	ab.Span = p.spanFrom(start)
	return ab, nil
}

// genericParams parses 'X, Y' after a consumed '[' and the closing ']'.
func (p *parser) genericParams() ([]*Name, error) {
	var params []*Name
	for {
		t, err := p.need(IDENT, "generic parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, &Name{Span: Span{t.Start, t.End}, Text: t.Text})
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(RBRACK, "']' closing the generic parameter list"); err != nil {
		return nil, err
	}
	return params, nil
}

// ───────────────────────── axdef / gendef / schema ──────────────────────────

// declName parses a name in declaration position, folding tight decorations
// (', ?, !) and a braced subscript into it. A tight '~' after the name is
// rejected explicitly: the inverse glyph never joins a name.
func (p *parser) declName() (*Name, error) {
	t, err := p.need(IDENT, "a name")
	if err != nil {
		return nil, err
	}
	n := p.foldName(t)
	if p.at(TILDE) && p.peek().Tight {
		return nil, p.errHintAt(p.peek(),
			"a declaration name (a name may not end in '~')",
			"'~' is the relational inverse operator; rename the declaration or apply '~' in expressions only")
	}
	return n, nil
}

// foldName attaches tight decorations and modifiers to a just-consumed IDENT.
func (p *parser) foldName(t Token) *Name {
	n := &Name{Span: Span{t.Start, t.End}, Text: t.Text}
	for p.peek().Tight {
		switch p.peek().Kind {
		case PRIME, QUERY, BANG:
			n.Text += p.peek().Text
		case SUBBLOCK:
			n.Sub = p.peek().Text
		default:
			return n
		}
		n.End = p.peek().End
		p.i++
	}
	return n
}

// declSection parses the entries of a declaration block until 'where' or
// 'end'. declare is called once per declared name; include resolves schema
// inclusions and is nil where inclusion is not allowed.
func (p *parser) declSection(declare func(*Name) error, allowInclude bool) ([]DeclEntry, error) {
	var entries []DeclEntry
	for !p.at(WHERE) && !p.at(END) && !p.at(EOF) {
		start := p.i
		first, err := p.declName()
		if err != nil {
			return nil, err
		}
		if !p.at(COLON) && !p.at(COMMA) {
			// A bare name is a schema inclusion.
			if !allowInclude {
				return nil, p.errExpect(fmt.Sprintf("':' after declared name '%s'", first.Text))
			}
			if !p.syms.IsSchema(first.Text) {
				return nil, p.errAt(p.toks[start],
					fmt.Sprintf("a declared schema name ('%s' is not a schema)", first.Text))
			}
			entries = append(entries, &Include{Span: p.spanFrom(start), Name: first})
			p.match(SEMI)
			continue
		}
		grp := &VarGroup{Names: []*Name{first}}
		for p.match(COMMA) {
			n, err := p.declName()
			if err != nil {
				return nil, err
			}
			grp.Names = append(grp.Names, n)
		}
		if _, err := p.need(COLON, "':' between declared names and their type"); err != nil {
			return nil, err
		}
		typ, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		grp.Type = typ
		grp.Span = p.spanFrom(start)
		for _, n := range grp.Names {
			if err := declare(n); err != nil {
				return nil, err
			}
		}
		entries = append(entries, grp)
		p.match(SEMI)
	}
	return entries, nil
}

// predSection parses the predicates between 'where' and 'end'.
func (p *parser) predSection() ([]Expr, error) {
	var preds []Expr
	for !p.at(END) && !p.at(EOF) {
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		preds = append(preds, e)
		p.match(SEMI)
	}
	return preds, nil
}

func (p *parser) axdefItem() (Item, error) {
	start := p.i
	p.i++ // 'axdef'
	blk := &AxBlock{}
	declare := func(n *Name) error {
		if !p.syms.DeclareGlobal(n.Text, SymVar) {
			return p.errAt(p.toks[start], fmt.Sprintf("a fresh name ('%s' is already declared)", n.Text))
		}
		return nil
	}
	decls, err := p.declSection(declare, false)
	if err != nil {
		return nil, err
	}
	blk.Decls = decls
	if p.match(WHERE) {
		preds, err := p.predSection()
		if err != nil {
			return nil, err
		}
		blk.Preds = preds
	}
	if _, err := p.need(END, "'end' closing the axdef block"); err != nil {
		return nil, err
	}
	blk.Span = p.spanFrom(start)
	return blk, nil
}

func (p *parser) gendefItem() (Item, error) {
	start := p.i
	p.i++ // 'gendef'
	blk := &GenBlock{}
	if p.match(LBRACK) {
		params, err := p.genericParams()
		if err != nil {
			return nil, err
		}
		blk.Params = params
	}
	names := make([]string, len(blk.Params))
	for i, n := range blk.Params {
		names[i] = n.Text
	}
	p.syms.PushFrame(names)
	defer p.syms.PopFrame()

	declare := func(n *Name) error {
		if !p.syms.DeclareGlobal(n.Text, SymVar) {
			return p.errAt(p.toks[start], fmt.Sprintf("a fresh name ('%s' is already declared)", n.Text))
		}
		return nil
	}
	decls, err := p.declSection(declare, false)
	if err != nil {
		return nil, err
	}
	blk.Decls = decls
	if p.match(WHERE) {
		preds, err := p.predSection()
		if err != nil {
			return nil, err
		}
		blk.Preds = preds
	}
	if _, err := p.need(END, "'end' closing the gendef block"); err != nil {
		return nil, err
	}
	blk.Span = p.spanFrom(start)
	return blk, nil
}

func (p *parser) schemaItem() (Item, error) {
	start := p.i
	p.i++ // 'schema'
	name, err := p.declName()
	if err != nil {
		return nil, err
	}
	if !p.syms.DeclareGlobal(name.Text, SymSchema) {
		return nil, p.errAt(p.toks[start], fmt.Sprintf("a fresh name ('%s' is already declared)", name.Text))
	}
	blk := &SchemaBlock{Name: name}
	if p.match(LBRACK) {
		params, err := p.genericParams()
		if err != nil {
			return nil, err
		}
		blk.Params = params
	}
	names := make([]string, len(blk.Params))
	for i, n := range blk.Params {
		names[i] = n.Text
	}
	p.syms.PushFrame(names)
	p.syms.EnterSchema()
	defer func() {
		p.syms.LeaveSchema()
		p.syms.PopFrame()
	}()

	declare := func(n *Name) error {
		if !p.syms.DeclareComponent(n.Text) {
			return p.errAt(p.toks[start], fmt.Sprintf("a fresh component name ('%s' is already declared in this schema)", n.Text))
		}
		return nil
	}
	decls, err := p.declSection(declare, true)
	if err != nil {
		return nil, err
	}
	blk.Decls = decls
	if p.match(WHERE) {
		preds, err := p.predSection()
		if err != nil {
			return nil, err
		}
		blk.Preds = preds
	}
	if _, err := p.need(END, "'end' closing the schema block"); err != nil {
		return nil, err
	}
	blk.Span = p.spanFrom(start)
	return blk, nil
}

// ─────────────────────────────── prose ──────────────────────────────────────

func (p *parser) proseItem() (Item, error) {
	start := p.i
	p.i++ // 'text'
	pr := &Prose{}
	for {
		switch p.peek().Kind {
		case PROSE:
			t := p.peek()
			p.i++
			pr.Segs = append(pr.Segs, &ProseSeg{Span: Span{t.Start, t.End}, Text: t.Text})
			continue
		case DOLLAR:
			sstart := p.i
			p.i++
			e, err := p.expr(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.need(DOLLAR, "'$' closing the expression span"); err != nil {
				return nil, err
			}
			pr.Segs = append(pr.Segs, &ProseSeg{Span: p.spanFrom(sstart), Expr: e})
			continue
		}
		break
	}
	pr.Span = p.spanFrom(start)
	return pr, nil
}

// ───────────────────────────── truth table ──────────────────────────────────

func (p *parser) truthTableItem() (Item, error) {
	start := p.i
	p.i++ // 'truthtable'
	tt := &TruthTable{}
	for p.at(IDENT) {
		t := p.peek()
		p.i++
		tt.Vars = append(tt.Vars, &Name{Span: Span{t.Start, t.End}, Text: t.Text})
	}
	if len(tt.Vars) == 0 {
		return nil, p.errExpect("at least one variable in the truth-table header")
	}
	if _, err := p.need(BAR, "'|' between truth-table variables and formulas"); err != nil {
		return nil, err
	}
	names := make([]string, len(tt.Vars))
	for i, n := range tt.Vars {
		names[i] = n.Text
	}
	p.syms.PushFrame(names)
	defer p.syms.PopFrame()

	for {
		f, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		tt.Formulas = append(tt.Formulas, f)
		if !p.match(COMMA) {
			break
		}
	}

	for !p.at(END) && !p.at(EOF) {
		row := make([]bool, 0, len(tt.Vars)+len(tt.Formulas))
		for range tt.Vars {
			cell, err := p.truthCell()
			if err != nil {
				return nil, err
			}
			row = append(row, cell)
		}
		if _, err := p.need(BAR, "'|' between variable cells and formula cells"); err != nil {
			return nil, err
		}
		for range tt.Formulas {
			cell, err := p.truthCell()
			if err != nil {
				return nil, err
			}
			row = append(row, cell)
		}
		tt.Rows = append(tt.Rows, row)
	}
	if _, err := p.need(END, "'end' closing the truth table"); err != nil {
		return nil, err
	}
	tt.Span = p.spanFrom(start)
	return tt, nil
}

func (p *parser) truthCell() (bool, error) {
	t := p.peek()
	switch {
	case t.Kind == TRUE, t.Kind == IDENT && t.Text == "T":
		p.i++
		return true, nil
	case t.Kind == FALSE, t.Kind == IDENT && t.Text == "F":
		p.i++
		return false, nil
	}
	return false, p.errExpect("truth cell 'T' or 'F'")
}

// ─────────────────────────── equivalence chain ──────────────────────────────

// equivItem parses a justified chain. The step marker is a '<=>' at chain
// level; chain expressions are therefore parsed just above the '<=>' binding
// power, so a parenthesized bi-implication inside a step still works.
func (p *parser) equivItem() (Item, error) {
	start := p.i
	p.i++ // 'equiv'
	p.syms.PushFrame(nil)
	wasAuto := p.autobind
	p.autobind = true
	defer func() {
		p.autobind = wasAuto
		p.syms.PopFrame()
	}()

	first, err := p.expr(lbpIFF + 1)
	if err != nil {
		return nil, err
	}
	ch := &EquivChain{First: first}
	for p.match(IFF) {
		sstart := p.i - 1
		just, err := p.justification()
		if err != nil {
			return nil, err
		}
		e, err := p.expr(lbpIFF + 1)
		if err != nil {
			return nil, err
		}
		ch.Steps = append(ch.Steps, &EquivStep{Span: p.spanFrom(sstart), Just: just, Expr: e})
	}
	if len(ch.Steps) == 0 {
		return nil, p.errExpect("'<=>' introducing the first equivalence step")
	}
	if _, err := p.need(END, "'end' closing the equivalence chain"); err != nil {
		return nil, err
	}
	ch.Span = p.spanFrom(start)
	return ch, nil
}

// justification reads '{ ... }' and joins the raw token texts. Justifications
// are prose-like ("distributivity of and over or"), not expressions.
func (p *parser) justification() (string, error) {
	if _, err := p.need(LBRACE, "'{' opening the step justification"); err != nil {
		return "", err
	}
	var words []string
	for !p.at(RBRACE) {
		if p.at(EOF) {
			return "", p.errExpect("'}' closing the step justification")
		}
		words = append(words, p.peek().Text)
		p.i++
	}
	p.i++ // '}'
	return strings.Join(words, " "), nil
}

// ─────────────────────────────── proof tree ─────────────────────────────────

// proofItem parses an indentation-structured proof. Each step occupies one
// line; the column of its first token gives its depth. A stack of open
// ancestors turns the flat line sequence into a tree.
func (p *parser) proofItem() (Item, error) {
	start := p.i
	p.i++ // 'proof'
	p.syms.PushFrame(nil)
	wasAuto := p.autobind
	p.autobind = true
	defer func() {
		p.autobind = wasAuto
		p.syms.PopFrame()
	}()

	pf := &Proof{}
	type open struct {
		col  int
		step *ProofStep
	}
	var stack []open

	for !p.at(END) && !p.at(EOF) {
		col := p.peek().Col
		step, err := p.proofStep()
		if err != nil {
			return nil, err
		}
		for len(stack) > 0 && stack[len(stack)-1].col >= col {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			pf.Steps = append(pf.Steps, step)
		} else {
			parent := stack[len(stack)-1].step
			parent.Children = append(parent.Children, step)
		}
		stack = append(stack, open{col: col, step: step})
	}
	if _, err := p.need(END, "'end' closing the proof"); err != nil {
		return nil, err
	}
	pf.Span = p.spanFrom(start)
	return pf, nil
}

// proofStep parses one proof line: optional 'N:' label, optional
// assume/case marker, the step expression, and an optional justification
// 'by RULE (from N, M)? (discharge N)?'. The whole step lives on one line,
// so the expression is line-bounded: a following line that happens to begin
// with an operator glyph starts a new step, it never extends this one.
func (p *parser) proofStep() (*ProofStep, error) {
	start := p.i
	line := p.peek().Line
	step := &ProofStep{}

	if p.at(NUMBER) && p.peekAt(1).Kind == COLON && p.sameLine(p.peek(), p.peekAt(1)) {
		step.Label = p.peek().Text
		p.i += 2
	}
	switch {
	case p.match(ASSUME):
		step.Kind = StepAssume
	case p.match(CASE):
		step.Kind = StepCase
	}

	p.stopLine = line
	e, err := p.expr(0)
	p.stopLine = 0
	if err != nil {
		return nil, err
	}
	step.Expr = e

	if p.at(BY) && p.peek().Line == line {
		p.i++
		rule, err := p.need(IDENT, "rule name after 'by'")
		if err != nil {
			return nil, err
		}
		step.Rule = rule.Text
		if p.match(FROM) {
			for {
				ref, err := p.need(NUMBER, "step label after 'from'")
				if err != nil {
					return nil, err
				}
				step.From = append(step.From, ref.Text)
				if !p.match(COMMA) {
					break
				}
			}
		}
		if p.match(DISCHARGE) {
			ref, err := p.need(NUMBER, "assumption label after 'discharge'")
			if err != nil {
				return nil, err
			}
			step.Discharge = ref.Text
		}
	}
	step.Span = p.spanFrom(start)
	return step, nil
}

// ───────────────────────── expression precedence ────────────────────────────

// Binding powers, low to high. Comparisons are non-associative and handled
// by a chain loop; IMPLIES is right-associative.
const (
	lbpIFF     = 10
	lbpImplies = 20
	lbpOr      = 30
	lbpAnd     = 40
	lbpNot     = 50
	lbpSet     = 60
	lbpRel     = 70
	lbpCmp     = 80
	lbpAdd     = 90
	lbpMul     = 100
	lbpPrefix  = 110

	// A quantifier may open an expression only where everything from
	// disjunction down is still parseable; under and/or it must be
	// parenthesized. The NOT prefix admits a quantified operand itself.
	quantMaxBP = lbpOr
)

func lbp(k Kind) (bp int, rightAssoc bool, ok bool) {
	switch k {
	case IFF:
		return lbpIFF, false, true
	case IMPLIES:
		return lbpImplies, true, true
	case OR:
		return lbpOr, false, true
	case AND:
		return lbpAnd, false, true
	case UNION, INTER, SETMINUS, CROSS:
		return lbpSet, false, true
	case MAPLET, REL, TFUN, PFUN, TINJ, PINJ, TSURJ, PSURJ, BIJ, PBIJ,
		DRES, RRES, NDRES, NRRES, COMP, CIRC, UPTO:
		return lbpRel, false, true
	case PLUS, MINUS, CAT:
		return lbpAdd, false, true
	case STAR, DIV, MOD:
		return lbpMul, false, true
	}
	return 0, false, false
}

func isComparison(k Kind) bool {
	switch k {
	case EQ, NEQ, LSS, LEQ, GTR, GEQ, IN, NOTIN, SUBSET, SUBSETEQ:
		return true
	}
	return false
}

func isQuantKind(k Kind) bool {
	switch k {
	case FORALL, EXISTS, EXISTS1, LAMBDA, MU:
		return true
	}
	return false
}

// projectable reports whether a tight '.' after e can start a projection:
// identifiers, applications/indexing, relational images, and projection
// chains all qualify.
func projectable(e Expr) bool {
	switch e.(type) {
	case *Name, *Apply, *Image, *Project:
		return true
	}
	return false
}

// ───────────────────────────── expressions ──────────────────────────────────

func (p *parser) expr(minBP int) (Expr, error) {
	start := p.i
	left, err := p.prefix(minBP)
	if err != nil {
		return nil, err
	}

	// Postfix chain: application, image, projection, inverse, closures,
	// superscripts. These bind tighter than any infix operator.
	for {
		if p.stopLine != 0 && p.peek().Line > p.stopLine {
			break
		}
		n, took, err := p.postfix(left, start)
		if err != nil {
			return nil, err
		}
		if !took {
			break
		}
		left = n
	}

	// Infix loop.
	for {
		op := p.peek()
		if p.stopLine != 0 && op.Line > p.stopLine {
			break
		}

		// A spaced '.' can only be a quantifier/comprehension separator.
		// With no open form it is an error here, not a silent stop.
		if op.Kind == SPOT && p.openForms == 0 {
			return nil, p.errHintAt(op,
				"an operator or end of expression (separator '.' has no open quantifier or comprehension)",
				"a spaced '.' separates a quantifier constraint from its body; for projection write it tight: 'x.field'")
		}

		if isComparison(op.Kind) {
			if lbpCmp < minBP {
				break
			}
			var cerr error
			left, cerr = p.comparisonChain(left, start)
			if cerr != nil {
				return nil, cerr
			}
			continue
		}

		bp, right, ok := lbp(op.Kind)
		if !ok || bp < minBP {
			break
		}
		p.i++
		nextBP := bp + 1
		if right {
			nextBP = bp
		}
		rhs, err := p.expr(nextBP)
		if err != nil {
			return nil, err
		}
		left = &Binary{Span: p.spanFrom(start), Op: op.Kind, X: left, Y: rhs}
	}
	return left, nil
}

// comparisonChain parses one or more adjacent comparisons. Comparisons do
// not associate: a second comparison operator extends the chain pairwise,
// producing '(a < b) and (b < c)'.
func (p *parser) comparisonChain(left Expr, start int) (Expr, error) {
	op := p.peek()
	p.i++
	rhs, err := p.expr(lbpCmp + 1)
	if err != nil {
		return nil, err
	}
	acc := Expr(&Binary{Span: p.spanFrom(start), Op: op.Kind, X: left, Y: rhs})
	prevRHS := rhs
	for isComparison(p.peek().Kind) {
		if p.stopLine != 0 && p.peek().Line > p.stopLine {
			break
		}
		op2 := p.peek()
		p.i++
		rhs2, err := p.expr(lbpCmp + 1)
		if err != nil {
			return nil, err
		}
		pair := &Binary{Span: p.spanFrom(start), Op: op2.Kind, X: prevRHS, Y: rhs2}
		acc = &Binary{Span: p.spanFrom(start), Op: AND, X: acc, Y: pair}
		prevRHS = rhs2
	}
	return acc, nil
}

// prefix parses one atom or prefix form.
func (p *parser) prefix(minBP int) (Expr, error) {
	start := p.i
	t := p.peek()

	if isQuantKind(t.Kind) {
		if minBP > quantMaxBP {
			return nil, p.errHintAt(t,
				"a parenthesized quantified expression in this position",
				"a quantifier used as an operand of 'and', 'or' or any tighter operator must be written in parentheses")
		}
		return p.quantExpr()
	}

	switch t.Kind {
	case IDENT:
		p.i++
		name := p.foldName(t)
		if err := p.resolveName(t, name.Text); err != nil {
			return nil, err
		}
		return name, nil

	case NUMBER:
		p.i++
		v, err := strconv.ParseInt(t.Text, 10, 64)
		if err != nil {
			return nil, p.errAt(t, "a representable number literal")
		}
		return &NumLit{Span: Span{t.Start, t.End}, Value: v}, nil

	case TRUE, FALSE:
		p.i++
		return &Truth{Span: Span{t.Start, t.End}, Value: t.Kind == TRUE}, nil

	case EMPTYSET:
		p.i++
		return &EmptySet{Span: Span{t.Start, t.End}}, nil

	case NOT:
		p.i++
		// Negation takes a quantified operand directly; only conjunction
		// and disjunction force the parentheses.
		if isQuantKind(p.peek().Kind) {
			q, err := p.quantExpr()
			if err != nil {
				return nil, err
			}
			return &Unary{Span: p.spanFrom(start), Op: NOT, X: q}, nil
		}
		x, err := p.expr(lbpNot + 1)
		if err != nil {
			return nil, err
		}
		return &Unary{Span: p.spanFrom(start), Op: NOT, X: x}, nil

	case MINUS, HASH, POWERSET, FINSET:
		p.i++
		x, err := p.expr(lbpPrefix + 1)
		if err != nil {
			return nil, err
		}
		return &Unary{Span: p.spanFrom(start), Op: t.Kind, X: x}, nil

	case LPAREN, CLPAREN:
		p.i++
		return p.parenExpr(start)

	case LBRACE:
		p.i++
		return p.braceExpr(start)

	case LSEQ:
		p.i++
		return p.seqLitExpr(start)

	case LBAG:
		p.i++
		return p.bagLitExpr(start)

	case IF:
		p.i++
		return p.condExpr(start)

	case LIMG:
		return nil, p.errHintAt(t,
			"an expression ('(|' must directly follow a relation)",
			"write the relational image tight against its relation: R(| S |)")

	case SPOT:
		if p.openForms == 0 {
			return nil, p.errHintAt(t,
				"an expression (separator '.' has no open quantifier or comprehension)",
				"a spaced '.' separates a quantifier constraint from its body")
		}
		return nil, p.errExpect("an expression before the separator '.'")
	}

	return nil, p.errExpect("an expression")
}

// resolveName checks a referenced name against the symbol tables, binding it
// when autobind is active.
func (p *parser) resolveName(t Token, name string) error {
	if _, ok := p.syms.Resolve(name); ok {
		return nil
	}
	if p.autobind {
		p.syms.AddToFrame(name)
		return nil
	}
	return p.errAt(t, fmt.Sprintf("a declared name ('%s' is not in scope)", name))
}

// parenExpr parses grouping or a tuple after a consumed '('. Grouping marks
// a binary child as explicitly grouped so the source's parenthesization
// survives into the AST.
func (p *parser) parenExpr(start int) (Expr, error) {
	inner, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if p.match(COMMA) {
		tup := &TupleLit{Elems: []Expr{inner}}
		for {
			e, err := p.expr(0)
			if err != nil {
				return nil, err
			}
			tup.Elems = append(tup.Elems, e)
			if !p.match(COMMA) {
				break
			}
		}
		if _, err := p.need(RPAREN, "')' closing the tuple"); err != nil {
			return nil, err
		}
		tup.Span = p.spanFrom(start)
		return tup, nil
	}
	if _, err := p.need(RPAREN, "')' closing the grouped expression"); err != nil {
		return nil, err
	}
	if b, ok := inner.(*Binary); ok {
		b.Grouped = true
	}
	return inner, nil
}

// braceExpr decides between a set literal and a comprehension after a
// consumed '{'. A run of names followed by ':' begins comprehension
// declarations; anything else is an extensional literal.
func (p *parser) braceExpr(start int) (Expr, error) {
	if p.at(RBRACE) {
		p.i++
		return &SetLit{Span: p.spanFrom(start)}, nil
	}
	if p.comprehensionAhead() {
		return p.comprehension(start)
	}
	lit := &SetLit{}
	for {
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		lit.Elems = append(lit.Elems, e)
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(RBRACE, "'}' closing the set literal"); err != nil {
		return nil, err
	}
	lit.Span = p.spanFrom(start)
	return lit, nil
}

// comprehensionAhead peeks for 'name (, name)* :' from the current token.
func (p *parser) comprehensionAhead() bool {
	j := 0
	for {
		if p.peekAt(j).Kind != IDENT {
			return false
		}
		j++
		// Skip tight decorations on the name.
		for {
			k := p.peekAt(j).Kind
			if (k == PRIME || k == QUERY || k == BANG || k == SUBBLOCK) && p.peekAt(j).Tight {
				j++
				continue
			}
			break
		}
		switch p.peekAt(j).Kind {
		case COMMA:
			j++
		case COLON:
			return true
		default:
			return false
		}
	}
}

// comprehension parses '{ decls | constraint . selector }' with both the
// constraint and the selector optional.
func (p *parser) comprehension(start int) (Expr, error) {
	comp := &SetComp{}
	p.openForms++
	defer func() { p.openForms-- }()

	decls, names, err := p.boundDecls()
	if err != nil {
		return nil, err
	}
	comp.Decls = decls
	p.syms.PushFrame(names)
	defer p.syms.PopFrame()

	if p.match(BAR) {
		c, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		comp.Constraint = c
	}
	if p.match(SPOT) {
		sel, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		comp.Selector = sel
	}
	if _, err := p.need(RBRACE, "'}' closing the comprehension"); err != nil {
		return nil, err
	}
	comp.Span = p.spanFrom(start)
	return comp, nil
}

// boundDecls parses 'names : type (; names : type)*' for quantifiers,
// lambda/mu and comprehensions, returning the flat name list for the scope
// frame.
func (p *parser) boundDecls() ([]*VarGroup, []string, error) {
	var groups []*VarGroup
	var names []string
	for {
		gstart := p.i
		grp := &VarGroup{}
		for {
			n, err := p.declName()
			if err != nil {
				return nil, nil, err
			}
			grp.Names = append(grp.Names, n)
			names = append(names, n.Text)
			if !p.match(COMMA) {
				break
			}
		}
		if _, err := p.need(COLON, "':' between bound names and their domain"); err != nil {
			return nil, nil, err
		}
		typ, err := p.expr(0)
		if err != nil {
			return nil, nil, err
		}
		grp.Type = typ
		grp.Span = p.spanFrom(gstart)
		groups = append(groups, grp)
		if !p.match(SEMI) {
			break
		}
	}
	return groups, names, nil
}

// quantExpr parses 'KIND decls (| constraint)? . body'. Separator ownership
// is positional: each SPOT belongs to the innermost form still awaiting its
// body, so doubly-nested forms need no extra lookahead.
func (p *parser) quantExpr() (Expr, error) {
	start := p.i
	op := p.peek()
	p.i++

	p.openForms++
	defer func() { p.openForms-- }()

	q := &Quant{Op: op.Kind}
	decls, names, err := p.boundDecls()
	if err != nil {
		return nil, err
	}
	q.Decls = decls
	p.syms.PushFrame(names)
	defer p.syms.PopFrame()

	if p.match(BAR) {
		c, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		q.Constraint = c
	}

	// A definite description may stop after its constraint: 'mu x : T | P'.
	if op.Kind == MU && !p.at(SPOT) {
		if q.Constraint == nil {
			return nil, p.errExpect("'|' or '.' after the mu declarations")
		}
		q.Span = p.spanFrom(start)
		return q, nil
	}

	if _, err := p.need(SPOT, "separator '.' before the quantifier body"); err != nil {
		return nil, err
	}

	body, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	q.Body = body
	q.Span = p.spanFrom(start)
	return q, nil
}

func (p *parser) seqLitExpr(start int) (Expr, error) {
	lit := &SeqLit{}
	if p.match(RSEQ) {
		lit.Span = p.spanFrom(start)
		return lit, nil
	}
	for {
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		lit.Elems = append(lit.Elems, e)
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(RSEQ, "'>' closing the sequence literal"); err != nil {
		return nil, err
	}
	lit.Span = p.spanFrom(start)
	return lit, nil
}

func (p *parser) bagLitExpr(start int) (Expr, error) {
	lit := &BagLit{}
	if p.match(RBAG) {
		lit.Span = p.spanFrom(start)
		return lit, nil
	}
	for {
		e, err := p.expr(0)
		if err != nil {
			return nil, err
		}
		lit.Elems = append(lit.Elems, e)
		if !p.match(COMMA) {
			break
		}
	}
	if _, err := p.need(RBAG, "']]' closing the bag literal"); err != nil {
		return nil, err
	}
	lit.Span = p.spanFrom(start)
	return lit, nil
}

func (p *parser) condExpr(start int) (Expr, error) {
	cond, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(THEN, "'then' after the condition"); err != nil {
		return nil, err
	}
	then, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.need(ELSE, "'else' after the then-branch"); err != nil {
		return nil, err
	}
	els, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	return &Cond{Span: p.spanFrom(start), Cond: cond, Then: then, Else: els}, nil
}

// postfix applies one postfix form to left, reporting whether it consumed
// anything.
func (p *parser) postfix(left Expr, start int) (Expr, bool, error) {
	t := p.peek()
	switch t.Kind {
	case CLPAREN:
		// Tight '(' after a completed operand: application or indexing.
		p.i++
		app := &Apply{Fn: left}
		if !p.match(RPAREN) {
			for {
				a, err := p.expr(0)
				if err != nil {
					return nil, false, err
				}
				app.Args = append(app.Args, a)
				if !p.match(COMMA) {
					break
				}
			}
			if _, err := p.need(RPAREN, "')' closing the argument list"); err != nil {
				return nil, false, err
			}
		}
		app.Span = p.spanFrom(start)
		return app, true, nil

	case LIMG:
		if !t.Tight {
			return left, false, nil
		}
		p.i++
		arg, err := p.expr(0)
		if err != nil {
			return nil, false, err
		}
		if _, err := p.need(RIMG, "'|)' closing the relational image"); err != nil {
			return nil, false, err
		}
		return &Image{Span: p.spanFrom(start), Rel: left, Arg: arg}, true, nil

	case DOT:
		if !projectable(left) {
			return nil, false, p.errHintAt(t,
				"a projectable expression before '.' (identifier, application, or projection chain)",
				"add spaces around '.' if you meant the quantifier body separator")
		}
		p.i++
		switch {
		case p.at(IDENT):
			ft := p.peek()
			p.i++
			f := p.foldName(ft)
			return &Project{Span: p.spanFrom(start), X: left, Field: f.Text}, true, nil
		case p.at(NUMBER):
			nt := p.peek()
			p.i++
			idx, err := strconv.ParseInt(nt.Text, 10, 64)
			if err != nil {
				return nil, false, p.errAt(nt, "a representable tuple position")
			}
			return &Project{Span: p.spanFrom(start), X: left, Index: idx, IsIndex: true}, true, nil
		default:
			return nil, false, p.errExpect("a field name or tuple position after '.'")
		}

	case TILDE:
		p.i++
		return &Postfix{Span: p.spanFrom(start), Op: TILDE, X: left}, true, nil

	case CLOSEPLUS, CLOSESTAR:
		p.i++
		return &Postfix{Span: p.spanFrom(start), Op: t.Kind, X: left}, true, nil

	case SUPCHAR, SUPBLOCK:
		p.i++
		return &Super{Span: p.spanFrom(start), X: left, Mod: t.Text}, true, nil
	}
	return left, false, nil
}
