// render_test.go
package txt2tex

import (
	"strings"
	"testing"
)

func renderOne(t *testing.T, src string, mode Mode) string {
	t.Helper()
	e, err := ParseExpr(src)
	if err != nil {
		t.Fatalf("ParseExpr error: %v", err)
	}
	return RenderExpr(e, mode)
}

func renderDocSrc(t *testing.T, src string, mode Mode) string {
	t.Helper()
	out, err := Build(src, mode)
	if err != nil {
		t.Fatalf("Build error:\n%v", WrapErrorWithSource(err, src))
	}
	return out
}

func Test_Render_OperatorSpellings(t *testing.T) {
	cases := []struct {
		src  string
		fuzz string
	}{
		{"x + y * z", `x + y * z`},
		{"x elem S", `x \in S`},
		{"A union B", `A \cup B`},
		{"p and q or r", `p \land q \lor r`},
		{"A --> B", `A \fun B`},
		{"A >+>> B", `A \pbij B`},
		{"s ^ t", `s \cat t`},
		{"S subseteq T", `S \subseteq T`},
	}
	for _, c := range cases {
		got := renderOne(t, c.src, ModeFuzz)
		if got != c.fuzz {
			t.Fatalf("%q rendered as %q, want %q", c.src, got, c.fuzz)
		}
	}
}

func Test_Render_ModeChangesSpellingOnly(t *testing.T) {
	fuzz := renderOne(t, "x elem N", ModeFuzz)
	plain := renderOne(t, "x elem N", ModePlain)
	if fuzz != `x \in \nat` {
		t.Fatalf("fuzz = %q", fuzz)
	}
	if plain != `x \in \mathbb{N}` {
		t.Fatalf("plain = %q", plain)
	}
	if renderOne(t, "A cross B", ModeFuzz) != `A \cross B` {
		t.Fatalf("fuzz cross wrong")
	}
	if renderOne(t, "A cross B", ModePlain) != `A \times B` {
		t.Fatalf("plain cross wrong")
	}
}

func Test_Render_GroupingRoundTrip(t *testing.T) {
	// Source parentheses survive rendering even where precedence would not
	// require them.
	grouped := renderOne(t, "(a + b) + c", ModeFuzz)
	plain := renderOne(t, "a + b + c", ModeFuzz)
	if grouped == plain {
		t.Fatalf("explicit grouping lost: %q", grouped)
	}
	if !strings.Contains(grouped, "(a + b)") {
		t.Fatalf("grouped form = %q", grouped)
	}
	// Precedence-required parentheses appear regardless.
	forced := renderOne(t, "(a + b) * c", ModeFuzz)
	if !strings.Contains(forced, "(a + b) * c") {
		t.Fatalf("forced parens = %q", forced)
	}
}

func Test_Render_QuantifiersAndComprehensions(t *testing.T) {
	got := renderOne(t, "forall x : N . x >= 0", ModeFuzz)
	if got != `\forall x: \nat @ x \geq 0` {
		t.Fatalf("quantifier = %q", got)
	}
	got = renderOne(t, "forall x : N . x >= 0", ModePlain)
	if !strings.Contains(got, `\bullet`) {
		t.Fatalf("plain separator = %q", got)
	}
	got = renderOne(t, "{x : N | x > 0 . x * x}", ModeFuzz)
	if got != `\{x: \nat | x > 0 @ x * x\}` {
		t.Fatalf("comprehension = %q", got)
	}
}

func Test_Render_PostfixAndDecorations(t *testing.T) {
	if got := renderOne(t, "r~", ModeFuzz); got != `r\inv` {
		t.Fatalf("inverse = %q", got)
	}
	if got := renderOne(t, "r^+", ModeFuzz); got != `r^{+}` {
		t.Fatalf("closure = %q", got)
	}
	if got := renderOne(t, "count'", ModeFuzz); got != `count'` {
		t.Fatalf("primed name = %q", got)
	}
	if got := renderOne(t, "x_{max}", ModeFuzz); got != `x_{max}` {
		t.Fatalf("subscripted name = %q", got)
	}
}

func Test_Render_SequenceAndImage(t *testing.T) {
	if got := renderOne(t, "<a, b>", ModeFuzz); got != `\langle a, b \rangle` {
		t.Fatalf("sequence = %q", got)
	}
	if got := renderOne(t, "r(| S |)", ModeFuzz); got != `r\limg S \rimg` {
		t.Fatalf("image = %q", got)
	}
}

func Test_Render_SchemaEnvironment(t *testing.T) {
	src := "given T\nschema Counter\n  value : T\nwhere\n  value = value\nend"
	fuzz := renderDocSrc(t, src, ModeFuzz)
	if !strings.Contains(fuzz, `\begin{schema}{Counter}`) {
		t.Fatalf("schema env missing:\n%s", fuzz)
	}
	if !strings.Contains(fuzz, `\where`) {
		t.Fatalf("where bar missing:\n%s", fuzz)
	}
	plain := renderDocSrc(t, src, ModePlain)
	if strings.Contains(plain, `\begin{schema}`) {
		t.Fatalf("plain mode must not use zed environments:\n%s", plain)
	}
}

func Test_Render_AxdefAndGiven(t *testing.T) {
	src := "given PERSON\naxdef\n  limit : N\nwhere\n  limit > 0\nend"
	out := renderDocSrc(t, src, ModeFuzz)
	if !strings.Contains(out, "[PERSON]") {
		t.Fatalf("given brackets missing:\n%s", out)
	}
	if !strings.Contains(out, `\begin{axdef}`) || !strings.Contains(out, `\end{axdef}`) {
		t.Fatalf("axdef env missing:\n%s", out)
	}
}

func Test_Render_TruthTable(t *testing.T) {
	src := "truthtable p | not p\n  T | F\n  F | T\nend"
	out := renderDocSrc(t, src, ModeFuzz)
	if !strings.Contains(out, `\begin{array}{c|c}`) {
		t.Fatalf("array header wrong:\n%s", out)
	}
	if !strings.Contains(out, `T & F`) {
		t.Fatalf("rows missing:\n%s", out)
	}
}

func Test_Render_Deterministic(t *testing.T) {
	src := "axdef\n  f : N --> N\nwhere\n  forall n : N . f(n) >= n\nend"
	a := renderDocSrc(t, src, ModeFuzz)
	b := renderDocSrc(t, src, ModeFuzz)
	if a != b {
		t.Fatalf("rendering is not deterministic")
	}
}
