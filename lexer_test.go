// lexer_test.go
package txt2tex

import (
	"reflect"
	"testing"
)

func toks(t *testing.T, src string) []Token {
	t.Helper()
	ts, err := Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	return ts
}

func kindsWithoutEOF(tokens []Token) []Kind {
	if len(tokens) == 0 {
		return nil
	}
	end := len(tokens)
	if tokens[end-1].Kind == EOF {
		end--
	}
	out := make([]Kind, 0, end)
	for i := 0; i < end; i++ {
		out = append(out, tokens[i].Kind)
	}
	return out
}

func wantKinds(t *testing.T, src string, want []Kind) []Token {
	t.Helper()
	got := toks(t, src)
	gotKinds := kindsWithoutEOF(got)
	if !reflect.DeepEqual(gotKinds, want) {
		t.Fatalf("\nsource:\n%s\nwant kinds:\n%v\ngot kinds:\n%v\n", src, want, gotKinds)
	}
	return got
}

func wantLexError(t *testing.T, src string) *LexError {
	t.Helper()
	_, err := Tokenize(src)
	if err == nil {
		t.Fatalf("expected lexical error, got none:\n%s", src)
	}
	le, ok := err.(*LexError)
	if !ok {
		t.Fatalf("expected *LexError, got %T: %v", err, err)
	}
	return le
}

func Test_Lexer_LongestMatch_Arrows(t *testing.T) {
	got := wantKinds(t, "f : A -->> B", []Kind{
		IDENT, COLON, IDENT, TSURJ, IDENT,
	})
	if got[3].Text != "-->>" {
		t.Fatalf("arrow text = %q", got[3].Text)
	}

	wantKinds(t, "g : A --> B", []Kind{IDENT, COLON, IDENT, TFUN, IDENT})
	wantKinds(t, "h : A >+>> B", []Kind{IDENT, COLON, IDENT, PBIJ, IDENT})
	wantKinds(t, "r : A <-> B", []Kind{IDENT, COLON, IDENT, REL, IDENT})
}

func Test_Lexer_LongestMatch_UptoVsDot(t *testing.T) {
	wantKinds(t, "1..10", []Kind{NUMBER, UPTO, NUMBER})
	wantKinds(t, "s <| r", []Kind{IDENT, DRES, IDENT})
	wantKinds(t, "s <<| r", []Kind{IDENT, NDRES, IDENT})
}

func Test_Lexer_CaretSpacedIsConcatenation(t *testing.T) {
	wantKinds(t, "s ^ t", []Kind{IDENT, CAT, IDENT})
	got := wantKinds(t, "r^+", []Kind{IDENT, CLOSEPLUS})
	if !got[1].Tight {
		t.Fatalf("closure token should be tight")
	}
	wantKinds(t, "r^*", []Kind{IDENT, CLOSESTAR})
	got = wantKinds(t, "r^k", []Kind{IDENT, SUPCHAR})
	if got[1].Text != "k" {
		t.Fatalf("superscript text = %q", got[1].Text)
	}
	got = wantKinds(t, "r^{n+1}", []Kind{IDENT, SUPBLOCK})
	if got[1].Text != "n+1" {
		t.Fatalf("superscript block text = %q", got[1].Text)
	}
}

func Test_Lexer_CaretAfterSequenceBracketRejected(t *testing.T) {
	wantKinds(t, "<a, b> ^ <c>", []Kind{
		LSEQ, IDENT, COMMA, IDENT, RSEQ, CAT, LSEQ, IDENT, RSEQ,
	})
	le := wantLexError(t, "<a, b>^<c>")
	if le.Hint == "" {
		t.Fatalf("ambiguous caret should carry a remediation hint")
	}
	if le.Line != 1 {
		t.Fatalf("error line = %d", le.Line)
	}
}

func Test_Lexer_UnderscoreIsIdentifierChar(t *testing.T) {
	got := wantKinds(t, "x_1, x_2 : N", []Kind{IDENT, COMMA, IDENT, COLON, IDENT})
	if got[0].Text != "x_1" || got[2].Text != "x_2" {
		t.Fatalf("names = %q, %q", got[0].Text, got[2].Text)
	}
}

func Test_Lexer_BracedSubscriptModifier(t *testing.T) {
	got := wantKinds(t, "x_{max}", []Kind{IDENT, SUBBLOCK})
	if got[0].Text != "x" || got[1].Text != "max" {
		t.Fatalf("tokens = %q, %q", got[0].Text, got[1].Text)
	}
	if !got[1].Tight {
		t.Fatalf("subscript modifier should be tight")
	}
}

func Test_Lexer_Decorations(t *testing.T) {
	got := wantKinds(t, "count' = count?", []Kind{IDENT, PRIME, EQ, IDENT, QUERY})
	if !got[1].Tight || !got[4].Tight {
		t.Fatalf("decorations should be tight")
	}
	wantKinds(t, "report! : R", []Kind{IDENT, BANG, COLON, IDENT})
}

func Test_Lexer_DotSpacedVsTight(t *testing.T) {
	wantKinds(t, "f(x).name", []Kind{IDENT, CLPAREN, IDENT, RPAREN, DOT, IDENT})
	got := wantKinds(t, "forall x : T | P . Q", []Kind{
		FORALL, IDENT, COLON, IDENT, BAR, IDENT, SPOT, IDENT,
	})
	if got[6].Tight {
		t.Fatalf("separator should not be tight")
	}
}

func Test_Lexer_ParenSpacedVsTight(t *testing.T) {
	wantKinds(t, "f(x)", []Kind{IDENT, CLPAREN, IDENT, RPAREN})
	wantKinds(t, "f (x)", []Kind{IDENT, LPAREN, IDENT, RPAREN})
}

func Test_Lexer_AngleBrackets(t *testing.T) {
	wantKinds(t, "<>", []Kind{LSEQ, RSEQ})
	wantKinds(t, "<a, b, c>", []Kind{LSEQ, IDENT, COMMA, IDENT, COMMA, IDENT, RSEQ})
	wantKinds(t, "x < y", []Kind{IDENT, LSS, IDENT})
	wantKinds(t, "x<y", []Kind{IDENT, LSS, IDENT})
	wantKinds(t, "x <= y", []Kind{IDENT, LEQ, IDENT})
	wantKinds(t, "x > y", []Kind{IDENT, GTR, IDENT})
	// An inner literal nests; the doubled closer splits one bracket at a time.
	wantKinds(t, "<s, <b>>", []Kind{
		LSEQ, IDENT, COMMA, LSEQ, IDENT, RSEQ, RSEQ,
	})
	// A sequence whose first element is itself a sequence opens with two
	// brackets; away from a free-type branch '<<' is never the constructor
	// bracket.
	wantKinds(t, "<<a>, b>", []Kind{
		LSEQ, LSEQ, IDENT, RSEQ, COMMA, IDENT, RSEQ,
	})
	wantKinds(t, "s = <<a>, b>", []Kind{
		IDENT, EQ, LSEQ, LSEQ, IDENT, RSEQ, COMMA, IDENT, RSEQ,
	})
}

func Test_Lexer_FreeTypeConstructorBrackets(t *testing.T) {
	wantKinds(t, "Tree ::= leaf | node <<Tree cross Tree>>", []Kind{
		IDENT, FREE, IDENT, BAR, IDENT, LDATA, IDENT, CROSS, IDENT, RDATA,
	})
}

func Test_Lexer_UnicodeSpellingsCanonicalize(t *testing.T) {
	asciiToks := toks(t, "forall x : N . x >= 0")
	uniToks := toks(t, "∀ x : ℕ . x ≥ 0")
	if !reflect.DeepEqual(kindsWithoutEOF(asciiToks), kindsWithoutEOF(uniToks)) {
		t.Fatalf("Unicode spelling tokenized differently:\n%v\n%v",
			kindsWithoutEOF(asciiToks), kindsWithoutEOF(uniToks))
	}
	// Canonical text is the ASCII spelling.
	if uniToks[0].Text != "forall" {
		t.Fatalf("canonical text = %q", uniToks[0].Text)
	}
	if uniToks[3].Text != "N" {
		t.Fatalf("canonical number-set text = %q", uniToks[3].Text)
	}
}

func Test_Lexer_KeywordSpellings(t *testing.T) {
	wantKinds(t, "p /\\ q \\/ r", []Kind{IDENT, AND, IDENT, OR, IDENT})
	wantKinds(t, "x elem S", []Kind{IDENT, IN, IDENT})
	wantKinds(t, "x notelem S", []Kind{IDENT, NOTIN, IDENT})
}

func Test_Lexer_Comments(t *testing.T) {
	wantKinds(t, "x + y % trailing comment\n% full-line comment\n- z", []Kind{
		IDENT, PLUS, IDENT, MINUS, IDENT,
	})
}

func Test_Lexer_RelationalImageAndBags(t *testing.T) {
	wantKinds(t, "r(| S |)", []Kind{IDENT, LIMG, IDENT, RIMG})
	wantKinds(t, "[[a, b, a]]", []Kind{LBAG, IDENT, COMMA, IDENT, COMMA, IDENT, RBAG})
}

func Test_Lexer_ProseMode(t *testing.T) {
	src := "text The value $x + 1$ grows.\n\ngiven T"
	got := wantKinds(t, src, []Kind{
		TEXT, PROSE, DOLLAR, IDENT, PLUS, NUMBER, DOLLAR, PROSE, GIVEN, IDENT,
	})
	if got[1].Text != "The value" {
		t.Fatalf("leading prose = %q", got[1].Text)
	}
	if got[7].Text != "grows." {
		t.Fatalf("trailing prose = %q", got[7].Text)
	}
}

func Test_Lexer_ProseSpanUnterminated(t *testing.T) {
	_, err := Tokenize("text broken $x + 1\nmore")
	if err == nil {
		t.Fatalf("unterminated span should fail")
	}
	if _, ok := err.(*LexError); !ok {
		t.Fatalf("expected *LexError, got %T", err)
	}
}

func Test_Lexer_PositionsAndOffsets(t *testing.T) {
	got := toks(t, "ab +\ncd")
	if got[0].Line != 1 || got[0].Col != 1 || got[0].Start != 0 || got[0].End != 2 {
		t.Fatalf("first token position: %+v", got[0])
	}
	if got[2].Line != 2 || got[2].Col != 1 {
		t.Fatalf("second-line token position: %+v", got[2])
	}
}

func Test_Lexer_ConcatenationOfSources(t *testing.T) {
	// Two well-formed sources joined by a blank line tokenize to the joined
	// token streams: scanner state (sequence depth, prose mode) never leaks
	// from one into the other.
	cases := [][2]string{
		{"axdef\n  x : N\nend", "forall x : N . x >= 0"},
		{"<a, b> ^ <c>", "s ^ t"},
		{"text The value $x$ is small.", "given T"},
	}
	for _, c := range cases {
		a := kindsWithoutEOF(toks(t, c[0]))
		b := kindsWithoutEOF(toks(t, c[1]))
		joined := kindsWithoutEOF(toks(t, c[0]+"\n\n"+c[1]))
		want := append(append([]Kind{}, a...), b...)
		if !reflect.DeepEqual(joined, want) {
			t.Fatalf("joined token stream diverges for %q + %q:\ngot  %v\nwant %v",
				c[0], c[1], joined, want)
		}
	}
}

func Test_Lexer_Deterministic(t *testing.T) {
	src := "axdef\n  f : N --> N\nwhere\n  forall n : N . f(n) >= n\nend"
	a := toks(t, src)
	b := toks(t, src)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("tokenizing the same source twice differed")
	}
}
