package txt2tex

import (
	"errors"
	"strings"
	"testing"
)

func Test_Errors_LexErrorFormat(t *testing.T) {
	e := &LexError{Line: 3, Col: 7, Msg: "malformed superscript after '^'"}
	want := "LEXICAL ERROR at 3:7: malformed superscript after '^'"
	if e.Error() != want {
		t.Fatalf("got %q, want %q", e.Error(), want)
	}
}

func Test_Errors_ParseErrorFormat(t *testing.T) {
	e := &ParseError{Line: 2, Col: 4, Expected: "')'", Found: "'end'"}
	want := "PARSE ERROR at 2:4: expected ')', found 'end'"
	if e.Error() != want {
		t.Fatalf("got %q, want %q", e.Error(), want)
	}
	// Without a found token the message is the expectation alone.
	bare := &ParseError{Line: 1, Col: 1, Expected: "a document item"}
	if !strings.Contains(bare.Error(), "a document item") {
		t.Fatalf("bare message: %q", bare.Error())
	}
}

func Test_Errors_SnippetCaretPosition(t *testing.T) {
	src := "axdef\n  x : (N\nend"
	_, perr := Parse(src)
	if perr == nil {
		t.Fatalf("unbalanced paren should fail")
	}
	wrapped := WrapErrorWithSource(perr, src)
	out := wrapped.Error()
	if !strings.Contains(out, "PARSE ERROR") {
		t.Fatalf("header missing:\n%s", out)
	}
	// The snippet shows numbered context lines and a caret line.
	if !strings.Contains(out, "| axdef") && !strings.Contains(out, "|   x : (N") {
		t.Fatalf("context lines missing:\n%s", out)
	}
	caret := false
	for _, ln := range strings.Split(out, "\n") {
		if strings.Contains(ln, "|") && strings.HasSuffix(strings.TrimRight(ln, " "), "^") {
			caret = true
		}
	}
	if !caret {
		t.Fatalf("caret line missing:\n%s", out)
	}
}

func Test_Errors_SnippetCarriesHint(t *testing.T) {
	src := "<a, b>^<c>"
	_, err := Tokenize(src)
	if err == nil {
		t.Fatalf("expected lexical error")
	}
	out := WrapErrorWithSource(err, src).Error()
	if !strings.Contains(out, "hint:") {
		t.Fatalf("hint line missing:\n%s", out)
	}
	if !strings.Contains(out, "insert a space") {
		t.Fatalf("remediation text missing:\n%s", out)
	}
}

func Test_Errors_WrapWithName(t *testing.T) {
	src := "given T\ngiven T"
	_, perr := Parse(src)
	if perr == nil {
		t.Fatalf("duplicate given should fail")
	}
	out := WrapErrorWithName(perr, "exercise.txt", src).Error()
	if !strings.Contains(out, "in exercise.txt at") {
		t.Fatalf("file name missing from header:\n%s", out)
	}
}

func Test_Errors_WrapPassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("unrelated failure")
	if WrapErrorWithSource(plain, "src") != plain {
		t.Fatalf("foreign errors must pass through unchanged")
	}
}

func Test_Errors_PositionsAreOneBased(t *testing.T) {
	_, err := Tokenize("x@y")
	if err == nil {
		t.Fatalf("stray character should fail")
	}
	le := err.(*LexError)
	if le.Line != 1 || le.Col != 2 {
		t.Fatalf("position = %d:%d, want 1:2", le.Line, le.Col)
	}
}
