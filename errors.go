// errors.go: structured diagnostics and caret-snippet rendering.
//
// Two error kinds exist, both immediately fatal to the call that raised them:
//
//   - *LexError{Line, Col, Msg, Hint}: malformed token (unspaced
//     concatenation, unterminated bracket literal, stray character).
//   - *ParseError{Line, Col, Expected, Found, Hint}: structural violation
//     (unexpected token, missing closing keyword, separator with no open
//     frame, undeclared name).
//
// Neither is ever downgraded to a warning and no partial Document survives
// one. `WrapErrorWithSource` turns either into a readable snippet with a
// caret pointing at the offending column:
//
//	PARSE ERROR at 3:12: expected ')', found 'end'
//
//	   2 | limit : N
//	   3 | count <= (limit
//	     |            ^
//	   4 | end
//
// Other error values pass through unchanged.
package txt2tex

import (
	"fmt"
	"strings"
)

// LexError reports the first malformed construct seen by the scanner.
// Line and Col are 1-based. Hint, when non-empty, suggests a remediation.
type LexError struct {
	Line int
	Col  int
	Msg  string
	Hint string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEXICAL ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// ParseError reports the first structural violation seen by the parser.
// Expected names the construct the grammar required; Found describes the
// token actually present. Line and Col are 1-based.
type ParseError struct {
	Line     int
	Col      int
	Expected string
	Found    string
	Hint     string
}

func (e *ParseError) Error() string {
	if e.Found == "" {
		return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col, e.Expected)
	}
	return fmt.Sprintf("PARSE ERROR at %d:%d: expected %s, found %s",
		e.Line, e.Col, e.Expected, e.Found)
}

// WrapErrorWithSource returns err augmented with a caret-annotated snippet of
// src when err is a *LexError or *ParseError, and err unchanged otherwise.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName is WrapErrorWithSource with a source name ("in <name>")
// in the header, for callers processing multiple files.
func WrapErrorWithName(err error, srcName, src string) error {
	switch e := err.(type) {
	case *LexError:
		return fmt.Errorf("%s", snippet(src, "LEXICAL ERROR", srcName, e.Line, e.Col, e.Msg, e.Hint))
	case *ParseError:
		msg := e.Expected
		if e.Found != "" {
			msg = fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
		}
		return fmt.Errorf("%s", snippet(src, "PARSE ERROR", srcName, e.Line, e.Col, msg, e.Hint))
	default:
		return err
	}
}

// snippet builds the multi-line caret view: one line of context before and
// after when available, numbered lines, the caret under the 1-based column,
// and the hint (if any) on a trailing line. Coordinates are clamped so a
// stale position can never crash rendering.
func snippet(src, header, name string, line, col int, msg, hint string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	if hint != "" {
		fmt.Fprintf(&b, "hint: %s\n", hint)
	}
	return b.String()
}
