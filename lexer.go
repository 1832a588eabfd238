// lexer.go: scanner for the txt2tex notation.
//
// The notation is whitespace-sensitive in a few well-defined places, and the
// policy here is to resolve all of that at scan time so the parser's grammar
// stays whitespace-agnostic:
//
//   - '^' preceded by whitespace is CAT (sequence concatenation); '^' with no
//     preceding whitespace is a superscript form (CLOSEPLUS, CLOSESTAR,
//     SUPCHAR or SUPBLOCK). A tight '^' directly after a sequence-closing '>'
//     is rejected with a hint recommending the spaced form.
//   - '.' preceded by whitespace is SPOT (the quantifier/comprehension
//     separator); a tight '.' is DOT (projection): '..' is always UPTO.
//   - '(' is LPAREN or CLPAREN depending on preceding whitespace, so the
//     parser can tell grouping from application without re-inspecting text.
//   - '<' and '>' are resolved with bounded lookahead: a tight '<' opens a
//     sequence literal iff a matching tight '>' closes it on the same line
//     with no intervening comparison-only construct; a '>' preceded by
//     whitespace is always a comparison.
//
// Operators are matched longest-first against the tables in token.go; a
// longer operator can never tokenize as one of its prefixes.
//
// A 'text' keyword switches the scanner into prose mode until the next blank
// line; '$'-delimited spans inside prose are lexed as ordinary expression
// tokens so the parser can embed them.
package txt2tex

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Lexer scans one source buffer into tokens. Single use: create, Scan, drop.
type Lexer struct {
	src    string
	start  int // start of current token
	cur    int // scan position
	line   int // 1-based
	col    int // 1-based column of cur
	tokens []Token

	wsBefore bool // whitespace (or start of input) precedes the current token
	seqDepth int  // open '<' sequence brackets

	// prose state: 0 = normal, 1 = prose text, 2 = inside a '$...$' span
	prose int

	tokLine int
	tokCol  int
}

// NewLexer returns a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1, wsBefore: true}
}

// Tokenize scans an entire source buffer, EOF token included.
func Tokenize(src string) ([]Token, error) {
	return NewLexer(src).Scan()
}

// Scan tokenizes the whole buffer or fails with *LexError at the first
// malformed construct.
func (l *Lexer) Scan() ([]Token, error) {
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == EOF {
			return l.tokens, nil
		}
	}
}

// ───────────────────────────── low-level cursor ─────────────────────────────

func (l *Lexer) atEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peekByte() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.cur]
}

func (l *Lexer) peekByteAt(n int) byte {
	if l.cur+n >= len(l.src) {
		return 0
	}
	return l.src[l.cur+n]
}

func (l *Lexer) advance() byte {
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) advanceBy(n int) {
	for i := 0; i < n && !l.atEnd(); i++ {
		l.advance()
	}
}

func (l *Lexer) emit(kind Kind, text string) Token {
	tok := Token{
		Kind:  kind,
		Text:  text,
		Line:  l.tokLine,
		Col:   l.tokCol,
		Start: l.start,
		End:   l.cur,
		Tight: !l.wsBefore,
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	l.wsBefore = false
	return tok
}

func (l *Lexer) prevToken() *Token {
	if len(l.tokens) == 0 {
		return nil
	}
	return &l.tokens[len(l.tokens)-1]
}

func (l *Lexer) errf(format string, args ...any) error {
	return &LexError{Line: l.tokLine, Col: l.tokCol, Msg: fmt.Sprintf(format, args...)}
}

func (l *Lexer) errHint(msg, hint string) error {
	return &LexError{Line: l.tokLine, Col: l.tokCol, Msg: msg, Hint: hint}
}

// skipWhitespace advances over blanks and '%' comments, recording whether any
// whitespace was crossed. Inside a '$...$' span a line break is malformed.
func (l *Lexer) skipWhitespace() error {
	for !l.atEnd() {
		switch l.peekByte() {
		case ' ', '\t', '\r':
			l.wsBefore = true
			l.advance()
		case '\n':
			if l.prose == 2 {
				return l.errf("expression span not terminated by '$' before end of line")
			}
			l.wsBefore = true
			l.advance()
		case '%':
			l.wsBefore = true
			for !l.atEnd() && l.peekByte() != '\n' {
				l.advance()
			}
		default:
			l.start = l.cur
			return nil
		}
		l.start = l.cur
	}
	return nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' }
func isIdentByte(b byte) bool {
	return isAlpha(b) || isDigit(b) || b == '_'
}

// ─────────────────────────────── main scanner ───────────────────────────────

func (l *Lexer) scanToken() (Token, error) {
	if l.prose == 1 {
		return l.scanProse()
	}
	if err := l.skipWhitespace(); err != nil {
		return Token{}, err
	}
	l.tokLine, l.tokCol = l.line, l.col

	if l.atEnd() {
		if l.prose == 2 {
			return Token{}, l.errf("expression span not terminated by '$'")
		}
		return l.emit(EOF, ""), nil
	}

	ch := l.peekByte()

	// Identifiers and keywords.
	if isAlpha(ch) {
		return l.scanIdentifier()
	}

	// Numbers are plain naturals; '..' after digits is the UPTO operator.
	if isDigit(ch) {
		for !l.atEnd() && isDigit(l.peekByte()) {
			l.advance()
		}
		return l.emit(NUMBER, l.src[l.start:l.cur]), nil
	}

	// Unicode symbol spellings.
	if ch >= utf8.RuneSelf {
		for _, e := range unicodeTable {
			if strings.HasPrefix(l.src[l.cur:], e.text) {
				l.advanceBy(len(e.text))
				switch e.kind {
				case LSEQ:
					l.seqDepth++
				case RSEQ:
					if l.seqDepth > 0 {
						l.seqDepth--
					}
				}
				return l.emit(e.kind, e.canon), nil
			}
		}
		r, _ := utf8.DecodeRuneInString(l.src[l.cur:])
		return Token{}, l.errf("unexpected character %q", r)
	}

	// Context-sensitive glyphs that the fixed table must not see.
	switch ch {
	case '^':
		return l.scanCaret()
	case '_':
		if l.peekByteAt(1) == '{' {
			return l.scanBracedModifier(SUBBLOCK)
		}
		return Token{}, l.errf("'_' is only valid inside an identifier or as '_{...}'")
	}

	// Longest-match operator scan.
	for _, e := range operatorTable {
		if !strings.HasPrefix(l.src[l.cur:], e.text) {
			continue
		}
		// '>>' closes an open sequence one bracket at a time.
		if e.kind == RDATA && l.seqDepth > 0 {
			break
		}
		// '<<' is the constructor bracket only directly after a branch
		// name; anywhere else it opens a sequence whose first element is
		// itself a sequence, one bracket at a time.
		if e.kind == LDATA && !l.freeTypeBracket() {
			break
		}
		l.advanceBy(len(e.text))
		text := e.text
		if e.canon != "" {
			text = e.canon
		}
		if e.kind == DOLLAR {
			l.toggleSpan()
		}
		return l.emit(e.kind, text), nil
	}

	switch ch {
	case '(':
		l.advance()
		if l.wsBefore {
			return l.emit(LPAREN, "("), nil
		}
		return l.emit(CLPAREN, "("), nil
	case '.':
		l.advance()
		if l.wsBefore {
			return l.emit(SPOT, "."), nil
		}
		return l.emit(DOT, "."), nil
	case '<':
		l.advance()
		if l.atEnd() || l.peekByte() == ' ' || l.peekByte() == '\t' ||
			l.peekByte() == '\n' || l.peekByte() == '\r' {
			return l.emit(LSS, "<"), nil
		}
		if l.sequenceAhead() {
			l.seqDepth++
			return l.emit(LSEQ, "<"), nil
		}
		return l.emit(LSS, "<"), nil
	case '>':
		l.advance()
		if !l.wsBefore && l.seqDepth > 0 {
			l.seqDepth--
			return l.emit(RSEQ, ">"), nil
		}
		return l.emit(GTR, ">"), nil
	}

	return Token{}, l.errf("unexpected character %q", rune(ch))
}

// toggleSpan flips between prose and embedded-expression scanning. Only
// meaningful while a prose paragraph is open.
func (l *Lexer) toggleSpan() {
	switch l.prose {
	case 1:
		l.prose = 2
	case 2:
		l.prose = 1
	}
}

// ─────────────────────────── identifiers / keywords ─────────────────────────

// scanIdentifier reads [A-Za-z][A-Za-z0-9_]*, stopping before '_{' so braced
// subscript modifiers scan as their own token. Keyword classification happens
// after the full name is known.
func (l *Lexer) scanIdentifier() (Token, error) {
	for !l.atEnd() && isIdentByte(l.peekByte()) {
		if l.peekByte() == '_' && l.peekByteAt(1) == '{' {
			break
		}
		l.advance()
	}
	word := l.src[l.start:l.cur]
	if kind, ok := keywords[word]; ok {
		tok := l.emit(kind, word)
		if kind == TEXT {
			l.prose = 1
		}
		return tok, nil
	}
	return l.emit(IDENT, word), nil
}

// ───────────────────────────── caret resolution ─────────────────────────────

// scanCaret decides the meaning of '^' from the presence of preceding
// whitespace, per the notation's whitespace-as-grammar rule.
func (l *Lexer) scanCaret() (Token, error) {
	l.advance() // consume '^'
	if l.wsBefore {
		return l.emit(CAT, "^"), nil
	}
	if p := l.prevToken(); p != nil && p.Kind == RSEQ {
		return Token{}, l.errHint(
			"'^' directly after a sequence bracket is ambiguous",
			"insert a space before '^' to concatenate sequences: '> ^ <'",
		)
	}
	switch {
	case l.peekByte() == '+':
		l.advance()
		return l.emit(CLOSEPLUS, "^+"), nil
	case l.peekByte() == '*':
		l.advance()
		return l.emit(CLOSESTAR, "^*"), nil
	case l.peekByte() == '{':
		return l.scanBracedModifier(SUPBLOCK)
	case isIdentByte(l.peekByte()):
		c := l.advance()
		return l.emit(SUPCHAR, string(c)), nil
	}
	return Token{}, l.errf("malformed superscript after '^'")
}

// scanBracedModifier reads '{...}' after '^' or '_' as a single bracketed
// modifier token. The cursor sits on '_' or '{'.
func (l *Lexer) scanBracedModifier(kind Kind) (Token, error) {
	if l.peekByte() == '_' {
		l.advance()
	}
	l.advance() // '{'
	bodyStart := l.cur
	for !l.atEnd() && l.peekByte() != '}' && l.peekByte() != '\n' {
		l.advance()
	}
	if l.atEnd() || l.peekByte() != '}' {
		return Token{}, l.errf("modifier brace '{' not terminated by '}'")
	}
	body := l.src[bodyStart:l.cur]
	l.advance() // '}'
	return l.emit(kind, body), nil
}

// freeTypeBracket reports whether a '<<' at the cursor is the free-type
// constructor-argument bracket. It is one exactly when the token run so far
// ends in a constructor name position: an identifier (plus any tight
// decorations) directly after '::=' or a branch '|'.
func (l *Lexer) freeTypeBracket() bool {
	i := len(l.tokens) - 1
	for i >= 0 {
		switch l.tokens[i].Kind {
		case PRIME, QUERY, BANG, SUBBLOCK:
			i--
			continue
		}
		break
	}
	if i < 1 || l.tokens[i].Kind != IDENT {
		return false
	}
	k := l.tokens[i-1].Kind
	return k == FREE || k == BAR
}

// ─────────────────────── sequence bracket lookahead ────────────────────────

// sequenceAhead reports whether the tight '<' just consumed opens a sequence
// literal. The scan is bounded to the current line: it succeeds when a
// matching tight '>' closes the bracket with no intervening comparison-only
// construct, and fails otherwise. Sequence brackets hug their contents, so a
// whitespace-preceded '>' inside the run disqualifies it.
func (l *Lexer) sequenceAhead() bool {
	s := l.src
	j := l.cur
	if j < len(s) && s[j] == '>' {
		return true // '<>' is the empty sequence
	}
	// The first content character must be able to start a literal element;
	// '<' starts a nested sequence.
	switch c := s[j]; {
	case isIdentByte(c), c == '(', c == '{', c == '-', c == '#', c == '~', c == '<':
	case c >= utf8.RuneSelf:
	default:
		return false
	}
	depth := 1
	for ; j < len(s); j++ {
		c := s[j]
		switch c {
		case '\n', ';':
			return false
		case '=':
			// '=', '==', '=>': comparison and definition constructs never
			// appear inside a sequence literal.
			return false
		case '<':
			// '<=', '<-', '<|' never appear inside a sequence literal; a
			// further '<' is a nested opening bracket.
			if j+1 < len(s) && (s[j+1] == '=' || s[j+1] == '-' || s[j+1] == '|') {
				return false
			}
			depth++
		case '>':
			if s[j-1] == ' ' || s[j-1] == '\t' {
				return false // hugging rule: a spaced '>' is a comparison
			}
			if j+1 < len(s) && s[j+1] == '=' {
				return false
			}
			depth--
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

// ───────────────────────────────── prose mode ───────────────────────────────

// scanProse accumulates raw paragraph text until a '$' span opener, a blank
// line, or end of input. Newlines inside a paragraph collapse into spaces; a
// blank line ends the paragraph and returns the scanner to normal mode.
func (l *Lexer) scanProse() (Token, error) {
	for !l.atEnd() && (l.peekByte() == ' ' || l.peekByte() == '\t') {
		l.advance()
	}
	l.start = l.cur
	l.tokLine, l.tokCol = l.line, l.col

	var b strings.Builder
	for !l.atEnd() {
		ch := l.peekByte()
		if ch == '$' {
			break
		}
		if ch == '\n' {
			// Peek past the newline: a blank line ends the paragraph.
			k := l.cur + 1
			for k < len(l.src) && (l.src[k] == ' ' || l.src[k] == '\t' || l.src[k] == '\r') {
				k++
			}
			if k >= len(l.src) || l.src[k] == '\n' {
				l.prose = 0
				break
			}
			b.WriteByte(' ')
			l.advance()
			continue
		}
		b.WriteByte(ch)
		l.advance()
	}
	if l.atEnd() {
		l.prose = 0
	}

	text := strings.TrimRight(b.String(), " \t")
	if text != "" {
		l.wsBefore = true
		return l.emit(PROSE, text), nil
	}
	// An immediate '$': open the span here so scanToken is never re-entered
	// while still in prose mode.
	if !l.atEnd() && l.peekByte() == '$' {
		l.advance()
		l.toggleSpan()
		return l.emit(DOLLAR, "$"), nil
	}
	// Paragraph ended with no trailing text: continue with the normal scanner.
	l.start = l.cur
	return l.scanToken()
}
