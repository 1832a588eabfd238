// token.go: lexical alphabet for the txt2tex notation.
//
// The notation reuses a small set of ASCII punctuation for many unrelated
// purposes, and every ASCII operator spelling has a Unicode equivalent that
// must tokenize to the same Kind so the parser stays symbol-set-agnostic.
// This file defines the Kind enumeration, the Token value, the keyword table,
// and the operator table. The operator table is ordered by descending byte
// length; the lexer walks it front to back so a longer operator can never be
// misread as one of its own prefixes (`-->>` is one token, not `-->` `>`).
package txt2tex

import "fmt"

// Kind identifies a lexical token class.
type Kind int

const (
	EOF Kind = iota

	// Literals, names and name modifiers.
	IDENT    // identifier; underscores are identifier characters
	NUMBER   // natural number literal
	PRIME    // ' tight after a name
	QUERY    // ? tight after a name
	BANG     // ! tight after a name
	SUPCHAR  // ^c: unbraced single-character superscript (tight)
	SUPBLOCK // ^{...}: braced superscript modifier (tight)
	SUBBLOCK // _{...}: braced subscript modifier (tight)
	PROSE    // raw prose text inside a `text` paragraph

	// Delimiters.
	LPAREN  // ( preceded by whitespace: grouping or tuple
	CLPAREN // ( with no preceding whitespace: application/indexing
	RPAREN  // )
	LBRACE  // {
	RBRACE  // }
	LBRACK  // [
	RBRACK  // ]
	LIMG    // (|  relational image open
	RIMG    // |)  relational image close
	LBAG    // [[  bag literal open
	RBAG    // ]]  bag literal close
	LSEQ    // <  opening a sequence literal (context-resolved)
	RSEQ    // >  closing a sequence literal (context-resolved)
	LDATA   // <<  free-type constructor argument open
	RDATA   // >>  free-type constructor argument close
	DOLLAR  // $  embedded-expression delimiter inside prose

	// Separators.
	COMMA
	SEMI
	COLON
	BAR   // |  constraint separator / free-type branch / truth-table column
	DOT   // .  with no preceding whitespace: projection (or `..`)
	SPOT  // .  preceded by whitespace (or • ⦁): constraint/body separator
	UPTO  // ..
	DEFEQ // ==  abbreviation definition
	FREE  // ::= free-type definition

	// Propositional and predicate operators.
	IFF     // <=> ⇔
	IMPLIES // => ⇒
	OR      // or \/ ∨
	AND     // and /\ ∧
	NOT     // not ¬
	FORALL  // forall ∀
	EXISTS  // exists ∃
	EXISTS1 // exists1 ∃1
	LAMBDA  // lambda λ
	MU      // mu μ

	// Set operators.
	UNION    // union ∪
	INTER    // intersect ∩
	SETMINUS // \ ∖
	CROSS    // cross ×
	POWERSET // power ℙ
	FINSET   // finset 𝔽
	EMPTYSET // emptyset ∅

	// Relation and function operators.
	MAPLET // |-> ↦
	REL    // <-> ↔
	TFUN   // --> →
	PFUN   // +-> ⇸
	TINJ   // >-> ↣
	PINJ   // >+> ⤔
	TSURJ  // -->> ↠
	PSURJ  // +->> ⤀
	BIJ    // >->> ⤖
	PBIJ   // >+>> ⤗
	DRES   // <| ◁
	RRES   // |> ▷
	NDRES  // <<| ⩤
	NRRES  // |>> ⩥
	COMP   // comp ⨾ (forward composition)
	CIRC   // circ ∘ (backward composition)

	// Comparison operators (non-associative; chains are pairwise).
	EQ       // =
	NEQ      // /= ≠
	LSS      // <
	LEQ      // <= ≤
	GTR      // >
	GEQ      // >= ≥
	IN       // in ∈
	NOTIN    // notin ∉
	SUBSET   // subset ⊂
	SUBSETEQ // subseteq ⊆

	// Arithmetic and sequence operators.
	PLUS
	MINUS
	STAR
	DIV  // div
	MOD  // mod
	CAT  // ^ preceded by whitespace (or ⌢): sequence concatenation
	HASH // # cardinality (prefix)

	// Postfix operators.
	TILDE     // ~ relational inverse
	CLOSEPLUS // ^+ transitive closure (tight)
	CLOSESTAR // ^* reflexive-transitive closure (tight)

	// Expression keywords.
	TRUE
	FALSE
	IF
	THEN
	ELSE

	// Document-structure keywords.
	SECTION
	PARENTS
	SOLUTION
	PART
	GIVEN
	AXDEF
	GENDEF
	SCHEMA
	WHERE
	END
	TEXT
	TRUTHTABLE
	EQUIV
	PROOF
	ASSUME
	CASE
	BY
	FROM
	DISCHARGE
)

// Token is a lexical token. Tokens are immutable once produced: the lexer
// appends them to its output slice and never revisits them.
type Token struct {
	Kind  Kind
	Text  string // raw source text (canonical ASCII for Unicode spellings)
	Line  int    // 1-based
	Col   int    // 1-based
	Start int    // byte offset, inclusive
	End   int    // byte offset, exclusive
	Tight bool   // no whitespace between this token and the previous one
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Text, t.Line, t.Col)
}

var kindNames = map[Kind]string{
	EOF:      "end of input",
	IDENT:    "identifier",
	NUMBER:   "number",
	PRIME:    "'",
	QUERY:    "?",
	BANG:     "!",
	SUPCHAR:  "superscript",
	SUPBLOCK: "superscript block",
	SUBBLOCK: "subscript block",
	PROSE:    "prose",
	LPAREN:   "'('", CLPAREN: "'('", RPAREN: "')'",
	LBRACE: "'{'", RBRACE: "'}'",
	LBRACK: "'['", RBRACK: "']'",
	LIMG: "'(|'", RIMG: "'|)'",
	LBAG: "'[['", RBAG: "']]'",
	LSEQ: "'<'", RSEQ: "'>'",
	LDATA: "'<<'", RDATA: "'>>'",
	DOLLAR: "'$'",
	COMMA:  "','", SEMI: "';'", COLON: "':'", BAR: "'|'",
	DOT: "'.'", SPOT: "separator '.'", UPTO: "'..'",
	DEFEQ: "'=='", FREE: "'::='",
	IFF: "'<=>'", IMPLIES: "'=>'", OR: "'or'", AND: "'and'", NOT: "'not'",
	FORALL: "'forall'", EXISTS: "'exists'", EXISTS1: "'exists1'",
	LAMBDA: "'lambda'", MU: "'mu'",
	UNION: "'union'", INTER: "'intersect'", SETMINUS: "'\\'",
	CROSS: "'cross'", POWERSET: "'power'", FINSET: "'finset'",
	EMPTYSET: "'emptyset'",
	MAPLET:   "'|->'", REL: "'<->'",
	TFUN: "'-->'", PFUN: "'+->'", TINJ: "'>->'", PINJ: "'>+>'",
	TSURJ: "'-->>'", PSURJ: "'+->>'", BIJ: "'>->>'", PBIJ: "'>+>>'",
	DRES: "'<|'", RRES: "'|>'", NDRES: "'<<|'", NRRES: "'|>>'",
	COMP: "'comp'", CIRC: "'circ'",
	EQ: "'='", NEQ: "'/='", LSS: "'<'", LEQ: "'<='", GTR: "'>'", GEQ: "'>='",
	IN: "'in'", NOTIN: "'notin'", SUBSET: "'subset'", SUBSETEQ: "'subseteq'",
	PLUS: "'+'", MINUS: "'-'", STAR: "'*'", DIV: "'div'", MOD: "'mod'",
	CAT: "'^' (concatenation)", HASH: "'#'",
	TILDE: "'~'", CLOSEPLUS: "'^+'", CLOSESTAR: "'^*'",
	TRUE: "'true'", FALSE: "'false'",
	IF: "'if'", THEN: "'then'", ELSE: "'else'",
	SECTION: "'section'", PARENTS: "'parents'", SOLUTION: "'solution'",
	PART: "'part'", GIVEN: "'given'", AXDEF: "'axdef'", GENDEF: "'gendef'",
	SCHEMA: "'schema'", WHERE: "'where'", END: "'end'", TEXT: "'text'",
	TRUTHTABLE: "'truthtable'", EQUIV: "'equiv'", PROOF: "'proof'",
	ASSUME: "'assume'", CASE: "'case'", BY: "'by'", FROM: "'from'",
	DISCHARGE: "'discharge'",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// keywords maps identifier spellings to keyword kinds. Classification
// happens after the full identifier has been scanned.
var keywords = map[string]Kind{
	"or": OR, "and": AND, "not": NOT,
	"forall": FORALL, "exists": EXISTS, "exists1": EXISTS1,
	"lambda": LAMBDA, "mu": MU,
	"union": UNION, "intersect": INTER, "cross": CROSS,
	"power": POWERSET, "finset": FINSET, "emptyset": EMPTYSET,
	"comp": COMP, "circ": CIRC,
	"in": IN, "elem": IN, "notin": NOTIN, "notelem": NOTIN,
	"subset": SUBSET, "subseteq": SUBSETEQ,
	"div": DIV, "mod": MOD,
	"true": TRUE, "false": FALSE,
	"if": IF, "then": THEN, "else": ELSE,
	"section": SECTION, "parents": PARENTS,
	"solution": SOLUTION, "part": PART,
	"given": GIVEN, "axdef": AXDEF, "gendef": GENDEF, "schema": SCHEMA,
	"where": WHERE, "end": END, "text": TEXT,
	"truthtable": TRUTHTABLE, "equiv": EQUIV, "proof": PROOF,
	"assume": ASSUME, "case": CASE, "by": BY, "from": FROM,
	"discharge": DISCHARGE,
}

// opEntry binds one concrete spelling to a token kind. canon, when set,
// replaces the matched text so Unicode spellings surface with their ASCII
// canonical form in Token.Text.
type opEntry struct {
	text  string
	kind  Kind
	canon string
}

// operatorTable lists every fixed operator spelling, longest first. The
// single-character glyphs `<`, `>`, `^`, `.`, `(`, `_` and `%` are excluded:
// they need whitespace or bracket context and are resolved in the lexer after
// this table fails to match anything longer. Entries of equal byte length
// keep their relative order; within the lexer only the descending length
// ordering matters.
var operatorTable = []opEntry{
	// 4 bytes (ASCII arrow family and multi-byte Unicode).
	{"-->>", TSURJ, ""}, {"+->>", PSURJ, ""}, {">->>", BIJ, ""}, {">+>>", PBIJ, ""},

	// 3 bytes.
	{"<=>", IFF, ""}, {"::=", FREE, ""},
	{"-->", TFUN, ""}, {"+->", PFUN, ""}, {">->", TINJ, ""}, {">+>", PINJ, ""},
	{"<->", REL, ""}, {"|->", MAPLET, ""}, {"<<|", NDRES, ""}, {"|>>", NRRES, ""},

	// 2 bytes.
	{"==", DEFEQ, ""}, {"=>", IMPLIES, ""}, {"/=", NEQ, ""},
	{"<=", LEQ, ""}, {">=", GEQ, ""},
	{"<|", DRES, ""}, {"|>", RRES, ""},
	{"<<", LDATA, ""}, {">>", RDATA, ""},
	{"(|", LIMG, ""}, {"|)", RIMG, ""},
	{"[[", LBAG, ""}, {"]]", RBAG, ""},
	{"..", UPTO, ""},
	{`/\`, AND, "and"}, {`\/`, OR, "or"},

	// 1 byte.
	{")", RPAREN, ""}, {"{", LBRACE, ""}, {"}", RBRACE, ""},
	{"[", LBRACK, ""}, {"]", RBRACK, ""},
	{",", COMMA, ""}, {";", SEMI, ""}, {":", COLON, ""}, {"|", BAR, ""},
	{"=", EQ, ""}, {"+", PLUS, ""}, {"-", MINUS, ""}, {"*", STAR, ""},
	{`\`, SETMINUS, ""}, {"#", HASH, ""}, {"~", TILDE, ""},
	{"'", PRIME, ""}, {"?", QUERY, ""}, {"!", BANG, ""}, {"$", DOLLAR, ""},
}

// unicodeTable gives each Unicode symbol its ASCII-equivalent kind. It is
// consulted before the ASCII table because the spellings never collide and
// byte length does not order the two sets against each other meaningfully.
var unicodeTable = []opEntry{
	{"∀", FORALL, "forall"}, {"∃1", EXISTS1, "exists1"}, {"∃", EXISTS, "exists"},
	{"λ", LAMBDA, "lambda"}, {"μ", MU, "mu"},
	{"¬", NOT, "not"}, {"∧", AND, "and"}, {"∨", OR, "or"},
	{"⇒", IMPLIES, "=>"}, {"⇔", IFF, "<=>"},
	{"∈", IN, "in"}, {"∉", NOTIN, "notin"},
	{"⊆", SUBSETEQ, "subseteq"}, {"⊂", SUBSET, "subset"},
	{"∪", UNION, "union"}, {"∩", INTER, "intersect"}, {"∖", SETMINUS, `\`},
	{"×", CROSS, "cross"}, {"ℙ", POWERSET, "power"}, {"𝔽", FINSET, "finset"},
	{"∅", EMPTYSET, "emptyset"},
	{"↦", MAPLET, "|->"}, {"↔", REL, "<->"},
	{"→", TFUN, "-->"}, {"⇸", PFUN, "+->"}, {"↣", TINJ, ">->"},
	{"⤔", PINJ, ">+>"}, {"↠", TSURJ, "-->>"}, {"⤀", PSURJ, "+->>"},
	{"⤖", BIJ, ">->>"}, {"⤗", PBIJ, ">+>>"},
	{"◁", DRES, "<|"}, {"▷", RRES, "|>"}, {"⩤", NDRES, "<<|"}, {"⩥", NRRES, "|>>"},
	{"⨾", COMP, "comp"}, {"∘", CIRC, "circ"},
	{"≠", NEQ, "/="}, {"≤", LEQ, "<="}, {"≥", GEQ, ">="},
	{"⌢", CAT, "^"},
	{"•", SPOT, "."}, {"⦁", SPOT, "."},
	{"⟨", LSEQ, "<"}, {"⟩", RSEQ, ">"},
	{"ℕ", IDENT, "N"}, {"ℤ", IDENT, "Z"},
}
