// Package txt2tex turns an informal ASCII/Unicode discrete-mathematics
// notation into LaTeX. The pipeline is Tokenize -> Parse -> Render; each
// stage is usable on its own. Parsing is fail-fast: the first lexical or
// structural violation aborts with a positioned error, and a Document exists
// only if the whole input is well formed.
package txt2tex

// Version is the library version reported by the CLI.
const Version = "0.3.1"

// Build transpiles a complete source buffer to LaTeX in one call.
func Build(src string, mode Mode) (string, error) {
	doc, err := Parse(src)
	if err != nil {
		return "", err
	}
	return Render(doc, mode), nil
}
