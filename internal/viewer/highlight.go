package viewer

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/alecthomas/chroma/v2/styles"
)

// HighlightTerminal renders content for a 256-colour terminal. On failure
// the plain content is returned together with the error.
func HighlightTerminal(filename, content, style string) (string, error) {
	b := new(strings.Builder)
	if err := quick.Highlight(b, content, Language(filename), "terminal256", style); err != nil {
		return content, fmt.Errorf("highlight %s: %w", filename, err)
	}
	return b.String(), nil
}

// HighlightHTML renders content as a standalone <pre> block with inline
// styles, ready to drop into the page.
func HighlightHTML(filename, content, style string) (string, error) {
	lexer := lexers.Get(Language(filename))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	st := styles.Get(style)
	if st == nil {
		st = styles.Fallback
	}

	it, err := lexer.Tokenise(nil, content)
	if err != nil {
		return "", fmt.Errorf("tokenise %s: %w", filename, err)
	}

	formatter := html.New(html.WithLineNumbers(true), html.TabWidth(2))
	b := new(strings.Builder)
	if err := formatter.Format(b, st, it); err != nil {
		return "", fmt.Errorf("format %s: %w", filename, err)
	}
	return b.String(), nil
}
