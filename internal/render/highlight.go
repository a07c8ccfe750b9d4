package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const DefaultStyle = "dracula"

// Highlighter applies syntax highlighting to code blocks after parsing.
type Highlighter struct {
	formatter chroma.Formatter
	html      *chromahtml.Formatter
	style     *chroma.Style
}

// NewTerminalHighlighter emits 256-colour ANSI sequences.
func NewTerminalHighlighter(style string) *Highlighter {
	return &Highlighter{
		formatter: formatters.Get("terminal256"),
		style:     styles.Get(style),
	}
}

// NewHTMLHighlighter emits class-annotated markup; WriteCSS provides the
// matching stylesheet.
func NewHTMLHighlighter(style string) *Highlighter {
	f := chromahtml.New(chromahtml.WithClasses(true), chromahtml.TabWidth(4))
	return &Highlighter{formatter: f, html: f, style: styles.Get(style)}
}

// LexerFor picks a lexer by fence language, then by content analysis, then
// falls back to plain text.
func LexerFor(lang, code string) chroma.Lexer {
	var lexer chroma.Lexer
	if lang = strings.TrimSpace(lang); lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// Highlight formats code in the given language.
func (h *Highlighter) Highlight(lang, code string) (string, error) {
	iterator, err := LexerFor(lang, code).Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("tokenise %s: %w", lang, err)
	}

	var sb strings.Builder
	if err := h.formatter.Format(&sb, h.style, iterator); err != nil {
		return "", fmt.Errorf("format %s: %w", lang, err)
	}
	return sb.String(), nil
}

// WriteCSS writes the stylesheet for HTML output. It is a no-op for the
// terminal highlighter.
func (h *Highlighter) WriteCSS(w io.Writer) error {
	if h.html == nil {
		return nil
	}
	return h.html.WriteCSS(w, h.style)
}
