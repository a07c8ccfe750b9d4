package render

import (
	"fmt"
	"html"
	"html/template"
	"io"
	"log"
	"net/url"
	"strings"

	"github.com/zhouzirui/z-tavern/chat/internal/model/chat"
)

// HTMLRenderer produces standalone markup for transcripts.
type HTMLRenderer struct {
	highlighter *Highlighter
}

func NewHTMLRenderer(style string) *HTMLRenderer {
	return &HTMLRenderer{highlighter: NewHTMLHighlighter(style)}
}

// Message renders one turn wrapped in a role-tagged bubble.
func (r *HTMLRenderer) Message(msg chat.Message) string {
	role := string(chat.RoleAssistant)
	if msg.IsUser() {
		role = string(chat.RoleUser)
	}
	return fmt.Sprintf(`<div class="message %s"><div class="bubble">%s</div></div>`, role, r.Document(Parse(msg.Content)))
}

// Document renders a parsed body.
func (r *HTMLRenderer) Document(doc *Document) string {
	var sb strings.Builder
	r.blocks(&sb, doc.Blocks)
	return sb.String()
}

func (r *HTMLRenderer) blocks(sb *strings.Builder, blocks []Block) {
	for _, b := range blocks {
		r.block(sb, b)
	}
}

func (r *HTMLRenderer) block(sb *strings.Builder, b Block) {
	switch b := b.(type) {
	case *Paragraph:
		sb.WriteString("<p>")
		r.inlines(sb, b.Inlines)
		sb.WriteString("</p>")
	case *Heading:
		fmt.Fprintf(sb, "<h%d>", b.Level)
		r.inlines(sb, b.Inlines)
		fmt.Fprintf(sb, "</h%d>", b.Level)
	case *CodeBlock:
		r.codeBlock(sb, b)
	case *List:
		tag := "ul"
		if b.Ordered {
			tag = "ol"
		}
		if b.Ordered && b.Start > 1 {
			fmt.Fprintf(sb, `<ol start="%d">`, b.Start)
		} else {
			sb.WriteString("<" + tag + ">")
		}
		for _, item := range b.Items {
			sb.WriteString("<li>")
			r.blocks(sb, item)
			sb.WriteString("</li>")
		}
		sb.WriteString("</" + tag + ">")
	case *Quote:
		sb.WriteString("<blockquote>")
		r.blocks(sb, b.Blocks)
		sb.WriteString("</blockquote>")
	case *Rule:
		sb.WriteString("<hr>")
	case *Table:
		sb.WriteString("<table><thead><tr>")
		for _, cell := range b.Header {
			sb.WriteString("<th>")
			r.inlines(sb, cell)
			sb.WriteString("</th>")
		}
		sb.WriteString("</tr></thead><tbody>")
		for _, row := range b.Rows {
			sb.WriteString("<tr>")
			for _, cell := range row {
				sb.WriteString("<td>")
				r.inlines(sb, cell)
				sb.WriteString("</td>")
			}
			sb.WriteString("</tr>")
		}
		sb.WriteString("</tbody></table>")
	}
}

func (r *HTMLRenderer) codeBlock(sb *strings.Builder, b *CodeBlock) {
	fmt.Fprintf(sb, `<div class="code-block" data-lang="%s">`, html.EscapeString(b.Lang))
	highlighted, err := r.highlighter.Highlight(b.Lang, b.Code)
	if err != nil {
		log.Printf("[render] highlight failed: %v", err)
		sb.WriteString("<pre><code>" + html.EscapeString(b.Code) + "</code></pre>")
	} else {
		sb.WriteString(highlighted)
	}
	sb.WriteString("</div>")
}

func (r *HTMLRenderer) inlines(sb *strings.Builder, inlines []Inline) {
	for _, in := range inlines {
		switch in := in.(type) {
		case *Text:
			sb.WriteString(html.EscapeString(in.Value))
		case *CodeSpan:
			sb.WriteString(`<code class="inline">` + html.EscapeString(in.Value) + "</code>")
		case *Emphasis:
			tag := "em"
			if in.Strong {
				tag = "strong"
			}
			sb.WriteString("<" + tag + ">")
			r.inlines(sb, in.Children)
			sb.WriteString("</" + tag + ">")
		case *Strikethrough:
			sb.WriteString("<del>")
			r.inlines(sb, in.Children)
			sb.WriteString("</del>")
		case *Link:
			fmt.Fprintf(sb, `<a href="%s" rel="noopener noreferrer">`, html.EscapeString(safeURL(in.URL)))
			r.inlines(sb, in.Children)
			sb.WriteString("</a>")
		case *LineBreak:
			sb.WriteString("<br>")
		}
	}
}

// safeURL keeps relative, http(s) and mailto links. Browsers drop ASCII tab
// and newline anywhere in a URL and ignore leading controls, so those are
// removed before the scheme is read.
func safeURL(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, raw)
	cleaned = strings.TrimLeftFunc(cleaned, func(r rune) bool { return r <= ' ' })

	u, err := url.Parse(cleaned)
	if err != nil {
		return "#"
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return cleaned
	default:
		return "#"
	}
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; background: #0b1120; color: #fff; font-family: system-ui, sans-serif; }
.chat { max-width: 860px; margin: 0 auto; padding: 20px; }
.message { display: flex; margin-bottom: 12px; justify-content: flex-start; }
.message.user { justify-content: flex-end; }
.bubble { max-width: 75%; padding: 14px 18px; border-radius: 14px; background: #1f2937; }
.message.user .bubble { background: #2563eb; }
code.inline { background: #0f172a; padding: 3px 6px; border-radius: 6px; color: #38bdf8; }
.code-block pre { padding: 16px; border-radius: 12px; overflow-x: auto; border: 1px solid #1e293b; margin-top: 10px; }
{{.CSS}}
</style>
</head>
<body>
<div class="chat">
<h1>{{.Title}}</h1>
{{range .Messages}}{{.}}
{{end}}</div>
</body>
</html>
`))

// Page writes a complete HTML document for a conversation.
func (r *HTMLRenderer) Page(w io.Writer, title string, messages []chat.Message) error {
	var css strings.Builder
	if err := r.highlighter.WriteCSS(&css); err != nil {
		return fmt.Errorf("write highlight css: %w", err)
	}

	rendered := make([]template.HTML, 0, len(messages))
	for _, msg := range messages {
		rendered = append(rendered, template.HTML(r.Message(msg)))
	}

	return pageTemplate.Execute(w, struct {
		Title    string
		CSS      template.CSS
		Messages []template.HTML
	}{
		Title:    title,
		CSS:      template.CSS(css.String()),
		Messages: rendered,
	})
}
