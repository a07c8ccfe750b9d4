package render

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/zhouzirui/z-tavern/chat/internal/model/chat"
)

const minBubbleWidth = 20

var (
	userBubble      = lipgloss.NewStyle().Background(lipgloss.Color("#2563eb")).Foreground(lipgloss.Color("#ffffff")).Padding(0, 1)
	assistantBubble = lipgloss.NewStyle().Background(lipgloss.Color("#1f2937")).Foreground(lipgloss.Color("#ffffff")).Padding(0, 1)

	inlineCodeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#38bdf8")).Background(lipgloss.Color("#0f172a"))
	codeBlockStyle  = lipgloss.NewStyle().
			Background(lipgloss.Color("#0b1120")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#1e293b")).
			Padding(0, 1)
	codeLangStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22d3ee"))
	quoteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	linkStyle     = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("#93c5fd"))
	boldStyle     = lipgloss.NewStyle().Bold(true)
	italicStyle   = lipgloss.NewStyle().Italic(true)
	strikeStyle   = lipgloss.NewStyle().Strikethrough(true)
)

// TerminalRenderer lays messages out as chat bubbles for a terminal of a
// given width: user turns on the right, assistant turns on the left.
type TerminalRenderer struct {
	width       int
	highlighter *Highlighter
}

func NewTerminalRenderer(width int) *TerminalRenderer {
	return &TerminalRenderer{width: width, highlighter: NewTerminalHighlighter(DefaultStyle)}
}

// SetWidth updates the available width, e.g. after a resize.
func (r *TerminalRenderer) SetWidth(width int) {
	r.width = width
}

// Message renders one chat turn.
func (r *TerminalRenderer) Message(msg chat.Message) string {
	bubbleWidth := r.width * 3 / 4
	if bubbleWidth < minBubbleWidth {
		bubbleWidth = minBubbleWidth
	}

	body := r.Body(Parse(msg.Content), bubbleWidth-2)
	if msg.IsUser() {
		return lipgloss.PlaceHorizontal(r.width, lipgloss.Right, userBubble.Render(body))
	}
	return lipgloss.PlaceHorizontal(r.width, lipgloss.Left, assistantBubble.Render(body))
}

// Messages renders a whole conversation separated by blank lines.
func (r *TerminalRenderer) Messages(msgs []chat.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, r.Message(msg))
	}
	return strings.Join(parts, "\n\n")
}

// Body renders a document wrapped to width columns.
func (r *TerminalRenderer) Body(doc *Document, width int) string {
	return strings.Join(r.blocks(doc.Blocks, width), "\n\n")
}

func (r *TerminalRenderer) blocks(blocks []Block, width int) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, r.block(b, width))
	}
	return out
}

func (r *TerminalRenderer) block(b Block, width int) string {
	switch b := b.(type) {
	case *Paragraph:
		return wrapWords(r.inlines(b.Inlines), width)
	case *Heading:
		return wrapWords(headingStyle.Render(r.inlines(b.Inlines)), width)
	case *CodeBlock:
		return r.codeBlock(b, width)
	case *List:
		return r.list(b, width)
	case *Quote:
		inner := r.blocks(b.Blocks, width-2)
		return prefixLines(strings.Join(inner, "\n\n"), quoteStyle.Render("│ "), quoteStyle.Render("│ "))
	case *Rule:
		return quoteStyle.Render(strings.Repeat("─", width))
	case *Table:
		return r.table(b, width)
	default:
		return ""
	}
}

// codeBlock boxes highlighted code, hard-wrapping lines that would overflow
// the bubble.
func (r *TerminalRenderer) codeBlock(b *CodeBlock, width int) string {
	code := strings.TrimRight(b.Code, "\n")
	highlighted, err := r.highlighter.Highlight(b.Lang, code)
	if err != nil {
		log.Printf("[render] highlight failed: %v", err)
		highlighted = code
	}
	highlighted = strings.TrimRight(highlighted, "\n")
	if inner := width - codeBlockStyle.GetHorizontalFrameSize(); width > 0 && inner > 0 {
		highlighted = wrap.String(highlighted, inner)
	}

	box := codeBlockStyle.Render(highlighted)
	if b.Lang == "" {
		return box
	}
	return codeLangStyle.Render(b.Lang) + "\n" + box
}

func (r *TerminalRenderer) list(l *List, width int) string {
	items := make([]string, 0, len(l.Items))
	for i, item := range l.Items {
		marker := "• "
		if l.Ordered {
			marker = fmt.Sprintf("%d. ", l.Start+i)
		}
		indent := strings.Repeat(" ", lipgloss.Width(marker))
		body := strings.Join(r.blocks(item, width-len(indent)), "\n")
		items = append(items, prefixLines(body, marker, indent))
	}
	return strings.Join(items, "\n")
}

func (r *TerminalRenderer) table(t *Table, width int) string {
	tbl := table.New().Border(lipgloss.NormalBorder())
	headers := make([]string, len(t.Header))
	for i, cell := range t.Header {
		headers[i] = r.inlines(cell)
	}
	tbl.Headers(headers...)
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = r.inlines(cell)
		}
		tbl.Row(cells...)
	}

	out := tbl.Render()
	if width > 0 && lipgloss.Width(out) > width {
		out = tbl.Width(width).Render()
	}
	return out
}

func (r *TerminalRenderer) inlines(inlines []Inline) string {
	var sb strings.Builder
	for _, in := range inlines {
		switch in := in.(type) {
		case *Text:
			sb.WriteString(in.Value)
		case *CodeSpan:
			sb.WriteString(inlineCodeStyle.Render(" " + in.Value + " "))
		case *Emphasis:
			if in.Strong {
				sb.WriteString(boldStyle.Render(r.inlines(in.Children)))
			} else {
				sb.WriteString(italicStyle.Render(r.inlines(in.Children)))
			}
		case *Strikethrough:
			sb.WriteString(strikeStyle.Render(r.inlines(in.Children)))
		case *Link:
			label := r.inlines(in.Children)
			sb.WriteString(linkStyle.Render(label))
			if in.URL != "" && PlainText(in.Children) != in.URL {
				sb.WriteString(" (" + in.URL + ")")
			}
		case *LineBreak:
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func wrapWords(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wordwrap.String(s, width)
}

func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		if i == 0 {
			lines[i] = first + lines[i]
		} else {
			lines[i] = rest + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
