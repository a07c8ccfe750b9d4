// Package render turns message content into formatted output. Parsing is a
// pure function from markdown text to a Document; highlighting and layout
// are applied afterwards by the terminal and HTML renderers.
package render

import "strings"

// Document is the parsed form of a message body.
type Document struct {
	Blocks []Block
}

// Block is a block-level element.
type Block interface{ block() }

// Inline is a span inside a block.
type Inline interface{ inline() }

type (
	Paragraph struct{ Inlines []Inline }
	Heading   struct {
		Level   int
		Inlines []Inline
	}
	// CodeBlock is a fenced or indented code region. Lang is empty when the
	// fence carries no info string.
	CodeBlock struct {
		Lang string
		Code string
	}
	List struct {
		Ordered bool
		Start   int
		Items   [][]Block
	}
	Quote struct{ Blocks []Block }
	Rule  struct{}
	Table struct {
		Header []Cell
		Rows   [][]Cell
	}
)

// Cell is one table cell.
type Cell []Inline

type (
	Text     struct{ Value string }
	CodeSpan struct{ Value string }
	Emphasis struct {
		Strong   bool
		Children []Inline
	}
	Strikethrough struct{ Children []Inline }
	Link          struct {
		URL      string
		Children []Inline
	}
	LineBreak struct{}
)

func (*Paragraph) block() {}
func (*Heading) block()   {}
func (*CodeBlock) block() {}
func (*List) block()      {}
func (*Quote) block()     {}
func (*Rule) block()      {}
func (*Table) block()     {}

func (*Text) inline()          {}
func (*CodeSpan) inline()      {}
func (*Emphasis) inline()      {}
func (*Strikethrough) inline() {}
func (*Link) inline()          {}
func (*LineBreak) inline()     {}

// CodeBlocks returns every code block in document order, including those
// nested in lists and quotes.
func (d *Document) CodeBlocks() []*CodeBlock {
	var out []*CodeBlock
	var walk func([]Block)
	walk = func(blocks []Block) {
		for _, b := range blocks {
			switch b := b.(type) {
			case *CodeBlock:
				out = append(out, b)
			case *List:
				for _, item := range b.Items {
					walk(item)
				}
			case *Quote:
				walk(b.Blocks)
			}
		}
	}
	walk(d.Blocks)
	return out
}

// PlainText flattens inline content, dropping all formatting.
func PlainText(inlines []Inline) string {
	var sb strings.Builder
	writePlain(&sb, inlines)
	return sb.String()
}

func writePlain(sb *strings.Builder, inlines []Inline) {
	for _, in := range inlines {
		switch in := in.(type) {
		case *Text:
			sb.WriteString(in.Value)
		case *CodeSpan:
			sb.WriteString(in.Value)
		case *Emphasis:
			writePlain(sb, in.Children)
		case *Strikethrough:
			writePlain(sb, in.Children)
		case *Link:
			writePlain(sb, in.Children)
		case *LineBreak:
			sb.WriteString("\n")
		}
	}
}
