package render

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Parse converts markdown text into a Document. It has no side effects and
// never fails: anything goldmark cannot classify degrades to plain text.
func Parse(content string) *Document {
	src := []byte(content)
	root := markdown.Parser().Parse(text.NewReader(src))
	p := parser{src: src}
	return &Document{Blocks: p.blocks(root)}
}

type parser struct {
	src []byte
}

func (p parser) blocks(parent ast.Node) []Block {
	var out []Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if b := p.block(n); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (p parser) block(n ast.Node) Block {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return &Paragraph{Inlines: p.inlines(n)}
	case *ast.Heading:
		return &Heading{Level: n.Level, Inlines: p.inlines(n)}
	case *ast.FencedCodeBlock:
		return &CodeBlock{Lang: string(n.Language(p.src)), Code: p.lines(n.Lines())}
	case *ast.CodeBlock:
		return &CodeBlock{Code: p.lines(n.Lines())}
	case *ast.List:
		list := &List{Ordered: n.IsOrdered(), Start: n.Start}
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			list.Items = append(list.Items, p.blocks(item))
		}
		return list
	case *ast.Blockquote:
		return &Quote{Blocks: p.blocks(n)}
	case *ast.ThematicBreak:
		return &Rule{}
	case *ast.HTMLBlock:
		// raw HTML is shown as text, never interpreted
		raw := p.lines(n.Lines())
		if n.HasClosure() {
			raw += string(n.ClosureLine.Value(p.src))
		}
		raw = strings.TrimRight(raw, "\n")
		if raw == "" {
			return nil
		}
		return &Paragraph{Inlines: []Inline{&Text{Value: raw}}}
	case *east.Table:
		return p.table(n)
	default:
		if n.HasChildren() {
			return &Quote{Blocks: p.blocks(n)}
		}
		return nil
	}
}

func (p parser) table(n *east.Table) *Table {
	t := &Table{}
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []Cell
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, Cell(p.inlines(cell)))
		}
		if _, ok := row.(*east.TableHeader); ok {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func (p parser) lines(segs *text.Segments) string {
	var buf bytes.Buffer
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		buf.Write(seg.Value(p.src))
	}
	return buf.String()
}

func (p parser) inlines(parent ast.Node) []Inline {
	var out []Inline
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, p.inline(n)...)
	}
	return mergeText(out)
}

func (p parser) inline(n ast.Node) []Inline {
	switch n := n.(type) {
	case *ast.Text:
		value := string(n.Segment.Value(p.src))
		if !n.IsRaw() {
			value = decodeText(n.Segment.Value(p.src))
		}
		out := []Inline{&Text{Value: value}}
		switch {
		case n.HardLineBreak():
			out = append(out, &LineBreak{})
		case n.SoftLineBreak():
			out = append(out, &Text{Value: " "})
		}
		return out
	case *ast.String:
		return []Inline{&Text{Value: string(n.Value)}}
	case *ast.CodeSpan:
		var sb strings.Builder
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.Text:
				sb.Write(c.Segment.Value(p.src))
			case *ast.String:
				sb.Write(c.Value)
			}
		}
		return []Inline{&CodeSpan{Value: sb.String()}}
	case *ast.Emphasis:
		return []Inline{&Emphasis{Strong: n.Level >= 2, Children: p.inlines(n)}}
	case *east.Strikethrough:
		return []Inline{&Strikethrough{Children: p.inlines(n)}}
	case *ast.Link:
		return []Inline{&Link{URL: decodeText(n.Destination), Children: p.inlines(n)}}
	case *ast.AutoLink:
		url := string(n.URL(p.src))
		return []Inline{&Link{URL: url, Children: []Inline{&Text{Value: url}}}}
	case *ast.Image:
		alt := PlainText(p.inlines(n))
		if alt == "" {
			alt = "image"
		}
		return []Inline{&Link{URL: decodeText(n.Destination), Children: []Inline{&Text{Value: alt}}}}
	case *ast.RawHTML:
		return []Inline{&Text{Value: p.lines(n.Segments)}}
	case *east.TaskCheckBox:
		if n.IsChecked {
			return []Inline{&Text{Value: "[x] "}}
		}
		return []Inline{&Text{Value: "[ ] "}}
	default:
		return p.inlines(n)
	}
}

// decodeText applies backslash escapes and resolves entity and numeric
// character references. An escaped character is taken literally, so
// `\&amp;` stays "&amp;".
func decodeText(src []byte) string {
	var sb strings.Builder
	start := 0
	for i := 0; i < len(src); i++ {
		if src[i] == '\\' && i+1 < len(src) && util.IsPunct(src[i+1]) {
			sb.Write(resolveReferences(src[start:i]))
			sb.WriteByte(src[i+1])
			i++
			start = i + 1
		}
	}
	sb.Write(resolveReferences(src[start:]))
	return sb.String()
}

func resolveReferences(b []byte) []byte {
	return util.ResolveEntityNames(util.ResolveNumericReferences(b))
}

// mergeText joins adjacent text runs so renderers see whole words.
func mergeText(in []Inline) []Inline {
	out := in[:0]
	for _, node := range in {
		t, ok := node.(*Text)
		if ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(*Text); ok {
				prev.Value += t.Value
				continue
			}
		}
		out = append(out, node)
	}
	return out
}
