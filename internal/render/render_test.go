package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/z-tavern/chat/internal/model/chat"
)

func TestLexerForDetectsLanguage(t *testing.T) {
	if name := LexerFor("go", "package main").Config().Name; name != "Go" {
		t.Fatalf("expected Go lexer, got %s", name)
	}
	if name := LexerFor("not-a-language", "").Config().Name; name == "" {
		t.Fatal("expected a fallback lexer")
	}
}

func TestHTMLRendererHighlightsCode(t *testing.T) {
	r := NewHTMLRenderer(DefaultStyle)
	out := r.Message(chat.AssistantMessage("Try this:\n\n```go\nfunc main() {}\n```"))

	if !strings.Contains(out, `class="message assistant"`) {
		t.Fatalf("missing role class: %s", out)
	}
	if !strings.Contains(out, `data-lang="go"`) {
		t.Fatalf("missing code region: %s", out)
	}
	if !strings.Contains(out, `class="chroma"`) {
		t.Fatalf("code was not highlighted: %s", out)
	}
	// keyword token class from chroma
	if !strings.Contains(out, `class="kd"`) {
		t.Fatalf("expected keyword highlighting: %s", out)
	}
	if !strings.Contains(out, "<p>Try this:</p>") {
		t.Fatalf("inline text not rendered as paragraph: %s", out)
	}
}

func TestHTMLRendererEscapes(t *testing.T) {
	r := NewHTMLRenderer(DefaultStyle)
	out := r.Message(chat.UserMessage("<b>hi</b> [x](javascript:alert(1))"))

	if strings.Contains(out, "<b>") {
		t.Fatalf("raw html leaked: %s", out)
	}
	if strings.Contains(out, "javascript:") {
		t.Fatalf("unsafe link leaked: %s", out)
	}
	if !strings.Contains(out, `class="message user"`) {
		t.Fatalf("missing user class: %s", out)
	}

	for _, link := range []string{
		"[b](<java\tscript:alert(1)>)",
		"[c](<\tjavascript:alert(1)>)",
		"[d](JavaScript&#58;alert(1))",
		"[e](vbscript:msgbox)",
		"[f](data:text/html,x)",
	} {
		out := r.Message(chat.AssistantMessage(link))
		if !strings.Contains(out, `href="#"`) {
			t.Fatalf("%q: unsafe link kept: %s", link, out)
		}
	}

	out = r.Message(chat.AssistantMessage("[ok](https://go.dev/doc) [rel](/docs) [mail](mailto:a@b.test)"))
	for _, want := range []string{`href="https://go.dev/doc"`, `href="/docs"`, `href="mailto:a@b.test"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("safe link %s dropped: %s", want, out)
		}
	}
}

func TestHTMLRendererDecodesEntitiesOnce(t *testing.T) {
	out := NewHTMLRenderer(DefaultStyle).Message(chat.AssistantMessage("AT&amp;T &lt;b&gt;"))
	if !strings.Contains(out, "<p>AT&amp;T &lt;b&gt;</p>") {
		t.Fatalf("entities should be decoded then escaped once: %s", out)
	}
}

func TestHTMLRendererPage(t *testing.T) {
	r := NewHTMLRenderer(DefaultStyle)
	var buf bytes.Buffer
	err := r.Page(&buf, "SQL <help>", []chat.Message{
		chat.AssistantMessage(chat.Greeting),
		chat.UserMessage("`SELECT 1`"),
	})
	if err != nil {
		t.Fatalf("Page err: %v", err)
	}
	page := buf.String()
	if !strings.Contains(page, "<title>SQL &lt;help&gt;</title>") {
		t.Fatalf("title not escaped: %s", page)
	}
	if !strings.Contains(page, `<code class="inline">SELECT 1</code>`) {
		t.Fatalf("inline code missing: %s", page)
	}
	if !strings.Contains(page, ".chroma") {
		t.Fatal("expected chroma stylesheet")
	}
}

func leadingSpaces(s string) int {
	return len(s) - len(strings.TrimLeft(s, " "))
}

func TestTerminalRendererAlignment(t *testing.T) {
	r := NewTerminalRenderer(60)

	user := strings.Split(r.Message(chat.UserMessage("Hello")), "\n")[0]
	if leadingSpaces(user) < 20 {
		t.Fatalf("user bubble should be right aligned: %q", user)
	}
	if !strings.Contains(user, "Hello") {
		t.Fatalf("missing content: %q", user)
	}

	assistant := strings.Split(r.Message(chat.AssistantMessage("Hi there")), "\n")[0]
	if leadingSpaces(assistant) > 1 {
		t.Fatalf("assistant bubble should be left aligned: %q", assistant)
	}
}

func TestTerminalRendererCodeBlockDistinct(t *testing.T) {
	r := NewTerminalRenderer(80)
	out := r.Body(Parse("text\n\n```python\nprint('x')\n```"), 60)

	if !strings.Contains(out, "python") {
		t.Fatalf("missing language label: %q", out)
	}
	if !strings.Contains(out, "╭") {
		t.Fatalf("code block should be boxed: %q", out)
	}
	if !strings.Contains(out, "print") {
		t.Fatalf("missing code: %q", out)
	}
}

func TestTerminalRendererFitsWidth(t *testing.T) {
	r := NewTerminalRenderer(80)
	long := strings.Repeat("x", 120)
	content := "```\n" + long + "\n```\n\n| name | value |\n|---|---|\n| key | " + strings.Repeat("word ", 30) + "|"

	const width = 40
	out := r.Body(Parse(content), width)
	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > width {
			t.Fatalf("line exceeds %d columns (%d): %q", width, w, line)
		}
	}
	if strings.Count(out, "x") < len(long) {
		t.Fatalf("wrapped code lost characters: %q", out)
	}
}

func TestMarkdownRenderer(t *testing.T) {
	m, err := NewMarkdownRenderer(60, "notty")
	if err != nil {
		t.Fatalf("NewMarkdownRenderer err: %v", err)
	}
	out := m.Render("# Answer\n\n```go\nx := 1\n```")
	if !strings.Contains(out, "Answer") || !strings.Contains(out, "x := 1") {
		t.Fatalf("unexpected output %q", out)
	}
}
