package text

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// fallbackFont returns a font that never resolves a system face, so
// measurements are identical on every platform.
func fallbackFont() *Font {
	return Load(nil)
}

func TestParseInline_Plain(t *testing.T) {
	spans := ParseInline("just plain text")
	if len(spans) != 1 || spans[0].Text != "just plain text" {
		t.Fatalf("unexpected spans: %+v", spans)
	}
}

func TestParseInline_Emphasis(t *testing.T) {
	spans := ParseInline("a *bold* and _italic_ word")
	want := []Span{
		{Text: "a "},
		{Text: "bold", Bold: true},
		{Text: " and "},
		{Text: "italic", Italic: true},
		{Text: " word"},
	}
	if len(spans) != len(want) {
		t.Fatalf("got %d spans, want %d: %+v", len(spans), len(want), spans)
	}
	for i := range want {
		if spans[i] != want[i] {
			t.Errorf("span %d = %+v, want %+v", i, spans[i], want[i])
		}
	}
}

func TestParseInline_Link(t *testing.T) {
	spans := ParseInline("see [the spec](https://example.org/spec) here")
	if len(spans) != 3 {
		t.Fatalf("unexpected spans: %+v", spans)
	}
	link := spans[1]
	if link.Text != "the spec" || link.Href != "https://example.org/spec" {
		t.Errorf("link span = %+v", link)
	}
	// Display length counts the label, not the source markup.
	if got := link.DisplayLen(); got != len("the spec") {
		t.Errorf("display length = %d, want %d", got, len("the spec"))
	}
}

func TestParseInline_Autolink(t *testing.T) {
	spans := ParseInline("docs at https://example.org/x and file://notes")
	var hrefs []string
	for _, s := range spans {
		if s.Href != "" {
			hrefs = append(hrefs, s.Href)
		}
	}
	if len(hrefs) != 2 || hrefs[0] != "https://example.org/x" || hrefs[1] != "file://notes" {
		t.Errorf("autolinks = %v", hrefs)
	}
}

func TestParseInline_Unterminated(t *testing.T) {
	spans := ParseInline("a *dangling star")
	joined := ""
	for _, s := range spans {
		joined += s.Text
		if s.Bold {
			t.Error("dangling star parsed as bold")
		}
	}
	if joined != "a *dangling star" {
		t.Errorf("text mangled: %q", joined)
	}
}

func TestWrapText_BreaksAfterBudget(t *testing.T) {
	lines := WrapText("aaaa bbbb cccc dddd", 10)
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %+v", len(lines), lines)
	}
	if lines[0].DisplayText() != "aaaa bbbb cccc" {
		t.Errorf("line 0 = %q", lines[0].DisplayText())
	}
	if lines[1].DisplayText() != "dddd" {
		t.Errorf("line 1 = %q", lines[1].DisplayText())
	}
}

func TestWrapText_ExplicitNewlineAlwaysBreaks(t *testing.T) {
	lines := WrapText("ab\ncd", 100)
	if len(lines) != 2 || lines[0].DisplayText() != "ab" || lines[1].DisplayText() != "cd" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}

func TestWrapText_Bullets(t *testing.T) {
	lines := WrapText("- item one two", 8)
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %+v", len(lines), lines)
	}
	if !lines[0].Bullet || lines[0].DisplayText() != "item one" {
		t.Errorf("line 0 = %+v", lines[0])
	}
	if !lines[1].Indent || lines[1].DisplayText() != "two" {
		t.Errorf("line 1 = %+v", lines[1])
	}
}

func TestWrapText_StarBullet(t *testing.T) {
	lines := WrapText("* starred", 40)
	if len(lines) != 1 || !lines[0].Bullet || lines[0].DisplayText() != "starred" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}

func TestFallbackFont_Deterministic(t *testing.T) {
	f := fallbackFont()
	if !f.Fallback() {
		t.Fatal("expected fallback path with no candidates")
	}
	if w := f.StringWidth("ok"); w != 14 {
		t.Errorf("fallback width(ok) = %d, want 14", w)
	}
	if w := f.StringWidth("il"); w != 8 {
		t.Errorf("fallback width(il) = %d, want 8", w)
	}
	if f.LineHeight() <= 0 {
		t.Error("line height must be positive")
	}
}

func TestMeasure(t *testing.T) {
	f := fallbackFont()
	lines, ext := Measure(f, "aaaa bbbb cccc dddd", 10)
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if ext.Height != 2*f.LineHeight() {
		t.Errorf("height = %d, want %d", ext.Height, 2*f.LineHeight())
	}
	if ext.Width != f.LineWidth(lines[0]) {
		t.Errorf("width = %d, want widest line %d", ext.Width, f.LineWidth(lines[0]))
	}
}

// Property: wrapping never loses or reorders visible words; rejoining the
// lines with single spaces restores the source.
func TestWrapText_PreservesText(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(
			rapid.StringMatching(`[a-z]{1,12}`), 1, 20).Draw(t, "words")
		src := strings.Join(words, " ")
		width := rapid.IntRange(4, 40).Draw(t, "width")

		lines := WrapText(src, width)
		var rejoined []string
		for _, l := range lines {
			rejoined = append(rejoined, l.DisplayText())
		}
		if got := strings.Join(rejoined, " "); got != src {
			t.Fatalf("wrap changed text: %q -> %q", src, got)
		}
	})
}
