package text

import (
	"strings"
	"unicode/utf8"
)

// Span is a run of characters sharing one style. Display length counts
// the visible text only; markup characters and link targets are gone by
// the time a Span exists.
type Span struct {
	Text   string
	Bold   bool
	Italic bool

	// Href is set for hyperlinks; Text then holds the label.
	Href string
}

// DisplayLen returns the number of visible characters in the span.
func (s Span) DisplayLen() int {
	return utf8.RuneCountInString(s.Text)
}

// Line is one display line of an element label.
type Line struct {
	Spans []Span

	// Bullet marks the first display line of a bullet source line; it is
	// rendered with a leading bullet glyph.
	Bullet bool

	// Indent marks wrapped continuations of a bullet line.
	Indent bool
}

// DisplayLen returns the visible character count of the line, excluding
// the bullet/indent prefix.
func (l Line) DisplayLen() int {
	n := 0
	for _, s := range l.Spans {
		n += s.DisplayLen()
	}
	return n
}

// DisplayText returns the plain visible text of the line.
func (l Line) DisplayText() string {
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// autolinkPrefixes start a bare hyperlink.
var autolinkPrefixes = []string{"http://", "https://", "file://"}

// ParseInline splits one source line into styled spans. The subset is
// deliberately small: *bold*, _italic_, [label](url), and bare
// http(s)/file URLs. Unterminated markers are treated as literal text.
func ParseInline(s string) []Span {
	var spans []Span
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			spans = append(spans, Span{Text: plain.String()})
			plain.Reset()
		}
	}

	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '*' || r == '_':
			end := indexRune(runes, i+1, r)
			if end < 0 || end == i+1 {
				plain.WriteRune(r)
				i++
				continue
			}
			flush()
			body := string(runes[i+1 : end])
			spans = append(spans, Span{Text: body, Bold: r == '*', Italic: r == '_'})
			i = end + 1
		case r == '[':
			label, href, next, ok := parseLink(runes, i)
			if !ok {
				plain.WriteRune(r)
				i++
				continue
			}
			flush()
			spans = append(spans, Span{Text: label, Href: href})
			i = next
		default:
			if href, next, ok := parseAutolink(runes, i); ok {
				flush()
				spans = append(spans, Span{Text: href, Href: href})
				i = next
				continue
			}
			plain.WriteRune(r)
			i++
		}
	}
	flush()
	return spans
}

// indexRune finds r in runes at or after from.
func indexRune(runes []rune, from int, r rune) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == r {
			return i
		}
	}
	return -1
}

// parseLink parses [label](url) starting at the opening bracket.
func parseLink(runes []rune, i int) (label, href string, next int, ok bool) {
	close := indexRune(runes, i+1, ']')
	if close < 0 || close+1 >= len(runes) || runes[close+1] != '(' {
		return "", "", 0, false
	}
	end := indexRune(runes, close+2, ')')
	if end < 0 {
		return "", "", 0, false
	}
	return string(runes[i+1 : close]), string(runes[close+2 : end]), end + 1, true
}

// parseAutolink recognizes a bare URL at position i. The link runs to the
// next whitespace.
func parseAutolink(runes []rune, i int) (href string, next int, ok bool) {
	rest := string(runes[i:])
	matched := false
	for _, p := range autolinkPrefixes {
		if strings.HasPrefix(rest, p) {
			matched = true
			break
		}
	}
	if !matched {
		return "", 0, false
	}
	end := i
	for end < len(runes) && runes[end] != ' ' && runes[end] != '\t' {
		end++
	}
	return string(runes[i:end]), end, true
}
