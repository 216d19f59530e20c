package text

import (
	"strings"
)

// DefaultWrap is the character budget used when neither the node, the
// module, nor the command line sets one.
const DefaultWrap = 30

// bulletIndent is the character budget consumed by the hanging indent of
// wrapped bullet continuations.
const bulletIndent = 2

// WrapText parses and wraps a full element text into display lines.
// Explicit newlines always break; otherwise a line breaks at the first
// whitespace after width characters have accumulated. Bullet source
// lines (leading "-" or "*") get a bullet glyph and a hanging indent on
// their continuations.
func WrapText(s string, width int) []Line {
	if width <= 0 {
		width = DefaultWrap
	}
	var out []Line
	for _, src := range strings.Split(s, "\n") {
		trimmed := strings.TrimLeft(src, " \t")
		bullet := false
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			bullet = true
			trimmed = strings.TrimLeft(trimmed[2:], " ")
		} else {
			trimmed = strings.TrimRight(src, " \t")
			trimmed = strings.TrimLeft(trimmed, " \t")
		}
		spans := ParseInline(trimmed)
		budget := width
		if bullet {
			budget -= bulletIndent
		}
		wrapped := wrapSpans(spans, budget)
		if len(wrapped) == 0 {
			wrapped = [][]Span{nil}
		}
		for i, lineSpans := range wrapped {
			out = append(out, Line{
				Spans:  lineSpans,
				Bullet: bullet && i == 0,
				Indent: bullet && i > 0,
			})
		}
	}
	return out
}

// fragment is a word or space run carrying one span's style.
type fragment struct {
	span  Span
	space bool
}

// wrapSpans greedily packs span fragments into lines, breaking only at
// whitespace: a line ends at the first space run reached once at least
// width visible characters have accumulated, so a line may exceed width
// by the word that crossed it.
func wrapSpans(spans []Span, width int) [][]Span {
	frags := fragments(spans)
	var lines [][]Span
	var cur []Span
	count := 0

	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, cur)
			cur = nil
			count = 0
		}
	}

	for _, f := range frags {
		if f.space {
			if count >= width {
				flush()
				continue
			}
			if count > 0 {
				cur = appendSpan(cur, f.span)
				count += f.span.DisplayLen()
			}
			continue
		}
		cur = appendSpan(cur, f.span)
		count += f.span.DisplayLen()
	}
	// Drop a trailing space run left by a break decision.
	cur = trimTrailingSpace(cur)
	flush()
	return lines
}

// fragments splits spans into word and space runs, preserving style.
func fragments(spans []Span) []fragment {
	var out []fragment
	for _, s := range spans {
		rest := s.Text
		for rest != "" {
			if rest[0] == ' ' {
				n := 0
				for n < len(rest) && rest[n] == ' ' {
					n++
				}
				f := s
				f.Text = " "
				out = append(out, fragment{span: f, space: true})
				rest = rest[n:]
				continue
			}
			idx := strings.IndexByte(rest, ' ')
			word := rest
			if idx >= 0 {
				word = rest[:idx]
				rest = rest[idx:]
			} else {
				rest = ""
			}
			f := s
			f.Text = word
			out = append(out, fragment{span: f})
		}
	}
	return out
}

// appendSpan appends a fragment span, merging with the previous span
// when the style is identical.
func appendSpan(spans []Span, s Span) []Span {
	if n := len(spans); n > 0 {
		last := &spans[n-1]
		if last.Bold == s.Bold && last.Italic == s.Italic && last.Href == s.Href {
			last.Text += s.Text
			return spans
		}
	}
	return append(spans, s)
}

func trimTrailingSpace(spans []Span) []Span {
	for len(spans) > 0 {
		last := &spans[len(spans)-1]
		last.Text = strings.TrimRight(last.Text, " ")
		if last.Text != "" {
			break
		}
		spans = spans[:len(spans)-1]
	}
	return spans
}
