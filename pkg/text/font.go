package text

import (
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// FontSize is the fixed point size all labels are measured at, in SVG
// user units.
const FontSize = 12

// fallbackLineHeight is used when no font metrics are available.
const fallbackLineHeight = 15

// fontCandidates are the system sans-serif faces tried in order. The
// first readable, parseable file wins.
var fontCandidates = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/usr/share/fonts/liberation-sans/LiberationSans-Regular.ttf",
	"/Library/Fonts/Arial.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
	"C:\\Windows\\Fonts\\arial.ttf",
}

// narrowRunes get a reduced advance in the fallback table.
const narrowRunes = "iljt.,:;'!|()[] "

// Font measures strings in SVG user units. A nil or unresolvable system
// font degrades to a deterministic average-advance table; sizing is then
// slightly looser but stable across platforms.
type Font struct {
	face       *sfnt.Font
	buf        sfnt.Buffer
	ppem       fixed.Int26_6
	lineHeight int
	fallback   bool
	mu         sync.Mutex
}

var (
	defaultFont *Font
	defaultOnce sync.Once
)

// Default returns the process-wide font handle, resolving it on first
// use. The handle is read-only after initialization.
func Default() *Font {
	defaultOnce.Do(func() {
		defaultFont = Load(fontCandidates)
	})
	return defaultFont
}

// Load resolves a font from the candidate paths, falling back to the
// built-in table when none parses.
func Load(candidates []string) *Font {
	f := &Font{ppem: fixed.I(FontSize), fallback: true, lineHeight: fallbackLineHeight}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		face, err := sfnt.Parse(data)
		if err != nil {
			continue
		}
		f.face = face
		f.fallback = false
		if m, err := face.Metrics(&f.buf, f.ppem, font.HintingNone); err == nil {
			f.lineHeight = (m.Ascent + m.Descent + m.XHeight/4).Ceil()
		} else {
			f.lineHeight = fallbackLineHeight
		}
		break
	}
	return f
}

// Fallback reports whether measurement runs on the built-in table rather
// than a resolved system font.
func (f *Font) Fallback() bool {
	return f.fallback
}

// LineHeight returns the vertical advance per display line.
func (f *Font) LineHeight() int {
	return f.lineHeight
}

// StringWidth returns the advance width of s in user units. Kerning is
// not applied; the result is an upper bound within one glyph pair.
func (f *Font) StringWidth(s string) int {
	if f.fallback || f.face == nil {
		return fallbackWidth(s)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var total fixed.Int26_6
	for _, r := range s {
		gi, err := f.face.GlyphIndex(&f.buf, r)
		if err != nil || gi == 0 {
			total += fixed.I(avgAdvance(r))
			continue
		}
		adv, err := f.face.GlyphAdvance(&f.buf, gi, f.ppem, font.HintingNone)
		if err != nil {
			total += fixed.I(avgAdvance(r))
			continue
		}
		total += adv
	}
	return total.Ceil()
}

// LineWidth measures a display line, bullet prefix included.
func (f *Font) LineWidth(l Line) int {
	w := 0
	for _, sp := range l.Spans {
		w += f.StringWidth(sp.Text)
	}
	if l.Bullet || l.Indent {
		w += f.StringWidth("\u2022 ")
	}
	return w
}

// fallbackWidth sums the average-advance table over s.
func fallbackWidth(s string) int {
	w := 0
	for _, r := range s {
		w += avgAdvance(r)
	}
	return w
}

// avgAdvance is the built-in per-rune advance at FontSize: 4 units for
// narrow glyphs, 11 for M, W, m, w and the em dash, 7 otherwise.
func avgAdvance(r rune) int {
	for _, n := range narrowRunes {
		if r == n {
			return 4
		}
	}
	if r == 'M' || r == 'W' || r == 'm' || r == 'w' || r == '\u2014' {
		return 11
	}
	return 7
}
