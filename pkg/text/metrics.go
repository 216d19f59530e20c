package text

// Extent is the bounding box of a wrapped label in user units.
type Extent struct {
	Width  int
	Height int
}

// Measure wraps s at the given character budget and returns the display
// lines plus their bounding box. Height is lines times the font's line
// advance; width is the widest line.
func Measure(f *Font, s string, wrap int) ([]Line, Extent) {
	lines := WrapText(s, wrap)
	ext := Extent{Height: len(lines) * f.LineHeight()}
	for _, l := range lines {
		if w := f.LineWidth(l); w > ext.Width {
			ext.Width = w
		}
	}
	return lines, ext
}
