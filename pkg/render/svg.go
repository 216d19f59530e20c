package render

import (
	"bytes"
	"fmt"
	"time"

	svg "github.com/ajstarks/svgo"
	"github.com/dshills/gsnviz/pkg/layout"
	"github.com/dshills/gsnviz/pkg/text"
)

// LegendMode selects how much of the legend block is emitted.
type LegendMode int

const (
	// LegendFull shows module info and the generation timestamp.
	LegendFull LegendMode = iota

	// LegendMinimal shows module name and brief only, no timestamp.
	// Output is then byte-stable across runs.
	LegendMinimal

	// LegendNone suppresses the block entirely.
	LegendNone
)

// Options configures SVG emission.
type Options struct {
	// LinkedCSS hrefs become xml-stylesheet processing instructions.
	LinkedCSS []string

	// EmbeddedCSS contents are inlined into <style> blocks after the
	// built-in base stylesheet.
	EmbeddedCSS []string

	Legend LegendMode

	// Font must match the font the layout measured with.
	Font *text.Font

	// Now supplies the legend timestamp; nil means time.Now. Tests pin
	// it for reproducible output.
	Now func() time.Time
}

func (o Options) font() *text.Font {
	if o.Font != nil {
		return o.Font
	}
	return text.Default()
}

// Render serializes a positioned diagram into a standalone SVG 1.1
// document. The same diagram and options produce identical bytes;
// only the legend timestamp varies between runs.
func Render(d *layout.Diagram, opts Options) []byte {
	var body bytes.Buffer
	canvas := svg.New(&body)

	width, height := d.Width, d.Height
	if opts.Legend == LegendFull || opts.Legend == LegendMinimal {
		height += legendHeight(d, opts)
	}
	canvas.Start(width, height, attr("class", "gsndiagram"))
	canvas.Style("text/css", baseCSS)
	for _, css := range opts.EmbeddedCSS {
		canvas.Style("text/css", css)
	}
	defineMarkers(canvas)

	for _, e := range d.Edges {
		drawEdge(canvas, e)
	}
	f := opts.font()
	for _, id := range d.NodeIDs() {
		drawNode(canvas, f, d.Nodes[id])
	}
	if opts.Legend != LegendNone {
		drawLegend(canvas, d, opts)
	}
	canvas.End()

	return withStylesheetPIs(body.Bytes(), opts.LinkedCSS)
}

// withStylesheetPIs splices xml-stylesheet processing instructions
// between the XML declaration and the root element.
func withStylesheetPIs(doc []byte, hrefs []string) []byte {
	if len(hrefs) == 0 {
		return doc
	}
	idx := bytes.IndexByte(doc, '\n')
	if idx < 0 {
		return doc
	}
	var pis bytes.Buffer
	for _, href := range hrefs {
		fmt.Fprintf(&pis, "<?xml-stylesheet href=%q type=\"text/css\"?>\n", href)
	}
	out := make([]byte, 0, len(doc)+pis.Len())
	out = append(out, doc[:idx+1]...)
	out = append(out, pis.Bytes()...)
	out = append(out, doc[idx+1:]...)
	return out
}
