package render

import (
	"sort"
	"time"

	svg "github.com/ajstarks/svgo"
	"github.com/dshills/gsnviz/pkg/layout"
)

// legendLineHeight spaces the legend's small text.
const legendLineHeight = 14

// legendLines assembles the legend text for a diagram.
func legendLines(d *layout.Diagram, opts Options) []string {
	var lines []string
	if d.Module != "" {
		lines = append(lines, "Module: "+d.Module)
	} else {
		lines = append(lines, "View: "+d.Name)
	}
	if d.Brief != "" {
		lines = append(lines, d.Brief)
	}
	if opts.Legend == LegendFull {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		lines = append(lines, "Generated: "+now().UTC().Format("2006-01-02 15:04:05 MST"))
	}
	return lines
}

// legendHeight reserves vertical space below the diagram body.
func legendHeight(d *layout.Diagram, opts Options) int {
	return len(legendLines(d, opts))*legendLineHeight + 12
}

// drawLegend emits the legend block in the bottom-left corner.
func drawLegend(canvas *svg.SVG, d *layout.Diagram, opts Options) {
	lines := legendLines(d, opts)
	canvas.Group(attr("class", "gsnlegend"))
	y := d.Height + legendLineHeight
	for _, line := range lines {
		canvas.Text(12, y, line)
		y += legendLineHeight
	}
	canvas.Gend()
}

// SortedWarnings returns a diagram's layout warnings in stable order,
// for callers that log them.
func SortedWarnings(d *layout.Diagram) []string {
	out := append([]string{}, d.Warnings...)
	sort.Strings(out)
	return out
}
