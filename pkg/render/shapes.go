package render

import (
	"fmt"

	svg "github.com/ajstarks/svgo"
	"github.com/dshills/gsnviz/pkg/layout"
	"github.com/dshills/gsnviz/pkg/model"
	"github.com/dshills/gsnviz/pkg/text"
)

// textPadTop is the gap between a shape's top border and the first
// baseline; awayTabHeight is the module tab under away elements.
const (
	textPadTop    = 6
	awayTabHeight = 14
	moduleTab     = 10
	acpRadius     = 4
)

// drawNode emits one node: group, hyperlink wrapper, shape, decorations,
// and label lines.
func drawNode(canvas *svg.SVG, f *text.Font, box *layout.NodeBox) {
	canvas.Group(attr("id", box.ID), attr("class", nodeClasses(box)))
	if box.URL != "" {
		canvas.Link(box.URL, "")
	}

	drawShape(canvas, box)
	if box.Undeveloped {
		drawUndevelopedDiamond(canvas, box)
	}
	if box.Defeated {
		drawDefeatCross(canvas, box)
	}
	for i, acp := range box.ACPs {
		canvas.Circle(box.X+12+i*(2*acpRadius+4), box.Y+box.H, acpRadius,
			attr("class", "gsnacp acp_"+sanitizeClass(acp)))
	}

	drawLabel(canvas, f, box)

	if box.URL != "" {
		canvas.LinkEnd()
	}
	canvas.Gend()
}

// drawShape emits the type-specific outline.
func drawShape(canvas *svg.SVG, box *layout.NodeBox) {
	x, y, w, h := box.X, box.Y, box.W, box.H
	switch box.Type {
	case model.TypeStrategy:
		skew := h / 4
		canvas.Polygon(
			[]int{x + skew, x + w, x + w - skew, x},
			[]int{y, y, y + h, y + h})
	case model.TypeSolution, model.TypeCounterSolution:
		canvas.Circle(x+w/2, y+h/2, w/2)
	case model.TypeAssumption, model.TypeJustification:
		canvas.Ellipse(x+w/2, y+h/2, w/2, h/2)
	case model.TypeContext:
		canvas.Roundrect(x, y, w, h, 12, 12)
	case model.TypeModule:
		canvas.Rect(x, y+moduleTab, w, h-moduleTab)
		canvas.Rect(x, y, w/3, moduleTab)
	default:
		canvas.Rect(x, y, w, h)
	}
	if box.Away {
		canvas.Rect(x, y+box.H, box.W, awayTabHeight, attr("class", "gsn_away_tab"))
		canvas.Text(x+box.W/2, y+box.H+awayTabHeight-4, box.Module,
			attr("text-anchor", "middle"), attr("class", "gsn_away_label"))
	}
}

// drawUndevelopedDiamond emits the hollow diamond below the shape.
func drawUndevelopedDiamond(canvas *svg.SVG, box *layout.NodeBox) {
	cx, by := box.CenterX(), box.Y+box.H
	const r = 8
	canvas.Polygon(
		[]int{cx, cx + r, cx, cx - r},
		[]int{by, by + r, by + 2*r, by + r},
		attr("class", "gsn_undeveloped"))
}

// drawDefeatCross strikes the element through corner to corner.
func drawDefeatCross(canvas *svg.SVG, box *layout.NodeBox) {
	canvas.Line(box.X, box.Y, box.X+box.W, box.Y+box.H, attr("class", "gsn_defeat_mark"))
	canvas.Line(box.X+box.W, box.Y, box.X, box.Y+box.H, attr("class", "gsn_defeat_mark"))
}

// drawLabel renders the identifier, layer lines, and wrapped body text.
// Lines center unless the body contains bullets, which read better
// left-aligned.
func drawLabel(canvas *svg.SVG, f *text.Font, box *layout.NodeBox) {
	lh := f.LineHeight()
	y := box.Y + labelTop(box) + lh

	hasBullets := false
	for _, l := range box.Lines {
		if l.Bullet || l.Indent {
			hasBullets = true
			break
		}
	}

	canvas.Text(box.CenterX(), y, box.ID, attr("text-anchor", "middle"), attr("class", "bold"))
	y += lh

	for _, ll := range box.LayerLines {
		for _, line := range ll.Lines {
			drawLine(canvas, box, line, y, false)
			y += lh
		}
	}
	for _, line := range box.Lines {
		drawLine(canvas, box, line, y, hasBullets)
		y += lh
	}
}

// labelTop returns the vertical offset reserving space for the text
// block inside taller-than-text shapes.
func labelTop(box *layout.NodeBox) int {
	top := textPadTop
	switch box.Type {
	case model.TypeSolution, model.TypeCounterSolution,
		model.TypeAssumption, model.TypeJustification:
		top += box.H / 6
	case model.TypeModule:
		top += moduleTab
	}
	return top
}

// drawLine emits one display line with its emphasis and hyperlink spans.
func drawLine(canvas *svg.SVG, box *layout.NodeBox, line text.Line, y int, leftAlign bool) {
	var open []string
	x := box.CenterX()
	anchor := "middle"
	if leftAlign {
		x = box.X + 14
		anchor = "start"
	}
	prefix := ""
	if line.Bullet {
		prefix = "• "
	} else if line.Indent {
		prefix = "  "
	}
	canvas.Textspan(x, y, prefix, attr("text-anchor", anchor))
	for _, sp := range line.Spans {
		open = open[:0]
		if sp.Bold {
			open = append(open, "bold")
		}
		if sp.Italic {
			open = append(open, "italic")
		}
		if sp.Href != "" {
			canvas.Link(sp.Href, "")
			canvas.Span(sp.Text, attr("class", "gsnlink"))
			canvas.LinkEnd()
			continue
		}
		if len(open) > 0 {
			canvas.Span(sp.Text, attr("class", joinClasses(open)))
		} else {
			canvas.Span(sp.Text)
		}
	}
	canvas.TextEnd()
}

func joinClasses(cs []string) string {
	out := ""
	for i, c := range cs {
		if i > 0 {
			out += " "
		}
		out += c
	}
	return out
}

// drawEdge emits one routed edge path with its arrow marker, plus the
// defeat glyph at the midpoint for defeated edges.
func drawEdge(canvas *svg.SVG, e *layout.Edge) {
	if len(e.Points) < 2 {
		return
	}
	d := fmt.Sprintf("M %d,%d", e.Points[0].X, e.Points[0].Y)
	for _, p := range e.Points[1:] {
		d += fmt.Sprintf(" L %d,%d", p.X, p.Y)
	}
	canvas.Path(d,
		attr("class", edgeClasses(e)),
		attr("marker-end", "url(#"+markerID(e.Kind)+")"))

	if e.Defeated {
		mid := e.Points[len(e.Points)/2]
		prev := e.Points[len(e.Points)/2-1]
		mx, my := (mid.X+prev.X)/2, (mid.Y+prev.Y)/2
		canvas.Text(mx, my+4, "×",
			attr("text-anchor", "middle"), attr("class", "gsn_defeat_mark bold"))
	}
}

// markerID names the arrowhead def for an edge kind.
func markerID(k layout.EdgeKind) string {
	switch k {
	case layout.EdgeInContextOf:
		return "gsnarrow_open"
	case layout.EdgeChallenges:
		return "gsnarrow_challenge"
	case layout.EdgeComposite:
		return "gsnarrow_composite"
	default:
		return "gsnarrow_filled"
	}
}

// defineMarkers emits the arrowhead defs once per document.
func defineMarkers(canvas *svg.SVG) {
	canvas.Def()
	marker := func(id string, s ...string) {
		canvas.Marker(id, 10, 5, 12, 12, attr("orient", "auto"), attr("markerUnits", "userSpaceOnUse"))
		canvas.Path("M 0,0 L 10,5 L 0,10 z", s...)
		canvas.MarkerEnd()
	}
	marker("gsnarrow_filled", attr("fill", "#000"))
	marker("gsnarrow_open", attr("fill", "#fff"), attr("stroke", "#000"))
	marker("gsnarrow_challenge", attr("fill", "#000"), attr("stroke", "#000"), attr("transform", "scale(0.9)"))
	// Composite: filled upper half, open lower half.
	canvas.Marker("gsnarrow_composite", 10, 5, 12, 12, attr("orient", "auto"), attr("markerUnits", "userSpaceOnUse"))
	canvas.Path("M 0,0 L 10,5 L 0,5 z", attr("fill", "#000"))
	canvas.Path("M 0,5 L 10,5 L 0,10 z", attr("fill", "#fff"), attr("stroke", "#000"))
	canvas.MarkerEnd()
	canvas.DefEnd()
}
