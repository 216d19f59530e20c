package layout

import (
	"sort"

	"github.com/dshills/gsnviz/pkg/model"
	"github.com/dshills/gsnviz/pkg/text"
)

// Point is one SVG control point in user units.
type Point struct {
	X, Y int
}

// LayerLine is an additional-layer line displayed above the element text.
type LayerLine struct {
	Layer string
	Lines []text.Line
}

// NodeBox is one positioned node of a diagram.
type NodeBox struct {
	ID     string
	Type   model.NodeType
	Module string

	X, Y, W, H int

	// Lines is the wrapped element text; LayerLines precede it when
	// additional layers are enabled.
	Lines      []text.Line
	LayerLines []LayerLine

	Undeveloped bool
	Defeated    bool

	// Away marks a reference to an element defined in another module
	// (argument view); Masked marks a collapsed module box (complete
	// view).
	Away   bool
	Masked bool

	URL     string
	Classes []string
	ACPs    []string

	horizontal    *model.HorizontalIndex
	rankIncrement int
}

// CenterX returns the horizontal center of the box.
func (b *NodeBox) CenterX() int { return b.X + b.W/2 }

// CenterY returns the vertical center of the box.
func (b *NodeBox) CenterY() int { return b.Y + b.H/2 }

// contains reports whether the point lies inside the box inflated by pad.
func (b *NodeBox) contains(x, y, pad int) bool {
	return x >= b.X-pad && x <= b.X+b.W+pad && y >= b.Y-pad && y <= b.Y+b.H+pad
}

// EdgeKind classifies an edge for arrowhead and CSS class selection.
type EdgeKind int

const (
	// EdgeSupportedBy gets a filled arrowhead.
	EdgeSupportedBy EdgeKind = iota

	// EdgeInContextOf gets an open arrowhead.
	EdgeInContextOf

	// EdgeChallenges gets the dialectic arrowhead.
	EdgeChallenges

	// EdgeComposite merges a supportedBy and an inContextOf between the
	// same ordered pair.
	EdgeComposite
)

// Class returns the CSS class for the edge kind.
func (k EdgeKind) Class() string {
	switch k {
	case EdgeInContextOf:
		return "gsninctxt"
	case EdgeChallenges:
		return "gsnchallenge"
	case EdgeComposite:
		return "gsncomposite"
	default:
		return "gsnspby"
	}
}

// Edge is one routed relation.
type Edge struct {
	From, To string
	Kind     EdgeKind
	Defeated bool

	// Points is the routed polyline, source end first.
	Points []Point
}

// Diagram is a fully positioned view ready for SVG emission.
type Diagram struct {
	// Name identifies the view; Module and Brief feed the legend.
	Name   string
	Module string
	Brief  string

	Nodes map[string]*NodeBox
	Edges []*Edge

	Width, Height int

	// Warnings carries layout diagnostics, e.g. the relaxation cap
	// notice. They never fail the run.
	Warnings []string

	// FallbackFont pins which measurement path sized the nodes.
	FallbackFont bool
}

// NodeIDs returns the diagram's node identifiers, sorted.
func (d *Diagram) NodeIDs() []string {
	ids := make([]string, 0, len(d.Nodes))
	for id := range d.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
