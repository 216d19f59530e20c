package layout

import (
	"sort"
	"strings"

	"github.com/dshills/gsnviz/pkg/model"
	"github.com/dshills/gsnviz/pkg/text"
)

// Options configures a layout run.
type Options struct {
	// Layers lists the enabled additional layers, in display order.
	Layers []string

	// CharWrap is the global wrap width; module and node settings win.
	CharWrap int

	// Font sizes the labels. Nil selects the process default.
	Font *text.Font
}

func (o Options) font() *text.Font {
	if o.Font != nil {
		return o.Font
	}
	return text.Default()
}

// rawEdge is an unrouted relation between two included nodes.
type rawEdge struct {
	from, to string
	kind     EdgeKind
	defeated bool
}

// Argument lays out the per-module argument view: the module's own
// elements plus away references to elements of other modules.
func Argument(m *model.Model, moduleName string, opts Options) *Diagram {
	mod := m.Modules[moduleName]
	d := &Diagram{
		Name:   moduleName,
		Module: moduleName,
		Brief:  mod.Brief,
		Nodes:  make(map[string]*NodeBox),
	}

	include := make(map[string]bool, len(mod.NodeOrder))
	for _, id := range mod.NodeOrder {
		include[id] = true
	}
	for _, id := range mod.NodeOrder {
		d.Nodes[id] = newNodeBox(m, m.Node(id), mod, opts)
	}

	// Foreign targets become away elements.
	var edges []rawEdge
	for _, id := range mod.NodeOrder {
		for _, e := range nodeEdges(m, id) {
			target := m.Node(e.to)
			if target == nil {
				continue
			}
			if !include[e.to] {
				if _, ok := d.Nodes[e.to]; !ok {
					box := newNodeBox(m, target, m.Modules[target.Module], opts)
					box.Away = true
					d.Nodes[e.to] = box
				}
			}
			edges = append(edges, e)
		}
	}

	finish(d, edges, opts)
	return d
}

// Complete lays out the unrolled view over all modules. Modules named in
// masked collapse to one stacked-box node each; edges into and out of a
// masked module are redirected to its box and deduplicated.
func Complete(m *model.Model, masked []string, opts Options) *Diagram {
	d := &Diagram{
		Name:  "complete",
		Nodes: make(map[string]*NodeBox),
	}
	maskedSet := make(map[string]bool, len(masked))
	for _, name := range masked {
		maskedSet[name] = true
	}

	// alias maps every node to its representative in the view.
	alias := make(map[string]string)
	for _, name := range m.ModuleOrder {
		mod := m.Modules[name]
		if maskedSet[name] {
			box := moduleBox(mod, opts)
			box.Masked = true
			d.Nodes[box.ID] = box
			for _, id := range mod.NodeOrder {
				alias[id] = box.ID
			}
			continue
		}
		for _, id := range mod.NodeOrder {
			alias[id] = id
			d.Nodes[id] = newNodeBox(m, m.Node(id), mod, opts)
		}
	}

	var edges []rawEdge
	seen := make(map[rawEdge]bool)
	for _, id := range m.NodeIDs() {
		for _, e := range nodeEdges(m, id) {
			if m.Node(e.to) == nil {
				continue
			}
			e.from, e.to = alias[e.from], alias[e.to]
			if e.from == e.to {
				continue
			}
			key := rawEdge{from: e.from, to: e.to, kind: e.kind}
			if seen[key] {
				continue
			}
			seen[key] = true
			edges = append(edges, e)
		}
	}

	finish(d, edges, opts)
	return d
}

// Architecture lays out the module-dependency view: one stacked box per
// module, one edge per inter-module reference.
func Architecture(m *model.Model, opts Options) *Diagram {
	d := &Diagram{
		Name:  "architecture",
		Nodes: make(map[string]*NodeBox),
	}
	for _, name := range m.ModuleOrder {
		d.Nodes[name] = moduleBox(m.Modules[name], opts)
	}
	var edges []rawEdge
	refs := m.ModuleReferences()
	for _, from := range m.ModuleOrder {
		for _, to := range refs[from] {
			edges = append(edges, rawEdge{from: from, to: to, kind: EdgeSupportedBy})
		}
	}
	finish(d, edges, opts)
	return d
}

// nodeEdges enumerates one node's outgoing relations as raw edges, in
// relation order. Defeat propagates from the source element.
func nodeEdges(m *model.Model, id string) []rawEdge {
	node := m.Node(id)
	var out []rawEdge
	for _, t := range m.SupportedBy(id) {
		out = append(out, rawEdge{from: id, to: t, kind: EdgeSupportedBy, defeated: node.Defeated})
	}
	for _, t := range node.InContextOf {
		out = append(out, rawEdge{from: id, to: t, kind: EdgeInContextOf, defeated: node.Defeated})
	}
	for _, t := range node.Challenges {
		out = append(out, rawEdge{from: id, to: t, kind: EdgeChallenges, defeated: node.Defeated})
	}
	return out
}

// finish runs the shared pipeline: composite merge, rank, order, place,
// route, bounds.
func finish(d *Diagram, edges []rawEdge, opts Options) {
	d.FallbackFont = opts.font().Fallback()
	edges = mergeComposite(edges)
	ranks := assignRanks(d, edges)
	order := orderRanks(d, edges, ranks)
	place(d, edges, order, opts)
	route(d, edges, order)
}

// mergeComposite folds a supportedBy and an inContextOf between the same
// ordered pair into one composite edge. Result order is deterministic.
func mergeComposite(edges []rawEdge) []rawEdge {
	type pair struct{ from, to string }
	kinds := make(map[pair]map[EdgeKind]bool)
	defeated := make(map[pair]bool)
	for _, e := range edges {
		p := pair{e.from, e.to}
		if kinds[p] == nil {
			kinds[p] = make(map[EdgeKind]bool)
		}
		kinds[p][e.kind] = true
		defeated[p] = defeated[p] || e.defeated
	}
	var out []rawEdge
	seen := make(map[pair]bool)
	for _, e := range edges {
		p := pair{e.from, e.to}
		if seen[p] {
			continue
		}
		seen[p] = true
		k := e.kind
		if kinds[p][EdgeSupportedBy] && kinds[p][EdgeInContextOf] {
			k = EdgeComposite
		}
		out = append(out, rawEdge{from: e.from, to: e.to, kind: k, defeated: defeated[p]})
	}
	return out
}

// newNodeBox sizes one GSN element. The wrap width resolves node, then
// module, then global setting.
func newNodeBox(m *model.Model, node *model.Node, mod *model.Module, opts Options) *NodeBox {
	wrap := node.CharWrap
	if wrap == 0 && mod != nil {
		wrap = mod.CharWrap
	}
	if wrap == 0 {
		wrap = opts.CharWrap
	}
	f := opts.font()

	lines, ext := text.Measure(f, node.Text, wrap)
	box := &NodeBox{
		ID:            node.ID,
		Type:          node.Type,
		Module:        node.Module,
		Lines:         lines,
		Undeveloped:   m.IsUndeveloped(node.ID),
		Defeated:      node.Defeated,
		URL:           node.URL,
		Classes:       append([]string{}, node.Classes...),
		horizontal:    node.HorizontalIndex,
		rankIncrement: node.RankIncrement,
	}
	for _, name := range sortedACPs(node) {
		box.ACPs = append(box.ACPs, name)
	}

	height := ext.Height
	width := ext.Width
	for _, layer := range opts.Layers {
		val, ok := node.Layers[layer]
		if !ok {
			continue
		}
		ll, lext := text.Measure(f, strings.ToUpper(layer)+": "+val, wrap)
		box.LayerLines = append(box.LayerLines, LayerLine{Layer: layer, Lines: ll})
		height += lext.Height
		if lext.Width > width {
			width = lext.Width
		}
	}
	// The identifier heads the label.
	height += f.LineHeight()
	if idw := f.StringWidth(node.ID); idw > width {
		width = idw
	}

	box.W, box.H = padShape(node.Type, width, height)
	return box
}

// moduleBox sizes a stacked-box node for a module.
func moduleBox(mod *model.Module, opts Options) *NodeBox {
	f := opts.font()
	wrap := mod.CharWrap
	if wrap == 0 {
		wrap = opts.CharWrap
	}
	lines, ext := text.Measure(f, mod.Brief, wrap)
	width := ext.Width
	if idw := f.StringWidth(mod.Name); idw > width {
		width = idw
	}
	w, h := padShape(model.TypeModule, width, ext.Height+f.LineHeight())
	return &NodeBox{
		ID:            mod.Name,
		Type:          model.TypeModule,
		Module:        mod.Name,
		Lines:         lines,
		W:             w,
		H:             h,
		horizontal:    mod.HorizontalIndex,
		rankIncrement: mod.RankIncrement,
	}
}

// padShape adds shape-specific padding around the measured text extent
// and enforces minimum dimensions.
func padShape(t model.NodeType, w, h int) (int, int) {
	switch t {
	case model.TypeStrategy:
		// Parallelogram skew needs horizontal headroom.
		w += h/2 + 20
		h += 16
	case model.TypeSolution, model.TypeCounterSolution:
		// Circle: diameter from the larger extent.
		d := w
		if h > d {
			d = h
		}
		d += 24
		if d < 60 {
			d = 60
		}
		w, h = d, d
	case model.TypeAssumption, model.TypeJustification:
		// Oval: inscribe the text box.
		w = w*10/7 + 8
		h = h*10/7 + 4
	case model.TypeContext:
		w += 28
		h += 14
	case model.TypeModule:
		w += 24
		h += 14 + moduleTabHeight
	default:
		w += 20
		h += 14
	}
	if w < 60 {
		w = 60
	}
	if h < 32 {
		h = 32
	}
	return w, h
}

// moduleTabHeight is the stacked-box tab above module nodes.
const moduleTabHeight = 10

func sortedACPs(node *model.Node) []string {
	names := make([]string, 0, len(node.ACP))
	for name := range node.ACP {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
