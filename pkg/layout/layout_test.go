package layout

import (
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/dshills/gsnviz/pkg/model"
	"github.com/dshills/gsnviz/pkg/text"
)

func testOptions() Options {
	return Options{Font: text.Load(nil)}
}

func buildModel(t *testing.T, sources map[string]string) *model.Model {
	t.Helper()
	var names []string
	for name := range sources {
		names = append(names, name)
	}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if names[j] < names[i] {
				names[i], names[j] = names[j], names[i]
			}
		}
	}
	var mods []*model.Module
	for _, name := range names {
		mod, err := model.ParseModule(name, []byte(sources[name]))
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		mods = append(mods, mod)
	}
	m := model.New(mods)
	m.ResolveTypes()
	return m
}

func singleModule(t *testing.T, src string) *model.Model {
	t.Helper()
	return buildModel(t, map[string]string{"main.yaml": src})
}

func TestArgument_Minimal(t *testing.T) {
	m := singleModule(t, `
module:
  name: main
G1:
  text: ok
  supportedBy: [Sn1]
Sn1:
  text: ev
`)
	d := Argument(m, "main", testOptions())

	if len(d.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(d.Nodes))
	}
	if len(d.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(d.Edges))
	}
	e := d.Edges[0]
	if e.From != "G1" || e.To != "Sn1" || e.Kind != EdgeSupportedBy {
		t.Errorf("unexpected edge %+v", e)
	}
	g1, sn1 := d.Nodes["G1"], d.Nodes["Sn1"]
	if g1.Y >= sn1.Y {
		t.Errorf("child not below parent: G1.Y=%d Sn1.Y=%d", g1.Y, sn1.Y)
	}
	// Solution renders as a circle: width equals height.
	if sn1.W != sn1.H {
		t.Errorf("solution box not square: %dx%d", sn1.W, sn1.H)
	}
	if d.Width <= 0 || d.Height <= 0 {
		t.Error("empty bounding box")
	}
	if !d.FallbackFont {
		t.Error("fallback measurement path not recorded")
	}
}

func TestHorizontalIndex_RelativeShift(t *testing.T) {
	m := singleModule(t, `
module:
  name: main
G1:
  text: first
  supportedBy: [Sn1]
G2:
  text: second
  horizontalIndex: {relative: -1}
  supportedBy: [Sn1]
Sn1:
  text: shared
`)
	d := Argument(m, "main", testOptions())
	if d.Nodes["G2"].X >= d.Nodes["G1"].X {
		t.Errorf("relative hint ignored: G2.X=%d G1.X=%d", d.Nodes["G2"].X, d.Nodes["G1"].X)
	}
}

func TestHorizontalIndex_AbsoluteLastTieBreak(t *testing.T) {
	m := singleModule(t, `
module:
  name: main
G1:
  text: a
  horizontalIndex: {absolute: last}
  supportedBy: [Sn1]
G2:
  text: b
  horizontalIndex: {absolute: last}
  supportedBy: [Sn1]
G3:
  text: c
  supportedBy: [Sn1]
Sn1:
  text: ev
`)
	d := Argument(m, "main", testOptions())
	// Lexicographic tie-break: the greatest identifier takes the final
	// slot, so the order is G3, G1, G2.
	if !(d.Nodes["G3"].X < d.Nodes["G1"].X && d.Nodes["G1"].X < d.Nodes["G2"].X) {
		t.Errorf("absolute-last tie-break wrong: G3.X=%d G1.X=%d G2.X=%d",
			d.Nodes["G3"].X, d.Nodes["G1"].X, d.Nodes["G2"].X)
	}
}

func TestRankIncrement_WidensVerticalGap(t *testing.T) {
	base := singleModule(t, `
module:
  name: main
G1:
  text: top
  supportedBy: [Sn1]
Sn1:
  text: ev
`)
	bumped := singleModule(t, `
module:
  name: main
G1:
  text: top
  supportedBy: [Sn1]
Sn1:
  text: ev
  rankIncrement: 2
`)
	d1 := Argument(base, "main", testOptions())
	d2 := Argument(bumped, "main", testOptions())
	if d2.Nodes["Sn1"].Y <= d1.Nodes["Sn1"].Y {
		t.Errorf("rankIncrement did not push node down: %d vs %d",
			d2.Nodes["Sn1"].Y, d1.Nodes["Sn1"].Y)
	}
}

func TestInContext_SameRankAndSides(t *testing.T) {
	m := singleModule(t, `
module:
  name: main
G1:
  text: claim
  supportedBy: [Sn1]
  inContextOf: [C1, A1]
C1:
  text: context
A1:
  text: assumption
Sn1:
  text: ev
`)
	d := Argument(m, "main", testOptions())
	g1, c1, a1 := d.Nodes["G1"], d.Nodes["C1"], d.Nodes["A1"]
	// Row centering may differ by one unit from integer division.
	if abs(c1.CenterY()-g1.CenterY()) > 1 || abs(a1.CenterY()-g1.CenterY()) > 1 {
		t.Errorf("context nodes not co-ranked: G1=%d C1=%d A1=%d",
			g1.CenterY(), c1.CenterY(), a1.CenterY())
	}
	if !(a1.X < g1.X) {
		t.Errorf("assumption not left of referrer: A1.X=%d G1.X=%d", a1.X, g1.X)
	}
	if !(c1.X > g1.X) {
		t.Errorf("context not right of referrer: C1.X=%d G1.X=%d", c1.X, g1.X)
	}
	// The in-context edge carries the open-arrow kind.
	for _, e := range d.Edges {
		if e.To == "C1" && e.Kind != EdgeInContextOf {
			t.Errorf("context edge kind = %v", e.Kind)
		}
	}
}

func TestCompositeEdgeMerge(t *testing.T) {
	m := singleModule(t, `
module:
  name: main
G1:
  text: claim
  supportedBy: [G2]
  inContextOf: [G2]
G2:
  text: both ways
`)
	d := Complete(m, nil, testOptions())
	if len(d.Edges) != 1 {
		t.Fatalf("expected 1 merged edge, got %d", len(d.Edges))
	}
	if d.Edges[0].Kind != EdgeComposite {
		t.Errorf("edge kind = %v, want composite", d.Edges[0].Kind)
	}
}

func TestArgument_AwayElements(t *testing.T) {
	m := buildModel(t, map[string]string{
		"a.yaml": `
module:
  name: a
G1:
  text: local claim
  supportedBy: [G2]
`,
		"b.yaml": `
module:
  name: b
G2:
  text: foreign claim
  supportedBy: [Sn1]
Sn1:
  text: ev
`,
	})
	d := Argument(m, "a", testOptions())
	away, ok := d.Nodes["G2"]
	if !ok {
		t.Fatal("referenced foreign element missing from argument view")
	}
	if !away.Away {
		t.Error("foreign element not marked away")
	}
	if _, ok := d.Nodes["Sn1"]; ok {
		t.Error("unreferenced foreign element leaked into argument view")
	}
}

func TestComplete_MaskedModule(t *testing.T) {
	m := buildModel(t, map[string]string{
		"t.yaml": "module:\n  name: template\nG1:\n  text: open\n  undeveloped: true\n",
		"u.yaml": `
module:
  name: instance
  extends:
    - module: template
      develops:
        G1: [G2]
G2:
  text: dev
  supportedBy: [Sn1]
Sn1:
  text: ev
`,
	})
	d := Complete(m, []string{"template"}, testOptions())
	box, ok := d.Nodes["template"]
	if !ok {
		t.Fatal("masked module box missing")
	}
	if !box.Masked || box.Type != model.TypeModule {
		t.Errorf("masked box wrong: %+v", box)
	}
	if _, ok := d.Nodes["G1"]; ok {
		t.Error("masked module node still present")
	}
	// The develops-injected edge redirects to the module box.
	found := false
	for _, e := range d.Edges {
		if e.From == "template" && e.To == "G2" {
			found = true
		}
	}
	if !found {
		t.Errorf("redirected edge missing, edges: %+v", d.Edges)
	}
}

func TestComplete_ExtendsEdge(t *testing.T) {
	m := buildModel(t, map[string]string{
		"t.yaml": "module:\n  name: template\nG1:\n  text: open\n  undeveloped: true\n",
		"u.yaml": `
module:
  name: instance
  extends:
    - module: template
      develops:
        G1: [G2]
G2:
  text: dev
  supportedBy: [Sn1]
Sn1:
  text: ev
`,
	})
	d := Complete(m, nil, testOptions())
	found := false
	for _, e := range d.Edges {
		if e.From == "G1" && e.To == "G2" && e.Kind == EdgeSupportedBy {
			found = true
		}
	}
	if !found {
		t.Errorf("develops edge G1 -> G2 missing: %+v", d.Edges)
	}
	if d.Nodes["G1"].Undeveloped {
		t.Error("developed element still drawn undeveloped")
	}
}

func TestArchitecture_View(t *testing.T) {
	m := buildModel(t, map[string]string{
		"t.yaml": "module:\n  name: template\nG1:\n  text: open\n  undeveloped: true\n",
		"u.yaml": `
module:
  name: instance
  extends:
    - module: template
      develops:
        G1: [G2]
G2:
  text: dev
  supportedBy: [Sn1]
Sn1:
  text: ev
`,
	})
	d := Architecture(m, testOptions())
	if len(d.Nodes) != 2 {
		t.Fatalf("expected 2 module nodes, got %d", len(d.Nodes))
	}
	for _, id := range []string{"template", "instance"} {
		if box, ok := d.Nodes[id]; !ok || box.Type != model.TypeModule {
			t.Errorf("module node %s missing or mistyped", id)
		}
	}
	if len(d.Edges) != 1 || d.Edges[0].From != "instance" || d.Edges[0].To != "template" {
		t.Errorf("architecture edges wrong: %+v", d.Edges)
	}
	if d.Nodes["instance"].Y >= d.Nodes["template"].Y {
		t.Errorf("referencing module not above referenced: %d vs %d",
			d.Nodes["instance"].Y, d.Nodes["template"].Y)
	}
}

func TestEntangled_ConvergesOrWarns(t *testing.T) {
	m := singleModule(t, `
module:
  name: main
G1:
  text: one
  supportedBy: [Sn1, Sn2]
G2:
  text: two
  supportedBy: [Sn1, Sn2]
Sn1:
  text: e1
Sn2:
  text: e2
`)
	d := Argument(m, "main", testOptions())
	if len(d.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(d.Nodes))
	}
	if len(d.Edges) != 4 {
		t.Fatalf("expected 4 edges, got %d", len(d.Edges))
	}
	for _, w := range d.Warnings {
		if !strings.Contains(w, "horizontalIndex") {
			t.Errorf("unexpected warning: %s", w)
		}
	}
	// Every node still has a position inside the bounding box.
	for id, box := range d.Nodes {
		if box.X < 0 || box.Y < 0 || box.X+box.W > d.Width || box.Y+box.H > d.Height {
			t.Errorf("node %s outside bounds: %+v", id, box)
		}
	}
}

// Property: for every primary edge the child is placed strictly below its
// parent, whatever rankIncrement values are drawn.
func TestRankInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 25).Draw(t, "nodes")
		var b strings.Builder
		b.WriteString("module:\n  name: main\n")
		type link struct{ parent, child int }
		var links []link
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "G%03d:\n  text: node %d\n", i, i)
			inc := rapid.IntRange(0, 2).Draw(t, fmt.Sprintf("inc_%d", i))
			if inc > 0 {
				fmt.Fprintf(&b, "  rankIncrement: %d\n", inc)
			}
			if i > 0 {
				parent := rapid.IntRange(0, i-1).Draw(t, fmt.Sprintf("parent_%d", i))
				links = append(links, link{parent, i})
			}
		}
		src := b.String()
		mod, err := model.ParseModule("main.yaml", []byte(src))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		for _, l := range links {
			pid := fmt.Sprintf("G%03d", l.parent)
			mod.Nodes[pid].SupportedBy = append(mod.Nodes[pid].SupportedBy, fmt.Sprintf("G%03d", l.child))
		}
		m := model.New([]*model.Module{mod})
		m.ResolveTypes()

		d := Argument(m, "main", Options{Font: text.Load(nil)})
		for _, l := range links {
			parent := d.Nodes[fmt.Sprintf("G%03d", l.parent)]
			child := d.Nodes[fmt.Sprintf("G%03d", l.child)]
			if child.Y <= parent.Y {
				t.Fatalf("G%03d (Y=%d) not strictly below parent G%03d (Y=%d)",
					l.child, child.Y, l.parent, parent.Y)
			}
		}
	})
}

// Property: layout is deterministic, twice over the same model.
func TestLayout_Deterministic(t *testing.T) {
	src := `
module:
  name: main
G1:
  text: top claim
  supportedBy: [S1, G2]
  inContextOf: [C1]
S1:
  text: strategy
  supportedBy: [Sn1, Sn2]
G2:
  text: side claim
  supportedBy: [Sn2]
C1:
  text: scope
Sn1:
  text: e1
Sn2:
  text: e2
`
	d1 := Argument(singleModule(t, src), "main", testOptions())
	d2 := Argument(singleModule(t, src), "main", testOptions())

	if len(d1.Nodes) != len(d2.Nodes) || len(d1.Edges) != len(d2.Edges) {
		t.Fatal("layouts differ in size")
	}
	for id, a := range d1.Nodes {
		b := d2.Nodes[id]
		if a.X != b.X || a.Y != b.Y || a.W != b.W || a.H != b.H {
			t.Errorf("node %s moved between runs: %+v vs %+v", id, a, b)
		}
	}
	for i := range d1.Edges {
		a, b := d1.Edges[i], d2.Edges[i]
		if a.From != b.From || a.To != b.To || len(a.Points) != len(b.Points) {
			t.Errorf("edge %d differs between runs", i)
			continue
		}
		for j := range a.Points {
			if a.Points[j] != b.Points[j] {
				t.Errorf("edge %d point %d differs: %v vs %v", i, j, a.Points[j], b.Points[j])
			}
		}
	}
}

func TestEdgeRouting_PolylineEndpoints(t *testing.T) {
	m := singleModule(t, `
module:
  name: main
G1:
  text: claim
  supportedBy: [Sn1]
Sn1:
  text: ev
`)
	d := Argument(m, "main", testOptions())
	e := d.Edges[0]
	if len(e.Points) < 2 {
		t.Fatalf("edge has %d points", len(e.Points))
	}
	start, end := e.Points[0], e.Points[len(e.Points)-1]
	g1, sn1 := d.Nodes["G1"], d.Nodes["Sn1"]
	if !g1.contains(start.X, start.Y, 1) {
		t.Errorf("edge start %v not on source box", start)
	}
	if !sn1.contains(end.X, end.Y, 1) {
		t.Errorf("edge end %v not on target box", end)
	}
}
