package render

import (
	"fmt"
	"strings"

	"github.com/dshills/gsnviz/pkg/layout"
	"github.com/dshills/gsnviz/pkg/model"
)

// baseCSS is the built-in stylesheet embedded in every document. User
// stylesheets layer on top of it.
const baseCSS = `svg { font-family: sans-serif; font-size: 12px; }
.gsnelem { fill: none; stroke: #000; stroke-width: 1; }
.gsnelem text { fill: #000; stroke: none; }
.gsnedge { fill: none; stroke: #000; stroke-width: 1; }
.gsn_undeveloped { fill: none; stroke: #000; }
.gsn_defeated { stroke-dasharray: 5 3; }
.gsn_masked { fill: #f0f0f0; }
.gsn_away_tab { fill: #e8e8e8; stroke: #000; }
.bold { font-weight: bold; }
.italic { font-style: italic; }
.gsnlegend text { font-size: 10px; fill: #444; }
.gsnacp { fill: #000; }
`

// nodeClass maps a node type to its CSS class.
func nodeClass(t model.NodeType) string {
	switch t {
	case model.TypeGoal:
		return "gsngoal"
	case model.TypeStrategy:
		return "gsnstgy"
	case model.TypeSolution:
		return "gsnsltn"
	case model.TypeContext:
		return "gsnctxt"
	case model.TypeAssumption:
		return "gsnasmp"
	case model.TypeJustification:
		return "gsnjust"
	case model.TypeCounterGoal:
		return "gsnctg"
	case model.TypeCounterSolution:
		return "gsnctsn"
	case model.TypeModule:
		return "gsnmodule"
	default:
		return "gsnunknown"
	}
}

// sanitizeClass rewrites a free-form name into a safe CSS class suffix.
func sanitizeClass(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// nodeClasses assembles the full class list for a node box.
func nodeClasses(box *layout.NodeBox) string {
	classes := []string{"gsnelem", nodeClass(box.Type)}
	if box.Module != "" {
		classes = append(classes, "gsn_module_"+sanitizeClass(box.Module))
	}
	if box.Undeveloped {
		classes = append(classes, "gsn_undeveloped")
	}
	if box.Defeated {
		classes = append(classes, "gsn_defeated")
	}
	if box.Away {
		classes = append(classes, "gsn_away")
	}
	if box.Masked {
		classes = append(classes, "gsn_masked")
	}
	for _, ll := range box.LayerLines {
		classes = append(classes, "gsnlay_"+sanitizeClass(ll.Layer))
	}
	for _, acp := range box.ACPs {
		classes = append(classes, "acp_"+sanitizeClass(acp))
	}
	classes = append(classes, box.Classes...)
	return strings.Join(classes, " ")
}

// edgeClasses assembles the class list for an edge.
func edgeClasses(e *layout.Edge) string {
	classes := []string{"gsnedge", e.Kind.Class()}
	if e.Defeated {
		classes = append(classes, "gsn_defeated")
	}
	return strings.Join(classes, " ")
}

// attr renders one raw attribute for svgo's passthrough strings.
func attr(name, value string) string {
	return fmt.Sprintf(`%s=%q`, name, value)
}
