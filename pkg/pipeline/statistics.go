package pipeline

import (
	"bytes"
	"fmt"

	"github.com/dshills/gsnviz/pkg/model"
)

// statTypes fixes the element-type rows and their order, so the emitted
// keys are stable.
var statTypes = []model.NodeType{
	model.TypeGoal,
	model.TypeStrategy,
	model.TypeSolution,
	model.TypeContext,
	model.TypeAssumption,
	model.TypeJustification,
	model.TypeCounterGoal,
	model.TypeCounterSolution,
}

// StatisticsMarkdown renders per-module element counts plus totals.
func StatisticsMarkdown(m *model.Model) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Statistics\n")

	totals := make(map[model.NodeType]int)
	totalNodes := 0
	for _, name := range m.ModuleOrder {
		mod := m.Modules[name]
		counts := make(map[model.NodeType]int)
		for _, id := range mod.NodeOrder {
			counts[mod.Nodes[id].Type]++
			totals[mod.Nodes[id].Type]++
		}
		totalNodes += len(mod.NodeOrder)

		fmt.Fprintf(&buf, "\n## Module %s\n\n", name)
		if mod.Brief != "" {
			fmt.Fprintf(&buf, "%s\n\n", mod.Brief)
		}
		buf.WriteString("| Element type | Count |\n|---|---|\n")
		for _, t := range statTypes {
			fmt.Fprintf(&buf, "| %s | %d |\n", t, counts[t])
		}
		fmt.Fprintf(&buf, "| Total | %d |\n", len(mod.NodeOrder))
	}

	fmt.Fprintf(&buf, "\n## All modules\n\n")
	fmt.Fprintf(&buf, "| Element type | Count |\n|---|---|\n")
	for _, t := range statTypes {
		fmt.Fprintf(&buf, "| %s | %d |\n", t, totals[t])
	}
	fmt.Fprintf(&buf, "| Modules | %d |\n", len(m.ModuleOrder))
	fmt.Fprintf(&buf, "| Total | %d |\n", totalNodes)
	return buf.Bytes()
}
