package pipeline

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/dshills/gsnviz/pkg/model"
)

// evidenceEntry matches one emitted evidence line, so the list
// round-trips: re-parsing yields the same Solution identifiers.
var evidenceEntry = regexp.MustCompile(`^\d+\. \*\*(?P<id>[^*]+)\*\*: (?P<text>.*) \(module: (?P<module>[^)]*)\)$`)

// EvidenceMarkdown renders the evidence list: every Solution element,
// numbered, in sorted identifier order.
func EvidenceMarkdown(m *model.Model) []byte {
	var buf bytes.Buffer
	buf.WriteString("# List of Evidence\n\n")
	n := 0
	for _, id := range m.NodeIDs() {
		node := m.Node(id)
		if node.Type != model.TypeSolution {
			continue
		}
		n++
		fmt.Fprintf(&buf, "%d. **%s**: %s (module: %s)\n", n, id, node.Text, node.Module)
	}
	if n == 0 {
		buf.WriteString("No evidence elements.\n")
	}
	return buf.Bytes()
}

// ParseEvidence extracts the Solution identifiers from an emitted
// evidence list.
func ParseEvidence(data []byte) []string {
	var ids []string
	for _, line := range bytes.Split(data, []byte("\n")) {
		if m := evidenceEntry.FindSubmatch(line); m != nil {
			ids = append(ids, string(m[1]))
		}
	}
	return ids
}
