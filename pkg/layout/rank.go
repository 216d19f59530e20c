package layout

import (
	"sort"
)

// isPrimary reports whether the edge participates in the vertical
// hierarchy. Composite edges carry a supportedBy and therefore rank.
func (e rawEdge) isPrimary() bool {
	return e.kind != EdgeInContextOf
}

// assignRanks computes the vertical row of every node. Roots of the
// primary DAG take rank 0; every other primary node ranks one below its
// deepest parent plus its own rankIncrement. In-context nodes copy the
// rank of their referrer.
func assignRanks(d *Diagram, edges []rawEdge) map[string]int {
	parents := make(map[string][]string)
	contextRef := make(map[string]string)
	incomingPrimary := make(map[string]int)

	for _, e := range edges {
		if e.isPrimary() {
			parents[e.to] = append(parents[e.to], e.from)
			incomingPrimary[e.to]++
		} else {
			// Lexicographically smallest referrer wins, deterministic.
			if ref, ok := contextRef[e.to]; !ok || e.from < ref {
				contextRef[e.to] = e.from
			}
		}
	}

	// A node is in-context when only context edges reach it.
	inContext := make(map[string]bool)
	for id := range contextRef {
		if incomingPrimary[id] == 0 {
			inContext[id] = true
		}
	}

	ranks := make(map[string]int, len(d.Nodes))
	var pending []string
	for _, id := range d.NodeIDs() {
		if inContext[id] {
			continue
		}
		if incomingPrimary[id] == 0 {
			ranks[id] = 0
		} else {
			pending = append(pending, id)
		}
	}

	// Worklist: rank a node once all its primary parents are ranked.
	for len(pending) > 0 {
		progressed := false
		var still []string
		for _, id := range pending {
			maxParent := -1
			ready := true
			for _, p := range parents[id] {
				if inContext[p] {
					continue
				}
				r, ok := ranks[p]
				if !ok {
					ready = false
					break
				}
				if r > maxParent {
					maxParent = r
				}
			}
			if !ready {
				still = append(still, id)
				continue
			}
			ranks[id] = maxParent + 1 + d.Nodes[id].rankIncrement
			progressed = true
		}
		if !progressed {
			// A cycle survived validation (possible through challenges);
			// force the remainder one rank below everything placed.
			deepest := 0
			for _, r := range ranks {
				if r > deepest {
					deepest = r
				}
			}
			sort.Strings(still)
			for _, id := range still {
				ranks[id] = deepest + 1
			}
			break
		}
		pending = still
	}

	// In-context nodes sit beside their referrer.
	for _, id := range d.NodeIDs() {
		if !inContext[id] {
			continue
		}
		ranks[id] = ranks[contextRef[id]]
	}
	return ranks
}
