package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/gsnviz/pkg/model"
)

// maxRelaxIterations caps the straightening loop. Hitting the cap is a
// diagnostic, not an error: the last order is used.
const maxRelaxIterations = 100

// ordering is the stable horizontal order per rank after relaxation.
type ordering struct {
	ranks   [][]string
	rankOf  map[string]int
	slot    map[string]int
	anchors map[string]bool

	contextRef  map[string]string
	contextSide map[string]int // -1 left of referrer, +1 right
}

// orderRanks derives the within-rank order: lexicographic base order,
// context nodes attached beside their referrer, horizontalIndex hints
// applied, then barycenter relaxation until stable or capped.
func orderRanks(d *Diagram, edges []rawEdge, ranks map[string]int) *ordering {
	o := &ordering{
		rankOf:      ranks,
		slot:        make(map[string]int),
		anchors:     make(map[string]bool),
		contextRef:  make(map[string]string),
		contextSide: make(map[string]int),
	}

	maxRank := 0
	for _, r := range ranks {
		if r > maxRank {
			maxRank = r
		}
	}
	o.ranks = make([][]string, maxRank+1)

	incomingPrimary := make(map[string]int)
	for _, e := range edges {
		if e.isPrimary() {
			incomingPrimary[e.to]++
		}
	}
	for _, e := range edges {
		if e.kind != EdgeInContextOf || incomingPrimary[e.to] > 0 {
			continue
		}
		if ref, ok := o.contextRef[e.to]; !ok || e.from < ref {
			o.contextRef[e.to] = e.from
		}
	}

	// Base order: primary nodes lexicographic, context nodes attached to
	// a side of their referrer.
	perRank := make([][]string, maxRank+1)
	for _, id := range d.NodeIDs() {
		if _, ok := o.contextRef[id]; ok {
			continue
		}
		r := ranks[id]
		perRank[r] = append(perRank[r], id)
	}
	for r := range perRank {
		sort.Strings(perRank[r])
	}
	for _, id := range d.NodeIDs() {
		ref, ok := o.contextRef[id]
		if !ok {
			continue
		}
		o.contextSide[id] = contextSide(d.Nodes[id])
		r := ranks[id]
		perRank[r] = insertBeside(perRank[r], id, ref, o.contextSide[id])
	}

	// Hints: relative shifts first, then absolute pins. In-context
	// nodes are skipped: their absolute hint selects a side, not a slot.
	for r := range perRank {
		perRank[r] = applyHints(d, perRank[r], o.anchors, o.contextRef)
	}
	o.ranks = perRank
	o.reindex()

	o.relax(d, edges)
	return o
}

// contextSide decides which side of the referrer an in-context node
// takes: an absolute-0 hint forces left, absolute-last forces right,
// otherwise Assumption and Justification sit left, Context right.
func contextSide(box *NodeBox) int {
	if h := box.horizontal; h != nil && !h.IsRelative {
		if h.AbsoluteLast {
			return 1
		}
		if h.Absolute == 0 {
			return -1
		}
	}
	if box.Type == model.TypeAssumption || box.Type == model.TypeJustification {
		return -1
	}
	return 1
}

// insertBeside places id immediately left or right of ref. With several
// context nodes on the same side, each newly inserted one goes directly
// beside ref and pushes the earlier ones outward; callers insert in
// sorted identifier order.
func insertBeside(rank []string, id, ref string, side int) []string {
	at := len(rank)
	for i, cur := range rank {
		if cur == ref {
			if side < 0 {
				at = i
			} else {
				at = i + 1
			}
			break
		}
	}
	rank = append(rank, "")
	copy(rank[at+1:], rank[at:])
	rank[at] = id
	return rank
}

// applyHints adjusts one rank's base order by horizontalIndex hints and
// records the hinted nodes as relaxation anchors. Ties on absolute slots
// resolve lexicographically; several absolute-last claims stack with the
// greatest identifier rightmost.
func applyHints(d *Diagram, rank []string, anchors map[string]bool, contextRef map[string]string) []string {
	type pin struct {
		id   string
		slot int
		last bool
	}
	var pins []pin

	for idx, id := range rank {
		h := d.Nodes[id].horizontal
		if h == nil {
			continue
		}
		if _, ok := contextRef[id]; ok {
			continue
		}
		anchors[id] = true
		switch {
		case h.IsRelative:
			pins = append(pins, pin{id: id, slot: clamp(idx+h.Relative, 0, len(rank)-1)})
		case h.AbsoluteLast:
			pins = append(pins, pin{id: id, last: true})
		default:
			pins = append(pins, pin{id: id, slot: h.Absolute})
		}
	}
	if len(pins) == 0 {
		return rank
	}
	sort.SliceStable(pins, func(i, j int) bool {
		if pins[i].last != pins[j].last {
			return !pins[i].last
		}
		if pins[i].slot != pins[j].slot {
			return pins[i].slot < pins[j].slot
		}
		return pins[i].id < pins[j].id
	})

	rest := make([]string, 0, len(rank))
	pinned := make(map[string]bool, len(pins))
	for _, p := range pins {
		pinned[p.id] = true
	}
	for _, id := range rank {
		if !pinned[id] {
			rest = append(rest, id)
		}
	}
	for _, p := range pins {
		at := len(rest)
		if !p.last {
			at = clamp(p.slot, 0, len(rest))
		}
		rest = append(rest, "")
		copy(rest[at+1:], rest[at:])
		rest[at] = p.id
	}
	return rest
}

// relax iterates the barycenter straightening pass until no rank
// changes, or the cap is hit, in which case a diagnostic names the
// oscillating nodes.
func (o *ordering) relax(d *Diagram, edges []rawEdge) {
	parents := make(map[string][]string)
	for _, e := range edges {
		if e.isPrimary() {
			parents[e.to] = append(parents[e.to], e.from)
		}
	}
	lexIdx := make(map[string]int)
	for _, rank := range o.ranks {
		sorted := append([]string{}, rank...)
		sort.Strings(sorted)
		for i, id := range sorted {
			lexIdx[id] = i
		}
	}

	var movers map[string]bool
	for iter := 0; iter < maxRelaxIterations; iter++ {
		movers = make(map[string]bool)
		for r := 1; r < len(o.ranks); r++ {
			before := append([]string{}, o.ranks[r]...)
			o.ranks[r] = o.reorderRank(d, o.ranks[r], parents, lexIdx)
			for i := range before {
				if before[i] != o.ranks[r][i] {
					movers[before[i]] = true
				}
			}
		}
		o.reindex()
		if len(movers) == 0 {
			return
		}
	}

	ids := make([]string, 0, len(movers))
	for id := range movers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	d.Warnings = append(d.Warnings, fmt.Sprintf(
		"horizontal ordering did not converge after %d iterations; still moving: %s (add horizontalIndex hints to settle them)",
		maxRelaxIterations, strings.Join(ids, ", ")))
}

// reorderRank re-sorts one rank by desired barycenter, keeping anchored
// nodes at their slots.
func (o *ordering) reorderRank(d *Diagram, rank []string, parents map[string][]string, lexIdx map[string]int) []string {
	keys := make(map[string]float64, len(rank))
	for i, id := range rank {
		keys[id] = o.barycenter(id, i, parents)
	}

	slots := make([]string, len(rank))
	var free []int
	var movable []string
	for i, id := range rank {
		if o.anchors[id] {
			slots[i] = id
		} else {
			free = append(free, i)
			movable = append(movable, id)
		}
	}
	sort.SliceStable(movable, func(i, j int) bool {
		a, b := movable[i], movable[j]
		if keys[a] != keys[b] {
			return keys[a] < keys[b]
		}
		return lexIdx[a] < lexIdx[b]
	})
	for j, id := range movable {
		slots[free[j]] = id
	}
	return slots
}

// barycenter computes a node's desired slot: the mean slot of its
// primary parents on the rank above, or beside its referrer for
// in-context nodes, or its current slot when it has neither.
func (o *ordering) barycenter(id string, current int, parents map[string][]string) float64 {
	if ref, ok := o.contextRef[id]; ok {
		if slot, ok := o.slot[ref]; ok {
			return float64(slot) + 0.4*float64(o.contextSide[id])
		}
		return float64(current)
	}
	sum, n := 0.0, 0
	for _, p := range parents[id] {
		if slot, ok := o.slot[p]; ok && o.rankOf[p] == o.rankOf[id]-1 {
			sum += float64(slot)
			n++
		}
	}
	if n == 0 {
		return float64(current)
	}
	return sum / float64(n)
}

// reindex rebuilds the id→slot map from the rank slices.
func (o *ordering) reindex() {
	for _, rank := range o.ranks {
		for i, id := range rank {
			o.slot[id] = i
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
