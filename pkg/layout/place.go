package layout

// Spacing constants in user units.
const (
	margin = 24
	hGap   = 40
	vGap   = 56
)

// place stacks the ranks top to bottom and assigns x-coordinates left to
// right, pulling each node toward the center of its placed parents
// without ever overlapping its left neighbor.
func place(d *Diagram, edges []rawEdge, o *ordering, _ Options) {
	parents := make(map[string][]string)
	for _, e := range edges {
		if e.isPrimary() {
			parents[e.to] = append(parents[e.to], e.from)
		}
	}

	// Vertical: each rank row is as tall as its tallest node; nodes
	// center within the row.
	y := margin
	for _, rank := range o.ranks {
		rowH := 0
		for _, id := range rank {
			if h := d.Nodes[id].H; h > rowH {
				rowH = h
			}
		}
		for _, id := range rank {
			box := d.Nodes[id]
			box.Y = y + (rowH-box.H)/2
		}
		y += rowH + vGap
	}

	// Horizontal: greedy left-to-right with parent centering.
	for r, rank := range o.ranks {
		cursor := margin
		for _, id := range rank {
			box := d.Nodes[id]
			x := cursor
			if desired, ok := desiredX(d, o, id, r, parents); ok && desired > x {
				x = desired
			}
			box.X = x
			cursor = x + box.W + hGap
		}
	}

	// Bounds: occupied region plus the margin.
	maxX, maxY := 0, 0
	for _, box := range d.Nodes {
		if right := box.X + box.W; right > maxX {
			maxX = right
		}
		if bottom := box.Y + box.H; bottom > maxY {
			maxY = bottom
		}
	}
	d.Width = maxX + margin
	d.Height = maxY + margin
}

// desiredX returns the x just right of the referrer for an in-context
// node on the right side, otherwise the x that centers a node under its
// placed primary parents.
func desiredX(d *Diagram, o *ordering, id string, rank int, parents map[string][]string) (int, bool) {
	box := d.Nodes[id]
	if ref, ok := o.contextRef[id]; ok && o.contextSide[id] > 0 {
		refBox := d.Nodes[ref]
		return refBox.X + refBox.W + hGap, true
	}
	sum, n := 0, 0
	for _, p := range parents[id] {
		if o.rankOf[p] >= rank {
			continue
		}
		sum += d.Nodes[p].CenterX()
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum/n - box.W/2, true
}
