package layout

import (
	"sort"
)

// obstaclePad keeps routed segments clear of node borders.
const obstaclePad = 6

// route turns every raw edge into a polyline between the closest edge
// midpoints of the two boxes, detouring orthogonally around obstacles
// with at most two bends. Output order is sorted for determinism.
func route(d *Diagram, edges []rawEdge, _ *ordering) {
	sort.SliceStable(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.from != b.from {
			return a.from < b.from
		}
		if a.to != b.to {
			return a.to < b.to
		}
		return a.kind < b.kind
	})

	for _, e := range edges {
		from, ok1 := d.Nodes[e.from]
		to, ok2 := d.Nodes[e.to]
		if !ok1 || !ok2 {
			continue
		}
		pts := routeEdge(d, e, from, to)
		d.Edges = append(d.Edges, &Edge{
			From:     e.from,
			To:       e.to,
			Kind:     e.kind,
			Defeated: e.defeated,
			Points:   pts,
		})
	}
}

// sideMidpoints returns the four edge midpoints of a box: top, bottom,
// left, right.
func sideMidpoints(b *NodeBox) [4]Point {
	return [4]Point{
		{b.X + b.W/2, b.Y},
		{b.X + b.W/2, b.Y + b.H},
		{b.X, b.Y + b.H/2},
		{b.X + b.W, b.Y + b.H/2},
	}
}

// routeEdge picks the closest midpoint pair and routes between them.
func routeEdge(d *Diagram, e rawEdge, from, to *NodeBox) []Point {
	fp := sideMidpoints(from)
	tp := sideMidpoints(to)
	var start, end Point
	best := -1
	for _, a := range fp {
		for _, b := range tp {
			dx, dy := a.X-b.X, a.Y-b.Y
			dist := dx*dx + dy*dy
			if best < 0 || dist < best {
				best = dist
				start, end = a, b
			}
		}
	}

	if obstacle := firstObstacle(d, e, start, end); obstacle == nil {
		return []Point{start, end}
	}
	return detour(d, e, start, end)
}

// firstObstacle returns the node box the straight segment crosses,
// excluding the edge's own endpoints. With several obstacles the
// lexicographically lowest identifier is returned, which also fixes the
// detour side deterministically.
func firstObstacle(d *Diagram, e rawEdge, a, b Point) *NodeBox {
	var hit *NodeBox
	for _, id := range d.NodeIDs() {
		if id == e.from || id == e.to {
			continue
		}
		box := d.Nodes[id]
		if segmentCrossesBox(a, b, box) {
			if hit == nil || box.ID < hit.ID {
				hit = box
			}
		}
	}
	return hit
}

// detour routes an orthogonal polyline with at most two bends: vertical,
// horizontal, vertical (or the transpose for flat edges). The horizontal
// run starts halfway between the endpoints and shifts past the blocking
// box on the side facing the edge's source.
func detour(d *Diagram, e rawEdge, a, b Point) []Point {
	dx, dy := abs(b.X-a.X), abs(b.Y-a.Y)
	if dy >= dx {
		my := (a.Y + b.Y) / 2
		if obstacle := runObstacleH(d, e, a.X, b.X, my); obstacle != nil {
			if a.Y <= b.Y {
				my = obstacle.Y - obstaclePad
			} else {
				my = obstacle.Y + obstacle.H + obstaclePad
			}
		}
		return []Point{a, {a.X, my}, {b.X, my}, b}
	}
	mx := (a.X + b.X) / 2
	if obstacle := runObstacleV(d, e, a.Y, b.Y, mx); obstacle != nil {
		if a.X <= b.X {
			mx = obstacle.X - obstaclePad
		} else {
			mx = obstacle.X + obstacle.W + obstaclePad
		}
	}
	return []Point{a, {mx, a.Y}, {mx, b.Y}, b}
}

// runObstacleH finds the lowest-identifier box crossing the horizontal
// run at y between x1 and x2.
func runObstacleH(d *Diagram, e rawEdge, x1, x2, y int) *NodeBox {
	return firstObstacle(d, e, Point{min(x1, x2), y}, Point{max(x1, x2), y})
}

// runObstacleV finds the lowest-identifier box crossing the vertical run
// at x between y1 and y2.
func runObstacleV(d *Diagram, e rawEdge, y1, y2, x int) *NodeBox {
	return firstObstacle(d, e, Point{x, min(y1, y2)}, Point{x, max(y1, y2)})
}

// segmentCrossesBox clips the segment against the padded box using the
// Liang-Barsky parametric test.
func segmentCrossesBox(a, b Point, box *NodeBox) bool {
	minX := float64(box.X - obstaclePad)
	minY := float64(box.Y - obstaclePad)
	maxX := float64(box.X + box.W + obstaclePad)
	maxY := float64(box.Y + box.H + obstaclePad)

	x0, y0 := float64(a.X), float64(a.Y)
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)

	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
		return true
	}

	if !clip(-dx, x0-minX) || !clip(dx, maxX-x0) || !clip(-dy, y0-minY) || !clip(dy, maxY-y0) {
		return false
	}
	return t0 <= t1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
