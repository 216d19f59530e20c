// Package layout computes a deterministic 2-D placement for a GSN view.
// The hierarchical algorithm assigns each node a rank from the primary
// support DAG, orders nodes within ranks lexicographically adjusted by
// user hints, relaxes the orders toward parent barycenters under a hard
// iteration cap, places integer coordinates, and routes edges as
// polylines around node obstacles. Identical inputs produce identical
// output; no randomness enters at any stage.
package layout
