// Package render serializes a positioned diagram to SVG 1.1. Each node
// type gets its GSN shape, labels honor emphasis spans and hyperlinks,
// edges get relation-specific arrow markers, and every element carries
// the documented CSS class vocabulary so user stylesheets can restyle
// the output without touching the geometry.
package render
