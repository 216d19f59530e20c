// Package text turns GSN element text into measured display lines.
// It parses the inline markup subset (emphasis, hyperlinks, bullets),
// wraps at a character budget, and measures line extents with per-glyph
// advance widths from a system sans-serif font, falling back to a
// built-in average-width table when no font resolves.
package text
