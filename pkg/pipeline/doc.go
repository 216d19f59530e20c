// Package pipeline orchestrates a full rendering run: read and parse
// the input modules (expanding uses-references), assemble and validate
// the model, then produce the selected views, the evidence list, and
// statistics. All passes run sequentially; every output file is written
// atomically.
package pipeline
