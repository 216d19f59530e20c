// Package model provides the in-memory representation of GSN modules.
// A Model unions the nodes of one or more parsed module files, resolves
// module extensions into effective support links, and answers the
// identifier-keyed queries the validator and layout engine run on. Edges
// reference identifiers, never pointers, so the structure is acyclic to
// own and trivial to inspect in tests.
package model
