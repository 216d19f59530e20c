// Package validation runs the semantic checks on an assembled model.
// Per-module V-checks cover one module's elements in isolation;
// cross-module C-checks cover references, roots, cycles, reachability,
// and module extension. Checks never mutate the model and never
// short-circuit: every finding is collected, sorted into a stable order,
// and reported in one pass.
package validation
