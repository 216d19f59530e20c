package model

import (
	"sort"
)

// Model unions the nodes of all loaded modules and overlays the result of
// extends resolution. The parsed source is never mutated: develops-injected
// support links and cleared undeveloped flags live only in the overlay
// maps, so tests can exercise both the source and the effective view.
type Model struct {
	Modules     map[string]*Module
	ModuleOrder []string

	nodes map[string]*Node

	// DuplicateIDs and DuplicateModules record collisions found during
	// construction; the validator turns them into C07/C06 messages.
	DuplicateIDs     []Duplicate
	DuplicateModules []string

	// extraSupport holds develops-injected supportedBy links per foreign
	// identifier; developed marks undeveloped flags cleared by extends.
	extraSupport map[string][]string
	developed    map[string]bool
}

// Duplicate records an identifier defined in two modules.
type Duplicate struct {
	ID            string
	Module, Other string
}

// New assembles a Model from parsed modules and runs extends resolution.
// Collisions and unresolvable extensions are recorded, not rejected, so
// the validator can report every problem in one pass.
func New(modules []*Module) *Model {
	m := &Model{
		Modules:      make(map[string]*Module),
		nodes:        make(map[string]*Node),
		extraSupport: make(map[string][]string),
		developed:    make(map[string]bool),
	}
	for _, mod := range modules {
		if _, exists := m.Modules[mod.Name]; exists {
			m.DuplicateModules = append(m.DuplicateModules, mod.Name)
			continue
		}
		m.Modules[mod.Name] = mod
		m.ModuleOrder = append(m.ModuleOrder, mod.Name)
		for _, id := range mod.NodeOrder {
			node := mod.Nodes[id]
			if prev, exists := m.nodes[id]; exists {
				m.DuplicateIDs = append(m.DuplicateIDs, Duplicate{ID: id, Module: mod.Name, Other: prev.Module})
				continue
			}
			m.nodes[id] = node
		}
	}
	m.resolveExtends()
	return m
}

// resolveExtends synthesizes a virtual supportedBy from each foreign
// undeveloped element to its local developers and clears the undeveloped
// flag in the effective view. Entries that name a missing module, a
// missing element, or a developed element are skipped here; C09/C10
// report them.
func (m *Model) resolveExtends() {
	for _, name := range m.ModuleOrder {
		mod := m.Modules[name]
		for _, ext := range mod.Extends {
			foreign, ok := m.Modules[ext.Module]
			if !ok {
				continue
			}
			// Deterministic order over the develops mapping.
			foreignIDs := make([]string, 0, len(ext.Develops))
			for fid := range ext.Develops {
				foreignIDs = append(foreignIDs, fid)
			}
			sort.Strings(foreignIDs)
			for _, fid := range foreignIDs {
				target, ok := foreign.Nodes[fid]
				if !ok || !target.Undeveloped {
					continue
				}
				for _, local := range ext.Develops[fid] {
					if _, ok := mod.Nodes[local]; !ok {
						continue
					}
					m.extraSupport[fid] = append(m.extraSupport[fid], local)
				}
				if len(m.extraSupport[fid]) > 0 {
					m.developed[fid] = true
				}
			}
		}
	}
}

// Node returns the node with the given identifier, or nil.
func (m *Model) Node(id string) *Node {
	return m.nodes[id]
}

// NodeIDs returns every identifier in the model, sorted.
func (m *Model) NodeIDs() []string {
	ids := make([]string, 0, len(m.nodes))
	for id := range m.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SupportedBy returns the effective supportedBy targets of a node: the
// source list plus any develops-injected links.
func (m *Model) SupportedBy(id string) []string {
	node := m.nodes[id]
	if node == nil {
		return nil
	}
	if extra := m.extraSupport[id]; len(extra) > 0 {
		out := make([]string, 0, len(node.SupportedBy)+len(extra))
		out = append(out, node.SupportedBy...)
		out = append(out, extra...)
		return out
	}
	return node.SupportedBy
}

// IsUndeveloped reports the effective undeveloped state: the source flag
// unless extends resolution developed the node.
func (m *Model) IsUndeveloped(id string) bool {
	node := m.nodes[id]
	return node != nil && node.Undeveloped && !m.developed[id]
}

// IsDeveloped reports whether extends resolution developed the node.
func (m *Model) IsDeveloped(id string) bool {
	return m.developed[id]
}

// PrimaryChildren returns the effective supportedBy and challenges targets
// of a node. These form the primary DAG the layout ranks over.
func (m *Model) PrimaryChildren(id string) []string {
	node := m.nodes[id]
	if node == nil {
		return nil
	}
	out := append([]string{}, m.SupportedBy(id)...)
	out = append(out, node.Challenges...)
	return out
}

// Roots returns, sorted, every node not targeted by any effective
// relation from an existing node.
func (m *Model) Roots() []string {
	incoming := make(map[string]int, len(m.nodes))
	for id := range m.nodes {
		incoming[id] = 0
	}
	for id, node := range m.nodes {
		for _, t := range m.SupportedBy(id) {
			if _, ok := m.nodes[t]; ok {
				incoming[t]++
			}
		}
		for _, t := range node.InContextOf {
			if _, ok := m.nodes[t]; ok {
				incoming[t]++
			}
		}
		for _, t := range node.Challenges {
			if _, ok := m.nodes[t]; ok {
				incoming[t]++
			}
		}
	}
	var roots []string
	for id, n := range incoming {
		if n == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// Reachable returns the set of identifiers reachable from the given
// starts over effective relations, BFS order.
func (m *Model) Reachable(starts []string) map[string]bool {
	seen := make(map[string]bool)
	queue := append([]string{}, starts...)
	for _, s := range starts {
		seen[s] = true
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		node := m.nodes[cur]
		if node == nil {
			continue
		}
		next := append([]string{}, m.SupportedBy(cur)...)
		next = append(next, node.InContextOf...)
		next = append(next, node.Challenges...)
		for _, t := range next {
			if _, ok := m.nodes[t]; ok && !seen[t] {
				seen[t] = true
				queue = append(queue, t)
			}
		}
	}
	return seen
}

// ContextReferrer returns the identifier of the node that reaches target
// via inContextOf, or "" when none does. With several referrers the
// lexicographically smallest wins, keeping layout deterministic.
func (m *Model) ContextReferrer(target string) string {
	best := ""
	for _, id := range m.NodeIDs() {
		for _, t := range m.nodes[id].InContextOf {
			if t == target && (best == "" || id < best) {
				best = id
			}
		}
	}
	return best
}

// ModuleReferences derives the architecture-view edges: module A
// references module B when any node of A targets a node of B through any
// source relation, or A extends B. Develops-injected links are not
// counted separately: the extends entry already yields A -> B.
// Self-references are dropped and the result is deduplicated and sorted.
func (m *Model) ModuleReferences() map[string][]string {
	refs := make(map[string]map[string]bool)
	for _, name := range m.ModuleOrder {
		refs[name] = make(map[string]bool)
	}
	for _, node := range m.nodes {
		from := node.Module
		for _, t := range node.References() {
			target := m.nodes[t]
			if target == nil || target.Module == from {
				continue
			}
			refs[from][target.Module] = true
		}
	}
	for _, name := range m.ModuleOrder {
		for _, ext := range m.Modules[name].Extends {
			if _, ok := m.Modules[ext.Module]; ok && ext.Module != name {
				refs[name][ext.Module] = true
			}
		}
	}
	out := make(map[string][]string, len(refs))
	for from, set := range refs {
		targets := make([]string, 0, len(set))
		for to := range set {
			targets = append(targets, to)
		}
		sort.Strings(targets)
		out[from] = targets
	}
	return out
}

// ResolveTypes derives every node's type from prefix or override.
// Unresolvable nodes keep TypeUnknown; the validator reports them (V01)
// and downstream passes skip them.
func (m *Model) ResolveTypes() {
	for _, node := range m.nodes {
		// Resolution failure leaves TypeUnknown in place.
		_ = node.resolveType()
	}
}
