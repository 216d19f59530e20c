package validation

import (
	"strings"

	"github.com/dshills/gsnviz/pkg/model"
)

// checkCross runs the cross-module C-checks over the whole model.
func (v *Validator) checkCross() []Message {
	var msgs []Message
	msgs = append(msgs, v.checkDuplicates()...)
	msgs = append(msgs, v.checkReferences()...)
	msgs = append(msgs, v.checkRoots()...)
	msgs = append(msgs, v.checkCycles()...)
	msgs = append(msgs, v.checkReachability()...)
	msgs = append(msgs, v.checkExtends()...)
	return msgs
}

// checkDuplicates covers C06 (module name collisions) and C07
// (identifier collisions across modules).
func (v *Validator) checkDuplicates() []Message {
	var msgs []Message
	for _, name := range v.model.DuplicateModules {
		msgs = append(msgs, errorf(name, "C06", "module name %s is used by more than one input", name))
	}
	for _, dup := range v.model.DuplicateIDs {
		msgs = append(msgs, errorf(dup.Module, "C07",
			"identifier %s is already defined in module %s", dup.ID, dup.Other))
	}
	return msgs
}

// checkReferences covers C03 (dangling references), amended per C11 when
// the source value was a scalar where a sequence was expected.
func (v *Validator) checkReferences() []Message {
	var msgs []Message
	for _, id := range v.model.NodeIDs() {
		node := v.model.Node(id)
		for _, rel := range []struct {
			name    string
			targets []string
		}{
			{"supportedBy", node.SupportedBy},
			{"inContextOf", node.InContextOf},
			{"challenges", node.Challenges},
		} {
			for _, t := range rel.targets {
				if v.model.Node(t) != nil {
					continue
				}
				text := "element " + id + ": " + rel.name + " references unknown element " + t
				if node.ScalarRelation(rel.name) {
					// C11 heuristic: a dangling reference from a scalar
					// value is almost always a missing sequence.
					text += " (the value is a scalar; did you mean a sequence, e.g. [" + t + "]?)"
				}
				msgs = append(msgs, errorf(node.Module, "C03", text))
			}
		}
		for _, name := range sortedKeys(node.ACP) {
			for _, ref := range node.ACP[name] {
				if v.model.Node(ref) == nil {
					msgs = append(msgs, errorf(node.Module, "C03",
						"element "+id+": ACP "+name+" references unknown element "+ref))
				}
			}
		}
	}
	return msgs
}

// checkRoots covers C01 (root count) and C02 (root must be a Goal).
func (v *Validator) checkRoots() []Message {
	var msgs []Message
	roots := v.model.Roots()
	if len(roots) == 0 && len(v.model.ModuleOrder) > 0 {
		msgs = append(msgs, errorf(v.model.ModuleOrder[0], "C01",
			"no root element found; every element is the target of some relation"))
		return msgs
	}
	if len(roots) > 1 {
		for _, extra := range roots[1:] {
			node := v.model.Node(extra)
			msgs = append(msgs, warnf(node.Module, "C01",
				"more than one root element; additional root "+extra))
		}
	}
	for _, root := range roots {
		node := v.model.Node(root)
		if node.Type != model.TypeGoal && node.Type != model.TypeUnknown {
			msgs = append(msgs, errorf(node.Module, "C02",
				"root element "+root+" is a "+node.Type.String()+", expected a Goal"))
		}
	}
	return msgs
}

// dfs colors for cycle detection.
const (
	white = iota
	gray
	black
)

// checkCycles covers C04: no cycle may exist in the effective
// supportedBy relation; cycles in inContextOf are rejected the same way.
func (v *Validator) checkCycles() []Message {
	var msgs []Message
	if cycle := v.findCycle(func(id string) []string { return v.model.SupportedBy(id) }); cycle != nil {
		node := v.model.Node(cycle[0])
		msgs = append(msgs, errorf(node.Module, "C04",
			"cycle in supportedBy: "+strings.Join(cycle, " -> ")))
	}
	if cycle := v.findCycle(func(id string) []string { return v.model.Node(id).InContextOf }); cycle != nil {
		node := v.model.Node(cycle[0])
		msgs = append(msgs, errorf(node.Module, "C04",
			"cycle in inContextOf: "+strings.Join(cycle, " -> ")))
	}
	return msgs
}

// findCycle runs a gray/black DFS over the given adjacency and returns
// the first cycle found, closed (first element repeated at the end), or
// nil. Start order is sorted for determinism.
func (v *Validator) findCycle(adj func(string) []string) []string {
	color := make(map[string]int)
	parent := make(map[string]string)

	var walk func(id string) []string
	walk = func(id string) []string {
		color[id] = gray
		for _, t := range adj(id) {
			if v.model.Node(t) == nil {
				continue
			}
			switch color[t] {
			case white:
				parent[t] = id
				if c := walk(t); c != nil {
					return c
				}
			case gray:
				cycle := []string{t}
				for cur := id; cur != t; cur = parent[cur] {
					cycle = append([]string{cur}, cycle...)
				}
				cycle = append([]string{t}, cycle...)
				return cycle
			}
		}
		color[id] = black
		return nil
	}

	for _, id := range v.model.NodeIDs() {
		if color[id] == white {
			if c := walk(id); c != nil {
				return c
			}
		}
	}
	return nil
}

// checkReachability covers C08: every element must be reachable from
// some root.
func (v *Validator) checkReachability() []Message {
	roots := v.model.Roots()
	if len(roots) == 0 {
		return nil // C01 already fired; reachability is meaningless.
	}
	reachable := v.model.Reachable(roots)
	var msgs []Message
	for _, id := range v.model.NodeIDs() {
		if !reachable[id] {
			msgs = append(msgs, errorf(v.model.Node(id).Module, "C08",
				"element "+id+" is not reachable from any root"))
		}
	}
	return msgs
}

// checkExtends covers C09 (extended module exists) and C10 (extended
// element exists and was undeveloped).
func (v *Validator) checkExtends() []Message {
	var msgs []Message
	for _, name := range v.model.ModuleOrder {
		mod := v.model.Modules[name]
		for _, ext := range mod.Extends {
			foreign, ok := v.model.Modules[ext.Module]
			if !ok {
				msgs = append(msgs, errorf(name, "C09",
					"extends references unknown module "+ext.Module))
				continue
			}
			for _, fid := range sortedKeys(ext.Develops) {
				target, ok := foreign.Nodes[fid]
				if !ok {
					msgs = append(msgs, errorf(name, "C10",
						"extends "+ext.Module+": element "+fid+" does not exist there"))
					continue
				}
				if !target.Undeveloped {
					msgs = append(msgs, errorf(name, "C10",
						"extends "+ext.Module+": element "+fid+" is not marked undeveloped"))
				}
			}
		}
	}
	return msgs
}
