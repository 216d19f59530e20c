package validation

import (
	"github.com/dshills/gsnviz/pkg/model"
)

// checkModule runs the per-module V-checks for one module.
func (v *Validator) checkModule(mod *model.Module) []Message {
	var msgs []Message
	for _, id := range mod.NodeOrder {
		node := mod.Nodes[id]
		msgs = append(msgs, v.checkNodeType(mod, node)...)
		msgs = append(msgs, v.checkDevelopment(mod, node)...)
		msgs = append(msgs, v.checkRelationKinds(mod, node)...)
		msgs = append(msgs, v.checkRelationLists(mod, node)...)
		msgs = append(msgs, v.checkACP(mod, node)...)
		msgs = append(msgs, v.checkDialectic(mod, node)...)
	}
	msgs = append(msgs, v.checkExtendsLocals(mod)...)
	return msgs
}

// checkNodeType covers V01 (unknown prefix / invalid nodeType) and V08
// (prefix contradicting an explicit nodeType).
func (v *Validator) checkNodeType(mod *model.Module, node *model.Node) []Message {
	var msgs []Message
	prefixType := model.TypeFromPrefix(node.ID)
	if node.RawNodeType == "" {
		if prefixType == model.TypeUnknown {
			msgs = append(msgs, errorf(mod.Name, "V01",
				"element %s: identifier matches no known type prefix and no nodeType is given", node.ID))
		}
		return msgs
	}
	named := model.TypeFromName(node.RawNodeType)
	if named == model.TypeUnknown {
		msgs = append(msgs, errorf(mod.Name, "V01",
			"element %s: invalid nodeType %q", node.ID, node.RawNodeType))
		return msgs
	}
	if prefixType != model.TypeUnknown && prefixType != named {
		msgs = append(msgs, warnf(mod.Name, "V08",
			"element %s: identifier prefix suggests %s but nodeType says %s", node.ID, prefixType, named))
	}
	return msgs
}

// checkDevelopment covers V02 (neither undeveloped nor supported) and
// V03 (undeveloped with children). V03 reads the source flags only; V02
// also accepts an element developed through extends resolution.
func (v *Validator) checkDevelopment(mod *model.Module, node *model.Node) []Message {
	var msgs []Message
	switch node.Type {
	case model.TypeGoal, model.TypeStrategy, model.TypeCounterGoal:
		if !node.Undeveloped && len(node.SupportedBy) == 0 && !v.model.IsDeveloped(node.ID) {
			msgs = append(msgs, warnf(mod.Name, "V02",
				"element %s is neither marked undeveloped nor supported", node.ID))
		}
	}
	if node.Undeveloped && (len(node.SupportedBy) > 0 || len(node.InContextOf) > 0) {
		msgs = append(msgs, errorf(mod.Name, "V03",
			"undeveloped element %s has outgoing relations", node.ID))
	}
	return msgs
}

// checkRelationKinds covers V04 (relation kind versus element types) and
// V06 (self-reference). Targets that do not resolve are left to C03.
func (v *Validator) checkRelationKinds(mod *model.Module, node *model.Node) []Message {
	var msgs []Message

	check := func(rel string, targets []string, sourceOK bool, targetOK func(model.NodeType) bool) {
		if len(targets) == 0 {
			return
		}
		if !sourceOK {
			msgs = append(msgs, errorf(mod.Name, "V04",
				"element %s: a %s may not carry %s", node.ID, node.Type, rel))
		}
		for _, t := range targets {
			if t == node.ID {
				msgs = append(msgs, errorf(mod.Name, "V06",
					"element %s references itself in %s", node.ID, rel))
				continue
			}
			target := v.model.Node(t)
			if target == nil {
				continue
			}
			if !targetOK(target.Type) {
				msgs = append(msgs, errorf(mod.Name, "V04",
					"element %s: %s target %s is a %s", node.ID, rel, t, target.Type))
			}
		}
	}

	check("supportedBy", node.SupportedBy,
		node.Type.IsSupporter(),
		func(t model.NodeType) bool { return t.IsSupporter() })
	check("inContextOf", node.InContextOf,
		node.Type == model.TypeGoal || node.Type == model.TypeStrategy,
		func(t model.NodeType) bool { return t.IsContextual() })
	check("challenges", node.Challenges,
		node.Type.IsDialectic(),
		func(model.NodeType) bool { return true })

	return msgs
}

// checkRelationLists covers V05 (duplicates within one relation list).
func (v *Validator) checkRelationLists(mod *model.Module, node *model.Node) []Message {
	var msgs []Message
	for _, rel := range []struct {
		name    string
		targets []string
	}{
		{"supportedBy", node.SupportedBy},
		{"inContextOf", node.InContextOf},
		{"challenges", node.Challenges},
	} {
		seen := make(map[string]bool, len(rel.targets))
		for _, t := range rel.targets {
			if seen[t] {
				msgs = append(msgs, warnf(mod.Name, "V05",
					"element %s: duplicate %s reference to %s", node.ID, rel.name, t))
			}
			seen[t] = true
		}
	}
	return msgs
}

// checkACP covers V09: an assurance claim point may only reference the
// node itself or a directly connected element.
func (v *Validator) checkACP(mod *model.Module, node *model.Node) []Message {
	if len(node.ACP) == 0 {
		return nil
	}
	connected := map[string]bool{node.ID: true}
	for _, t := range node.References() {
		connected[t] = true
	}
	var msgs []Message
	for _, name := range sortedKeys(node.ACP) {
		for _, ref := range node.ACP[name] {
			if !connected[ref] {
				msgs = append(msgs, warnf(mod.Name, "V09",
					"element %s: ACP %s references %s which is not the element or directly connected to it",
					node.ID, name, ref))
			}
		}
	}
	return msgs
}

// checkDialectic covers V10 (defeated without challenger) and V11
// (presence of dialectic elements, opt-in).
func (v *Validator) checkDialectic(mod *model.Module, node *model.Node) []Message {
	var msgs []Message
	if node.Defeated && !v.hasChallenger(node.ID) {
		msgs = append(msgs, warnf(mod.Name, "V10",
			"element %s is marked defeated but nothing challenges it", node.ID))
	}
	if v.opts.WarnDialectic && node.Type.IsDialectic() {
		msgs = append(msgs, warnf(mod.Name, "V11",
			"element %s is a dialectic element", node.ID))
	}
	return msgs
}

// checkExtendsLocals covers V07: every local developer named in an
// extends entry must exist in this module.
func (v *Validator) checkExtendsLocals(mod *model.Module) []Message {
	var msgs []Message
	for _, ext := range mod.Extends {
		for _, fid := range sortedKeys(ext.Develops) {
			for _, local := range ext.Develops[fid] {
				if _, ok := mod.Nodes[local]; !ok {
					msgs = append(msgs, errorf(mod.Name, "V07",
						"extends %s: developer %s is not an element of this module", ext.Module, local))
				}
			}
		}
	}
	return msgs
}

// hasChallenger reports whether any node in the model challenges id.
func (v *Validator) hasChallenger(id string) bool {
	for _, nid := range v.model.NodeIDs() {
		for _, t := range v.model.Node(nid).Challenges {
			if t == id {
				return true
			}
		}
	}
	return false
}
