package model

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// The reserved top-level key carrying module metadata. Every other key in
// a source file is a GSN identifier.
const moduleKey = "module"

// relationAttrs are the node attributes that take identifier sequences.
var relationAttrs = map[string]bool{
	"supportedBy": true,
	"inContextOf": true,
	"challenges":  true,
}

// ParseModule reads one YAML module source. Duplicate keys anywhere in
// the document are rejected here: the decoder's low-level node tree does
// not enforce mapping-key uniqueness, so every mapping level carries its
// own seen-key check. The resulting module is not yet validated;
// semantic checks run on the assembled Model.
func ParseModule(fileName string, data []byte) (*Module, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", fileName, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("parsing %s: empty document", fileName)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing %s: top level must be a mapping", fileName)
	}

	mod := &Module{
		Name:     fileName,
		FileName: fileName,
		Nodes:    make(map[string]*Node),
		Info:     make(map[string]string),
	}

	sawMeta := false
	for i := 0; i < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if key.Value == moduleKey {
			if sawMeta {
				return nil, fmt.Errorf("parsing %s: line %d: key %q already defined", fileName, key.Line, moduleKey)
			}
			sawMeta = true
			if err := decodeModuleMeta(mod, val); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", fileName, err)
			}
			continue
		}
		if _, exists := mod.Nodes[key.Value]; exists {
			return nil, fmt.Errorf("parsing %s: line %d: element %s already defined", fileName, key.Line, key.Value)
		}
		node, err := decodeNode(key.Value, val)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", fileName, err)
		}
		node.Module = mod.Name
		mod.Nodes[node.ID] = node
		mod.NodeOrder = append(mod.NodeOrder, node.ID)
	}

	// The module name may have been set by metadata after nodes were read.
	for _, n := range mod.Nodes {
		n.Module = mod.Name
	}
	return mod, nil
}

// decodeModuleMeta fills module metadata from the `module` mapping.
// Unrecognized entries become legend info lines.
func decodeModuleMeta(mod *Module, val *yaml.Node) error {
	if val.Kind != yaml.MappingNode {
		return fmt.Errorf("module metadata must be a mapping")
	}
	seen := make(map[string]bool, len(val.Content)/2)
	for i := 0; i < len(val.Content); i += 2 {
		key, v := val.Content[i], val.Content[i+1]
		if seen[key.Value] {
			return fmt.Errorf("line %d: module key %q already defined", key.Line, key.Value)
		}
		seen[key.Value] = true
		switch key.Value {
		case "name":
			mod.Name = v.Value
		case "brief":
			mod.Brief = v.Value
		case "extends":
			if err := v.Decode(&mod.Extends); err != nil {
				return fmt.Errorf("module extends: %w", err)
			}
		case "uses":
			if err := v.Decode(&mod.Uses); err != nil {
				return fmt.Errorf("module uses: %w", err)
			}
		case "stylesheets":
			if err := v.Decode(&mod.Stylesheets); err != nil {
				return fmt.Errorf("module stylesheets: %w", err)
			}
		case "charWrap":
			n, err := strconv.Atoi(v.Value)
			if err != nil || n <= 0 {
				return fmt.Errorf("module charWrap must be a positive integer, got %q", v.Value)
			}
			mod.CharWrap = n
		case "rankIncrement":
			n, err := strconv.Atoi(v.Value)
			if err != nil || n < 0 {
				return fmt.Errorf("module rankIncrement must be a non-negative integer, got %q", v.Value)
			}
			mod.RankIncrement = n
		case "horizontalIndex":
			hi, err := decodeHorizontalIndex(v)
			if err != nil {
				return fmt.Errorf("module %w", err)
			}
			mod.HorizontalIndex = hi
		default:
			mod.Info[key.Value] = scalarOrYAML(v)
		}
	}
	return nil
}

// decodeNode turns one identifier/value pair into a Node. Relation values
// given as scalars are kept as single-entry lists with the scalar fact
// recorded, so cross-module validation can amend its dangling-reference
// message with the likely cause.
func decodeNode(id string, val *yaml.Node) (*Node, error) {
	if val.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("element %s: expected a mapping of attributes", id)
	}
	node := &Node{
		ID:              id,
		Layers:          make(map[string]string),
		scalarRelations: make(map[string]bool),
	}
	seen := make(map[string]bool, len(val.Content)/2)
	for i := 0; i < len(val.Content); i += 2 {
		key, v := val.Content[i], val.Content[i+1]
		if seen[key.Value] {
			return nil, fmt.Errorf("element %s: line %d: attribute %q already defined", id, key.Line, key.Value)
		}
		seen[key.Value] = true
		switch key.Value {
		case "text":
			node.Text = v.Value
		case "supportedBy", "inContextOf", "challenges":
			list, scalar, err := decodeStringList(v)
			if err != nil {
				return nil, fmt.Errorf("element %s: %s: %w", id, key.Value, err)
			}
			if scalar {
				node.scalarRelations[key.Value] = true
			}
			switch key.Value {
			case "supportedBy":
				node.SupportedBy = list
			case "inContextOf":
				node.InContextOf = list
			case "challenges":
				node.Challenges = list
			}
		case "undeveloped":
			b, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil, fmt.Errorf("element %s: undeveloped must be a boolean", id)
			}
			node.Undeveloped = b
		case "defeated":
			b, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil, fmt.Errorf("element %s: defeated must be a boolean", id)
			}
			node.Defeated = b
		case "nodeType":
			node.RawNodeType = v.Value
		case "rankIncrement":
			n, err := strconv.Atoi(v.Value)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("element %s: rankIncrement must be a non-negative integer, got %q", id, v.Value)
			}
			node.RankIncrement = n
		case "horizontalIndex":
			hi, err := decodeHorizontalIndex(v)
			if err != nil {
				return nil, fmt.Errorf("element %s: %w", id, err)
			}
			node.HorizontalIndex = hi
		case "charWrap":
			n, err := strconv.Atoi(v.Value)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("element %s: charWrap must be a positive integer, got %q", id, v.Value)
			}
			node.CharWrap = n
		case "url":
			node.URL = v.Value
		case "classes":
			if err := v.Decode(&node.Classes); err != nil {
				return nil, fmt.Errorf("element %s: classes: %w", id, err)
			}
		case "acp":
			acp, err := decodeACP(v)
			if err != nil {
				return nil, fmt.Errorf("element %s: %w", id, err)
			}
			node.ACP = acp
		default:
			node.Layers[key.Value] = scalarOrYAML(v)
		}
	}
	return node, nil
}

// decodeStringList accepts either a sequence of scalars or a bare scalar.
// The scalar form is tolerated (and flagged) because it is the single most
// common authoring mistake in relation attributes.
func decodeStringList(v *yaml.Node) (list []string, scalar bool, err error) {
	switch v.Kind {
	case yaml.SequenceNode:
		var out []string
		if err := v.Decode(&out); err != nil {
			return nil, false, err
		}
		return out, false, nil
	case yaml.ScalarNode:
		if v.Value == "" {
			return nil, true, nil
		}
		return []string{v.Value}, true, nil
	default:
		return nil, false, fmt.Errorf("expected a sequence of identifiers")
	}
}

// decodeHorizontalIndex decodes {absolute: N|last} / {relative: N}.
func decodeHorizontalIndex(v *yaml.Node) (*HorizontalIndex, error) {
	if v.Kind != yaml.MappingNode || len(v.Content) != 2 {
		return nil, fmt.Errorf("horizontalIndex must be a mapping with one of absolute, relative")
	}
	key, val := v.Content[0], v.Content[1]
	switch key.Value {
	case "absolute":
		if val.Value == "last" {
			return &HorizontalIndex{Absolute: -1, AbsoluteLast: true}, nil
		}
		n, err := strconv.Atoi(val.Value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("horizontalIndex absolute must be a non-negative integer or \"last\", got %q", val.Value)
		}
		return &HorizontalIndex{Absolute: n}, nil
	case "relative":
		n, err := strconv.Atoi(val.Value)
		if err != nil {
			return nil, fmt.Errorf("horizontalIndex relative must be an integer, got %q", val.Value)
		}
		return &HorizontalIndex{Absolute: -1, Relative: n, IsRelative: true}, nil
	default:
		return nil, fmt.Errorf("horizontalIndex key must be absolute or relative, got %q", key.Value)
	}
}

// decodeACP decodes the acp mapping: name → identifier list (or scalar).
func decodeACP(v *yaml.Node) (map[string][]string, error) {
	if v.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("acp must be a mapping of name to identifier list")
	}
	out := make(map[string][]string)
	for i := 0; i < len(v.Content); i += 2 {
		key, val := v.Content[i], v.Content[i+1]
		if _, exists := out[key.Value]; exists {
			return nil, fmt.Errorf("line %d: acp %q already defined", key.Line, key.Value)
		}
		list, _, err := decodeStringList(val)
		if err != nil {
			return nil, fmt.Errorf("acp %s: %w", key.Value, err)
		}
		out[key.Value] = list
	}
	return out, nil
}

// scalarOrYAML renders a value node for layer/info surfacing: scalars as
// their literal value, anything else re-serialized.
func scalarOrYAML(v *yaml.Node) string {
	if v.Kind == yaml.ScalarNode {
		return v.Value
	}
	b, err := yaml.Marshal(v)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(b), "\n")
}
