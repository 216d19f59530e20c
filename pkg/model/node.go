package model

import (
	"fmt"
	"strings"
)

// NodeType identifies the GSN element kind. The kinds form a closed sum;
// shape, permitted relations, and CSS class all key off this tag.
type NodeType int

const (
	// TypeUnknown marks an identifier whose prefix matched no known kind.
	TypeUnknown NodeType = iota

	// TypeGoal is a claim to be argued (box).
	TypeGoal

	// TypeStrategy is an inference step (parallelogram).
	TypeStrategy

	// TypeSolution is an item of evidence (circle).
	TypeSolution

	// TypeContext scopes a goal or strategy (rounded box).
	TypeContext

	// TypeAssumption is an unargued premise (oval, "A" glyph).
	TypeAssumption

	// TypeJustification explains an inference (oval, "J" glyph).
	TypeJustification

	// TypeCounterGoal is a dialectic challenge claim.
	TypeCounterGoal

	// TypeCounterSolution is dialectic counter-evidence.
	TypeCounterSolution

	// TypeModule is a synthetic kind used by the architecture view and
	// for masked modules in the complete view (stacked box).
	TypeModule
)

// typePrefixes maps identifier prefixes to node types. Order matters:
// longest prefixes are tried first so that CSn wins over CG and C, and
// Sn wins over S.
var typePrefixes = []struct {
	prefix string
	typ    NodeType
}{
	{"CSn", TypeCounterSolution},
	{"CG", TypeCounterGoal},
	{"Sn", TypeSolution},
	{"G", TypeGoal},
	{"S", TypeStrategy},
	{"C", TypeContext},
	{"A", TypeAssumption},
	{"J", TypeJustification},
}

// typeNames maps the nodeType attribute vocabulary to node types.
var typeNames = map[string]NodeType{
	"Goal":            TypeGoal,
	"Strategy":        TypeStrategy,
	"Solution":        TypeSolution,
	"Context":         TypeContext,
	"Assumption":      TypeAssumption,
	"Justification":   TypeJustification,
	"CounterGoal":     TypeCounterGoal,
	"CounterSolution": TypeCounterSolution,
}

// String returns the canonical name of the node type.
func (t NodeType) String() string {
	switch t {
	case TypeGoal:
		return "Goal"
	case TypeStrategy:
		return "Strategy"
	case TypeSolution:
		return "Solution"
	case TypeContext:
		return "Context"
	case TypeAssumption:
		return "Assumption"
	case TypeJustification:
		return "Justification"
	case TypeCounterGoal:
		return "CounterGoal"
	case TypeCounterSolution:
		return "CounterSolution"
	case TypeModule:
		return "Module"
	default:
		return "Unknown"
	}
}

// IsSupporter reports whether the type may appear on either end of a
// supportedBy relation.
func (t NodeType) IsSupporter() bool {
	switch t {
	case TypeGoal, TypeStrategy, TypeSolution, TypeCounterGoal, TypeCounterSolution:
		return true
	}
	return false
}

// IsContextual reports whether the type may be the target of inContextOf.
func (t NodeType) IsContextual() bool {
	switch t {
	case TypeContext, TypeAssumption, TypeJustification:
		return true
	}
	return false
}

// IsDialectic reports whether the type belongs to the dialectic extension.
func (t NodeType) IsDialectic() bool {
	return t == TypeCounterGoal || t == TypeCounterSolution
}

// TypeFromPrefix derives the node type from an identifier's prefix.
// Returns TypeUnknown if no prefix matches.
func TypeFromPrefix(id string) NodeType {
	for _, p := range typePrefixes {
		if strings.HasPrefix(id, p.prefix) {
			return p.typ
		}
	}
	return TypeUnknown
}

// TypeFromName resolves a nodeType attribute value. Returns TypeUnknown
// for unrecognized names.
func TypeFromName(name string) NodeType {
	return typeNames[name]
}

// HorizontalIndex is a user hint pinning or shifting a node's slot within
// its rank. Exactly one of the forms is set.
type HorizontalIndex struct {
	// Absolute pins the node to a zero-based slot when >= 0.
	Absolute int

	// AbsoluteLast pins the node to the rightmost slot.
	AbsoluteLast bool

	// Relative shifts the node from its default slot by this amount.
	Relative int

	// IsRelative distinguishes a zero relative shift from an unset one.
	IsRelative bool
}

// Node is one GSN element. All relation fields hold identifiers; the Model
// resolves them. Nodes are frozen after extends resolution.
type Node struct {
	ID     string
	Module string
	Text   string
	Type   NodeType

	// RawNodeType preserves the nodeType attribute for V08 reporting.
	RawNodeType string

	SupportedBy []string
	InContextOf []string
	Challenges  []string

	Undeveloped bool
	Defeated    bool

	RankIncrement   int
	HorizontalIndex *HorizontalIndex
	CharWrap        int

	URL     string
	Classes []string

	// ACP maps assurance-claim-point names to referenced identifiers.
	ACP map[string][]string

	// Layers holds free-form attributes keyed by layer name, surfaced
	// only when the user enables the layer.
	Layers map[string]string

	// scalarRelations records relation attributes whose YAML value was a
	// scalar where a sequence was expected (feeds the C11 heuristic).
	scalarRelations map[string]bool
}

// ScalarRelation reports whether the named relation attribute was given
// as a scalar rather than a sequence in the source.
func (n *Node) ScalarRelation(rel string) bool {
	return n.scalarRelations[rel]
}

// HasOutgoing reports whether the node carries any outgoing relation.
func (n *Node) HasOutgoing() bool {
	return len(n.SupportedBy) > 0 || len(n.InContextOf) > 0 || len(n.Challenges) > 0
}

// References returns every identifier the node mentions in any relation,
// in source order, relation by relation.
func (n *Node) References() []string {
	refs := make([]string, 0, len(n.SupportedBy)+len(n.InContextOf)+len(n.Challenges))
	refs = append(refs, n.SupportedBy...)
	refs = append(refs, n.InContextOf...)
	refs = append(refs, n.Challenges...)
	return refs
}

// resolveType fixes the node's type from its prefix and the optional
// nodeType override. An override always wins; the prefix result is not
// stored, and the validator re-derives it from the identifier to report
// contradictions.
func (n *Node) resolveType() error {
	prefixType := TypeFromPrefix(n.ID)
	if n.RawNodeType == "" {
		n.Type = prefixType
		if n.Type == TypeUnknown {
			return fmt.Errorf("element %s: identifier matches no known type prefix", n.ID)
		}
		return nil
	}
	named := TypeFromName(n.RawNodeType)
	if named == TypeUnknown {
		return fmt.Errorf("element %s: invalid nodeType %q", n.ID, n.RawNodeType)
	}
	n.Type = named
	return nil
}
