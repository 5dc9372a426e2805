package condition

import (
	"errors"
)

// Operator tags a Tree node.
type Operator string

const (
	// OperatorAnd is true iff all children are true. An empty AND is true.
	OperatorAnd Operator = "and"
	// OperatorOr is true iff at least one child is true. An empty OR is false.
	OperatorOr Operator = "or"
	// OperatorNot negates its single child.
	OperatorNot Operator = "not"
	// OperatorMatch is a leaf comparing one user attribute against a value.
	OperatorMatch Operator = "match"
)

// MatchTypeExact is the case-sensitive exact string comparison used by
// custom-attribute conditions. It is the only match type in this model.
const MatchTypeExact = "exact"

// Match is the leaf payload of a condition tree: compare the named user
// attribute against Value. A missing attribute never satisfies the match.
type Match struct {
	Attribute string `json:"name"`
	Type      string `json:"type,omitempty"`
	Value     string `json:"value"`
}

// Tree is a boolean expression over user attributes. A node is either a
// logical operator with children or a leaf Match; which fields are meaningful
// is determined by Op alone.
type Tree struct {
	Op       Operator `json:"op"`
	Children []*Tree  `json:"conditions,omitempty"`
	Match    *Match   `json:"match,omitempty"`
}

// NewAnd builds a conjunction node.
func NewAnd(children ...*Tree) *Tree {
	return &Tree{Op: OperatorAnd, Children: children}
}

// NewOr builds a disjunction node.
func NewOr(children ...*Tree) *Tree {
	return &Tree{Op: OperatorOr, Children: children}
}

// NewNot builds a negation node over a single child.
func NewNot(child *Tree) *Tree {
	return &Tree{Op: OperatorNot, Children: []*Tree{child}}
}

// NewMatch builds an exact-match leaf over the named attribute.
func NewMatch(attribute, value string) *Tree {
	return &Tree{Op: OperatorMatch, Match: &Match{Attribute: attribute, Type: MatchTypeExact, Value: value}}
}

// Evaluate walks the tree against the user's attribute map.
// A nil tree evaluates to true: it expresses no restriction.
func (t *Tree) Evaluate(attributes map[string]string) (bool, error) {
	if t == nil {
		return true, nil
	}

	switch t.Op {
	case OperatorAnd:
		for _, child := range t.Children {
			ok, err := child.Evaluate(attributes)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil

	case OperatorOr:
		for _, child := range t.Children {
			ok, err := child.Evaluate(attributes)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case OperatorNot:
		if len(t.Children) != 1 {
			return false, errors.Join(ErrMalformedTree, errors.New("not operator requires exactly one child"))
		}
		ok, err := t.Children[0].Evaluate(attributes)
		if err != nil {
			return false, err
		}
		return !ok, nil

	case OperatorMatch:
		if t.Match == nil {
			return false, errors.Join(ErrMalformedTree, errors.New("match node has no match payload"))
		}
		if t.Match.Type != "" && t.Match.Type != MatchTypeExact {
			return false, errors.Join(ErrUnknownMatchType, errors.New("match type "+t.Match.Type))
		}
		actual, exists := attributes[t.Match.Attribute]
		if !exists {
			// Unknown attribute means the condition is not satisfied,
			// never an evaluation error.
			return false, nil
		}
		return actual == t.Match.Value, nil

	default:
		return false, errors.Join(ErrMalformedTree, errors.New("unknown operator "+string(t.Op)))
	}
}
