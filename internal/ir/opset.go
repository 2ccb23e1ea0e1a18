package ir

import (
	"fmt"
	"slices"
)

// OperatorSet is an immutable set of operator overloads keyed by canonical
// signature. Membership is exact: a node matches only when its own schema
// is one of the registered signatures.
type OperatorSet struct {
	sigs map[string]Schema
}

// NewOperatorSet parses every signature and builds the set.
func NewOperatorSet(sigs ...string) (*OperatorSet, error) {
	s := &OperatorSet{sigs: make(map[string]Schema, len(sigs))}
	for _, sig := range sigs {
		schema, err := ParseSchema(sig)
		if err != nil {
			return nil, err
		}
		s.sigs[schema.String()] = schema
	}
	return s, nil
}

// MustOperatorSet is like NewOperatorSet but panics on a malformed signature.
// Intended for package-level tables.
func MustOperatorSet(sigs ...string) *OperatorSet {
	s, err := NewOperatorSet(sigs...)
	if err != nil {
		panic(fmt.Sprintf("ir: %v", err))
	}
	return s
}

// Contains reports whether n's operator overload is in the set.
func (s *OperatorSet) Contains(n *Node) bool {
	if s == nil || n == nil || n.schema == "" {
		return false
	}
	_, ok := s.sigs[n.schema]
	return ok
}

// ContainsSignature reports whether sig (in any whitespace layout) is in the set.
func (s *OperatorSet) ContainsSignature(sig string) bool {
	if s == nil {
		return false
	}
	schema, err := ParseSchema(sig)
	if err != nil {
		return false
	}
	_, ok := s.sigs[schema.String()]
	return ok
}

// Len returns the number of registered overloads.
func (s *OperatorSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.sigs)
}

// Signatures returns the canonical signatures in sorted order.
func (s *OperatorSet) Signatures() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.sigs))
	for sig := range s.sigs {
		out = append(out, sig)
	}
	slices.Sort(out)
	return out
}
