// Package model is the caller-side input tree: groups of named sets of
// typed points. Build validates the tree and flattens it into the ordered,
// globally indexed list the merge engine consumes.
//
// A set's merge identity is its global index, never its name. Indices are
// assigned by visiting groups in input order and sets within a group in
// input order, starting at 0, because XMGrace addresses sets as S0, S1, ...
// per graph and knows nothing about groups.
package model

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Input tree
// ---------------------------------------------------------------------------

// Point is one row of a set. Its length must equal the arity of the set's kind.
type Point []float64

// Set is one named series of points.
type Set struct {
	Name   string  `yaml:"name"`
	Kind   Kind    `yaml:"kind"`
	Points []Point `yaml:"points"`
}

// Group is an organizational label over sets. It has no XMGrace primitive
// and is flattened away before rendering.
type Group struct {
	Name string `yaml:"name"`
	Sets []Set  `yaml:"sets"`
}

// IndexedSet is a Set tagged with its global index and the name of the
// group it came from. Group is only used for legend text.
type IndexedSet struct {
	Index int
	Group string
	Set
}

// Legend returns the text used for the set's legend: the set name, or the
// group name when the set is unnamed.
func (s IndexedSet) Legend() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Group
}

// ---------------------------------------------------------------------------
// Build
// ---------------------------------------------------------------------------

// BuildOptions tunes validation policy.
type BuildOptions struct {
	// RejectEmptyGroups makes a group with zero sets an error. When false an
	// empty group contributes nothing and has no visible effect.
	RejectEmptyGroups bool
}

// Build validates groups and returns their sets flattened in input order,
// each tagged with its global index. It performs no I/O.
func Build(groups []Group, opts BuildOptions) ([]IndexedSet, error) {
	var out []IndexedSet
	for gi, g := range groups {
		if len(g.Sets) == 0 && opts.RejectEmptyGroups {
			return nil, &InputError{
				Group: g.Name, GroupIndex: gi, SetIndex: -1, PointIndex: -1,
				Reason: "group has no sets",
				err:    ErrEmptyGroup,
			}
		}
		for si, s := range g.Sets {
			if err := validateSet(gi, g.Name, si, s); err != nil {
				return nil, err
			}
			kind, _ := ParseKind(string(s.Kind))
			s.Kind = kind
			out = append(out, IndexedSet{Index: len(out), Group: g.Name, Set: s})
		}
	}
	return out, nil
}

// validateSet checks the kind and the arity of every point in s.
func validateSet(gi int, group string, si int, s Set) error {
	kind, ok := ParseKind(string(s.Kind))
	if !ok {
		return &InputError{
			Group: group, GroupIndex: gi, Set: s.Name, SetIndex: si, PointIndex: -1,
			Reason: fmt.Sprintf("unrecognized set kind %q", s.Kind),
			err:    ErrMalformedInput,
		}
	}
	want := kind.Arity()
	for pi, p := range s.Points {
		if len(p) != want {
			return &InputError{
				Group: group, GroupIndex: gi, Set: s.Name, SetIndex: si, PointIndex: pi,
				Reason: fmt.Sprintf("point has %d values, kind %s needs %d", len(p), kind, want),
				err:    ErrMalformedInput,
			}
		}
	}
	return nil
}

// Count returns the number of sets across all groups.
func Count(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Sets)
	}
	return n
}

// Describe renders a one-line summary of sets, e.g. "S0 a (xy, 4 points)".
func Describe(sets []IndexedSet) string {
	parts := make([]string, 0, len(sets))
	for _, s := range sets {
		parts = append(parts, fmt.Sprintf("S%d %s (%s, %d points)", s.Index, s.Legend(), s.Kind, len(s.Points)))
	}
	return strings.Join(parts, "; ")
}
