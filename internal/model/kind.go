package model

import (
	"sort"
	"strings"
)

// Kind is an XMGrace set type. It fixes the number of columns per point.
type Kind string

const (
	KindXY         Kind = "xy"
	KindXYDX       Kind = "xydx"
	KindXYDY       Kind = "xydy"
	KindXYDXDX     Kind = "xydxdx"
	KindXYDYDY     Kind = "xydydy"
	KindXYDXDY     Kind = "xydxdy"
	KindXYDXDXDYDY Kind = "xydxdxdydy"
	KindBar        Kind = "bar"
	KindBarDY      Kind = "bardy"
	KindBarDYDY    Kind = "bardydy"
	KindXYHiLo     Kind = "xyhilo"
	KindXYZ        Kind = "xyz"
	KindXYR        Kind = "xyr"
	KindXYSize     Kind = "xysize"
	KindXYColor    Kind = "xycolor"
	KindXYColPat   Kind = "xycolpat"
	KindXYVMap     Kind = "xyvmap"
	KindXYBoxPlot  Kind = "xyboxplot"
)

var arities = map[Kind]int{
	KindXY:         2,
	KindXYDX:       3,
	KindXYDY:       3,
	KindXYDXDX:     4,
	KindXYDYDY:     4,
	KindXYDXDY:     4,
	KindXYDXDXDYDY: 6,
	KindBar:        2,
	KindBarDY:      3,
	KindBarDYDY:    4,
	KindXYHiLo:     5,
	KindXYZ:        3,
	KindXYR:        3,
	KindXYSize:     3,
	KindXYColor:    3,
	KindXYColPat:   4,
	KindXYVMap:     4,
	KindXYBoxPlot:  6,
}

// ParseKind normalizes s and reports whether it names a known kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	_, ok := arities[k]
	return k, ok
}

// Arity returns the number of values per point, or 0 for an unknown kind.
func (k Kind) Arity() int { return arities[k] }

// Valid reports whether k is a recognized kind.
func (k Kind) Valid() bool {
	_, ok := arities[k]
	return ok
}

// Kinds returns every recognized kind, sorted.
func Kinds() []Kind {
	out := make([]Kind, 0, len(arities))
	for k := range arities {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
