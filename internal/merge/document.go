// Package merge combines a freshly built set list with the partitioned
// contents of a prior project file.
//
// The engine never looks at directive text. Everything format-specific
// lives behind Renderer, so the merge policy can be tested against a
// synthetic in-memory Document.
package merge

import "sort"

// Document is a prior project file partitioned by role.
//
//	Preamble         document-level lines, verbatim, in file order
//	DirectiveAnchor  preamble position where the first set directive was
//	                 found, or -1 when the file had none
//	Directives       non-data lines bound to one global set index
//	Legends          last legend line seen for each global set index
//
// Data blocks are not kept: they are fully replaced on every render.
type Document struct {
	Preamble        []string
	DirectiveAnchor int
	Directives      map[int][]string
	Legends         map[int]string

	// Warnings collects non-fatal oddities met while parsing.
	Warnings []string
}

// NewDocument returns an empty document, the state of a file that does not
// exist yet.
func NewDocument() *Document {
	return &Document{
		DirectiveAnchor: -1,
		Directives:      make(map[int][]string),
		Legends:         make(map[int]string),
	}
}

// HasPreamble reports whether the prior file contributed preamble lines.
func (d *Document) HasPreamble() bool {
	return d != nil && len(d.Preamble) > 0
}

// Empty reports whether d carries nothing at all.
func (d *Document) Empty() bool {
	return d == nil || (len(d.Preamble) == 0 && len(d.Directives) == 0 && len(d.Legends) == 0)
}

// Indices returns every index that owns a directive bucket or a legend, sorted.
func (d *Document) Indices() []int {
	if d == nil {
		return nil
	}
	seen := make(map[int]bool, len(d.Directives)+len(d.Legends))
	for i := range d.Directives {
		seen[i] = true
	}
	for i := range d.Legends {
		seen[i] = true
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// AddDirective appends line to the bucket for index.
func (d *Document) AddDirective(index int, line string) {
	if d.Directives == nil {
		d.Directives = make(map[int][]string)
	}
	d.Directives[index] = append(d.Directives[index], line)
}

// SetLegend records line as the legend for index, replacing any earlier one.
func (d *Document) SetLegend(index int, line string) {
	if d.Legends == nil {
		d.Legends = make(map[int]string)
	}
	d.Legends[index] = line
}
