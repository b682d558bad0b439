package merge

import (
	"fmt"

	"agrsync/internal/model"
)

// Renderer produces the format-specific lines the engine splices together.
type Renderer interface {
	// Preamble synthesizes document-level lines for a brand new file.
	Preamble(title string) []string
	// DataBlock renders set's data block, start and end markers included.
	// skipped counts rows that could not be written.
	DataBlock(set model.IndexedSet) (lines []string, skipped int)
	// DefaultDirectives returns the styling given to a newly introduced index.
	DefaultDirectives(set model.IndexedSet) []string
	// Legend returns the legend directive computed from the set's name.
	Legend(set model.IndexedSet) string
	// Select returns the lines that make the managed graph current. They
	// lead a directive section that has no anchor in the prior document.
	Select() []string
}

// LegendPolicy decides which legend line follows a set's directive bucket.
type LegendPolicy string

const (
	// LegendGenerated always writes the legend computed from the set name,
	// after any carried-over directives.
	LegendGenerated LegendPolicy = "generated"
	// LegendPreserve keeps the prior legend line when the index had one.
	LegendPreserve LegendPolicy = "preserve"
)

// ParseLegendPolicy maps a settings value to a policy. Empty means generated.
func ParseLegendPolicy(s string) (LegendPolicy, error) {
	switch LegendPolicy(s) {
	case "", LegendGenerated:
		return LegendGenerated, nil
	case LegendPreserve:
		return LegendPreserve, nil
	}
	return "", fmt.Errorf("merge: unknown legend policy %q", s)
}

// Options tunes Merge.
type Options struct {
	Legend LegendPolicy
}

// Result is the merged line sequence plus bookkeeping about what happened
// to each index.
type Result struct {
	Lines []string

	// Carried lists indices whose prior directive bucket was re-attached.
	Carried []int
	// Defaulted lists indices that received default directives.
	Defaulted []int
	// Dropped lists prior indices with no set in the new input. Their
	// directives are not written.
	Dropped []int
	// SkippedRows counts rows the renderer refused to write.
	SkippedRows int
}

// Merge renders sets against the prior document doc. sets must be ordered
// by ascending Index, as model.Build returns them. doc may be nil.
//
// The merge key is the plain integer index. Removing set k makes the set
// formerly at k+1 pick up bucket k, and so on down the tail; only removal
// at the tail is clean.
func Merge(doc *Document, sets []model.IndexedSet, title string, r Renderer, opts Options) *Result {
	if doc == nil {
		doc = NewDocument()
	}
	res := &Result{}

	var directives []string
	present := make(map[int]bool, len(sets))
	for _, s := range sets {
		present[s.Index] = true
		if bucket, ok := doc.Directives[s.Index]; ok {
			directives = append(directives, bucket...)
			res.Carried = append(res.Carried, s.Index)
		} else {
			directives = append(directives, r.DefaultDirectives(s)...)
			res.Defaulted = append(res.Defaulted, s.Index)
		}
		directives = append(directives, legendLine(doc, s, r, opts.Legend))
	}
	for _, i := range doc.Indices() {
		if !present[i] {
			res.Dropped = append(res.Dropped, i)
		}
	}

	var lines []string
	if doc.HasPreamble() {
		anchor := doc.DirectiveAnchor
		if anchor < 0 || anchor > len(doc.Preamble) {
			// The preamble may end in another graph's context.
			anchor = len(doc.Preamble)
			if len(directives) > 0 {
				directives = append(r.Select(), directives...)
			}
		}
		lines = append(lines, doc.Preamble[:anchor]...)
		lines = append(lines, directives...)
		lines = append(lines, doc.Preamble[anchor:]...)
	} else {
		lines = append(lines, r.Preamble(title)...)
		lines = append(lines, directives...)
	}

	for _, s := range sets {
		block, skipped := r.DataBlock(s)
		lines = append(lines, block...)
		res.SkippedRows += skipped
	}
	res.Lines = lines
	return res
}

func legendLine(doc *Document, s model.IndexedSet, r Renderer, policy LegendPolicy) string {
	if policy == LegendPreserve {
		if prior, ok := doc.Legends[s.Index]; ok {
			return prior
		}
	}
	return r.Legend(s)
}
