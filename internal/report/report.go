// Package report summarizes what an update changed in a project file.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"
)

// Report compares the line sequence of a file before and after an update.
type Report struct {
	// Changed is false when the two versions differ only in ignored lines.
	Changed bool
	// Diff is a human readable line diff; empty when nothing changed.
	Diff string

	Before int
	After  int
}

// Compare builds a Report for before and after. Lines for which ignore
// returns true (timestamps, "Last Updated" stamps) are left out of the
// comparison. ignore may be nil.
func Compare(before, after []string, ignore func(string) bool) *Report {
	b, a := filter(before, ignore), filter(after, ignore)
	r := &Report{Before: len(before), After: len(after)}
	if cmp.Equal(b, a) {
		return r
	}
	r.Changed = true
	r.Diff = cmp.Diff(b, a)
	return r
}

func filter(lines []string, ignore func(string) bool) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if ignore != nil && ignore(l) {
			continue
		}
		out = append(out, l)
	}
	return out
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Write prints r to w, colouring added and removed lines.
func (r *Report) Write(w io.Writer) {
	if !r.Changed {
		fmt.Fprintln(w, headerStyle.Render("No changes since the previous version."))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("File changed (%d → %d lines):", r.Before, r.After)))
	for _, l := range strings.Split(strings.TrimRight(r.Diff, "\n"), "\n") {
		switch t := strings.TrimSpace(l); {
		case strings.HasPrefix(t, "+"):
			fmt.Fprintln(w, addedStyle.Render(l))
		case strings.HasPrefix(t, "-"):
			fmt.Fprintln(w, removedStyle.Render(l))
		default:
			fmt.Fprintln(w, l)
		}
	}
}
