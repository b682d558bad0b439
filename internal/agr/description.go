package agr

import (
	"fmt"
	"strings"
	"time"

	"agrsync/internal/merge"
)

// DescriptionLayout is how the "Last Updated" stamp is written.
const DescriptionLayout = "Monday January 02, 2006 at 03:04PM"

// DescriptionLines renders text as a boxed block of @description lines led
// by a "Last Updated" stamp. Blank lines are dropped, tabs expanded and
// every line padded to the longest one.
func DescriptionLines(text string, now time.Time) []string {
	var body []string
	width := 0
	for _, l := range strings.Split(expandTabs(text, 8), "\n") {
		l = strings.TrimRight(l, "\r")
		if l == "" {
			continue
		}
		body = append(body, l)
		if n := len([]rune(l)); n > width {
			width = n
		}
	}
	divider := "@description " + quote(strings.Repeat("=", width))

	lines := []string{
		"@description " + quote("Last Updated: "+now.Format(DescriptionLayout)),
		divider,
	}
	for _, l := range body {
		lines = append(lines, "@description "+quote(fmt.Sprintf("%-*s", width, l)))
	}
	return append(lines, divider)
}

// SetDescription replaces every @description line in doc's preamble with a
// fresh block, placed after the "@page size" line or, failing that, at the
// end of the preamble. The directive anchor is shifted to stay on the same
// surrounding lines.
func SetDescription(doc *merge.Document, text string, now time.Time) {
	anchor := doc.DirectiveAnchor
	kept := make([]string, 0, len(doc.Preamble))
	for i, l := range doc.Preamble {
		if Classify(l).Class == ClassDescription {
			if anchor >= 0 && i < doc.DirectiveAnchor {
				anchor--
			}
			continue
		}
		kept = append(kept, l)
	}

	at := len(kept)
	for i, l := range kept {
		if strings.HasPrefix(strings.TrimSpace(l), "@page size") {
			at = i + 1
			break
		}
	}
	block := DescriptionLines(text, now)
	if anchor >= 0 && at <= anchor {
		anchor += len(block)
	}

	out := make([]string, 0, len(kept)+len(block))
	out = append(out, kept[:at]...)
	out = append(out, block...)
	out = append(out, kept[at:]...)
	doc.Preamble = out
	doc.DirectiveAnchor = anchor
}

func expandTabs(s string, size int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			pad := size - col%size
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
		case '\n':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}
