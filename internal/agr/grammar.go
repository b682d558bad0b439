// Package agr is the translation layer for XMGrace project files. It owns
// every sigil and keyword of the format: classifying lines, partitioning an
// existing file into a merge.Document, rendering data blocks and default
// directives, and writing the result back to disk.
//
// A project file is a sequence of lines:
//
//	# Grace project file          comment, preamble
//	@version 50125                document directive, preamble
//	@with g0                      selects the current graph
//	@    s0 symbol color 2        set directive bound to index 0
//	@    s0 legend  "alternating" legend directive bound to index 0
//	@target G0.S0                 data block start for index 0
//	@type xy                      part of the block
//	0.1 -0.1                      data row
//	&                             data block end
package agr

import (
	"regexp"
	"strconv"
	"strings"
)

// Header is the first line XMGrace writes into every project file.
const Header = "# Grace project file"

// Class is the structural role of one line.
type Class int

const (
	ClassOther Class = iota
	ClassTarget
	ClassType
	ClassEnd
	ClassWith
	ClassSetDirective
	ClassDescription
	ClassTimestamp
)

func (c Class) String() string {
	switch c {
	case ClassTarget:
		return "target"
	case ClassType:
		return "type"
	case ClassEnd:
		return "end"
	case ClassWith:
		return "with"
	case ClassSetDirective:
		return "set-directive"
	case ClassDescription:
		return "description"
	case ClassTimestamp:
		return "timestamp"
	default:
		return "other"
	}
}

// Line is a classified line. Graph and Set are -1 when the line does not
// carry them.
type Line struct {
	Class   Class
	Graph   int
	Set     int
	Keyword string // first word after the set token, lower case
	Kind    string // argument of @type
	Text    string
}

// Legend reports whether l is a set legend directive.
func (l Line) Legend() bool {
	return l.Class == ClassSetDirective && l.Keyword == "legend"
}

var (
	targetRe    = regexp.MustCompile(`(?i)^@\s*target\s+G(\d+)\.S(\d+)\s*$`)
	withRe      = regexp.MustCompile(`(?i)^@\s*with\s+g(\d+)\s*$`)
	typeRe      = regexp.MustCompile(`(?i)^@\s*type\s+(\S+)\s*$`)
	directiveRe = regexp.MustCompile(`(?i)^@\s*s(\d+)\s+(\S+)`)
	descRe      = regexp.MustCompile(`(?i)^@\s*description\b`)
	timestampRe = regexp.MustCompile(`(?i)^@\s*timestamp\s+def\b`)
)

// Classify assigns text its structural role. Anything not recognized is
// ClassOther and ends up in the preamble untouched.
func Classify(text string) Line {
	l := Line{Class: ClassOther, Graph: -1, Set: -1, Text: text}
	trimmed := strings.TrimSpace(text)
	if trimmed == "&" {
		l.Class = ClassEnd
		return l
	}
	if !strings.HasPrefix(trimmed, "@") {
		return l
	}
	if m := targetRe.FindStringSubmatch(trimmed); m != nil {
		g, errG := strconv.Atoi(m[1])
		s, errS := strconv.Atoi(m[2])
		if errG == nil && errS == nil {
			l.Class, l.Graph, l.Set = ClassTarget, g, s
		}
		return l
	}
	if m := withRe.FindStringSubmatch(trimmed); m != nil {
		if g, err := strconv.Atoi(m[1]); err == nil {
			l.Class, l.Graph = ClassWith, g
		}
		return l
	}
	if m := typeRe.FindStringSubmatch(trimmed); m != nil {
		l.Class, l.Kind = ClassType, strings.ToLower(m[1])
		return l
	}
	if m := directiveRe.FindStringSubmatch(trimmed); m != nil {
		if s, err := strconv.Atoi(m[1]); err == nil {
			l.Class, l.Set, l.Keyword = ClassSetDirective, s, strings.ToLower(m[2])
		}
		return l
	}
	if descRe.MatchString(trimmed) {
		l.Class = ClassDescription
		return l
	}
	if timestampRe.MatchString(trimmed) {
		l.Class = ClassTimestamp
	}
	return l
}

// Volatile reports whether a line changes on every update regardless of
// data, so change reports should ignore it.
func Volatile(text string) bool {
	switch Classify(text).Class {
	case ClassDescription, ClassTimestamp:
		return true
	}
	return false
}
