package agr

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"agrsync/internal/merge"
)

// ErrIO marks a failure to read or write a project file.
var ErrIO = errors.New("agr: i/o error")

// IOError wraps a file-system failure with the operation and path involved.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("agr: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrIO) hold for every IOError.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// ParseOptions selects which graph's sets are managed.
type ParseOptions struct {
	Graph int
}

// ParseFile partitions the project file at path. A missing or empty file
// yields an empty document and no error.
func ParseFile(path string, opts ParseOptions) (*merge.Document, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return nil, err
	}
	return ParseLines(lines, opts), nil
}

// Parse partitions a project file read from r.
//
// Set directives issued while opts.Graph is the current graph are bucketed
// by index; legend directives are kept apart so a regenerated legend does
// not pile up in the bucket. Data blocks of that graph are discarded. Every
// other line, including data blocks of other graphs, is preamble in file
// order. Parsing never fails on content: unknown or malformed lines are
// preamble too.
func Parse(r io.Reader, opts ParseOptions) (*merge.Document, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ParseLines(lines, opts), nil
}

// ParseLines is Parse over lines already split, without line endings.
func ParseLines(lines []string, opts ParseOptions) *merge.Document {
	doc := merge.NewDocument()

	var (
		graph     = 0 // XMGrace starts with g0 current
		inBlock   bool
		foreign   bool
		blockLine int
		blockSet  int
		seen      = make(map[int]bool)
	)

	for i, text := range lines {
		n := i + 1

		if inBlock {
			if foreign {
				doc.Preamble = append(doc.Preamble, text)
			}
			if Classify(text).Class == ClassEnd {
				inBlock = false
			}
			continue
		}

		l := Classify(text)
		switch l.Class {
		case ClassTarget:
			inBlock, blockLine, blockSet = true, n, l.Set
			foreign = l.Graph != opts.Graph
			if foreign {
				doc.Preamble = append(doc.Preamble, text)
				continue
			}
			if seen[l.Set] {
				doc.Warnings = append(doc.Warnings, fmt.Sprintf("line %d: duplicate data block for S%d", n, l.Set))
			}
			seen[l.Set] = true
		case ClassWith:
			graph = l.Graph
			doc.Preamble = append(doc.Preamble, text)
		case ClassSetDirective:
			if graph != opts.Graph {
				doc.Preamble = append(doc.Preamble, text)
				continue
			}
			if doc.DirectiveAnchor < 0 {
				doc.DirectiveAnchor = len(doc.Preamble)
			}
			if l.Legend() {
				doc.SetLegend(l.Set, text)
			} else {
				doc.AddDirective(l.Set, text)
			}
		case ClassEnd:
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("line %d: block end outside a data block", n))
			doc.Preamble = append(doc.Preamble, text)
		default:
			doc.Preamble = append(doc.Preamble, text)
		}
	}
	if inBlock && !foreign {
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("line %d: data block for S%d never ends", blockLine, blockSet))
	}
	return doc
}
