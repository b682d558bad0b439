package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedInput marks an unrecognized set kind or a point whose
	// arity does not match its set's kind.
	ErrMalformedInput = errors.New("model: malformed input")
	// ErrEmptyGroup marks a group with no sets when empty groups are rejected.
	ErrEmptyGroup = errors.New("model: empty group")
)

// InputError locates a validation failure in the input tree. Indices that
// do not apply are -1.
type InputError struct {
	Group      string
	GroupIndex int
	Set        string
	SetIndex   int
	PointIndex int
	Reason     string

	err error
}

func (e *InputError) Error() string {
	var b strings.Builder
	b.WriteString(e.err.Error())
	fmt.Fprintf(&b, ": group %d %q", e.GroupIndex, e.Group)
	if e.SetIndex >= 0 {
		fmt.Fprintf(&b, ", set %d %q", e.SetIndex, e.Set)
	}
	if e.PointIndex >= 0 {
		fmt.Fprintf(&b, ", point %d", e.PointIndex)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

// Unwrap exposes ErrMalformedInput or ErrEmptyGroup to errors.Is.
func (e *InputError) Unwrap() error { return e.err }
