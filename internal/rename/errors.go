package rename

import (
	"errors"
	"fmt"
	"strings"

	"relocator/internal/ir"
)

var (
	// ErrMalformedIR marks input that breaks an IR contract the renamer relies on.
	ErrMalformedIR = errors.New("malformed IR")
	// ErrMapping marks a failure of the name mapper or an unusable mapping result.
	ErrMapping = errors.New("class name mapping failed")
	// ErrSharedInput marks a batch in which two classes share a class or a method body.
	ErrSharedInput = errors.New("input shared between classes")
)

// Location pinpoints where in a class the renamer was working.
type Location struct {
	Class  string
	Method string
	Block  int // -1 outside a method body
	Instr  int
	Kind   ir.InstrKind
	What   string // e.g. "parent", "interface 2", "annotation a.B"
}

func (l Location) String() string {
	var parts []string
	if l.Class != "" {
		parts = append(parts, "class "+l.Class)
	}
	if l.Method != "" {
		parts = append(parts, "method "+l.Method)
	}
	if l.Block >= 0 {
		parts = append(parts, fmt.Sprintf("bb%d instr %d (%s)", l.Block, l.Instr, l.Kind))
	}
	if l.What != "" {
		parts = append(parts, l.What)
	}
	return strings.Join(parts, ", ")
}

// IRError reports malformed input. It matches ErrMalformedIR.
type IRError struct {
	At     Location
	Reason string
}

func (e *IRError) Error() string {
	return fmt.Sprintf("%v at %s: %s", ErrMalformedIR, e.At, e.Reason)
}

func (e *IRError) Unwrap() error { return ErrMalformedIR }

// MapError reports a mapper failure for Name. It matches both ErrMapping
// and the mapper's own error.
type MapError struct {
	At   Location
	Name string
	Err  error
}

func (e *MapError) Error() string {
	return fmt.Sprintf("%v at %s: %q: %v", ErrMapping, e.At, e.Name, e.Err)
}

func (e *MapError) Unwrap() []error { return []error{ErrMapping, e.Err} }
