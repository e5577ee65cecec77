package query

import (
	"fmt"
	"strings"
)

// DefaultWindow is the head/tail size used when a caller gives none.
const DefaultWindow = 10

// Kind names an operation variant.
type Kind string

const (
	KindFilter Kind = "filter"
	KindHead   Kind = "head"
	KindTail   Kind = "tail"
	KindSlice  Kind = "slice"
)

// Operation is one deferred step of a cursor pipeline.
//
// This is a sealed interface: Filter, Head, Tail and Slice are the only
// variants, so executors can switch over them exhaustively.
type Operation interface {
	Kind() Kind
	String() string
	operation()
}

// Filter keeps records matching every condition. Evaluation of a record
// stops at the first failing condition.
type Filter struct {
	Conditions []Condition
}

// Head keeps at most the first N records.
type Head struct {
	N int
}

// Tail keeps at most the last N records, in their original order.
type Tail struct {
	N int
}

// Slice keeps records in [Start, Stop). Negative bounds count from the end
// and force the upstream sequence to be materialized.
type Slice struct {
	Start, Stop int
}

func (Filter) Kind() Kind { return KindFilter }
func (Head) Kind() Kind   { return KindHead }
func (Tail) Kind() Kind   { return KindTail }
func (Slice) Kind() Kind  { return KindSlice }

func (Filter) operation() {}
func (Head) operation()   {}
func (Tail) operation()   {}
func (Slice) operation()  {}

func (f Filter) String() string {
	parts := make([]string, len(f.Conditions))
	for i, c := range f.Conditions {
		parts[i] = c.String()
	}
	return "filter(" + strings.Join(parts, " AND ") + ")"
}

func (h Head) String() string  { return fmt.Sprintf("head(%d)", h.N) }
func (t Tail) String() string  { return fmt.Sprintf("tail(%d)", t.N) }
func (s Slice) String() string { return fmt.Sprintf("slice(%d, %d)", s.Start, s.Stop) }

// Streaming reports whether the slice can be evaluated without
// materializing the upstream sequence.
func (s Slice) Streaming() bool {
	return s.Start >= 0 && s.Stop >= 0
}

// Filters returns only the Filter operations of ops, in order.
func Filters(ops []Operation) []Operation {
	var out []Operation
	for _, op := range ops {
		if op.Kind() == KindFilter {
			out = append(out, op)
		}
	}
	return out
}

// Describe renders a pipeline, e.g. "filter(age >= 10) | head(5)".
func Describe(ops []Operation) string {
	if len(ops) == 0 {
		return "all"
	}
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, " | ")
}
