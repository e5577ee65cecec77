package query

import (
	"fmt"
	"iter"
	"strings"

	"github.com/leengari/recordstore/internal/domain/data"
)

// Engine evaluates a pipeline against live storage. Every call walks the
// storage state as it is at that moment.
type Engine interface {
	Collect(ops []Operation) iter.Seq[*data.Record]
	Count(ops []Operation) int
	First(ops []Operation) (*data.Record, bool)
	Last(ops []Operation) (*data.Record, bool)
	Key(key any, ops []Operation) (*data.Record, error)
}

// previewSize bounds the records rendered by Cursor.String.
const previewSize = 20

// Cursor is an immutable, lazily evaluated query over an Engine.
//
// Transformations (Filter, Where, Head, Tail, Slice) return a new cursor
// with one more operation and never touch the receiver, so a base cursor can
// be shared by several derived queries. Terminal calls (All, Records, Count,
// First, Last, Key) hand the operation list to the engine, which interprets
// it fresh each time. Cursors hold no snapshot: two terminal calls may
// observe different results if records were pushed in between.
type Cursor struct {
	engine Engine
	ops    []Operation
}

// New returns a cursor over every record of e.
func New(e Engine) Cursor {
	return Cursor{engine: e}
}

// Operations returns a copy of the pending operations.
func (c Cursor) Operations() []Operation {
	return append([]Operation(nil), c.ops...)
}

func (c Cursor) with(op Operation) Cursor {
	ops := make([]Operation, len(c.ops), len(c.ops)+1)
	copy(ops, c.ops)
	return Cursor{engine: c.engine, ops: append(ops, op)}
}

// Filter keeps records matching every condition.
func (c Cursor) Filter(conds ...Condition) Cursor {
	return c.with(Filter{Conditions: append([]Condition(nil), conds...)})
}

// Where is Filter with keyword-style conditions.
func (c Cursor) Where(kw Kwargs) Cursor {
	return c.Filter(ParseKwargs(kw)...)
}

// Head keeps at most the first n records. n <= 0 keeps none.
func (c Cursor) Head(n int) Cursor {
	return c.with(Head{N: n})
}

// Tail keeps at most the last n records. n <= 0 keeps none.
func (c Cursor) Tail(n int) Cursor {
	return c.with(Tail{N: n})
}

// Slice keeps records in [start, stop) with negative-index semantics.
func (c Cursor) Slice(start, stop int) Cursor {
	return c.with(Slice{Start: start, Stop: stop})
}

// All iterates the matching records. Each record is a detached copy.
func (c Cursor) All() iter.Seq[*data.Record] {
	return c.engine.Collect(c.ops)
}

// Records materializes the matching records.
func (c Cursor) Records() []*data.Record {
	var out []*data.Record
	for r := range c.All() {
		out = append(out, r)
	}
	return out
}

// Count returns the number of matching records.
func (c Cursor) Count() int {
	return c.engine.Count(c.ops)
}

// First returns the first matching record.
func (c Cursor) First() (*data.Record, bool) {
	return c.engine.First(c.ops)
}

// Last returns the last matching record.
func (c Cursor) Last() (*data.Record, bool) {
	return c.engine.Last(c.ops)
}

// Key looks a record up by key value. Lookups honour the cursor's filters.
func (c Cursor) Key(key any) (*data.Record, error) {
	return c.engine.Key(key, c.ops)
}

// String renders the count and up to the first 20 records, e.g.
// "<Records: 2 [<User: ann@example.com>, <User: bob@example.com>]>".
// It evaluates the cursor.
func (c Cursor) String() string {
	count := c.Count()

	items := make([]string, 0, min(count, previewSize)+1)
	for r := range c.Head(previewSize).All() {
		items = append(items, r.Repr())
	}
	if count > previewSize {
		items = append(items, "...(remaining records truncated)...")
	}

	return fmt.Sprintf("<Records: %d [%s]>", count, strings.Join(items, ", "))
}
