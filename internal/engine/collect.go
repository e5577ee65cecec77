package engine

import (
	"fmt"
	"iter"
	"slices"

	"github.com/leengari/recordstore/internal/comparison"
	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/errors"
	"github.com/leengari/recordstore/internal/domain/schema"
	"github.com/leengari/recordstore/internal/query"
)

// Collect runs ops over the live records and yields deep copies.
func (c *Collection) Collect(ops []query.Operation) iter.Seq[*data.Record] {
	return func(yield func(*data.Record) bool) {
		n := 0
		defer func() {
			c.notify(Event{
				Type: EventCollect,
				Data: map[string]any{"pipeline": query.Describe(ops), "yielded": n},
			})
		}()

		for r := range query.Run(c.source(ops), ops) {
			n++
			if !yield(r.Clone()) {
				return
			}
		}
	}
}

// Count returns the number of records ops yields. With no operations it is
// the stored size.
func (c *Collection) Count(ops []query.Operation) int {
	if len(ops) == 0 {
		return len(c.records)
	}
	n := 0
	for range query.Run(c.source(ops), ops) {
		n++
	}
	return n
}

// First returns a copy of the first record ops yields.
func (c *Collection) First(ops []query.Operation) (*data.Record, bool) {
	for r := range query.Run(c.source(ops), ops) {
		return r.Clone(), true
	}
	return nil, false
}

// Last returns a copy of the last record ops yields. Only the final record
// is copied.
func (c *Collection) Last(ops []query.Operation) (*data.Record, bool) {
	var last *data.Record
	for r := range query.Run(c.source(ops), ops) {
		last = r
	}
	if last == nil {
		return nil, false
	}
	return last.Clone(), true
}

// Key returns a copy of the record holding key in any key group. A
// composite key is passed as a data.Tuple or []any in group order.
//
// Only the filter operations of ops apply. A key held by a record those
// filters exclude fails with a filtered NotFoundError.
func (c *Collection) Key(key any, ops []query.Operation) (*data.Record, error) {
	id, ok := c.lookupKey(key)
	c.notify(Event{
		Type:     EventKeyLookup,
		RecordID: id,
		Data:     map[string]any{"key": key, "found": ok},
	})
	if !ok {
		return nil, &errors.NotFoundError{Collection: c.name, Key: key}
	}

	r := c.records[id]
	for _, op := range query.Filters(ops) {
		if !query.Matches(r, op.(query.Filter).Conditions) {
			return nil, &errors.NotFoundError{Collection: c.name, Key: key, Filtered: true}
		}
	}
	return r.Clone(), nil
}

// Lookup returns a cursor over the records whose value for group equals
// value. group must be a declared key or index group; a composite value is
// passed as a data.Tuple or []any in group order.
func (c *Collection) Lookup(group schema.Group, value any) (query.Cursor, error) {
	if !slices.ContainsFunc(c.keys, groupEq(group)) && !slices.ContainsFunc(c.indexes, groupEq(group)) {
		return query.Cursor{}, fmt.Errorf("collection %s: %s is not a key or index group", c.name, group)
	}

	var parts []any
	switch v := value.(type) {
	case data.Tuple:
		parts = v
	case []any:
		parts = v
	default:
		parts = []any{value}
	}
	if len(parts) != len(group) {
		return query.Cursor{}, fmt.Errorf("collection %s: %s takes %d values, got %d",
			c.name, group, len(group), len(parts))
	}

	conds := make([]query.Condition, len(group))
	for i, attr := range group {
		conds[i] = query.Cond(attr, comparison.Equals, parts[i])
	}
	return c.All().Filter(conds...), nil
}

func groupEq(g schema.Group) func(schema.Group) bool {
	return func(o schema.Group) bool { return slices.Equal(g, o) }
}

// source draws the sequence the pipeline runs over. When the first
// operation pins every attribute of a key or index group by equality, only
// the records indexed under that value are drawn; the filter still runs
// over them. Otherwise it is every record in push order.
func (c *Collection) source(ops []query.Operation) iter.Seq[*data.Record] {
	if len(ops) > 0 {
		if f, ok := ops[0].(query.Filter); ok {
			if ids, ok := c.candidates(f.Conditions); ok {
				return c.pick(ids)
			}
		}
	}
	return c.scan()
}

func (c *Collection) scan() iter.Seq[*data.Record] {
	return func(yield func(*data.Record) bool) {
		// order only grows; re-reading its length keeps the walk live.
		for i := 0; i < len(c.order); i++ {
			if !yield(c.records[c.order[i]]) {
				return
			}
		}
	}
}

func (c *Collection) pick(ids []int64) iter.Seq[*data.Record] {
	return func(yield func(*data.Record) bool) {
		for _, id := range ids {
			r, ok := c.records[id]
			if !ok {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// candidates resolves equality conditions against the indexes.
func (c *Collection) candidates(conds []query.Condition) ([]int64, bool) {
	pinned := make(map[string]any)
	for _, cond := range conds {
		if cond.Operator != comparison.Equals {
			continue
		}
		if _, seen := pinned[cond.Attribute]; !seen {
			pinned[cond.Attribute] = cond.Expected
		}
	}
	if len(pinned) == 0 {
		return nil, false
	}

	for i, g := range c.keys {
		if enc, ok := pinnedValue(pinned, g); ok {
			if id, hit := c.keyIndex[slot{group: i, value: enc}]; hit {
				return []int64{id}, true
			}
			return nil, true
		}
	}

	for i, g := range c.indexes {
		if enc, ok := pinnedValue(pinned, g); ok {
			bm, hit := c.groupIndex[i][enc]
			if !hit {
				return nil, true
			}
			ids := make([]int64, 0, bm.GetCardinality())
			it := bm.Iterator()
			for it.HasNext() {
				ids = append(ids, int64(it.Next()))
			}
			slices.SortFunc(ids, func(a, b int64) int {
				return c.position[a] - c.position[b]
			})
			return ids, true
		}
	}
	return nil, false
}

// pinnedValue encodes the value g takes under pinned. ok is false when an
// attribute of g is not pinned, is null, or has no canonical encoding.
func pinnedValue(pinned map[string]any, g schema.Group) (string, bool) {
	parts := make(data.Tuple, len(g))
	for i, attr := range g {
		v, ok := pinned[attr]
		if !ok || schema.IsNull(v) {
			return "", false
		}
		parts[i] = v
	}

	if len(parts) == 1 {
		return encodeExact(parts[0])
	}
	return encodeExact(parts)
}
