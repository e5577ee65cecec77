package engine

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/schema"
)

// groupValue is the value of one key or index group on a record.
type groupValue struct {
	slot
	raw any
}

// groupValues returns the populated values of groups on r, in group order.
// Groups with an unset component are skipped: they are exempt from
// uniqueness and absent from indexes.
func groupValues(r *data.Record, groups []schema.Group) []groupValue {
	var out []groupValue
	for i, g := range groups {
		v, ok := r.KeyValue(g)
		if !ok {
			continue
		}
		out = append(out, groupValue{slot: slot{group: i, value: encodeKey(v)}, raw: v})
	}
	return out
}

// conflict returns the first key value held by an identity other than id.
func (c *Collection) conflict(values []groupValue, id int64) (groupValue, int64, bool) {
	for _, v := range values {
		if holder, ok := c.keyIndex[v.slot]; ok && holder != id {
			return v, holder, true
		}
	}
	return groupValue{}, 0, false
}

// reindexKeys replaces every key index entry of id with values.
func (c *Collection) reindexKeys(id int64, values []groupValue) {
	for _, s := range c.keysByID[id] {
		if c.keyIndex[s] == id {
			delete(c.keyIndex, s)
		}
	}

	slots := make([]slot, len(values))
	for i, v := range values {
		c.keyIndex[v.slot] = id
		slots[i] = v.slot
	}
	c.keysByID[id] = slots
}

// reindexGroups replaces every index group entry of id with values.
func (c *Collection) reindexGroups(id int64, values []groupValue) {
	for _, s := range c.groupsByID[id] {
		bm, ok := c.groupIndex[s.group][s.value]
		if !ok {
			continue
		}
		bm.Remove(uint64(id))
		if bm.IsEmpty() {
			delete(c.groupIndex[s.group], s.value)
		}
	}

	slots := make([]slot, len(values))
	for i, v := range values {
		bm, ok := c.groupIndex[v.group][v.value]
		if !ok {
			bm = roaring64.New()
			c.groupIndex[v.group][v.value] = bm
		}
		bm.Add(uint64(id))
		slots[i] = v.slot
	}
	c.groupsByID[id] = slots
}

// lookupKey resolves a key value against the key groups in declaration
// order and returns the first identity holding it.
func (c *Collection) lookupKey(key any) (int64, bool) {
	enc := encodeKey(key)
	for i := range c.keys {
		if id, ok := c.keyIndex[slot{group: i, value: enc}]; ok {
			return id, true
		}
	}
	return 0, false
}
