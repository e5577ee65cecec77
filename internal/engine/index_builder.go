package engine

import (
	"fmt"
	"maps"
	"slices"

	"github.com/leengari/recordstore/internal/domain/errors"
)

// Verify rebuilds every index from the stored records and reports the first
// disagreement with the live indexes, or a uniqueness violation among the
// stored records themselves.
func (c *Collection) Verify() error {
	keys := make(map[slot]int64)
	groups := make([]map[string][]uint64, len(c.indexes))
	for i := range groups {
		groups[i] = make(map[string][]uint64)
	}

	for _, id := range c.order {
		r := c.records[id]
		for _, v := range groupValues(r, c.keys) {
			if holder, dup := keys[v.slot]; dup {
				return errors.NewDuplicateKey(c.name, c.keys[v.group], v.raw, holder)
			}
			keys[v.slot] = id
		}
		for _, v := range groupValues(r, c.indexes) {
			groups[v.group][v.value] = append(groups[v.group][v.value], uint64(id))
		}
	}

	if !maps.Equal(keys, c.keyIndex) {
		return fmt.Errorf("collection %s: key index has %d entries, records imply %d",
			c.name, len(c.keyIndex), len(keys))
	}

	for i, want := range groups {
		if len(want) != len(c.groupIndex[i]) {
			return fmt.Errorf("collection %s: index group %s has %d values, records imply %d",
				c.name, c.indexes[i], len(c.groupIndex[i]), len(want))
		}
		for value, ids := range want {
			bm, ok := c.groupIndex[i][value]
			if !ok {
				return fmt.Errorf("collection %s: index group %s is missing a value", c.name, c.indexes[i])
			}
			got := bm.ToArray()
			slices.Sort(ids)
			if !slices.Equal(got, ids) {
				return fmt.Errorf("collection %s: index group %s holds %v, records imply %v",
					c.name, c.indexes[i], got, ids)
			}
		}
	}

	c.logger.Debug("indexes verified",
		"collection", c.name,
		"records", len(c.records),
		"key_entries", len(keys))
	return nil
}
