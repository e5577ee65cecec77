package engine

import (
	"fmt"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/errors"
)

// Push stores a deep copy of r.
//
// A record without an identity is inserted under the next identity; a record
// that already carries one replaces the stored copy at that identity. Every
// key group is checked before any index is touched, so a DuplicateKey
// failure leaves the collection exactly as it was. On success r itself is
// stamped with its identity and push time.
func (c *Collection) Push(r *data.Record) error {
	if r == nil {
		return fmt.Errorf("collection %s: cannot push a nil record", c.name)
	}
	if r.Schema() != c.schema {
		return fmt.Errorf("collection %s stores %s records, got %s",
			c.name, c.schema.Name(), r.Schema().Name())
	}

	id := r.ID()
	if id == 0 {
		id = c.lastID + 1
	}

	keys := groupValues(r, c.keys)
	if v, holder, dup := c.conflict(keys, id); dup {
		err := errors.NewDuplicateKey(c.name, c.keys[v.group], v.raw, holder)
		c.logger.Warn("push rejected",
			"collection", c.name,
			"key", c.keys[v.group].String(),
			"value", v.raw,
			"held_by", holder)
		c.notify(Event{
			Type:     EventPushRejected,
			RecordID: r.ID(),
			Data:     err,
		})
		return err
	}
	groups := groupValues(r, c.indexes)

	at := c.now()
	stored := r.Clone()
	if err := stored.Stamp(id, at); err != nil {
		return fmt.Errorf("collection %s: %w", c.name, err)
	}

	// Nothing below can fail.
	if id > c.lastID {
		c.lastID = id
	}
	c.reindexKeys(id, keys)
	c.reindexGroups(id, groups)

	_, existed := c.records[id]
	if !existed {
		c.position[id] = len(c.order)
		c.order = append(c.order, id)
	}
	c.records[id] = stored
	// stored is a clone of r, so r accepts the same stamp.
	_ = r.Stamp(id, at)

	c.logger.Debug("record pushed",
		"collection", c.name,
		"id", id,
		"update", existed,
		"records", len(c.records))
	c.notify(Event{
		Type:     EventPush,
		RecordID: id,
		Data:     map[string]any{"update": existed},
	})
	return nil
}

// Get returns a copy of the record stored under identity id.
func (c *Collection) Get(id int64) (*data.Record, bool) {
	r, ok := c.records[id]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}
