package engine

import (
	"log/slog"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/schema"
	"github.com/leengari/recordstore/internal/query"
)

// Collection is the in-memory storage engine for one record type.
//
// It owns the canonical copy of every pushed record, keyed by an identity it
// issues, and keeps a unique index per key group and a bitmap index per
// index group. Records go in and come out as deep copies, so callers can
// never reach stored state.
//
// A Collection is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves.
type Collection struct {
	name    string
	schema  *schema.Schema
	keys    []schema.Group
	indexes []schema.Group

	lastID   int64
	records  map[int64]*data.Record
	order    []int64       // identities in first-push order
	position map[int64]int // identity -> index in order

	keyIndex map[slot]int64
	keysByID map[int64][]slot

	groupIndex []map[string]*roaring64.Bitmap // per index group: encoded value -> identities
	groupsByID map[int64][]slot

	now       func() time.Time
	logger    *slog.Logger
	observers []Observer
}

// slot addresses one group value: the group's position in the schema and
// its encoded value.
type slot struct {
	group int
	value string
}

// Option configures a Collection.
type Option func(*Collection)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collection) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock sets the time source used to stamp pushes.
func WithClock(now func() time.Time) Option {
	return func(c *Collection) {
		if now != nil {
			c.now = now
		}
	}
}

// WithObserver registers an observer at construction time.
func WithObserver(o Observer) Option {
	return func(c *Collection) {
		c.AddObserver(o)
	}
}

// New creates an empty collection for records of schema s.
func New(name string, s *schema.Schema, opts ...Option) *Collection {
	c := &Collection{
		name:       name,
		schema:     s,
		keys:       s.Keys(),
		indexes:    s.Indexes(),
		records:    make(map[int64]*data.Record),
		position:   make(map[int64]int),
		keyIndex:   make(map[slot]int64),
		keysByID:   make(map[int64][]slot),
		groupsByID: make(map[int64][]slot),
		now:        func() time.Time { return time.Now().UTC() },
		logger:     slog.Default(),
	}

	c.groupIndex = make([]map[string]*roaring64.Bitmap, len(c.indexes))
	for i := range c.groupIndex {
		c.groupIndex[i] = make(map[string]*roaring64.Bitmap)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Schema returns the record type stored in the collection.
func (c *Collection) Schema() *schema.Schema {
	return c.schema
}

// Len returns the number of stored records.
func (c *Collection) Len() int {
	return len(c.records)
}

// All returns a cursor over every record.
func (c *Collection) All() query.Cursor {
	return query.New(c)
}

// Where is shorthand for c.All().Where(kw).
func (c *Collection) Where(kw query.Kwargs) query.Cursor {
	return c.All().Where(kw)
}

// AddObserver registers an observer to receive lifecycle events
func (c *Collection) AddObserver(observer Observer) {
	c.observers = append(c.observers, observer)
}

// RemoveObserver unregisters an observer
func (c *Collection) RemoveObserver(observer Observer) {
	for i, o := range c.observers {
		if o == observer {
			c.observers = append(c.observers[:i], c.observers[i+1:]...)
			return
		}
	}
}

// notify sends an event to all registered observers
func (c *Collection) notify(event Event) {
	if len(c.observers) == 0 {
		return
	}
	event.Collection = c.name
	event.Timestamp = c.now()
	for _, observer := range c.observers {
		observer.OnEvent(event)
	}
}
