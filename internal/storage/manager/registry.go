package manager

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/leengari/recordstore/internal/domain/errors"
	"github.com/leengari/recordstore/internal/domain/schema"
	"github.com/leengari/recordstore/internal/engine"
)

// Registry holds named collections in a thread-safe way.
//
// The registry itself may be shared between goroutines. The collections it
// hands out are not synchronized; see engine.Collection.
type Registry struct {
	mu          sync.RWMutex
	id          uuid.UUID
	collections map[string]*engine.Collection
	logger      *slog.Logger
	options     []engine.Option
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used by the registry and by every collection
// it creates.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithCollectionOptions sets options applied to every collection created
// through the registry.
func WithCollectionOptions(opts ...engine.Option) Option {
	return func(r *Registry) {
		r.options = append(r.options, opts...)
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		id:          uuid.New(),
		collections: make(map[string]*engine.Collection),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("registry", r.id.String())
	return r
}

// ID identifies this registry instance in log output.
func (r *Registry) ID() uuid.UUID {
	return r.id
}

// Create creates a collection for records of s.
func (r *Registry) Create(name string, s *schema.Schema) (*engine.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.collections[name]; ok {
		return nil, fmt.Errorf("collection '%s' already exists", name)
	}
	return r.create(name, s)
}

func (r *Registry) create(name string, s *schema.Schema) (*engine.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}
	if s == nil {
		return nil, fmt.Errorf("collection '%s' needs a schema", name)
	}

	opts := append([]engine.Option{engine.WithLogger(r.logger)}, r.options...)
	c := engine.New(name, s, opts...)
	r.collections[name] = c

	r.logger.Info("collection created",
		slog.String("collection", name),
		slog.String("schema", s.Name()),
		slog.Int("key_groups", len(s.Keys())),
		slog.Int("index_groups", len(s.Indexes())),
	)
	return c, nil
}

// Get returns the named collection.
func (r *Registry) Get(name string) (*engine.Collection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[name]
	return c, ok
}

// GetOrCreate returns the named collection, creating it for s if needed.
// An existing collection must store records of s.
func (r *Registry) GetOrCreate(name string, s *schema.Schema) (*engine.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.collections[name]; ok {
		if s != nil && c.Schema() != s {
			return nil, fmt.Errorf("collection '%s' stores %s records, not %s",
				name, c.Schema().Name(), s.Name())
		}
		return c, nil
	}
	return r.create(name, s)
}

// Delete drops the named collection and reports whether it existed.
func (r *Registry) Delete(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.collections[name]
	if !ok {
		return false
	}
	delete(r.collections, name)

	r.logger.Info("collection deleted",
		slog.String("collection", name),
		slog.Int("records", c.Len()),
	)
	return true
}

// List returns the collection names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.collections))
	for name := range r.collections {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CollectionFor resolves the collection s is bound to with
// schema.WithCollection. It fails with an Undefined error when s has no
// binding or the bound collection does not exist.
func (r *Registry) CollectionFor(s *schema.Schema) (*engine.Collection, error) {
	name, ok := s.Collection()
	if !ok {
		return nil, &errors.UndefinedError{Schema: s.Name()}
	}

	c, ok := r.Get(name)
	if !ok {
		return nil, &errors.UndefinedError{Schema: s.Name(), Collection: name}
	}
	if c.Schema() != s {
		return nil, fmt.Errorf("collection '%s' stores %s records, not %s",
			name, c.Schema().Name(), s.Name())
	}
	return c, nil
}
