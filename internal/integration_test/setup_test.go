package integration

import (
	"testing"

	"github.com/leengari/recordstore/internal/config"
	"github.com/leengari/recordstore/internal/engine"
	"github.com/leengari/recordstore/internal/storage"
	"github.com/leengari/recordstore/internal/storage/manager"
	"github.com/leengari/recordstore/internal/testutil"
)

const dataset = `
collections:
  - name: users
    schema: User
    keys: [[username], [email]]
    indexes: [[role]]
    records:
      - {username: admin, email: admin@x.io, role: staff, age: 41, is_active: true}
      - {username: guest, email: guest@x.io, role: visitor, age: 5, is_active: false}
      - {username: ALICE, email: alice@x.io, role: staff, age: 10, is_active: true}
      - {username: bob, email: bob@x.io, role: visitor, age: 15, is_active: true}
`

// MockObserver is a test observer that records events
type MockObserver struct {
	Events []engine.Event
}

func (m *MockObserver) OnEvent(event engine.Event) {
	m.Events = append(m.Events, event)
}

// setupTestRegistry loads the test dataset into a fresh registry
func setupTestRegistry(t *testing.T, opts ...engine.Option) *manager.Registry {
	t.Helper()

	cfg, err := config.Parse([]byte(dataset))
	if err != nil {
		t.Fatalf("failed to parse dataset: %v", err)
	}

	reg := manager.NewRegistry(
		manager.WithLogger(testutil.Logger()),
		manager.WithCollectionOptions(opts...),
	)
	if err := storage.LoadDataset(cfg, reg, testutil.Logger()); err != nil {
		t.Fatalf("failed to load dataset: %v", err)
	}
	return reg
}

func users(t *testing.T, reg *manager.Registry) *engine.Collection {
	t.Helper()
	c, ok := reg.Get("users")
	if !ok {
		t.Fatal("users collection not found")
	}
	return c
}
