package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/recordstore/internal/config"
	"github.com/leengari/recordstore/internal/domain/errors"
	"github.com/leengari/recordstore/internal/query"
	"github.com/leengari/recordstore/internal/storage/manager"
	"github.com/leengari/recordstore/internal/testutil"
)

func parse(t *testing.T, doc string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(doc))
	require.NoError(t, err)
	return cfg
}

func TestLoadDataset(t *testing.T) {
	cfg := parse(t, `
collections:
  - name: users
    keys: [[email]]
    indexes: [[team]]
    records:
      - {email: a@example.com, age: 30, team: red}
      - {email: b@example.com, age: 12, team: blue}
      - {email: c@example.com, age: 44, team: red}
`)
	reg := manager.NewRegistry(manager.WithLogger(testutil.Logger()))

	require.NoError(t, LoadDataset(cfg, reg, testutil.Logger()))

	users, ok := reg.Get("users")
	require.True(t, ok)
	assert.Equal(t, 3, users.Len())
	assert.Equal(t, 2, users.Where(query.Kwargs{"team": "red"}).Count())

	r, err := users.All().Key("b@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), r.ID())
}

func TestLoadDatasetRejectsDuplicateSeeds(t *testing.T) {
	cfg := parse(t, `
collections:
  - name: users
    keys: [[email]]
    records:
      - {email: a@example.com}
      - {email: a@example.com}
`)
	reg := manager.NewRegistry(manager.WithLogger(testutil.Logger()))

	err := LoadDataset(cfg, reg, testutil.Logger())
	require.Error(t, err)
	assert.True(t, errors.IsDuplicateKey(err))
}

func TestLoadDatasetRejectsNullKeys(t *testing.T) {
	cfg := parse(t, `
collections:
  - name: users
    keys: [[email]]
    records:
      - {email: "", age: 3}
`)
	reg := manager.NewRegistry(manager.WithLogger(testutil.Logger()))

	err := LoadDataset(cfg, reg, testutil.Logger())
	assert.True(t, errors.IsInvalidKey(err))
}
