// Package storage populates a registry from configuration.
package storage

import (
	"fmt"
	"log/slog"

	"github.com/leengari/recordstore/internal/config"
	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/engine"
	"github.com/leengari/recordstore/internal/storage/manager"
)

// LoadDataset creates every configured collection in reg and pushes its
// seed records. It stops at the first failure.
func LoadDataset(cfg *config.Config, reg *manager.Registry, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	total := 0
	for _, cc := range cfg.Collections {
		c, err := LoadCollection(cc, reg, logger)
		if err != nil {
			return fmt.Errorf("failed to load collection %s: %w", cc.Name, err)
		}
		total += c.Len()
	}

	logger.Info("dataset loaded successfully",
		slog.Int("collection_count", len(cfg.Collections)),
		slog.Int("record_count", total),
	)
	return nil
}

// LoadCollection declares the schema of cc, creates the collection and
// pushes its seed records in order.
func LoadCollection(cc config.CollectionConfig, reg *manager.Registry, logger *slog.Logger) (*engine.Collection, error) {
	s, err := cc.Declare()
	if err != nil {
		return nil, err
	}

	c, err := reg.Create(cc.Name, s)
	if err != nil {
		return nil, err
	}

	for i, attrs := range cc.Records {
		r, err := data.NewRecord(s, attrs)
		if err != nil {
			return nil, fmt.Errorf("record #%d: %w", i+1, err)
		}
		if err := c.Push(r); err != nil {
			return nil, fmt.Errorf("record #%d: %w", i+1, err)
		}
	}

	logger.Info("collection loaded",
		slog.String("collection", c.Name()),
		slog.Int("records", c.Len()),
	)
	return c, nil
}
