package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/leengari/recordstore/internal/config"
	"github.com/leengari/recordstore/internal/logging"
	"github.com/leengari/recordstore/internal/storage"
	"github.com/leengari/recordstore/internal/storage/manager"
)

// environment is the loaded state every command runs against.
type environment struct {
	config   *config.Config
	path     string // empty when running on defaults
	logger   *slog.Logger
	registry *manager.Registry
	close    func()
}

// loadEnvironment reads the config, sets up logging to logOut and loads
// the declared collections into a fresh registry.
func loadEnvironment(opts *RootOptions, logOut io.Writer) (*environment, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if opts.ConfigPath != "" {
		cfg, path, err = config.LoadFromPath(opts.ConfigPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Logging
	if opts.Verbose {
		logCfg.Level = "debug"
	}
	logger, closeFn, err := logging.SetupLogger(logCfg, logOut)
	if err != nil {
		return nil, err
	}

	logger.Debug("configuration loaded", "path", path, "summary", cfg.Summary())

	reg := manager.NewRegistry(manager.WithLogger(logger))
	if err := storage.LoadDataset(cfg, reg, logger); err != nil {
		closeFn()
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	return &environment{
		config:   cfg,
		path:     path,
		logger:   logger,
		registry: reg,
		close:    closeFn,
	}, nil
}
