package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"substation/internal/config"
	"substation/internal/history"
	"substation/internal/logging"
	"substation/internal/notifications"
	"substation/internal/profiledb"
	"substation/internal/providers"
	"substation/internal/providers/addic7ed"
	"substation/internal/providers/opensubtitles"
	"substation/internal/search"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) openProfileStore() (*profiledb.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return profiledb.Open(filepath.Join(cfg.Paths.DataDir, "profiles.db"))
}

func (c *commandContext) openHistoryStore() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(filepath.Join(cfg.Paths.DataDir, "history.db"))
}

// buildRegistry constructs every enabled provider. A provider that fails
// to construct aborts the command; a disabled provider is skipped.
func (c *commandContext) buildRegistry() (*providers.Registry, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	var enabled []providers.Provider
	if cfg.Providers.OpenSubtitles.Enabled {
		provider, err := opensubtitles.New(opensubtitles.Config{
			APIKey:    cfg.Providers.OpenSubtitles.APIKey,
			UserAgent: cfg.Providers.OpenSubtitles.UserAgent,
			UserToken: cfg.Providers.OpenSubtitles.UserToken,
			BaseURL:   cfg.Providers.OpenSubtitles.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		enabled = append(enabled, provider)
	}
	if cfg.Providers.Addic7ed.Enabled {
		provider, err := addic7ed.New(addic7ed.Config{
			Username:          cfg.Providers.Addic7ed.Username,
			Password:          cfg.Providers.Addic7ed.Password,
			BaseURL:           cfg.Providers.Addic7ed.BaseURL,
			RequestsPerSecond: cfg.Providers.Addic7ed.RequestsPerSecond,
		})
		if err != nil {
			return nil, err
		}
		enabled = append(enabled, provider)
	}
	if len(enabled) == 0 {
		return nil, errors.New("no providers enabled; enable at least one in the configuration")
	}
	return providers.NewRegistry(enabled...), nil
}

// buildSearch wires the full pipeline. The returned cleanup closes the
// stores.
func (c *commandContext) buildSearch() (*search.Service, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	registry, err := c.buildRegistry()
	if err != nil {
		return nil, nil, err
	}
	profiles, err := c.openProfileStore()
	if err != nil {
		return nil, nil, err
	}
	store, err := c.openHistoryStore()
	if err != nil {
		_ = profiles.Close()
		return nil, nil, err
	}

	cleanup := func() {
		_ = store.Close()
		_ = profiles.Close()
	}
	svc := search.NewService(cfg, registry, profiles, store, notifications.NewService(cfg), logger)
	return svc, cleanup, nil
}

// acquireRunLock prevents concurrent download runs from racing on the
// subtitle directory and the history database.
func (c *commandContext) acquireRunLock() (func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "substation.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another substation run is already in progress")
	}
	return func() { _ = lock.Unlock() }, nil
}
