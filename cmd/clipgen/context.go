package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"clipgen/internal/clipstore"
	"clipgen/internal/config"
	"clipgen/internal/logging"
	"clipgen/internal/media"
	"clipgen/internal/mirror"
	"clipgen/internal/pipeline"
	"clipgen/internal/supervisor"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// loggerFor returns the shared logger, falling back to console output on
// stderr when the configured sinks cannot be opened.
func (c *commandContext) loggerFor(_ *cobra.Command) *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err == nil {
			if logger, logErr := logging.NewFromConfig(cfg); logErr == nil {
				c.logger = logger
				return
			}
		}
		logger, fallbackErr := logging.New(logging.Options{Level: "info", Format: "console", OutputPaths: []string{"stderr"}})
		if fallbackErr != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) clipStore(cmd *cobra.Command) (*clipstore.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return clipstore.NewStore(cfg, c.loggerFor(cmd)), nil
}

func (c *commandContext) validator() (*media.Validator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return media.NewValidator(cfg.Pipeline.Blacklist), nil
}

func (c *commandContext) pipeline(cmd *cobra.Command) (*pipeline.Pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := c.clipStore(cmd)
	if err != nil {
		return nil, err
	}
	validator, err := c.validator()
	if err != nil {
		return nil, err
	}
	logger := c.loggerFor(cmd)
	sup := supervisor.New(supervisor.Options{
		Logger:         logger,
		StallThreshold: cfg.StallThreshold(),
		CheckInterval:  cfg.StallCheckInterval(),
	})
	return pipeline.New(cfg, store, validator, sup, logger), nil
}

func (c *commandContext) withMirror(cmd *cobra.Command, fn func(*mirror.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := mirror.Open(cfg.Paths.MirrorDB, c.loggerFor(cmd))
	if err != nil {
		return fmt.Errorf("open mirror: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func readAllInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
