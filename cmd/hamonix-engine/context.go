package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/config"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
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
		cfg, resolvedPath, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
	})
	return c.config, c.configErr
}

// newLogger builds the process logger. Log output goes to stderr and the
// configured log file; stdout carries the wire protocol.
func (c *commandContext) newLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var file string
	if cfg.Paths.LogDir != "" {
		file = filepath.Join(cfg.Paths.LogDir, "engine.log")
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   file,
	})
}
