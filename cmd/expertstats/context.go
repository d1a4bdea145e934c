package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"expertstats/internal/config"
	"expertstats/internal/logging"
	"expertstats/internal/services/codeable"
	"expertstats/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
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

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// withStore opens the database for the duration of fn.
func (c *commandContext) withStore(fn func(*config.Config, *store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()
	return fn(cfg, st)
}

// newLogger builds the command logger. fileOnly keeps log lines off the
// terminal while a progress bar owns it.
func (c *commandContext) newLogger(fileOnly bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !fileOnly {
		return logging.NewFromConfig(cfg)
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, logging.LogFileName)},
	})
}

// resolveToken returns the configured token, falling back to the one stored
// by `expertstats login`.
func resolveToken(ctx context.Context, cfg *config.Config, st *store.Store) (string, error) {
	if token := strings.TrimSpace(cfg.API.Token); token != "" {
		return token, nil
	}
	var stored string
	if _, err := st.GetSetting(ctx, store.SettingAuthToken, &stored); err != nil {
		return "", err
	}
	return strings.TrimSpace(stored), nil
}

func newAPIClient(cfg *config.Config, token string) (*codeable.Client, error) {
	return codeable.New(cfg.API.BaseURL, token,
		codeable.WithTimeout(cfg.APITimeout()),
		codeable.WithPerPage(cfg.API.PerPage),
	)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
