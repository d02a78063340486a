package main

import (
	"strings"
	"sync"

	"quill/internal/config"
	"quill/internal/store"
	"quill/internal/vault"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
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

// withStore opens the content store for the duration of one command. The
// daemon and CLI share the database through WAL, so commands work whether or
// not the daemon is running.
func (c *commandContext) withStore(fn func(*config.Config, *store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(cfg, st)
}

func (c *commandContext) withVault(fn func(*vault.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	vs, err := vault.Open(cfg)
	if err != nil {
		return err
	}
	defer vs.Close()
	return fn(vs)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
