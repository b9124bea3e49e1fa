package main

import (
	"strings"
	"sync"

	"shotrouter/internal/config"
)

type commandContext struct {
	apiFlag    *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(apiFlag, configFlag *string) *commandContext {
	return &commandContext{
		apiFlag:    apiFlag,
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
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag != nil {
		return strings.TrimSpace(*c.configFlag)
	}
	return ""
}

// apiBase resolves the daemon API address: the --api flag wins, then the
// configured bind address, then the built-in default.
func (c *commandContext) apiBase() string {
	if c.apiFlag != nil && strings.TrimSpace(*c.apiFlag) != "" {
		return normalizeBase(*c.apiFlag)
	}
	if cfg, err := c.ensureConfig(); err == nil && cfg != nil && strings.TrimSpace(cfg.Paths.APIBind) != "" {
		return normalizeBase(cfg.Paths.APIBind)
	}
	return "http://127.0.0.1:7676"
}

func normalizeBase(value string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(value), "/")
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	return "http://" + trimmed
}

func (c *commandContext) withClient(fn func(*client) error) error {
	return fn(newClient(c.apiBase()))
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
