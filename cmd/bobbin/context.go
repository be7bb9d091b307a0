package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"bobbin/internal/config"
	"bobbin/internal/daemonctl"
)

// daemonClient keeps the command files free of the package-qualified name.
type daemonClient = daemonctl.Client

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
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// apiAddress resolves the daemon API address, preferring the --api flag over
// the configured bind address.
func (c *commandContext) apiAddress() (string, error) {
	if c.apiFlag != nil && strings.TrimSpace(*c.apiFlag) != "" {
		return strings.TrimSpace(*c.apiFlag), nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Paths.APIBind, nil
}

func (c *commandContext) client() (*daemonClient, error) {
	addr, err := c.apiAddress()
	if err != nil {
		return nil, err
	}
	client, err := daemonctl.New(addr)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (c *commandContext) withClient(fn func(*daemonClient) error) error {
	client, err := c.client()
	if err != nil {
		return err
	}
	if err := fn(client); err != nil {
		if strings.Contains(err.Error(), "connection refused") {
			addr, _ := c.apiAddress()
			return fmt.Errorf("daemon not reachable at %s; start it with `bobbin serve` (%w)", addr, err)
		}
		return err
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
