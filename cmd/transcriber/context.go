package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dollyto/multimodal-video-transcriber/internal/config"
	"github.com/dollyto/multimodal-video-transcriber/internal/services/gemini"
	"github.com/dollyto/multimodal-video-transcriber/internal/store"
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

// withStore opens the run archive for the duration of fn.
func (c *commandContext) withStore(fn func(*store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	s, err := store.Open(cfg.Output.DataDir)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// modelClient builds the Gemini client from the loaded config.
func (c *commandContext) modelClient() (*gemini.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return gemini.NewClient(gemini.Config{
		Vertex:         cfg.Gemini.UseVertex,
		APIKey:         cfg.Gemini.APIKey,
		AccessToken:    cfg.Gemini.AccessToken,
		Project:        cfg.Gemini.Project,
		Location:       cfg.Gemini.Location,
		BaseURL:        cfg.Gemini.BaseURL,
		Model:          cfg.Gemini.Model,
		TimeoutSeconds: cfg.Gemini.TimeoutSeconds,
	}), nil
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
