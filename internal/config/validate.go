package config

import (
	"errors"
	"fmt"

	"github.com/dollyto/multimodal-video-transcriber/internal/prompt"
	"github.com/dollyto/multimodal-video-transcriber/internal/timecode"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGemini(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateGemini() error {
	if c.Gemini.UseVertex {
		if c.Gemini.Project == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/transcriber/config.toml"
			}
			return fmt.Errorf("gemini.project is required for vertex mode. Set %s env var or edit %s (create with 'transcriber config init')", envProject, defaultPath)
		}
		return nil
	}
	if c.Gemini.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/transcriber/config.toml"
		}
		return fmt.Errorf("gemini.api_key is required. Set %s env var or edit %s (create with 'transcriber config init')", envAPIKey, defaultPath)
	}
	return nil
}

func (c *Config) validateProcessing() error {
	if c.Processing.FPS != 0 && (c.Processing.FPS < prompt.MinFPS || c.Processing.FPS > prompt.MaxFPS) {
		return fmt.Errorf("processing.fps must be between %.1f and %.1f", prompt.MinFPS, prompt.MaxFPS)
	}
	if _, err := timecode.ParseStyle(c.Processing.TimecodeFormat); err != nil {
		return fmt.Errorf("processing.timecode_format must be MM:SS or H:MM:SS, got %q", c.Processing.TimecodeFormat)
	}
	if c.Processing.Translation && c.Processing.TargetLanguage == "" {
		return errors.New("processing.target_language must be set when processing.translation is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

// TimecodeStyle returns the parsed timecode style. Validate has already
// proven the format string.
func (c *Config) TimecodeStyle() timecode.Style {
	style, _ := timecode.ParseStyle(c.Processing.TimecodeFormat)
	return style
}
