package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeOutput(); err != nil {
		return err
	}
	c.normalizeGemini()
	c.normalizeProcessing()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeOutput() error {
	var err error
	if strings.TrimSpace(c.Output.DataDir) == "" {
		c.Output.DataDir = defaultDataDir
	}
	if c.Output.DataDir, err = ExpandPath(c.Output.DataDir); err != nil {
		return fmt.Errorf("output.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Output.ExportDir) == "" {
		c.Output.ExportDir = defaultExportDir
	}
	if c.Output.ExportDir, err = ExpandPath(c.Output.ExportDir); err != nil {
		return fmt.Errorf("output.export_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeGemini() {
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	c.Gemini.AccessToken = strings.TrimSpace(c.Gemini.AccessToken)
	c.Gemini.Project = strings.TrimSpace(c.Gemini.Project)
	c.Gemini.Model = strings.TrimSpace(c.Gemini.Model)
	if c.Gemini.APIKey == "" {
		c.Gemini.APIKey = strings.TrimSpace(os.Getenv(envAPIKey))
	}
	if c.Gemini.AccessToken == "" {
		c.Gemini.AccessToken = strings.TrimSpace(os.Getenv(envAccessToken))
	}
	if c.Gemini.Project == "" {
		c.Gemini.Project = strings.TrimSpace(os.Getenv(envProject))
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaultModel
	}
	if strings.TrimSpace(c.Gemini.Location) == "" {
		c.Gemini.Location = defaultLocation
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (c *Config) normalizeProcessing() {
	c.Processing.TimecodeFormat = strings.ToUpper(strings.TrimSpace(c.Processing.TimecodeFormat))
	if c.Processing.TimecodeFormat == "" {
		c.Processing.TimecodeFormat = defaultTimecodeFormat
	}
	c.Processing.TargetLanguage = strings.TrimSpace(c.Processing.TargetLanguage)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
