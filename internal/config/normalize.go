package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeConvert(); err != nil {
		return err
	}
	c.normalizeWorkflow()
	return c.normalizeLogging()
}

func (c *Config) normalizeConvert() error {
	c.Convert.DefaultFormat = strings.ToLower(strings.TrimSpace(c.Convert.DefaultFormat))
	if c.Convert.DefaultFormat == "" {
		c.Convert.DefaultFormat = defaultFormat
	}
	if strings.TrimSpace(c.Convert.OutputDir) == "" {
		c.Convert.OutputDir = defaultOutputDir
	}
	var err error
	if c.Convert.OutputDir, err = expandPath(c.Convert.OutputDir); err != nil {
		return fmt.Errorf("convert.output_dir: %w", err)
	}
	c.Convert.ArchiveName = strings.TrimSpace(c.Convert.ArchiveName)
	if c.Convert.ArchiveName == "" {
		c.Convert.ArchiveName = defaultArchiveName
	}
	return nil
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.Concurrency <= 0 {
		c.Workflow.Concurrency = defaultConcurrency
	}
	if c.Workflow.MaxEvents <= 0 {
		c.Workflow.MaxEvents = defaultMaxEvents
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = ""
		return nil
	}
	var err error
	if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
