package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConvert(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateConvert() error {
	switch c.Convert.DefaultFormat {
	case "woff", "woff2":
	default:
		return fmt.Errorf("convert.default_format must be woff or woff2, got %q", c.Convert.DefaultFormat)
	}
	if strings.ContainsAny(c.Convert.ArchiveName, `/\`) {
		return errors.New("convert.archive_name must be a file name, not a path")
	}
	if !strings.EqualFold(filepath.Ext(c.Convert.ArchiveName), ".zip") {
		return fmt.Errorf("convert.archive_name must end in .zip, got %q", c.Convert.ArchiveName)
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if c.Encoder.WOFFLevel < minCompressionLevel || c.Encoder.WOFFLevel > maxCompressionLevel {
		return fmt.Errorf("encoder.woff_level must be between %d and %d", minCompressionLevel, maxCompressionLevel)
	}
	if c.Encoder.WOFF2Level < minCompressionLevel || c.Encoder.WOFF2Level > maxCompressionLevel {
		return fmt.Errorf("encoder.woff2_level must be between %d and %d", minCompressionLevel, maxCompressionLevel)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.Concurrency < 1 || c.Workflow.Concurrency > maxConcurrency {
		return fmt.Errorf("workflow.concurrency must be between 1 and %d", maxConcurrency)
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
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
