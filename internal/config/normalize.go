package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeClassifier()
	c.normalizeVideo()
	c.normalizeBatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.TemplateFile) == "" {
		if value, ok := os.LookupEnv("GRIDTRACE_TEMPLATE"); ok && strings.TrimSpace(value) != "" {
			c.Paths.TemplateFile = strings.TrimSpace(value)
		} else {
			c.Paths.TemplateFile = defaultTemplateFile
		}
	}
	if c.Paths.TemplateFile, err = expandPath(strings.TrimSpace(c.Paths.TemplateFile)); err != nil {
		return fmt.Errorf("paths.template_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeClassifier() {
	c.Classifier.Strategy = strings.ToLower(strings.TrimSpace(c.Classifier.Strategy))
	if c.Classifier.Strategy == "" {
		c.Classifier.Strategy = StrategyShape
	}
}

func (c *Config) normalizeVideo() {
	c.Video.FFmpegBinary = strings.TrimSpace(c.Video.FFmpegBinary)
	if c.Video.FFmpegBinary == "" {
		c.Video.FFmpegBinary = defaultFFmpegBinary
	}
	c.Video.FFprobeBinary = strings.TrimSpace(c.Video.FFprobeBinary)
	if c.Video.FFprobeBinary == "" {
		c.Video.FFprobeBinary = defaultFFprobeBinary
	}
	if len(c.Video.Extensions) == 0 {
		c.Video.Extensions = defaultExtensions()
		return
	}
	exts := make([]string, 0, len(c.Video.Extensions))
	seen := make(map[string]struct{}, len(c.Video.Extensions))
	for _, ext := range c.Video.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = defaultExtensions()
	}
	c.Video.Extensions = exts
}

func (c *Config) normalizeBatch() {
	if c.Batch.Workers == 0 {
		c.Batch.Workers = defaultBatchWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
