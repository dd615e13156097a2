package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"gridtrace/internal/classify"
	"gridtrace/internal/config"
	"gridtrace/internal/logging"
	"gridtrace/internal/runstore"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// logger writes console or JSON records to stderr, keeping stdout for
// command output, plus the JSON log file in the state directory.
func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		level = *c.logLevelFlag
	}
	return logging.New(logging.Options{
		Level:    level,
		Format:   cfg.Logging.Format,
		Writer:   cmd.ErrOrStderr(),
		FilePath: cfg.LogPath(),
	})
}

// openStore returns nil when run history is disabled. Runs left in the
// running state by a killed process are marked failed on open.
func (c *commandContext) openStore(ctx context.Context, logger *slog.Logger) (*runstore.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Batch.RecordRuns {
		return nil, nil
	}
	store, err := runstore.Open(cfg)
	if err != nil {
		return nil, err
	}
	abandoned, err := store.MarkAbandoned(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}
	if abandoned > 0 && logger != nil {
		logger.Warn("marked interrupted runs as failed", logging.Int64("runs", abandoned))
	}
	return store, nil
}

// requireStore opens the run store for the history commands, which have
// nothing to show when recording is disabled.
func (c *commandContext) requireStore() (*runstore.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Batch.RecordRuns {
		return nil, fmt.Errorf("run history is disabled (batch.record_runs = false)")
	}
	return runstore.Open(cfg)
}

// classifierOverrides carries the flags shared by the commands that classify
// frames.
type classifierOverrides struct {
	strategy  string
	threshold float64
}

func (o *classifierOverrides) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.strategy, "strategy", "", "Classifier strategy (shape or pixel); defaults to classifier.strategy")
	cmd.Flags().Float64Var(&o.threshold, "threshold", 0, "Match threshold; defaults to the configured threshold of the strategy")
}

// build applies the overrides to cfg and returns the classifier together with
// the threshold override, nil when --threshold was not given.
func (o *classifierOverrides) build(cmd *cobra.Command, cfg *config.Config) (classify.Classifier, *float64, error) {
	if strategy := strings.ToLower(strings.TrimSpace(o.strategy)); strategy != "" {
		if strategy != config.StrategyShape && strategy != config.StrategyPixel {
			return nil, nil, fmt.Errorf("--strategy: unsupported value %q (want %s or %s)", o.strategy, config.StrategyShape, config.StrategyPixel)
		}
		cfg.Classifier.Strategy = strategy
	}
	c, err := classify.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	if !cmd.Flags().Changed("threshold") {
		return c, nil, nil
	}
	threshold := o.threshold
	return c, &threshold, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
