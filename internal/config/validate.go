package config

import (
	"errors"
	"fmt"
	"sort"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateROI(); err != nil {
		return err
	}
	if err := c.validateGrid(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if c.Batch.Workers < 1 {
		return errors.New("batch.workers must be >= 1")
	}
	return nil
}

func (c *Config) validateROI() error {
	if c.ROI.X < 0 || c.ROI.Y < 0 {
		return errors.New("roi.x and roi.y must be >= 0")
	}
	return ensurePositiveMap(map[string]int{
		"roi.width":  c.ROI.Width,
		"roi.height": c.ROI.Height,
	})
}

func (c *Config) validateGrid() error {
	if c.Grid.Left < 0 || c.Grid.Top < 0 {
		return errors.New("grid.left and grid.top must be >= 0")
	}
	if err := ensurePositiveMap(map[string]int{
		"grid.pitch":  c.Grid.Pitch,
		"grid.radius": c.Grid.Radius,
		"grid.sample": c.Grid.Sample,
	}); err != nil {
		return err
	}
	if c.Grid.Inset < 0 {
		return errors.New("grid.inset must be >= 0")
	}
	if c.Grid.Inset+c.Grid.Sample > c.Grid.Pitch {
		return errors.New("grid.inset + grid.sample must fit inside grid.pitch")
	}
	if c.Grid.Brightness < 0 || c.Grid.Brightness > 255 {
		return errors.New("grid.brightness must be between 0 and 255")
	}
	return nil
}

func (c *Config) validateClassifier() error {
	switch c.Classifier.Strategy {
	case StrategyShape, StrategyPixel:
	default:
		return fmt.Errorf("classifier.strategy: unsupported value %q (want %q or %q)", c.Classifier.Strategy, StrategyShape, StrategyPixel)
	}
	if c.Classifier.ShapeThreshold <= 0 {
		return errors.New("classifier.shape_threshold must be positive")
	}
	if c.Classifier.PixelThreshold <= 0 {
		return errors.New("classifier.pixel_threshold must be positive")
	}
	if c.Classifier.BinarizeCutoff < 0 || c.Classifier.BinarizeCutoff > 255 {
		return errors.New("classifier.binarize_cutoff must be between 0 and 255")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.FPS <= 0 {
		return errors.New("video.fps must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
