package classify

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"gridtrace/internal/config"
	"gridtrace/internal/frames"
	"gridtrace/internal/imageops"
	"gridtrace/internal/pipeline"
)

// Strategy names a scoring method.
type Strategy string

const (
	StrategyShape Strategy = config.StrategyShape
	StrategyPixel Strategy = config.StrategyPixel
)

// Classifier scores the region of interest of a frame against a template.
type Classifier interface {
	Score(img image.Image) (float64, error)
	// Threshold is the default cutoff used by Matches.
	Threshold() float64
	Strategy() Strategy
}

// Matches reports whether img scores strictly below threshold, or below the
// classifier's default when threshold is nil.
func Matches(c Classifier, img image.Image, threshold *float64) (bool, error) {
	limit := c.Threshold()
	if threshold != nil {
		limit = *threshold
	}
	score, err := c.Score(img)
	if err != nil {
		return false, err
	}
	return score < limit, nil
}

// New loads the configured template and builds the configured strategy.
func New(cfg *config.Config) (Classifier, error) {
	template, err := LoadTemplate(cfg.Paths.TemplateFile)
	if err != nil {
		return nil, err
	}
	roi := cfg.ROI.Rect()
	switch Strategy(cfg.Classifier.Strategy) {
	case StrategyShape:
		return NewShape(template, roi, cfg.Classifier.ShapeThreshold)
	case StrategyPixel:
		return NewPixel(template, roi, uint8(cfg.Classifier.BinarizeCutoff), cfg.Classifier.PixelThreshold)
	default:
		return nil, pipeline.Wrap(pipeline.ErrConfiguration, pipeline.StageClassify, "select strategy",
			fmt.Sprintf("unknown strategy %q", cfg.Classifier.Strategy), nil)
	}
}

// LoadTemplate reads the reference image.
func LoadTemplate(path string) (image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, pipeline.Wrap(pipeline.ErrConfiguration, pipeline.StageClassify, "load template",
				fmt.Sprintf("template %s not found", path), err)
		}
		return nil, pipeline.Wrap(pipeline.ErrConfiguration, pipeline.StageClassify, "load template", "", err)
	}
	img, err := imageops.Open(path)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrConfiguration, pipeline.StageClassify, "load template", "", err)
	}
	return img, nil
}

// ExtractTemplate crops roi out of a frame for use as a template.
func ExtractTemplate(img image.Image, roi image.Rectangle) (image.Image, error) {
	region, err := imageops.Crop(img, roi)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrValidation, pipeline.StagePrepare, "crop roi", "", err)
	}
	return region, nil
}

// SaveTemplate writes a template image, creating its directory if needed.
func SaveTemplate(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create template directory: %w", err)
	}
	return imageops.Save(path, img)
}

// Scores returns the score of every frame of src in index order.
func Scores(ctx context.Context, src frames.Source, c Classifier) ([]float64, error) {
	var scores []float64
	err := each(ctx, src, func(frame frames.Frame) error {
		score, err := c.Score(frame.Image)
		if err != nil {
			return fmt.Errorf("frame %d: %w", frame.Index, err)
		}
		scores = append(scores, score)
		return nil
	})
	return scores, err
}

// MatchStream classifies every frame of src.
func MatchStream(ctx context.Context, src frames.Source, c Classifier, threshold *float64) ([]bool, error) {
	var matches []bool
	err := each(ctx, src, func(frame frames.Frame) error {
		ok, err := Matches(c, frame.Image, threshold)
		if err != nil {
			return fmt.Errorf("frame %d: %w", frame.Index, err)
		}
		matches = append(matches, ok)
		return nil
	})
	return matches, err
}

func each(ctx context.Context, src frames.Source, fn func(frames.Frame) error) error {
	for {
		frame, err := src.Next(ctx)
		if errors.Is(err, frames.ErrExhausted) {
			return nil
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return pipeline.Wrap(pipeline.ErrDecode, pipeline.StageDecode, "read frame", "", err)
		}
		if err := fn(frame); err != nil {
			return err
		}
	}
}
