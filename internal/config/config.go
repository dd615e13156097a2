package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	TemplateFile string `toml:"template_file"`
	OutputDir    string `toml:"output_dir"`
	StateDir     string `toml:"state_dir"`
}

// ROI is the screen rectangle compared against the reference template.
type ROI struct {
	X      int `toml:"x"`
	Y      int `toml:"y"`
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Rect returns the ROI as an image rectangle.
func (r ROI) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Grid describes the pixel geometry of the rating grid.
type Grid struct {
	// Left and Top locate the top-left corner of cell (-Radius, -Radius).
	Left int `toml:"left"`
	Top  int `toml:"top"`
	// Pitch is the distance in pixels between neighbouring cell corners.
	Pitch int `toml:"pitch"`
	// Radius is the largest cell coordinate; the grid has 2*Radius+1 cells per side.
	Radius int `toml:"radius"`
	// Inset offsets the brightness sample from the cell corner.
	Inset int `toml:"inset"`
	// Sample is the side length of the sampled square.
	Sample     int     `toml:"sample"`
	Brightness float64 `toml:"brightness"`
}

// Classifier selects the region matching strategy and its thresholds.
type Classifier struct {
	Strategy       string  `toml:"strategy"`
	ShapeThreshold float64 `toml:"shape_threshold"`
	PixelThreshold float64 `toml:"pixel_threshold"`
	BinarizeCutoff int     `toml:"binarize_cutoff"`
}

// Video contains decoding settings.
type Video struct {
	FPS           float64  `toml:"fps"`
	FFmpegBinary  string   `toml:"ffmpeg_binary"`
	FFprobeBinary string   `toml:"ffprobe_binary"`
	Extensions    []string `toml:"extensions"`
}

// Batch controls multi-file processing.
type Batch struct {
	Workers    int  `toml:"workers"`
	FailFast   bool `toml:"fail_fast"`
	RecordRuns bool `toml:"record_runs"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for gridtrace.
//
// Configuration sections by subsystem:
//   - Paths: template image, report output, and state directories
//   - ROI: region compared against the template
//   - Grid: rating grid geometry and brightness cutoff
//   - Classifier: strategy selection and thresholds
//   - Video: frame rate and decoder binaries
//   - Batch: worker count and failure policy
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	ROI        ROI        `toml:"roi"`
	Grid       Grid       `toml:"grid"`
	Classifier Classifier `toml:"classifier"`
	Video      Video      `toml:"video"`
	Batch      Batch      `toml:"batch"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/gridtrace/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("gridtrace.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the run history database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "runs.db")
}

// LogPath returns the log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, "gridtrace.log")
}

// LockPath returns the lock file guarding the output directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.OutputDir, ".gridtrace.lock")
}

// Threshold returns the configured threshold for the active classifier strategy.
func (c *Config) Threshold() float64 {
	if c.Classifier.Strategy == StrategyPixel {
		return c.Classifier.PixelThreshold
	}
	return c.Classifier.ShapeThreshold
}

// IsVideoFile reports whether the path carries one of the configured video extensions.
func (c *Config) IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range c.Video.Extensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
