package preflight

import (
	"fmt"
	"os"

	"gocv.io/x/gocv"
	"golang.org/x/sys/unix"

	"gridtrace/internal/classify"
	"gridtrace/internal/config"
	"gridtrace/internal/grid"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTemplate loads the reference template and builds the configured
// classifier from it.
func CheckTemplate(cfg *config.Config) Result {
	const name = "Template"
	c, err := classify.New(cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%dx%d, %s strategy, threshold %g, opencv %s)", cfg.Paths.TemplateFile, cfg.ROI.Width, cfg.ROI.Height, c.Strategy(), c.Threshold(), gocv.OpenCVVersion()),
	}
}

// CheckLayout reports whether the ROI and the grid sample area overlap.
// Overlap means grid highlights change the template region and no
// recording can classify reliably.
func CheckLayout(cfg *config.Config) Result {
	const name = "Screen layout"
	roi := cfg.ROI.Rect()
	bounds := grid.GeometryFromConfig(cfg.Grid).Bounds()
	if roi.Overlaps(bounds) {
		return Result{Name: name, Detail: fmt.Sprintf("roi %v overlaps grid %v", roi, bounds)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("roi %v, grid %v", roi, bounds)}
}
