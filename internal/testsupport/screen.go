package testsupport

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"gridtrace/internal/config"
	"gridtrace/internal/grid"
	"gridtrace/internal/imageops"
)

// Synthetic screen dimensions.
const (
	FrameWidth  = 80
	FrameHeight = 40
)

var (
	// FixtureROI is the template region inside synthetic frames.
	FixtureROI = config.ROI{X: 4, Y: 4, Width: 16, Height: 12}
	// FixtureGrid is a 3x3 grid to the right of the ROI.
	FixtureGrid = config.Grid{Left: 40, Top: 4, Pitch: 10, Radius: 1, Inset: 3, Sample: 4, Brightness: 200}

	background = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	white      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black      = color.RGBA{A: 255}
)

// Screen renders a frame showing the rating screen: the template pattern
// inside the ROI and the given cells highlighted.
func Screen(cfg *config.Config, lit ...grid.Cell) *image.RGBA {
	img := Blank(cfg, lit...)
	roi := cfg.ROI.Rect()
	draw.Draw(img, roi, &image.Uniform{C: black}, image.Point{}, draw.Src)
	marker := image.Rect(roi.Min.X+3, roi.Min.Y+3, roi.Min.X+13, roi.Min.Y+9)
	draw.Draw(img, marker, &image.Uniform{C: white}, image.Point{}, draw.Src)
	return img
}

// Blank renders a frame without the template pattern. Highlighted cells are
// still drawn so tests can check that non-matching frames are never decoded.
func Blank(cfg *config.Config, lit ...grid.Cell) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, FrameWidth, FrameHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)
	geom := grid.GeometryFromConfig(cfg.Grid)
	for _, c := range lit {
		o := geom.Origin(c)
		r := image.Rect(o.X, o.Y, o.X+geom.Pitch-1, o.Y+geom.Pitch-1)
		draw.Draw(img, r, &image.Uniform{C: white}, image.Point{}, draw.Src)
	}
	return img
}

// AllLit returns every cell of the configured grid.
func AllLit(cfg *config.Config) []grid.Cell {
	return grid.GeometryFromConfig(cfg.Grid).Cells()
}

// WriteTemplate saves the ROI of a rating screen to cfg.Paths.TemplateFile.
func WriteTemplate(t testing.TB, cfg *config.Config) string {
	t.Helper()

	region, err := imageops.Crop(Screen(cfg), cfg.ROI.Rect())
	if err != nil {
		t.Fatalf("crop template: %v", err)
	}
	if err := imageops.Save(cfg.Paths.TemplateFile, region); err != nil {
		t.Fatalf("save template: %v", err)
	}
	return cfg.Paths.TemplateFile
}
