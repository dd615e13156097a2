package grid

import (
	"fmt"
	"image"

	"gridtrace/internal/config"
	"gridtrace/internal/imageops"
	"gridtrace/internal/pipeline"
)

// Cell addresses one grid position; both coordinates lie in [-Radius, Radius].
type Cell struct {
	X int
	Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Geometry locates the sample square of every cell in frame pixels.
type Geometry struct {
	Left   int
	Top    int
	Pitch  int
	Radius int
	Inset  int
	Sample int
}

// GeometryFromConfig copies the grid section of cfg.
func GeometryFromConfig(cfg config.Grid) Geometry {
	return Geometry{
		Left:   cfg.Left,
		Top:    cfg.Top,
		Pitch:  cfg.Pitch,
		Radius: cfg.Radius,
		Inset:  cfg.Inset,
		Sample: cfg.Sample,
	}
}

// Side is the number of cells per grid side.
func (g Geometry) Side() int {
	return 2*g.Radius + 1
}

// CellCount is the number of addressable cells.
func (g Geometry) CellCount() int {
	return g.Side() * g.Side()
}

// Contains reports whether c is addressable.
func (g Geometry) Contains(c Cell) bool {
	return c.X >= -g.Radius && c.X <= g.Radius && c.Y >= -g.Radius && c.Y <= g.Radius
}

// Origin returns the top-left pixel of cell c.
func (g Geometry) Origin(c Cell) image.Point {
	return image.Pt(g.Left+g.Pitch*(c.X+g.Radius), g.Top+g.Pitch*(c.Y+g.Radius))
}

// Rect returns the brightness sample square of cell c.
func (g Geometry) Rect(c Cell) image.Rectangle {
	o := g.Origin(c).Add(image.Pt(g.Inset, g.Inset))
	return image.Rect(o.X, o.Y, o.X+g.Sample, o.Y+g.Sample)
}

// Cells lists every addressable cell, row by row from the top.
func (g Geometry) Cells() []Cell {
	cells := make([]Cell, 0, g.CellCount())
	for y := -g.Radius; y <= g.Radius; y++ {
		for x := -g.Radius; x <= g.Radius; x++ {
			cells = append(cells, Cell{X: x, Y: y})
		}
	}
	return cells
}

// Bounds is the smallest rectangle covering every sample square.
func (g Geometry) Bounds() image.Rectangle {
	r := g.Rect(Cell{X: -g.Radius, Y: -g.Radius})
	return r.Union(g.Rect(Cell{X: g.Radius, Y: g.Radius}))
}

// Decoder finds lit cells and resolves them to a selection. A Decoder keeps
// the last resolved selection, so each scanned recording needs its own.
type Decoder struct {
	geometry   Geometry
	brightness float64
	cells      []Cell
	resolver   *Resolver
}

// NewDecoder builds a decoder for the given geometry and brightness cutoff.
func NewDecoder(geometry Geometry, brightness float64) *Decoder {
	return &Decoder{
		geometry:   geometry,
		brightness: brightness,
		cells:      geometry.Cells(),
		resolver:   NewResolver(geometry.CellCount()),
	}
}

// NewDecoderFromConfig builds a decoder from the grid section of cfg.
func NewDecoderFromConfig(cfg *config.Config) *Decoder {
	return NewDecoder(GeometryFromConfig(cfg.Grid), cfg.Grid.Brightness)
}

// Geometry returns the decoder's grid geometry.
func (d *Decoder) Geometry() Geometry {
	return d.geometry
}

// Lit returns every cell whose sample mean luminance exceeds the brightness
// cutoff, scanning rows top to bottom and cells left to right.
func (d *Decoder) Lit(img image.Image) ([]Cell, error) {
	if bounds := d.geometry.Bounds(); !bounds.In(img.Bounds()) {
		return nil, pipeline.Wrap(pipeline.ErrValidation, pipeline.StageDecode, "sample grid",
			fmt.Sprintf("grid %v outside frame %v", bounds, img.Bounds()), nil)
	}
	frame, err := imageops.GrayMat(img)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrValidation, pipeline.StageDecode, "sample grid", "", err)
	}
	defer frame.Close()
	origin := img.Bounds().Min
	var lit []Cell
	for _, c := range d.cells {
		mean, err := imageops.MeanIntensity(frame, d.geometry.Rect(c).Sub(origin))
		if err != nil {
			return nil, pipeline.Wrap(pipeline.ErrValidation, pipeline.StageDecode, "sample cell", c.String(), err)
		}
		if mean > d.brightness {
			lit = append(lit, c)
		}
	}
	return lit, nil
}

// Decode samples img and resolves the selection shown on frame.
func (d *Decoder) Decode(frame int, img image.Image) (Cell, error) {
	lit, err := d.Lit(img)
	if err != nil {
		return Cell{}, err
	}
	return d.resolver.Resolve(frame, lit)
}

// Reset forgets the last resolved selection.
func (d *Decoder) Reset() {
	d.resolver.Reset()
}
