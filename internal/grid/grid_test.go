package grid_test

import (
	"errors"
	"image"
	"reflect"
	"testing"

	"gridtrace/internal/grid"
	"gridtrace/internal/pipeline"
	"gridtrace/internal/testsupport"
)

func TestGeometryRect(t *testing.T) {
	g := grid.Geometry{Left: 1060, Top: 340, Pitch: 80, Radius: 4, Inset: 30, Sample: 20}
	if got := g.Rect(grid.Cell{X: -4, Y: -4}); got != image.Rect(1090, 370, 1110, 390) {
		t.Fatalf("top-left sample = %v", got)
	}
	if got := g.Rect(grid.Cell{X: 0, Y: 1}); got != image.Rect(1090+320, 370+400, 1110+320, 390+400) {
		t.Fatalf("cell (0,1) sample = %v", got)
	}
	if g.CellCount() != 81 {
		t.Fatalf("CellCount = %d", g.CellCount())
	}
	if !g.Contains(grid.Cell{X: 4, Y: -4}) || g.Contains(grid.Cell{X: 5, Y: 0}) {
		t.Fatal("Contains boundary mismatch")
	}
}

func TestCellsScanRowMajor(t *testing.T) {
	g := grid.Geometry{Radius: 1}
	want := []grid.Cell{
		{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
		{X: -1, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 0},
		{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
	}
	if got := g.Cells(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Cells = %v", got)
	}
}

func TestLitFindsHighlightedCells(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dec := grid.NewDecoderFromConfig(cfg)

	cases := []struct {
		name string
		lit  []grid.Cell
	}{
		{"none", nil},
		{"single", []grid.Cell{{X: 1, Y: -1}}},
		{"pair in scan order", []grid.Cell{{X: 0, Y: -1}, {X: -1, Y: 1}}},
		{"all", testsupport.AllLit(cfg)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := dec.Lit(testsupport.Screen(cfg, tc.lit...))
			if err != nil {
				t.Fatalf("Lit failed: %v", err)
			}
			if len(got) != len(tc.lit) || (len(got) > 0 && !reflect.DeepEqual(got, tc.lit)) {
				t.Fatalf("Lit = %v, want %v", got, tc.lit)
			}
		})
	}
}

func TestLitRejectsFrameSmallerThanGrid(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dec := grid.NewDecoderFromConfig(cfg)
	_, err := dec.Lit(image.NewRGBA(image.Rect(0, 0, 50, 20)))
	if !errors.Is(err, pipeline.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestDecodeSingleCell(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dec := grid.NewDecoderFromConfig(cfg)
	cell, err := dec.Decode(7, testsupport.Screen(cfg, grid.Cell{X: -1, Y: 0}))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if cell != (grid.Cell{X: -1, Y: 0}) {
		t.Fatalf("Decode = %v", cell)
	}
}

func TestDecodeConfirmFlashReusesPreviousFrame(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dec := grid.NewDecoderFromConfig(cfg)
	selected := grid.Cell{X: 1, Y: 1}

	if _, err := dec.Decode(9, testsupport.Screen(cfg, selected)); err != nil {
		t.Fatalf("Decode frame 9 failed: %v", err)
	}
	for frame := 10; frame <= 11; frame++ {
		cell, err := dec.Decode(frame, testsupport.Screen(cfg, testsupport.AllLit(cfg)...))
		if err != nil {
			t.Fatalf("Decode frame %d failed: %v", frame, err)
		}
		if cell != selected {
			t.Fatalf("frame %d: got %v want %v", frame, cell, selected)
		}
	}
}

func TestResolveConfirmFlashWithoutPredecessor(t *testing.T) {
	r := grid.NewResolver(9)
	all := grid.Geometry{Radius: 1}.Cells()

	_, err := r.Resolve(0, all)
	var invErr *grid.InvariantError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected InvariantError, got %v", err)
	}
	if invErr.Frame != 0 || invErr.Lit != 9 || invErr.Reason != grid.ReasonNoPredecessor {
		t.Fatalf("unexpected error fields: %+v", invErr)
	}
	if !errors.Is(err, pipeline.ErrInvariant) {
		t.Fatal("expected error to unwrap to ErrInvariant")
	}

	// A selection two frames back is not a predecessor.
	if _, err := r.Resolve(3, all[:1]); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if _, err := r.Resolve(5, all); !errors.As(err, &invErr) || invErr.Reason != grid.ReasonNoPredecessor {
		t.Fatalf("expected no-predecessor error, got %v", err)
	}
}

func TestResolveAmbiguous(t *testing.T) {
	r := grid.NewResolver(9)
	cases := [][]grid.Cell{
		nil,
		{{X: 0, Y: 0}, {X: 1, Y: 0}},
		grid.Geometry{Radius: 1}.Cells()[:8],
	}
	for _, lit := range cases {
		_, err := r.Resolve(4, lit)
		var invErr *grid.InvariantError
		if !errors.As(err, &invErr) || invErr.Reason != grid.ReasonAmbiguous || invErr.Lit != len(lit) {
			t.Fatalf("lit=%d: expected ambiguous error, got %v", len(lit), err)
		}
	}
}

func TestResetForgetsSelection(t *testing.T) {
	r := grid.NewResolver(9)
	all := grid.Geometry{Radius: 1}.Cells()
	if _, err := r.Resolve(1, all[4:5]); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	r.Reset()
	if _, err := r.Resolve(2, all); err == nil {
		t.Fatal("expected error after Reset")
	}
}
