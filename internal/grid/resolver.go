package grid

import (
	"fmt"

	"gridtrace/internal/pipeline"
)

// Reasons reported by InvariantError.
const (
	ReasonNoPredecessor = "confirmation flash without a selection on the previous frame"
	ReasonAmbiguous     = "lit cell count is neither one nor the full grid"
)

// InvariantError reports a frame whose lit cells cannot be resolved.
type InvariantError struct {
	Frame  int
	Lit    int
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("frame %d: %d lit cells: %s", e.Frame, e.Lit, e.Reason)
}

func (e *InvariantError) Unwrap() error {
	return pipeline.ErrInvariant
}

// Resolver turns lit-cell sets into selections. It remembers the selection
// resolved for the most recent frame so a confirmation flash can repeat it.
type Resolver struct {
	all       int
	lastFrame int
	last      Cell
	has       bool
}

// NewResolver creates a resolver for a grid of cellCount cells.
func NewResolver(cellCount int) *Resolver {
	return &Resolver{all: cellCount}
}

// Resolve maps the lit cells of frame to a selection.
func (r *Resolver) Resolve(frame int, lit []Cell) (Cell, error) {
	switch {
	case len(lit) == 1:
		r.remember(frame, lit[0])
		return lit[0], nil
	case len(lit) == r.all && r.all > 1:
		if !r.has || r.lastFrame != frame-1 {
			return Cell{}, &InvariantError{Frame: frame, Lit: len(lit), Reason: ReasonNoPredecessor}
		}
		r.remember(frame, r.last)
		return r.last, nil
	default:
		return Cell{}, &InvariantError{Frame: frame, Lit: len(lit), Reason: ReasonAmbiguous}
	}
}

// Reset forgets the remembered selection.
func (r *Resolver) Reset() {
	*r = Resolver{all: r.all}
}

func (r *Resolver) remember(frame int, c Cell) {
	r.lastFrame = frame
	r.last = c
	r.has = true
}
