package frames

import (
	"context"
	"errors"
	"image"
	"image/draw"
	"slices"
)

// ErrExhausted reports that a source has no more frames.
var ErrExhausted = errors.New("frame source exhausted")

// Frame is one decoded video frame. Index counts frames from zero in
// presentation order.
type Frame struct {
	Index int
	Image *image.RGBA
}

// Source yields frames sequentially.
type Source interface {
	// Next returns the next frame or ErrExhausted at the end of the stream.
	Next(ctx context.Context) (Frame, error)
	// Skip discards the next n frames.
	Skip(ctx context.Context, n int) error
	Close() error
}

// NthFrames returns the frames at the requested indices in ascending order.
// Duplicate indices are collapsed and indices past the end of the stream are
// dropped. The source must be positioned at frame zero.
func NthFrames(ctx context.Context, src Source, indices []int) ([]Frame, error) {
	wanted := slices.Clone(indices)
	slices.Sort(wanted)
	wanted = slices.Compact(wanted)

	var (
		out  []Frame
		next int
	)
	for _, target := range wanted {
		if target < next {
			continue
		}
		if gap := target - next; gap > 0 {
			if err := src.Skip(ctx, gap); err != nil {
				if errors.Is(err, ErrExhausted) {
					return out, nil
				}
				return out, err
			}
		}
		frame, err := src.Next(ctx)
		if errors.Is(err, ErrExhausted) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		next = target + 1
		frame.Index = target
		out = append(out, frame)
	}
	return out, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
