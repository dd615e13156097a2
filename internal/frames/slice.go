package frames

import (
	"context"
	"image"
)

// SliceSource serves frames from memory.
type SliceSource struct {
	images []image.Image
	pos    int
}

// NewSliceSource wraps images; frame indices follow slice order.
func NewSliceSource(images ...image.Image) *SliceSource {
	return &SliceSource{images: images}
}

// Next returns the next image.
func (s *SliceSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.pos >= len(s.images) {
		return Frame{}, ErrExhausted
	}
	frame := Frame{Index: s.pos, Image: toRGBA(s.images[s.pos])}
	s.pos++
	return frame, nil
}

// Skip advances past n images.
func (s *SliceSource) Skip(ctx context.Context, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.pos+n > len(s.images) {
		s.pos = len(s.images)
		return ErrExhausted
	}
	s.pos += n
	return nil
}

// Close is a no-op.
func (s *SliceSource) Close() error {
	return nil
}

// Len reports the number of frames held.
func (s *SliceSource) Len() int {
	return len(s.images)
}
