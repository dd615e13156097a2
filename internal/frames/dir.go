package frames

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
)

var stillExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff"}

// DirSource reads still images from a directory in lexical file name order.
type DirSource struct {
	paths []string
	pos   int
}

// OpenDir lists the image files of dir.
func OpenDir(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if slices.Contains(stillExtensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	slices.Sort(paths)
	return &DirSource{paths: paths}, nil
}

// Len reports the number of frames in the directory.
func (s *DirSource) Len() int {
	return len(s.paths)
}

// Next decodes the next image file.
func (s *DirSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.pos >= len(s.paths) {
		return Frame{}, ErrExhausted
	}
	path := s.paths[s.pos]
	img, err := imaging.Open(path)
	if err != nil {
		return Frame{}, fmt.Errorf("decode frame %d (%s): %w", s.pos, filepath.Base(path), err)
	}
	frame := Frame{Index: s.pos, Image: toRGBA(img)}
	s.pos++
	return frame, nil
}

// Skip advances past n files without decoding them.
func (s *DirSource) Skip(ctx context.Context, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.pos+n > len(s.paths) {
		s.pos = len(s.paths)
		return ErrExhausted
	}
	s.pos += n
	return nil
}

// Close is a no-op.
func (s *DirSource) Close() error {
	return nil
}
