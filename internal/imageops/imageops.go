package imageops

import (
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// ErrOutOfBounds is returned when a requested region is not fully inside an image.
var ErrOutOfBounds = errors.New("region outside image bounds")

// ErrSizeMismatch is returned when two images that must be compared pixel by
// pixel have different dimensions.
var ErrSizeMismatch = errors.New("image size mismatch")

// Open decodes an image file (PNG, JPEG, BMP, GIF, TIFF).
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	return img, nil
}

// Save encodes img to path; the format follows the file extension.
func Save(path string, img image.Image) error {
	if err := imaging.Save(img, path, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return fmt.Errorf("save image %s: %w", path, err)
	}
	return nil
}

// Crop returns a copy of the region r of img, re-based at the origin.
func Crop(img image.Image, r image.Rectangle) (image.Image, error) {
	if img == nil {
		return nil, errors.New("crop: nil image")
	}
	if r.Empty() || !r.In(img.Bounds()) {
		return nil, fmt.Errorf("%w: %v not within %v", ErrOutOfBounds, r, img.Bounds())
	}
	return imaging.Crop(img, r), nil
}

// Gray converts img to a tightly packed 8-bit luminance buffer re-based at the
// origin. A *image.Gray that is already packed this way is returned as is.
func Gray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && packed(g) {
		return g
	}
	lum := imaging.Grayscale(img)
	b := lum.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := lum.Pix[y*lum.Stride : y*lum.Stride+b.Dx()*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}
	return out
}

func packed(g *image.Gray) bool {
	return g.Rect.Min == (image.Point{}) && g.Stride == g.Rect.Dx() && len(g.Pix) == g.Rect.Dx()*g.Rect.Dy()
}
