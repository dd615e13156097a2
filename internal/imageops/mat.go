package imageops

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// GrayMat returns the luminance of img as a single-channel 8-bit Mat whose
// origin is img's top-left corner. The caller closes the Mat.
func GrayMat(img image.Image) (gocv.Mat, error) {
	mat, err := gocv.ImageGrayToMatGray(Gray(img))
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("convert image to mat: %w", err)
	}
	return mat, nil
}

// MatToGray copies a single-channel 8-bit Mat back into an *image.Gray.
func MatToGray(m gocv.Mat) (*image.Gray, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert mat to image: %w", err)
	}
	return Gray(img), nil
}

// Binarize maps every pixel above cutoff to 255 and the rest to 0. The caller
// closes the returned Mat.
func Binarize(src gocv.Mat, cutoff uint8) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Threshold(src, &dst, float32(cutoff), 255, gocv.ThresholdBinary)
	return dst
}

// DiffSum returns 255 times the number of pixels that differ between a and b.
func DiffSum(a, b gocv.Mat) (float64, error) {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, a.Cols(), a.Rows(), b.Cols(), b.Rows())
	}
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Compare(a, b, &mask, gocv.CompareNE)
	return float64(gocv.CountNonZero(mask)) * 255, nil
}

// MeanIntensity averages the luminance of a single-channel Mat over r.
func MeanIntensity(m gocv.Mat, r image.Rectangle) (float64, error) {
	bounds := image.Rect(0, 0, m.Cols(), m.Rows())
	if r.Empty() || !r.In(bounds) {
		return 0, fmt.Errorf("%w: %v not within %v", ErrOutOfBounds, r, bounds)
	}
	region := m.Region(r)
	defer region.Close()
	return region.Mean().Val1, nil
}
