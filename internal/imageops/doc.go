// Package imageops provides the image primitives the classifier and grid
// decoder consume: region cropping, grayscale conversion, binarization,
// differing-pixel sums, mean intensity over a region, and Hu-moment shape
// distance.
//
// File decoding, encoding, cropping, and luminance conversion go through
// github.com/disintegration/imaging. Thresholding, comparison, region means,
// and image moments run on OpenCV through gocv.io/x/gocv. Every Mat returned
// from this package must be closed by the caller.
package imageops
