// Package classify decides whether a frame shows the rating screen by
// comparing a fixed region of interest against a reference template.
//
// Two strategies share the Classifier interface. The shape strategy compares
// Hu-moment invariants of the grayscale region and tolerates small shifts and
// brightness changes. The pixel strategy binarizes both images and counts
// differing pixels. In both cases a lower score means more similar and a frame
// matches when its score is strictly below the threshold.
package classify
