// Package grid decodes which cell of the on-screen rating grid is selected.
//
// A Decoder samples a small square inside every cell and reports the cells
// whose mean luminance exceeds the brightness cutoff. Exactly one lit cell is
// a selection. Every cell lit at once is the confirmation flash, which repeats
// the selection resolved on the previous frame. Any other count is an
// InvariantError carrying the frame index.
package grid
