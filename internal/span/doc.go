// Package span compresses ordered per-frame streams into maximal runs.
//
// Segment turns a boolean match stream into the frame intervals where it held;
// SegmentValues does the same for any comparable value; GroupBy partitions an
// ordered slice into maximal runs of equal projected key. All three preserve
// input order and close a run that is still open at the end of the input at the
// last valid index.
package span
