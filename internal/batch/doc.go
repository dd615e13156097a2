// Package batch runs the scan pipeline over many recordings.
//
// Each recording is isolated: it gets its own run id, frame source, decoder
// state, and run history row, and its failure does not stop the others
// unless fail-fast is configured. A file lock on the output directory keeps
// two processes from writing the same reports.
package batch
