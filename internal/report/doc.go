// Package report renders scan results as CSV tables.
//
// Three tables are produced per recording: the plain match spans, one row per
// dwell on a grid cell, and one reaction-time row per trial. Files are named
// after the recording and written atomically into the output directory.
package report
