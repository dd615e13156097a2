// Package runstore persists scan runs and their per-trial reaction rows in
// SQLite.
//
// Each processed recording produces one run row carrying its status, the
// classifier strategy used, frame and trial counts, and any failure message.
// Completed runs also store the reaction-time summary for every trial so the
// CLI can list and re-render past results without rescanning video.
//
// The database is treated as a history cache rather than an archive. Schema
// changes bump the version in schema.go; users delete runs.db to adopt the
// new schema.
package runstore
