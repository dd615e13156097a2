// Package logging builds the slog loggers used by the CLI and the scan
// pipeline.
//
// Two handlers are available: a console handler that renders one readable
// line per record with the recording and stage pulled to the front, and a
// JSON handler for machine consumption. NewFromConfig writes to stdout and
// tees JSON records into the state directory log file. Context helpers tag
// records with the run id, recording path, and stage carried by the context.
package logging
