// Package preflight provides readiness checks for the files, directories,
// and programs a scan depends on.
//
// The CLI "gridtrace check" command prints every result. The scan commands
// call RunAll before touching any recording and stop when a required check
// fails, so a missing template is reported once instead of per file.
package preflight
