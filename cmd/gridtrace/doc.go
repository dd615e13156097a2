// Package main hosts the gridtrace CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, builds the classifier and
// batch runner, and renders results as tables or JSON. Scanning logic lives
// in the internal packages; commands here only wire flags to them and format
// what comes back.
package main
