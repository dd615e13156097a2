// Package trial rebuilds per-trial response timelines from a classified frame
// stream.
//
// A Scanner walks frames in order. Each rising edge of the match stream opens
// a new trial, and every matching frame contributes one Observation of the
// selected grid cell. Reconstruct folds the observations into Responses, one
// Result per trial with one span per dwell on a cell, and Summarize derives
// reaction-time statistics from each Result.
package trial
