package trial

import (
	"gridtrace/internal/grid"
	"gridtrace/internal/span"
)

// Result is the response timeline of one trial.
type Result struct {
	Trial int
	Start int
	End   int
	// Spans are consecutive dwells; neighbouring spans hold different cells.
	Spans []span.Span[grid.Cell]
}

// Responses lists trial results in chronological order.
type Responses []Result

// Reconstruct groups observations by trial and then by selected cell. Each
// run of equal trial numbers becomes one Result, and each run of equal cells
// inside it becomes one span from its first to its last frame.
func Reconstruct(obs []Observation) Responses {
	var out Responses
	for _, trialObs := range span.GroupBy(obs, func(o Observation) int { return o.Trial }) {
		result := Result{
			Trial: trialObs[0].Trial,
			Start: trialObs[0].Frame,
			End:   trialObs[len(trialObs)-1].Frame,
		}
		for _, dwell := range span.GroupBy(trialObs, func(o Observation) grid.Cell { return o.Cell }) {
			result.Spans = append(result.Spans, span.Span[grid.Cell]{
				Value: dwell[0].Cell,
				From:  dwell[0].Frame,
				To:    dwell[len(dwell)-1].Frame,
			})
		}
		out = append(out, result)
	}
	return out
}
