package trial

import "gridtrace/internal/grid"

// Reaction summarizes the response timeline of one trial. Durations are in
// frames.
type Reaction struct {
	Trial int
	Start int
	End   int
	// InitDur is the duration of the first dwell.
	InitDur  int
	TotalDur int
	// FirstChoice is the cell of the second dwell, or of the only dwell.
	FirstChoice grid.Cell
	FinalChoice grid.Cell
	Clicks      int
}

// Summarize derives reaction statistics from r. The second return value is
// false when r has no spans.
func Summarize(r Result) (Reaction, bool) {
	if len(r.Spans) == 0 {
		return Reaction{}, false
	}
	first := r.Spans[0]
	last := r.Spans[len(r.Spans)-1]
	choice := first.Value
	if len(r.Spans) > 1 {
		choice = r.Spans[1].Value
	}
	return Reaction{
		Trial:       r.Trial,
		Start:       r.Start,
		End:         r.End,
		InitDur:     first.Duration(),
		TotalDur:    last.To - first.From,
		FirstChoice: choice,
		FinalChoice: last.Value,
		Clicks:      len(r.Spans) - 1,
	}, true
}

// SummarizeAll summarizes every result that has spans.
func SummarizeAll(responses Responses) []Reaction {
	out := make([]Reaction, 0, len(responses))
	for _, r := range responses {
		if reaction, ok := Summarize(r); ok {
			out = append(out, reaction)
		}
	}
	return out
}
