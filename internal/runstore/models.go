package runstore

import "time"

// Status represents the outcome of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	// StatusReview marks recordings whose frames contradicted the grid or
	// template calibration; rerunning without changing config will fail again.
	StatusReview Status = "review"
	StatusFailed Status = "failed"
)

// IsTerminal reports whether the status ends a run.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusReview || s == StatusFailed
}

// Run is one scan of one recording.
type Run struct {
	ID            string
	SourcePath    string
	Status        Status
	Strategy      string
	Frames        int
	MatchedFrames int
	Trials        int
	ErrorMessage  string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Duration returns the wall-clock processing time, or zero while running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ReactionRow is the stored reaction-time summary of one trial.
type ReactionRow struct {
	Trial    int `json:"trial"`
	Start    int `json:"start"`
	End      int `json:"end"`
	InitDur  int `json:"init_dur"`
	TotalDur int `json:"total_dur"`
	FirstX   int `json:"first_x"`
	FirstY   int `json:"first_y"`
	FinalX   int `json:"final_x"`
	FinalY   int `json:"final_y"`
	Clicks   int `json:"clicks"`
}

// Outcome carries the counters recorded when a run completes.
type Outcome struct {
	Frames        int
	MatchedFrames int
	Reactions     []ReactionRow
}
