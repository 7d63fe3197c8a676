package download

import (
	"podcastdl/internal/feed"
	"podcastdl/internal/naming"
)

// Status is the terminal state of one episode within a run.
type Status string

const (
	StatusDownloaded Status = "downloaded"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// Skip and failure reasons reported in outcomes.
const (
	ReasonAlreadyExists = "already exists"
	ReasonCancelled     = "cancelled"
	ReasonTimeout       = "timeout"
)

// Outcome records how one episode finished. Exactly one Outcome exists per
// episode per run.
type Outcome struct {
	Episode feed.Episode
	Paths   naming.TargetPaths
	Status  Status
	// Reason explains a skip or summarizes a failure.
	Reason string
	// Err carries the underlying cause for failed outcomes.
	Err error
	// Bytes is the number of media bytes written for downloaded outcomes.
	Bytes int64
}

// Summary aggregates the outcomes of a run in original feed order.
type Summary struct {
	PodcastTitle string
	OutputDir    string
	Downloaded   int
	Skipped      int
	Failed       int
	Outcomes     []Outcome
}

func newSummary(title, dir string, outcomes []Outcome) *Summary {
	s := &Summary{PodcastTitle: title, OutputDir: dir, Outcomes: outcomes}
	for _, outcome := range outcomes {
		switch outcome.Status {
		case StatusDownloaded:
			s.Downloaded++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

// FailedOutcomes returns the failures in feed order.
func (s *Summary) FailedOutcomes() []Outcome {
	var failed []Outcome
	for _, outcome := range s.Outcomes {
		if outcome.Status == StatusFailed {
			failed = append(failed, outcome)
		}
	}
	return failed
}
