package model

import "time"

// ProgressExport is the top-level JSON structure for progress export.
type ProgressExport struct {
	ExportedAt time.Time       `json:"exported_at"`
	Catalog    []Topic         `json:"catalog"`
	Learners   []LearnerResult `json:"learners"`
}

// LearnerResult holds one learner's full progress record for export.
type LearnerResult struct {
	LearnerID   string          `json:"learner_id"`
	DisplayName string          `json:"display_name"`
	Summary     ProgressSummary `json:"summary"`
	Attempts    []AttemptRecord `json:"attempts"`
}

// AttemptRecord is a single exported attempt.
type AttemptRecord struct {
	ProblemID  string     `json:"problem_id"`
	Topic      Topic      `json:"topic"`
	Difficulty Difficulty `json:"difficulty"`
	Solved     bool       `json:"solved"`
	At         time.Time  `json:"at"`
}
