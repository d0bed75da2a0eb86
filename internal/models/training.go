package models

import "time"

// Training run statuses.
const (
	TrainingStatusTrained          = "trained"
	TrainingStatusInsufficientData = "insufficient_data"
)

// TrainingJobRequest is one unit of work for the training worker.
type TrainingJobRequest struct {
	JobID   string `json:"job_id"`
	UserID  uint   `json:"user_id"`
	Trigger string `json:"trigger" example:"session_completed"`
}

// SessionCompletedEvent is published whenever a questionnaire session is
// completed. The training worker applies the session-count threshold exactly
// once per event, outside any write-path callback, so completing a training
// run can never re-trigger itself.
type SessionCompletedEvent struct {
	UserID            uint `json:"user_id"`
	CompletedSessions int  `json:"completed_sessions"`
}

// TrainingResult summarizes one analysis run for a user.
type TrainingResult struct {
	Status          string    `json:"status"`
	ModelVersion    string    `json:"model_version,omitempty"`
	TrainedSymptoms []string  `json:"trained_symptoms,omitempty"`
	UsableSessions  int       `json:"usable_sessions"`
	SkippedSessions int       `json:"skipped_sessions"`
	InsightsSaved   int       `json:"insights_saved"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}
