package models

import "time"

// Forecast response statuses.
const (
	ForecastStatusSuccess          = "success"
	ForecastStatusInsufficientData = "insufficient_data"
)

// Forecast prediction sources.
const (
	PredictionSourcePersonalized = "personalized"
	PredictionSourceSeasonal     = "seasonal"
)

// SeriesPoint is one reading of the merged glucose series. The series itself
// is rebuilt on every forecast request and never persisted.
type SeriesPoint struct {
	Timestamp    time.Time `json:"timestamp"`
	GlucoseLevel float64   `json:"glucose_level"`
}

// ForecastPoint is a single point forecast with uncertainty bounds.
type ForecastPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Estimate   float64   `json:"estimate"`
	LowerBound float64   `json:"lower_bound"`
	UpperBound float64   `json:"upper_bound"`
}

type ForecastResponse struct {
	Status           string          `json:"status"`
	Message          string          `json:"message,omitempty"`
	PredictionSource string          `json:"prediction_source,omitempty"`
	Points           []ForecastPoint `json:"points,omitempty"`
	GeneratedAt      time.Time       `json:"generated_at"`
}
