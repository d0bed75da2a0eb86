package models

import (
	"time"

	"gorm.io/gorm"
)

// Insight provenance values.
const (
	ProvenanceAttribution = "attribution"
	ProvenanceTrend       = "trend"
	ProvenanceImprovement = "improvement"
)

// Insight is a rendered, user-facing sentence produced by the explanation
// engine or the trend miner. Rows are append-only and deduplicated by exact
// (user_id, text); they are never mutated after creation.
type Insight struct {
	ID           uint           `gorm:"primaryKey" json:"id" example:"1"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	UserID       uint           `gorm:"index" json:"user_id" example:"1"`
	User         User           `gorm:"foreignKey:UserID" json:"-"`
	Text         string         `gorm:"type:text" json:"text"`
	Provenance   string         `gorm:"index" json:"provenance" example:"attribution"`
	ModelVersion string         `json:"model_version" example:"v202504011230"`
}

func (i *Insight) TableName() string {
	return "insights"
}

// InsightCandidate is a not-yet-persisted sentence. The insight writer turns
// candidates into Insight rows, skipping exact-text duplicates per user.
type InsightCandidate struct {
	Text       string `json:"text"`
	Provenance string `json:"provenance"`
}
