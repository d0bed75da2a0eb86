package models

import (
	"time"

	"gorm.io/gorm"
)

// GlucoseLog is an ad-hoc glucose reading logged outside of a questionnaire
// session. Together with session-embedded GlucoseChecks it forms the merged
// series consumed by the forecaster.
type GlucoseLog struct {
	ID           uint           `gorm:"primaryKey" json:"id" example:"1"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	UserID       uint           `gorm:"index" json:"user_id" example:"1"`
	User         User           `gorm:"foreignKey:UserID" json:"-"`
	Timestamp    time.Time      `gorm:"index" json:"timestamp"`
	GlucoseLevel float64        `json:"glucose_level" example:"104"`
}

func (g *GlucoseLog) TableName() string {
	return "glucose_logs"
}
