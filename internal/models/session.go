package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuestionnaireSession is one user's combined health snapshot at a point in
// time. A session is only usable for analysis once all four sub-records
// (symptom, glucose, meal, exercise) are present and the session is completed.
type QuestionnaireSession struct {
	ID        uint           `gorm:"primaryKey" json:"id" example:"1"`
	CreatedAt time.Time      `gorm:"index" json:"created_at" example:"2023-01-01T00:00:00Z"`
	UpdatedAt time.Time      `json:"updated_at" example:"2023-01-01T00:00:00Z"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"index" json:"user_id" example:"1"`
	User      User           `gorm:"foreignKey:UserID" json:"-"`
	Completed bool           `gorm:"index" json:"completed" example:"true"`

	SymptomCheck  *SymptomCheck  `gorm:"foreignKey:SessionID" json:"symptom_check,omitempty"`
	GlucoseCheck  *GlucoseCheck  `gorm:"foreignKey:SessionID" json:"glucose_check,omitempty"`
	MealCheck     *MealCheck     `gorm:"foreignKey:SessionID" json:"meal_check,omitempty"`
	ExerciseCheck *ExerciseCheck `gorm:"foreignKey:SessionID" json:"exercise_check,omitempty"`
}

func (s *QuestionnaireSession) TableName() string {
	return "questionnaire_sessions"
}

// HasAllChecks reports whether every sub-record needed by the feature builder
// is present.
func (s *QuestionnaireSession) HasAllChecks() bool {
	return s.SymptomCheck != nil && s.GlucoseCheck != nil && s.MealCheck != nil && s.ExerciseCheck != nil
}

// SymptomCheck stores the raw symptom report for a session. Symptoms is a
// JSON payload that arrives in one of two shapes: a mapping of symptom name
// to severity, or a list of {symptom, severity} entries.
type SymptomCheck struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	SessionID  uint           `gorm:"index" json:"session_id"`
	Symptoms   datatypes.JSON `json:"symptoms"`
	Stress     int            `json:"stress" example:"1"`
	SleepHours float64        `json:"sleep_hours" example:"6.5"`
}

type GlucoseCheck struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	SessionID    uint      `gorm:"index" json:"session_id"`
	Timestamp    time.Time `gorm:"index" json:"timestamp"`
	GlucoseLevel float64   `json:"glucose_level" example:"112.5"`
	TargetMin    float64   `json:"target_min" example:"70"`
	TargetMax    float64   `json:"target_max" example:"140"`
}

// EvaluateTarget classifies the reading against the session's target band.
func (g *GlucoseCheck) EvaluateTarget() string {
	if g.TargetMax <= g.TargetMin {
		return "unknown"
	}
	switch {
	case g.GlucoseLevel < g.TargetMin:
		return "below"
	case g.GlucoseLevel > g.TargetMax:
		return "above"
	default:
		return "within"
	}
}

type MealCheck struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	SessionID uint      `gorm:"index" json:"session_id"`
	// SkippedMeals is a JSON list of meal names skipped that day.
	SkippedMeals datatypes.JSON `json:"skipped_meals"`
	// WeightedGI is the carbohydrate-weighted average glycaemic index
	// across the meal's food items.
	WeightedGI float64 `json:"weighted_gi" example:"62.3"`
}

type ExerciseCheck struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	SessionID uint      `gorm:"index" json:"session_id"`
	// ExerciseDuration is in minutes.
	ExerciseDuration    float64 `json:"exercise_duration" example:"25"`
	ExerciseIntensity   string  `json:"exercise_intensity" example:"moderate"`
	LastExerciseTime    string  `json:"last_exercise_time" example:"Yesterday"`
	PostExerciseFeeling string  `json:"post_exercise_feeling" example:"Energized"`
}
