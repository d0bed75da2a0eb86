package repository

import (
	"time"

	"glycolog/internal/models"

	"gorm.io/gorm"
)

type GlucoseRepository interface {
	GetLogsByUserID(userID uint) ([]models.GlucoseLog, error)
	GetLogsByUserIDAndDateRange(userID uint, start, end time.Time) ([]models.GlucoseLog, error)
	GetSeriesPointsFromChecks(userID uint) ([]models.SeriesPoint, error)
	SaveLog(log *models.GlucoseLog) error
}

type glucoseRepository struct {
	db *gorm.DB
}

func NewGlucoseRepository(db *gorm.DB) GlucoseRepository {
	return &glucoseRepository{db}
}

func (r *glucoseRepository) GetLogsByUserID(userID uint) ([]models.GlucoseLog, error) {
	var logs []models.GlucoseLog
	err := r.db.Where("user_id = ?", userID).Order("timestamp ASC").Find(&logs).Error
	return logs, err
}

func (r *glucoseRepository) GetLogsByUserIDAndDateRange(userID uint, start, end time.Time) ([]models.GlucoseLog, error) {
	var logs []models.GlucoseLog
	err := r.db.Where("user_id = ? AND timestamp BETWEEN ? AND ?", userID, start, end).
		Order("timestamp ASC").
		Find(&logs).Error
	return logs, err
}

// GetSeriesPointsFromChecks pulls the questionnaire-embedded glucose readings
// that get merged with ad-hoc logs into the forecast series.
func (r *glucoseRepository) GetSeriesPointsFromChecks(userID uint) ([]models.SeriesPoint, error) {
	var checks []models.GlucoseCheck
	err := r.db.Model(&models.GlucoseCheck{}).
		Joins("JOIN questionnaire_sessions ON questionnaire_sessions.id = glucose_checks.session_id").
		Where("questionnaire_sessions.user_id = ?", userID).
		Find(&checks).Error
	if err != nil {
		return nil, err
	}

	points := make([]models.SeriesPoint, 0, len(checks))
	for _, check := range checks {
		points = append(points, models.SeriesPoint{
			Timestamp:    check.Timestamp,
			GlucoseLevel: check.GlucoseLevel,
		})
	}
	return points, nil
}

func (r *glucoseRepository) SaveLog(log *models.GlucoseLog) error {
	return r.db.Create(log).Error
}
