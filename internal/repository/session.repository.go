package repository

import (
	"time"

	"glycolog/internal/models"

	"gorm.io/gorm"
)

type SessionRepository interface {
	GetCompletedSessionsByUserID(userID uint) ([]models.QuestionnaireSession, error)
	GetRecentCompletedSessions(userID uint, limit int) ([]models.QuestionnaireSession, error)
	CountCompletedByUserID(userID uint) (int64, error)
	HasExerciseCheckSince(userID uint, since time.Time) (bool, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db}
}

func (r *sessionRepository) withChecks() *gorm.DB {
	return r.db.
		Preload("SymptomCheck").
		Preload("GlucoseCheck").
		Preload("MealCheck").
		Preload("ExerciseCheck")
}

func (r *sessionRepository) GetCompletedSessionsByUserID(userID uint) ([]models.QuestionnaireSession, error) {
	var sessions []models.QuestionnaireSession
	err := r.withChecks().
		Where("user_id = ? AND completed = ?", userID, true).
		Order("created_at ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) GetRecentCompletedSessions(userID uint, limit int) ([]models.QuestionnaireSession, error) {
	var sessions []models.QuestionnaireSession
	err := r.withChecks().
		Where("user_id = ? AND completed = ?", userID, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) CountCompletedByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.QuestionnaireSession{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&count).Error
	return count, err
}

func (r *sessionRepository) HasExerciseCheckSince(userID uint, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.ExerciseCheck{}).
		Joins("JOIN questionnaire_sessions ON questionnaire_sessions.id = exercise_checks.session_id").
		Where("questionnaire_sessions.user_id = ? AND questionnaire_sessions.created_at >= ?", userID, since).
		Count(&count).Error
	return count > 0, err
}
