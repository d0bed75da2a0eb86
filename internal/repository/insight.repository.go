package repository

import (
	"glycolog/internal/models"

	"gorm.io/gorm"
)

type InsightRepository interface {
	Create(insight *models.Insight) error
	ExistsByUserAndText(userID uint, text string) (bool, error)
	FindByUserID(userID uint) ([]models.Insight, error)
	FindByUserIDAndProvenance(userID uint, provenance string) ([]models.Insight, error)
}

type insightRepository struct {
	db *gorm.DB
}

func NewInsightRepository(db *gorm.DB) InsightRepository {
	return &insightRepository{db}
}

func (r *insightRepository) Create(insight *models.Insight) error {
	return r.db.Create(insight).Error
}

// ExistsByUserAndText is the exact-string dedup check; insight text is the
// content-based identity of a row.
func (r *insightRepository) ExistsByUserAndText(userID uint, text string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Insight{}).
		Where("user_id = ? AND text = ?", userID, text).
		Count(&count).Error
	return count > 0, err
}

func (r *insightRepository) FindByUserID(userID uint) ([]models.Insight, error) {
	var insights []models.Insight
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&insights).Error
	return insights, err
}

func (r *insightRepository) FindByUserIDAndProvenance(userID uint, provenance string) ([]models.Insight, error) {
	var insights []models.Insight
	err := r.db.Where("user_id = ? AND provenance = ?", userID, provenance).
		Order("created_at DESC").
		Find(&insights).Error
	return insights, err
}
