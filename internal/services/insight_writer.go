package services

import (
	"log"
	"strings"

	"glycolog/internal/models"
	"glycolog/internal/repository"
)

// InsightWriter persists insight candidates with exact-text deduplication per
// user. Persistence is idempotent: rerunning a pipeline over unchanged data
// writes nothing new.
type InsightWriter struct {
	insightRepo repository.InsightRepository
}

func NewInsightWriter(insightRepo repository.InsightRepository) *InsightWriter {
	return &InsightWriter{insightRepo: insightRepo}
}

// Persist writes each candidate unless the same text already exists for the
// user. Failures on one candidate are logged and do not block the rest; the
// return value is the number actually saved.
func (w *InsightWriter) Persist(userID uint, modelVersion string, candidates []models.InsightCandidate) int {
	saved := 0
	for _, c := range candidates {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}

		exists, err := w.insightRepo.ExistsByUserAndText(userID, text)
		if err != nil {
			log.Printf("Failed to check insight existence for user %d: %v", userID, err)
			continue
		}
		if exists {
			continue
		}

		insight := &models.Insight{
			UserID:       userID,
			Text:         text,
			Provenance:   c.Provenance,
			ModelVersion: modelVersion,
		}
		if err := w.insightRepo.Create(insight); err != nil {
			log.Printf("Failed to save insight for user %d: %v", userID, err)
			continue
		}
		saved++
	}
	return saved
}
