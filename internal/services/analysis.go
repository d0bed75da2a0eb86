package services

import (
	"context"
	"log"
	"strings"
	"time"

	"glycolog/internal/models"
	"glycolog/internal/repository"
)

// minTrendRows is the smallest table the trend miner is asked to work with.
const minTrendRows = 5

// AnalysisService runs the full per-user pipeline: retrain, explain, mine
// trends, persist. It is the single entry point the worker and the API both
// call.
type AnalysisService struct {
	trainer   *TrainerService
	explainer *ExplainerService
	writer    *InsightWriter
	userRepo  repository.UserRepository
}

func NewAnalysisService(
	trainer *TrainerService,
	explainer *ExplainerService,
	writer *InsightWriter,
	userRepo repository.UserRepository,
) *AnalysisService {
	return &AnalysisService{
		trainer:   trainer,
		explainer: explainer,
		writer:    writer,
		userRepo:  userRepo,
	}
}

// RunForUser retrains the user's models and, on success, generates and
// persists attribution and trend insights. An insufficient-data outcome
// short-circuits the pipeline and is reported as a status, not an error.
func (s *AnalysisService) RunForUser(ctx context.Context, userID uint) (*models.TrainingResult, error) {
	result := &models.TrainingResult{StartedAt: time.Now()}

	outcome, err := s.trainer.Train(ctx, userID)
	if err != nil {
		return nil, err
	}

	result.Status = outcome.Status
	result.ModelVersion = outcome.ModelVersion
	result.TrainedSymptoms = outcome.TrainedSymptoms
	result.UsableSessions = len(outcome.Table.Rows)
	result.SkippedSessions = outcome.Table.Skipped

	if outcome.Status != models.TrainingStatusTrained {
		result.FinishedAt = time.Now()
		return result, nil
	}

	unit := s.displayUnit(userID)

	candidates, skips, err := s.explainer.Explain(userID, unit)
	if err != nil {
		return nil, err
	}
	for _, skip := range skips {
		log.Printf("Skipped explanation for user %d symptom %s: %s", userID, skip.Symptom, skip.Reason)
	}

	// Diagnostic placeholders describe a broken pipeline, not the user's
	// health; they are never persisted.
	persistable := candidates[:0]
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c.Text), "model failed") {
			continue
		}
		persistable = append(persistable, c)
	}

	saved := s.writer.Persist(userID, outcome.ModelVersion, persistable)

	if len(outcome.Table.Rows) >= minTrendRows {
		trends := MineTrends(outcome.Table.Rows)
		saved += s.writer.Persist(userID, outcome.ModelVersion, trends)
	}

	result.InsightsSaved = saved
	result.FinishedAt = time.Now()
	return result, nil
}

// RunForAllUsers is the maintenance path that retrains every user, continuing
// past individual failures.
func (s *AnalysisService) RunForAllUsers(ctx context.Context) (int, error) {
	ids, err := s.userRepo.GetAllUserIDs()
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return completed, err
		}
		if _, err := s.RunForUser(ctx, id); err != nil {
			log.Printf("Analysis run failed for user %d: %v", id, err)
			continue
		}
		completed++
	}
	return completed, nil
}

func (s *AnalysisService) displayUnit(userID uint) string {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		log.Printf("Failed to load user %d for unit preference, defaulting to %s: %v", userID, UnitMgdL, err)
		return UnitMgdL
	}
	if user.GlucoseUnit == UnitMmolL {
		return UnitMmolL
	}
	return UnitMgdL
}
