package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"glycolog/internal/features"
	"glycolog/internal/ml"
	"glycolog/internal/models"
	"glycolog/internal/repository"
)

// MinTrainingSessions is the minimum number of usable sessions required
// before any per-symptom model is trained. Below it the trainer reports
// insufficient data, which is an expected outcome for new users, not an
// error.
const MinTrainingSessions = 10

// TrainOutcome carries everything downstream consumers of a training run
// need: the persisted bundle and the feature table it was trained on.
type TrainOutcome struct {
	Status          string
	ModelVersion    string
	Bundle          *ml.SymptomBundle
	Table           features.Table
	TrainedSymptoms []string
}

// TrainerService fits one binary classifier per symptom with training
// support and replaces the user's artifact bundle wholesale.
type TrainerService struct {
	sessionRepo repository.SessionRepository
	glucoseRepo repository.GlucoseRepository
	store       ml.ArtifactStore
	forestCfg   ml.ForestConfig
}

func NewTrainerService(
	sessionRepo repository.SessionRepository,
	glucoseRepo repository.GlucoseRepository,
	store ml.ArtifactStore,
) *TrainerService {
	return &TrainerService{
		sessionRepo: sessionRepo,
		glucoseRepo: glucoseRepo,
		store:       store,
	}
}

// Train builds the user's feature table and fits per-symptom classifiers.
// Symptoms with zero positive labels are omitted from the bundle: a model
// cannot learn from an all-negative column, and omission beats a trivial
// always-negative model that would produce misleading attributions.
func (s *TrainerService) Train(ctx context.Context, userID uint) (*TrainOutcome, error) {
	sessions, err := s.sessionRepo.GetCompletedSessionsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions for user %d: %w", userID, err)
	}
	logs, err := s.glucoseRepo.GetLogsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load glucose logs for user %d: %w", userID, err)
	}

	table := features.BuildUserTable(sessions, logs)
	modelVersion := "v" + time.Now().Format("200601021504")

	outcome := &TrainOutcome{
		Status:       models.TrainingStatusInsufficientData,
		ModelVersion: modelVersion,
		Table:        table,
	}
	if len(table.Rows) < MinTrainingSessions {
		log.Printf("Not enough data for user %d (%d usable sessions), skipping model training", userID, len(table.Rows))
		return outcome, nil
	}

	X := make([][]float64, len(table.Rows))
	for i := range table.Rows {
		X[i] = table.Rows[i].Vector()
	}

	bundle := &ml.SymptomBundle{
		UserID:       userID,
		ModelVersion: modelVersion,
		Models:       make(map[string]*ml.Forest),
		FeatureNames: features.Names,
		TrainedAt:    time.Now().UTC(),
	}

	for _, symptom := range features.Symptoms {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("training cancelled for user %d: %w", userID, err)
		}
		if table.PositiveCount(symptom) == 0 {
			continue
		}

		y := make([]int, len(table.Rows))
		for i := range table.Rows {
			if table.Rows[i].Labels[symptom] {
				y[i] = 1
			}
		}

		forest, err := ml.TrainForest(X, y, s.forestCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to train %s classifier for user %d: %w", symptom, userID, err)
		}
		bundle.Models[symptom] = forest
		bundle.TrainedSymptoms = append(bundle.TrainedSymptoms, symptom)
	}

	// Delete-then-write: a reader racing this retrain sees the fully-old or
	// fully-new bundle, never a mix of symptom models from two versions.
	if err := s.store.DeleteUserArtifacts(userID); err != nil {
		return nil, fmt.Errorf("failed to delete previous artifacts for user %d: %w", userID, err)
	}
	if err := s.store.SaveBundle(bundle); err != nil {
		return nil, fmt.Errorf("failed to save model bundle for user %d: %w", userID, err)
	}

	s.fitForecastRegressor(userID, logs)

	outcome.Status = models.TrainingStatusTrained
	outcome.Bundle = bundle
	outcome.TrainedSymptoms = bundle.TrainedSymptoms
	return outcome, nil
}

// fitForecastRegressor refreshes the personalized glucose regressor as part
// of the training run. Failures here only cost the personalized forecast
// path; the forecaster falls back to its seasonal model, so they are logged
// and swallowed.
func (s *TrainerService) fitForecastRegressor(userID uint, logs []models.GlucoseLog) {
	checks, err := s.glucoseRepo.GetSeriesPointsFromChecks(userID)
	if err != nil {
		log.Printf("Skipping forecast regressor for user %d: %v", userID, err)
		return
	}

	series := BuildGlucoseSeries(logs, checks, time.Now())
	if len(series) < MinForecastPoints {
		return
	}

	model, err := ml.FitGlucoseRegressor(series)
	if err != nil {
		log.Printf("Failed to fit forecast regressor for user %d: %v", userID, err)
		return
	}
	if err := s.store.SaveRegressor(userID, model); err != nil {
		log.Printf("Failed to save forecast regressor for user %d: %v", userID, err)
	}
}
