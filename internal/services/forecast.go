package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"glycolog/internal/ml"
	"glycolog/internal/models"
	"glycolog/internal/repository"
)

const (
	// MinForecastPoints is the minimum merged series size required before any
	// forecast is produced.
	MinForecastPoints = 10
	// forecastWindowDays bounds the series to recent readings so stale data
	// cannot drag the trend.
	forecastWindowDays = 90

	// DefaultForecastHorizonHours is used when the caller does not specify a
	// horizon; MaxForecastHorizonHours caps what a caller may request.
	DefaultForecastHorizonHours = 24
	MaxForecastHorizonHours     = 72

	forecastCacheTTL = 15 * time.Minute
)

// ForecastCache is the slice of the cache layer the forecaster needs. A nil
// cache disables caching without changing behavior.
type ForecastCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// ForecastService produces short-horizon glucose forecasts. It prefers the
// personalized regressor persisted at training time and falls back to a
// seasonal model fitted on the spot from the user's own series.
type ForecastService struct {
	glucoseRepo repository.GlucoseRepository
	store       ml.ArtifactStore
	cache       ForecastCache
}

func NewForecastService(glucoseRepo repository.GlucoseRepository, store ml.ArtifactStore, cache ForecastCache) *ForecastService {
	return &ForecastService{
		glucoseRepo: glucoseRepo,
		store:       store,
		cache:       cache,
	}
}

// Forecast builds the merged glucose series and walks the personalized then
// seasonal model chain. Horizons are clamped to [ForecastStepHours,
// MaxForecastHorizonHours]; values are returned in the caller's display unit.
func (s *ForecastService) Forecast(ctx context.Context, userID uint, horizonHours int, unit string) (*models.ForecastResponse, error) {
	if horizonHours <= 0 {
		horizonHours = DefaultForecastHorizonHours
	}
	if horizonHours > MaxForecastHorizonHours {
		horizonHours = MaxForecastHorizonHours
	}

	cacheKey := fmt.Sprintf("forecast:%d:%d:%s", userID, horizonHours, unit)
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	now := time.Now()
	series, err := s.buildSeries(userID, now)
	if err != nil {
		return nil, err
	}

	if len(series) < MinForecastPoints {
		return &models.ForecastResponse{
			Status:      models.ForecastStatusInsufficientData,
			Message:     fmt.Sprintf("Need at least %d glucose readings in the last %d days to forecast.", MinForecastPoints, forecastWindowDays),
			GeneratedAt: now,
		}, nil
	}

	steps := horizonHours / ml.ForecastStepHours
	if steps < 1 {
		steps = 1
	}

	points, source, err := s.predict(userID, series, now, steps)
	if err != nil {
		return nil, err
	}

	for i := range points {
		points[i].Estimate = ConvertGlucose(points[i].Estimate, unit)
		points[i].LowerBound = ConvertGlucose(points[i].LowerBound, unit)
		points[i].UpperBound = ConvertGlucose(points[i].UpperBound, unit)
	}

	resp := &models.ForecastResponse{
		Status:           models.ForecastStatusSuccess,
		PredictionSource: source,
		Points:           points,
		GeneratedAt:      now,
	}
	s.toCache(ctx, cacheKey, resp)
	return resp, nil
}

// predict tries the persisted personalized regressor first. Any load or
// validation failure drops to a seasonal model fitted from the series itself;
// the fallback is silent to the caller except for the prediction_source field.
func (s *ForecastService) predict(userID uint, series []models.SeriesPoint, now time.Time, steps int) ([]models.ForecastPoint, string, error) {
	if personalized, err := s.store.LoadRegressor(userID); err == nil && personalized.Valid() {
		points, err := personalized.Forecast(now, steps)
		if err == nil {
			return points, models.PredictionSourcePersonalized, nil
		}
		log.Printf("Personalized forecast failed for user %d: %v", userID, err)
	}

	seasonal, err := ml.FitGlucoseRegressor(series)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fit seasonal glucose model for user %d: %w", userID, err)
	}
	points, err := seasonal.Forecast(now, steps)
	if err != nil {
		return nil, "", err
	}
	return points, models.PredictionSourceSeasonal, nil
}

func (s *ForecastService) buildSeries(userID uint, now time.Time) ([]models.SeriesPoint, error) {
	start := now.AddDate(0, 0, -forecastWindowDays)
	logs, err := s.glucoseRepo.GetLogsByUserIDAndDateRange(userID, start, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load glucose logs for user %d: %w", userID, err)
	}
	checks, err := s.glucoseRepo.GetSeriesPointsFromChecks(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load glucose checks for user %d: %w", userID, err)
	}
	return BuildGlucoseSeries(logs, checks, now), nil
}

func (s *ForecastService) fromCache(ctx context.Context, key string) *models.ForecastResponse {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil || raw == "" {
		return nil
	}
	var resp models.ForecastResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil
	}
	return &resp
}

func (s *ForecastService) toCache(ctx context.Context, key string, resp *models.ForecastResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), forecastCacheTTL); err != nil {
		log.Printf("Failed to cache forecast %s: %v", key, err)
	}
}

// BuildGlucoseSeries merges ad-hoc logs with questionnaire glucose checks into
// one clean ascending series: non-positive readings and zero timestamps are
// dropped, readings older than the forecast window are discarded, and
// duplicate timestamps collapse to a single point.
func BuildGlucoseSeries(logs []models.GlucoseLog, checks []models.SeriesPoint, now time.Time) []models.SeriesPoint {
	cutoff := now.AddDate(0, 0, -forecastWindowDays)

	merged := make([]models.SeriesPoint, 0, len(logs)+len(checks))
	for _, l := range logs {
		merged = append(merged, models.SeriesPoint{Timestamp: l.Timestamp, GlucoseLevel: l.GlucoseLevel})
	}
	merged = append(merged, checks...)

	seen := make(map[int64]bool, len(merged))
	series := make([]models.SeriesPoint, 0, len(merged))
	for _, p := range merged {
		if p.GlucoseLevel <= 0 || p.Timestamp.IsZero() {
			continue
		}
		if p.Timestamp.Before(cutoff) || p.Timestamp.After(now) {
			continue
		}
		key := p.Timestamp.Unix()
		if seen[key] {
			continue
		}
		seen[key] = true
		series = append(series, p)
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Timestamp.Before(series[j].Timestamp)
	})
	return series
}
