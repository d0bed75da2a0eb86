package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glycolog/internal/ml"
	"glycolog/internal/models"
)

// syntheticLogs spreads readings with a daily sinusoid over the given number
// of days, one reading every six hours.
func syntheticLogs(now time.Time, days int) []models.GlucoseLog {
	var logs []models.GlucoseLog
	for h := 6; h <= days*24; h += 6 {
		at := now.Add(-time.Duration(h) * time.Hour)
		phase := 2 * math.Pi * float64(at.Hour()) / 24
		logs = append(logs, models.GlucoseLog{
			UserID:       1,
			Timestamp:    at,
			GlucoseLevel: 115 + 12*math.Sin(phase),
		})
	}
	return logs
}

func TestBuildGlucoseSeriesMergesAndCleans(t *testing.T) {
	now := time.Now()
	shared := now.Add(-2 * time.Hour).Truncate(time.Second)

	logs := []models.GlucoseLog{
		{Timestamp: shared, GlucoseLevel: 100},
		{Timestamp: now.Add(-4 * time.Hour), GlucoseLevel: 0},    // non-positive, dropped
		{Timestamp: time.Time{}, GlucoseLevel: 95},               // zero timestamp, dropped
		{Timestamp: now.AddDate(0, 0, -120), GlucoseLevel: 105},  // outside window, dropped
		{Timestamp: now.Add(-10 * time.Hour), GlucoseLevel: 108}, // kept
	}
	checks := []models.SeriesPoint{
		{Timestamp: shared, GlucoseLevel: 130}, // duplicate timestamp, dropped
		{Timestamp: now.Add(-6 * time.Hour), GlucoseLevel: 112},
	}

	series := BuildGlucoseSeries(logs, checks, now)

	require.Len(t, series, 3)
	// Ascending order
	for i := 1; i < len(series); i++ {
		assert.True(t, series[i-1].Timestamp.Before(series[i].Timestamp))
	}
	// The log wins the duplicate slot because logs are merged first
	for _, p := range series {
		if p.Timestamp.Equal(shared) {
			assert.Equal(t, 100.0, p.GlucoseLevel)
		}
	}
}

func TestForecastInsufficientData(t *testing.T) {
	now := time.Now()
	var logs []models.GlucoseLog
	for i := 0; i < MinForecastPoints-1; i++ {
		logs = append(logs, models.GlucoseLog{
			Timestamp:    now.Add(-time.Duration(i+1) * time.Hour),
			GlucoseLevel: 110,
		})
	}

	svc := NewForecastService(&fakeGlucoseRepo{logs: logs}, newTestStore(t), nil)

	resp, err := svc.Forecast(context.Background(), 1, 24, UnitMgdL)
	require.NoError(t, err)

	assert.Equal(t, models.ForecastStatusInsufficientData, resp.Status)
	assert.Empty(t, resp.Points)
	assert.NotEmpty(t, resp.Message)
}

func TestForecastSucceedsAtMinimumSeriesSize(t *testing.T) {
	now := time.Now()
	logs := make([]models.GlucoseLog, 0, MinForecastPoints)
	for i := 0; i < MinForecastPoints; i++ {
		at := now.Add(-time.Duration((i+1)*6) * time.Hour)
		phase := 2 * math.Pi * float64(at.Hour()) / 24
		logs = append(logs, models.GlucoseLog{
			UserID:       1,
			Timestamp:    at,
			GlucoseLevel: 112 + 10*math.Sin(phase),
		})
	}

	svc := NewForecastService(&fakeGlucoseRepo{logs: logs}, newTestStore(t), nil)

	// Exactly the minimum number of readings flips the outcome from
	// insufficient_data to a full forecast.
	resp, err := svc.Forecast(context.Background(), 1, 24, UnitMgdL)
	require.NoError(t, err)

	assert.Equal(t, models.ForecastStatusSuccess, resp.Status)
	assert.Equal(t, models.PredictionSourceSeasonal, resp.PredictionSource)
	assert.Len(t, resp.Points, 24/ml.ForecastStepHours)
}

func TestForecastFallsBackToSeasonal(t *testing.T) {
	now := time.Now()
	svc := NewForecastService(&fakeGlucoseRepo{logs: syntheticLogs(now, 14)}, newTestStore(t), nil)

	resp, err := svc.Forecast(context.Background(), 1, 24, UnitMgdL)
	require.NoError(t, err)

	assert.Equal(t, models.ForecastStatusSuccess, resp.Status)
	assert.Equal(t, models.PredictionSourceSeasonal, resp.PredictionSource)
	assert.Len(t, resp.Points, 24/ml.ForecastStepHours)

	for _, p := range resp.Points {
		assert.LessOrEqual(t, p.LowerBound, p.Estimate)
		assert.GreaterOrEqual(t, p.UpperBound, p.Estimate)
	}
}

func TestForecastPrefersPersonalizedModel(t *testing.T) {
	now := time.Now()
	store := newTestStore(t)

	series := BuildGlucoseSeries(syntheticLogs(now, 14), nil, now)
	model, err := ml.FitGlucoseRegressor(series)
	require.NoError(t, err)
	require.NoError(t, store.SaveRegressor(1, model))

	svc := NewForecastService(&fakeGlucoseRepo{logs: syntheticLogs(now, 14)}, store, nil)

	resp, err := svc.Forecast(context.Background(), 1, 24, UnitMgdL)
	require.NoError(t, err)

	assert.Equal(t, models.PredictionSourcePersonalized, resp.PredictionSource)
}

func TestForecastCorruptArtifactFallsBack(t *testing.T) {
	now := time.Now()
	store := newTestStore(t)

	// A structurally broken artifact must not surface as an error
	broken := &ml.GlucoseRegressor{Coefficients: []float64{1, 2}}
	require.NoError(t, store.SaveRegressor(1, broken))

	svc := NewForecastService(&fakeGlucoseRepo{logs: syntheticLogs(now, 14)}, store, nil)

	resp, err := svc.Forecast(context.Background(), 1, 24, UnitMgdL)
	require.NoError(t, err)
	assert.Equal(t, models.PredictionSourceSeasonal, resp.PredictionSource)
}

func TestForecastHorizonClamping(t *testing.T) {
	now := time.Now()
	svc := NewForecastService(&fakeGlucoseRepo{logs: syntheticLogs(now, 14)}, newTestStore(t), nil)

	resp, err := svc.Forecast(context.Background(), 1, 10000, UnitMgdL)
	require.NoError(t, err)
	assert.Len(t, resp.Points, MaxForecastHorizonHours/ml.ForecastStepHours)

	resp, err = svc.Forecast(context.Background(), 1, 0, UnitMgdL)
	require.NoError(t, err)
	assert.Len(t, resp.Points, DefaultForecastHorizonHours/ml.ForecastStepHours)
}

func TestForecastUnitConversion(t *testing.T) {
	now := time.Now()
	logs := syntheticLogs(now, 14)

	mgdl := NewForecastService(&fakeGlucoseRepo{logs: logs}, newTestStore(t), nil)
	mmol := NewForecastService(&fakeGlucoseRepo{logs: logs}, newTestStore(t), nil)

	respMgdl, err := mgdl.Forecast(context.Background(), 1, 8, UnitMgdL)
	require.NoError(t, err)
	respMmol, err := mmol.Forecast(context.Background(), 1, 8, UnitMmolL)
	require.NoError(t, err)

	require.Equal(t, len(respMgdl.Points), len(respMmol.Points))
	for i := range respMgdl.Points {
		assert.InDelta(t, respMgdl.Points[i].Estimate/18.0, respMmol.Points[i].Estimate, 0.5)
	}
}
