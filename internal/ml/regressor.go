package ml

import (
	"errors"
	"math"
	"time"

	"github.com/sajari/regression"

	"glycolog/internal/models"
)

// ForecastStepHours is the fixed spacing between forecast points.
const ForecastStepHours = 2

// GlucoseRegressor is a seasonal regression model over a user's glucose
// series: a linear time trend plus a daily sin/cos harmonic. The fitted
// coefficients and residual spread are all that needs to be persisted, which
// keeps the personalized artifact a small JSON document.
type GlucoseRegressor struct {
	// Coefficients holds intercept, trend, sin, cos in that order.
	Coefficients []float64 `json:"coefficients"`
	ResidualStd  float64   `json:"residual_std"`
	OriginUnix   int64     `json:"origin_unix"`
	Observations int       `json:"observations"`
	TrainedAt    time.Time `json:"trained_at"`
}

func seasonalVars(origin time.Time, t time.Time) []float64 {
	hours := t.Sub(origin).Hours()
	dayPhase := 2 * math.Pi * float64(t.Hour()) / 24
	return []float64{hours, math.Sin(dayPhase), math.Cos(dayPhase)}
}

// FitGlucoseRegressor fits the seasonal model on an ascending glucose series.
func FitGlucoseRegressor(points []models.SeriesPoint) (*GlucoseRegressor, error) {
	if len(points) < 5 {
		return nil, errors.New("too few points to fit glucose regressor")
	}

	origin := points[0].Timestamp
	r := new(regression.Regression)
	r.SetObserved("glucose_level")
	r.SetVar(0, "trend_hours")
	r.SetVar(1, "day_sin")
	r.SetVar(2, "day_cos")

	for _, p := range points {
		r.Train(regression.DataPoint(p.GlucoseLevel, seasonalVars(origin, p.Timestamp)))
	}
	if err := r.Run(); err != nil {
		return nil, err
	}

	m := &GlucoseRegressor{
		Coefficients: []float64{r.Coeff(0), r.Coeff(1), r.Coeff(2), r.Coeff(3)},
		OriginUnix:   origin.Unix(),
		Observations: len(points),
		TrainedAt:    time.Now().UTC(),
	}

	// Residual spread drives the forecast's uncertainty bounds.
	var sumSq float64
	for _, p := range points {
		sumSq += math.Pow(p.GlucoseLevel-m.valueAt(p.Timestamp), 2)
	}
	m.ResidualStd = math.Sqrt(sumSq / float64(len(points)))

	return m, nil
}

func (m *GlucoseRegressor) valueAt(t time.Time) float64 {
	origin := time.Unix(m.OriginUnix, 0)
	vars := seasonalVars(origin, t)
	v := m.Coefficients[0]
	for i, x := range vars {
		v += m.Coefficients[i+1] * x
	}
	return v
}

// Valid reports whether a loaded artifact is structurally usable. Corrupt or
// truncated artifacts must push the forecaster onto its fallback chain
// instead of producing garbage.
func (m *GlucoseRegressor) Valid() bool {
	if m == nil || len(m.Coefficients) != 4 {
		return false
	}
	for _, c := range m.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Forecast emits point estimates with ±1.96σ bounds at fixed 2-hour
// increments after `from`.
func (m *GlucoseRegressor) Forecast(from time.Time, steps int) ([]models.ForecastPoint, error) {
	if !m.Valid() {
		return nil, errors.New("glucose regressor artifact is invalid")
	}

	margin := 1.96 * m.ResidualStd
	points := make([]models.ForecastPoint, 0, steps)
	for i := 1; i <= steps; i++ {
		at := from.Add(time.Duration(i) * ForecastStepHours * time.Hour)
		estimate := m.valueAt(at)
		points = append(points, models.ForecastPoint{
			Timestamp:  at,
			Estimate:   estimate,
			LowerBound: estimate - margin,
			UpperBound: estimate + margin,
		})
	}
	return points, nil
}
