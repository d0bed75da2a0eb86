package features

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"glycolog/internal/models"
)

// Row is one usable session flattened into the feature table. The nine model
// features are exposed through Vector; the remaining fields feed the trend
// miner only.
type Row struct {
	SessionID uint
	CreatedAt time.Time

	GlucoseLevel      float64
	WeightedGI        float64
	SkippedMeals      float64
	ExerciseDuration  float64
	Stress            float64
	AvgGlucose3d      float64
	TotalSkippedMeals float64
	HourOfDay         float64
	DayOfWeek         float64

	SleepHours          float64
	LastExerciseTime    string
	PostExerciseFeeling string

	// Labels holds one entry per vocabulary symptom reported in this session.
	Labels map[string]bool
}

// Vector returns the model feature values in canonical column order.
func (r *Row) Vector() []float64 {
	return []float64{
		r.GlucoseLevel,
		r.WeightedGI,
		r.SkippedMeals,
		r.ExerciseDuration,
		r.Stress,
		r.AvgGlucose3d,
		r.TotalSkippedMeals,
		r.HourOfDay,
		r.DayOfWeek,
	}
}

// Value returns a single feature column by identifier.
func (r *Row) Value(feature string) float64 {
	switch feature {
	case FeatureGlucoseLevel:
		return r.GlucoseLevel
	case FeatureWeightedGI:
		return r.WeightedGI
	case FeatureSkippedMeals:
		return r.SkippedMeals
	case FeatureExerciseDuration:
		return r.ExerciseDuration
	case FeatureStress:
		return r.Stress
	case FeatureAvgGlucose3d:
		return r.AvgGlucose3d
	case FeatureTotalSkippedMeals:
		return r.TotalSkippedMeals
	case FeatureHourOfDay:
		return r.HourOfDay
	case FeatureDayOfWeek:
		return r.DayOfWeek
	}
	return 0
}

// Table is the feature builder's output: one row per usable session, plus the
// count of sessions skipped for missing sub-records so callers can reason
// about minimum-data gates.
type Table struct {
	Rows    []Row
	Skipped int
}

// PositiveCount returns the number of rows reporting the given symptom.
func (t *Table) PositiveCount(symptom string) int {
	n := 0
	for i := range t.Rows {
		if t.Rows[i].Labels[symptom] {
			n++
		}
	}
	return n
}

// symptomEntry is the list-shaped variant of a raw symptom report.
type symptomEntry struct {
	Symptom  string  `json:"symptom"`
	Severity float64 `json:"severity"`
}

// ParseSymptoms normalizes a raw symptom payload to a lower-cased
// name-to-severity map. Two shapes are accepted: a name->severity mapping and
// a list of {symptom, severity} entries. Anything malformed is dropped
// silently; data hygiene, not an error.
func ParseSymptoms(raw json.RawMessage) map[string]float64 {
	parsed := make(map[string]float64)
	if len(raw) == 0 {
		return parsed
	}

	var asMap map[string]float64
	if err := json.Unmarshal(raw, &asMap); err == nil {
		for name, severity := range asMap {
			parsed[strings.ToLower(name)] = severity
		}
		return parsed
	}

	var asList []symptomEntry
	if err := json.Unmarshal(raw, &asList); err == nil {
		for _, entry := range asList {
			if entry.Symptom == "" {
				continue
			}
			severity := entry.Severity
			if severity == 0 {
				severity = 1.0
			}
			parsed[strings.ToLower(entry.Symptom)] = severity
		}
	}
	return parsed
}

// ParseSkippedMeals returns the number of meals in a skipped-meal JSON list.
func ParseSkippedMeals(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var meals []string
	if err := json.Unmarshal(raw, &meals); err != nil {
		return 0
	}
	return len(meals)
}

// BuildUserTable flattens a user's sessions into the feature table. Sessions
// missing any of the four sub-records are skipped, not errored. Glucose logs
// are the standalone readings used for the 3-day rolling average.
func BuildUserTable(sessions []models.QuestionnaireSession, logs []models.GlucoseLog) Table {
	ordered := make([]models.QuestionnaireSession, len(sessions))
	copy(ordered, sessions)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	table := Table{}
	for i := range ordered {
		session := &ordered[i]
		if !session.HasAllChecks() {
			table.Skipped++
			continue
		}

		reported := ParseSymptoms(json.RawMessage(session.SymptomCheck.Symptoms))

		row := Row{
			SessionID:           session.ID,
			CreatedAt:           session.CreatedAt,
			GlucoseLevel:        session.GlucoseCheck.GlucoseLevel,
			WeightedGI:          session.MealCheck.WeightedGI,
			SkippedMeals:        float64(ParseSkippedMeals(json.RawMessage(session.MealCheck.SkippedMeals))),
			ExerciseDuration:    session.ExerciseCheck.ExerciseDuration,
			Stress:              float64(session.SymptomCheck.Stress),
			AvgGlucose3d:        avgGlucoseBefore(logs, session.CreatedAt),
			TotalSkippedMeals:   totalSkippedBefore(ordered, session.CreatedAt),
			HourOfDay:           float64(session.CreatedAt.Hour()),
			DayOfWeek:           float64(pythonWeekday(session.CreatedAt)),
			SleepHours:          session.SymptomCheck.SleepHours,
			LastExerciseTime:    session.ExerciseCheck.LastExerciseTime,
			PostExerciseFeeling: session.ExerciseCheck.PostExerciseFeeling,
			Labels:              make(map[string]bool, len(Symptoms)),
		}
		for _, symptom := range Symptoms {
			if _, ok := reported[strings.ToLower(symptom)]; ok {
				row.Labels[symptom] = true
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// avgGlucoseBefore computes the mean of standalone readings strictly within
// the three days preceding t, or 0 when none exist.
func avgGlucoseBefore(logs []models.GlucoseLog, t time.Time) float64 {
	windowStart := t.Add(-3 * 24 * time.Hour)
	sum, n := 0.0, 0
	for i := range logs {
		ts := logs[i].Timestamp
		if ts.After(windowStart) && ts.Before(t) {
			sum += logs[i].GlucoseLevel
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// totalSkippedBefore sums skipped-meal counts over all strictly earlier
// sessions that carry a meal check. The current session is excluded.
func totalSkippedBefore(sessions []models.QuestionnaireSession, t time.Time) float64 {
	total := 0
	for i := range sessions {
		if !sessions[i].CreatedAt.Before(t) {
			continue
		}
		if sessions[i].MealCheck == nil {
			continue
		}
		total += ParseSkippedMeals(json.RawMessage(sessions[i].MealCheck.SkippedMeals))
	}
	return float64(total)
}

// pythonWeekday maps time.Weekday (Sunday=0) onto the Monday=0 indexing the
// day-of-week phrasing expects.
func pythonWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
