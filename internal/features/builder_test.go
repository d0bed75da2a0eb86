package features

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"glycolog/internal/models"
)

func TestParseSymptomsMapShape(t *testing.T) {
	raw := json.RawMessage(`{"Fatigue": 2, "Thirst": 1.5}`)

	parsed := ParseSymptoms(raw)

	assert.Equal(t, 2.0, parsed["fatigue"])
	assert.Equal(t, 1.5, parsed["thirst"])
	assert.Len(t, parsed, 2)
}

func TestParseSymptomsListShape(t *testing.T) {
	raw := json.RawMessage(`[{"symptom": "Headaches", "severity": 3}, {"symptom": "Dizziness"}]`)

	parsed := ParseSymptoms(raw)

	assert.Equal(t, 3.0, parsed["headaches"])
	// Missing severity defaults to 1
	assert.Equal(t, 1.0, parsed["dizziness"])
}

func TestParseSymptomsMalformed(t *testing.T) {
	assert.Empty(t, ParseSymptoms(json.RawMessage(`"not a report"`)))
	assert.Empty(t, ParseSymptoms(nil))
	assert.Empty(t, ParseSymptoms(json.RawMessage(`[{"severity": 2}]`)))
}

func TestParseSkippedMeals(t *testing.T) {
	assert.Equal(t, 2, ParseSkippedMeals(json.RawMessage(`["Breakfast", "Lunch"]`)))
	assert.Equal(t, 0, ParseSkippedMeals(json.RawMessage(`[]`)))
	assert.Equal(t, 0, ParseSkippedMeals(json.RawMessage(`{"oops": true}`)))
	assert.Equal(t, 0, ParseSkippedMeals(nil))
}

func makeSession(id uint, at time.Time, symptoms string, glucose float64, skippedMeals string) models.QuestionnaireSession {
	return models.QuestionnaireSession{
		ID:        id,
		CreatedAt: at,
		Completed: true,
		SymptomCheck: &models.SymptomCheck{
			SessionID:  id,
			Symptoms:   datatypes.JSON([]byte(symptoms)),
			Stress:     1,
			SleepHours: 7,
		},
		GlucoseCheck: &models.GlucoseCheck{
			SessionID:    id,
			Timestamp:    at,
			GlucoseLevel: glucose,
		},
		MealCheck: &models.MealCheck{
			SessionID:    id,
			SkippedMeals: datatypes.JSON([]byte(skippedMeals)),
			WeightedGI:   55,
		},
		ExerciseCheck: &models.ExerciseCheck{
			SessionID:        id,
			ExerciseDuration: 20,
		},
	}
}

func TestBuildUserTableSkipsIncompleteSessions(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	complete := makeSession(1, base, `{"Fatigue": 1}`, 110, `[]`)
	incomplete := makeSession(2, base.Add(24*time.Hour), `{}`, 120, `[]`)
	incomplete.GlucoseCheck = nil

	table := BuildUserTable([]models.QuestionnaireSession{incomplete, complete}, nil)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, 1, table.Skipped)
	assert.Equal(t, uint(1), table.Rows[0].SessionID)
	assert.True(t, table.Rows[0].Labels["Fatigue"])
}

func TestBuildUserTableOrdersAscending(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	later := makeSession(2, base.Add(48*time.Hour), `{}`, 120, `[]`)
	earlier := makeSession(1, base, `{}`, 100, `[]`)

	table := BuildUserTable([]models.QuestionnaireSession{later, earlier}, nil)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, uint(1), table.Rows[0].SessionID)
	assert.Equal(t, uint(2), table.Rows[1].SessionID)
}

func TestBuildUserTableRollingGlucoseAverage(t *testing.T) {
	at := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	session := makeSession(1, at, `{}`, 110, `[]`)

	logs := []models.GlucoseLog{
		// Inside the 3-day window
		{UserID: 1, Timestamp: at.Add(-24 * time.Hour), GlucoseLevel: 100},
		{UserID: 1, Timestamp: at.Add(-48 * time.Hour), GlucoseLevel: 120},
		// Outside: too old, and not strictly before the session
		{UserID: 1, Timestamp: at.Add(-80 * time.Hour), GlucoseLevel: 500},
		{UserID: 1, Timestamp: at, GlucoseLevel: 500},
	}

	table := BuildUserTable([]models.QuestionnaireSession{session}, logs)

	require.Len(t, table.Rows, 1)
	assert.InDelta(t, 110.0, table.Rows[0].AvgGlucose3d, 1e-9)
}

func TestBuildUserTableRollingAverageDefaultsToZero(t *testing.T) {
	session := makeSession(1, time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC), `{}`, 110, `[]`)

	table := BuildUserTable([]models.QuestionnaireSession{session}, nil)

	require.Len(t, table.Rows, 1)
	assert.Zero(t, table.Rows[0].AvgGlucose3d)
}

func TestBuildUserTableCumulativeSkippedMeals(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	first := makeSession(1, base, `{}`, 100, `["Breakfast", "Lunch"]`)
	second := makeSession(2, base.Add(24*time.Hour), `{}`, 105, `["Dinner"]`)
	third := makeSession(3, base.Add(48*time.Hour), `{}`, 110, `[]`)

	table := BuildUserTable([]models.QuestionnaireSession{first, second, third}, nil)

	require.Len(t, table.Rows, 3)
	assert.Equal(t, 0.0, table.Rows[0].TotalSkippedMeals)
	assert.Equal(t, 2.0, table.Rows[1].TotalSkippedMeals)
	assert.Equal(t, 3.0, table.Rows[2].TotalSkippedMeals)
}

func TestPythonWeekdayMondayFirst(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, monday.Weekday())

	assert.Equal(t, 0, pythonWeekday(monday))
	assert.Equal(t, 5, pythonWeekday(monday.AddDate(0, 0, 5)))
	assert.Equal(t, 6, pythonWeekday(monday.AddDate(0, 0, 6)))
}

func TestVectorMatchesCanonicalOrder(t *testing.T) {
	row := Row{
		GlucoseLevel:      1,
		WeightedGI:        2,
		SkippedMeals:      3,
		ExerciseDuration:  4,
		Stress:            5,
		AvgGlucose3d:      6,
		TotalSkippedMeals: 7,
		HourOfDay:         8,
		DayOfWeek:         9,
	}

	vec := row.Vector()
	require.Len(t, vec, len(Names))
	for i, name := range Names {
		assert.Equal(t, row.Value(name), vec[i], "column %s", name)
	}
}
