package services

import (
	"fmt"
	"time"

	"gorm.io/datatypes"

	"glycolog/internal/models"
)

// fakeSessionRepo serves canned sessions without a database.
type fakeSessionRepo struct {
	sessions    []models.QuestionnaireSession
	hasExercise bool
	err         error
}

func (f *fakeSessionRepo) GetCompletedSessionsByUserID(userID uint) ([]models.QuestionnaireSession, error) {
	return f.sessions, f.err
}

func (f *fakeSessionRepo) GetRecentCompletedSessions(userID uint, limit int) ([]models.QuestionnaireSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.sessions) > limit {
		return f.sessions[len(f.sessions)-limit:], nil
	}
	return f.sessions, nil
}

func (f *fakeSessionRepo) CountCompletedByUserID(userID uint) (int64, error) {
	return int64(len(f.sessions)), f.err
}

func (f *fakeSessionRepo) HasExerciseCheckSince(userID uint, since time.Time) (bool, error) {
	return f.hasExercise, f.err
}

type fakeGlucoseRepo struct {
	logs   []models.GlucoseLog
	checks []models.SeriesPoint
	err    error
}

func (f *fakeGlucoseRepo) GetLogsByUserID(userID uint) ([]models.GlucoseLog, error) {
	return f.logs, f.err
}

func (f *fakeGlucoseRepo) GetLogsByUserIDAndDateRange(userID uint, start, end time.Time) ([]models.GlucoseLog, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.GlucoseLog
	for _, l := range f.logs {
		if !l.Timestamp.Before(start) && !l.Timestamp.After(end) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeGlucoseRepo) GetSeriesPointsFromChecks(userID uint) ([]models.SeriesPoint, error) {
	return f.checks, f.err
}

func (f *fakeGlucoseRepo) SaveLog(log *models.GlucoseLog) error {
	f.logs = append(f.logs, *log)
	return f.err
}

type fakeUserRepo struct {
	user *models.User
	ids  []uint
	err  error
}

func (f *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user == nil {
		return nil, fmt.Errorf("user %d not found", id)
	}
	return f.user, nil
}

func (f *fakeUserRepo) GetAllUserIDs() ([]uint, error) {
	return f.ids, f.err
}

// fakeInsightRepo records creations in memory and supports per-text create
// failures.
type fakeInsightRepo struct {
	existing  map[string]bool
	created   []models.Insight
	failTexts map[string]bool
	existsErr error
}

func newFakeInsightRepo() *fakeInsightRepo {
	return &fakeInsightRepo{
		existing:  make(map[string]bool),
		failTexts: make(map[string]bool),
	}
}

func (f *fakeInsightRepo) Create(insight *models.Insight) error {
	if f.failTexts[insight.Text] {
		return fmt.Errorf("simulated write failure")
	}
	f.created = append(f.created, *insight)
	f.existing[insight.Text] = true
	return nil
}

func (f *fakeInsightRepo) ExistsByUserAndText(userID uint, text string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existing[text], nil
}

func (f *fakeInsightRepo) FindByUserID(userID uint) ([]models.Insight, error) {
	return f.created, nil
}

func (f *fakeInsightRepo) FindByUserIDAndProvenance(userID uint, provenance string) ([]models.Insight, error) {
	var out []models.Insight
	for _, i := range f.created {
		if i.Provenance == provenance {
			out = append(out, i)
		}
	}
	return out, nil
}

// completeSession builds a session with all four checks present.
func completeSession(id uint, at time.Time, symptomsJSON string, glucose, exerciseMins float64) models.QuestionnaireSession {
	return models.QuestionnaireSession{
		ID:        id,
		CreatedAt: at,
		UserID:    1,
		Completed: true,
		SymptomCheck: &models.SymptomCheck{
			SessionID:  id,
			Symptoms:   datatypes.JSON([]byte(symptomsJSON)),
			Stress:     1,
			SleepHours: 7,
		},
		GlucoseCheck: &models.GlucoseCheck{
			SessionID:    id,
			Timestamp:    at,
			GlucoseLevel: glucose,
			TargetMin:    70,
			TargetMax:    140,
		},
		MealCheck: &models.MealCheck{
			SessionID:    id,
			SkippedMeals: datatypes.JSON([]byte(`[]`)),
			WeightedGI:   55,
		},
		ExerciseCheck: &models.ExerciseCheck{
			SessionID:           id,
			ExerciseDuration:    exerciseMins,
			LastExerciseTime:    "Yesterday",
			PostExerciseFeeling: "Normal",
		},
	}
}

// sessionSeries builds n complete sessions one day apart ending near now, with
// Fatigue reported on even-indexed sessions.
func sessionSeries(n int, now time.Time) []models.QuestionnaireSession {
	sessions := make([]models.QuestionnaireSession, 0, n)
	for i := 0; i < n; i++ {
		at := now.AddDate(0, 0, -(n - i))
		symptoms := `{}`
		if i%2 == 0 {
			symptoms = `{"Fatigue": 2}`
		}
		sessions = append(sessions, completeSession(uint(i+1), at, symptoms, 100+float64(i), 20))
	}
	return sessions
}
