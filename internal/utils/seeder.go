package utils

import (
	"encoding/json"
	"fmt"
	"log"
	mathrand "math/rand"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"glycolog/internal/features"
	"glycolog/internal/models"
)

const (
	DefaultNumUsers        = 20
	DefaultSessionsPerUser = 30
)

var (
	mealNames         = []string{"Breakfast", "Lunch", "Dinner"}
	lastExerciseTimes = []string{"Today", "Yesterday", "2-3 Days Ago", "More than 5 Days Ago", "I Don't Remember"}
	postExerciseMoods = []string{"Energized", "Normal", "Tired"}
	intensities       = []string{"light", "moderate", "vigorous"}
)

// SeedDemoData creates demo users with enough completed questionnaire
// sessions and glucose logs to exercise the full analysis pipeline. The
// generator is seeded so repeated runs with the same arguments produce the
// same data shape.
func SeedDemoData(db *gorm.DB, numUsers, sessionsPerUser int) error {
	rng := mathrand.New(mathrand.NewSource(42))
	now := time.Now()

	for i := 1; i <= numUsers; i++ {
		user := models.User{
			Name:        fmt.Sprintf("Demo User %d", i),
			Email:       fmt.Sprintf("demouser%d@example.com", i),
			Password:    "demo-password-hash",
			Age:         25 + rng.Intn(40),
			GlucoseUnit: "mg/dL",
			TargetMin:   70,
			TargetMax:   140,
			Verified:    true,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user %d: %v", i, err)
		}

		if err := seedSessions(db, rng, user.ID, sessionsPerUser, now); err != nil {
			return err
		}
		if err := seedGlucoseLogs(db, rng, user.ID, sessionsPerUser, now); err != nil {
			return err
		}
	}

	log.Printf("Seeded %d users with %d sessions each", numUsers, sessionsPerUser)
	return nil
}

func seedSessions(db *gorm.DB, rng *mathrand.Rand, userID uint, count int, now time.Time) error {
	for n := 0; n < count; n++ {
		// Spread sessions backwards over roughly 45 days
		at := now.AddDate(0, 0, -(count - n) * 45 / count).
			Add(time.Duration(rng.Intn(14)+7) * time.Hour)

		session := models.QuestionnaireSession{
			UserID:    userID,
			Completed: true,
			CreatedAt: at,
		}
		if err := db.Create(&session).Error; err != nil {
			return fmt.Errorf("failed to create session for user %d: %v", userID, err)
		}

		symptoms := randomSymptoms(rng)
		symptomsJSON, _ := json.Marshal(symptoms)

		skipped := randomSkippedMeals(rng)
		skippedJSON, _ := json.Marshal(skipped)

		glucose := 80 + rng.Float64()*90

		checks := []interface{}{
			&models.SymptomCheck{
				SessionID:  session.ID,
				Symptoms:   datatypes.JSON(symptomsJSON),
				Stress:     rng.Intn(3),
				SleepHours: 4 + rng.Float64()*5,
			},
			&models.GlucoseCheck{
				SessionID:    session.ID,
				Timestamp:    at,
				GlucoseLevel: glucose,
				TargetMin:    70,
				TargetMax:    140,
			},
			&models.MealCheck{
				SessionID:    session.ID,
				SkippedMeals: datatypes.JSON(skippedJSON),
				WeightedGI:   40 + rng.Float64()*45,
			},
			&models.ExerciseCheck{
				SessionID:           session.ID,
				ExerciseDuration:    float64(rng.Intn(61)),
				ExerciseIntensity:   intensities[rng.Intn(len(intensities))],
				LastExerciseTime:    lastExerciseTimes[rng.Intn(len(lastExerciseTimes))],
				PostExerciseFeeling: postExerciseMoods[rng.Intn(len(postExerciseMoods))],
			},
		}
		for _, check := range checks {
			if err := db.Create(check).Error; err != nil {
				return fmt.Errorf("failed to create check for session %d: %v", session.ID, err)
			}
		}
	}
	return nil
}

func seedGlucoseLogs(db *gorm.DB, rng *mathrand.Rand, userID uint, count int, now time.Time) error {
	for n := 0; n < count; n++ {
		at := now.AddDate(0, 0, -rng.Intn(45)).
			Add(time.Duration(rng.Intn(24)) * time.Hour)
		entry := models.GlucoseLog{
			UserID:       userID,
			Timestamp:    at,
			GlucoseLevel: 75 + rng.Float64()*95,
		}
		if err := db.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to create glucose log for user %d: %v", userID, err)
		}
	}
	return nil
}

func randomSymptoms(rng *mathrand.Rand) map[string]float64 {
	reported := make(map[string]float64)
	for _, symptom := range features.Symptoms {
		if rng.Float64() < 0.25 {
			reported[symptom] = 1 + rng.Float64()*2
		}
	}
	return reported
}

func randomSkippedMeals(rng *mathrand.Rand) []string {
	var skipped []string
	for _, meal := range mealNames {
		if rng.Float64() < 0.2 {
			skipped = append(skipped, meal)
		}
	}
	if skipped == nil {
		skipped = []string{}
	}
	return skipped
}

// DeleteDemoData removes everything the seeder created.
func DeleteDemoData(db *gorm.DB) error {
	var users []models.User
	if err := db.Where("email LIKE ?", "demouser%@example.com").Find(&users).Error; err != nil {
		return err
	}

	for _, user := range users {
		var sessionIDs []uint
		if err := db.Model(&models.QuestionnaireSession{}).
			Where("user_id = ?", user.ID).
			Pluck("id", &sessionIDs).Error; err != nil {
			return err
		}

		if len(sessionIDs) > 0 {
			db.Where("session_id IN ?", sessionIDs).Delete(&models.SymptomCheck{})
			db.Where("session_id IN ?", sessionIDs).Delete(&models.GlucoseCheck{})
			db.Where("session_id IN ?", sessionIDs).Delete(&models.MealCheck{})
			db.Where("session_id IN ?", sessionIDs).Delete(&models.ExerciseCheck{})
		}
		db.Where("user_id = ?", user.ID).Delete(&models.QuestionnaireSession{})
		db.Where("user_id = ?", user.ID).Delete(&models.GlucoseLog{})
		db.Where("user_id = ?", user.ID).Delete(&models.Insight{})
		db.Delete(&user)
	}

	log.Printf("Deleted %d demo users and their data", len(users))
	return nil
}
