package database

import (
	"log"

	"glycolog/internal/models"
)

func MigrateDatabase() error {
	log.Println("Running database migrations...")

	err := DB.AutoMigrate(
		&models.User{},
		&models.QuestionnaireSession{},
		&models.SymptomCheck{},
		&models.GlucoseCheck{},
		&models.MealCheck{},
		&models.ExerciseCheck{},
		&models.GlucoseLog{},
		&models.Insight{},
	)

	if err != nil {
		log.Printf("Error during migration: %v", err)
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}
