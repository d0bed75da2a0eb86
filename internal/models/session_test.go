package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAllChecks(t *testing.T) {
	session := QuestionnaireSession{
		SymptomCheck:  &SymptomCheck{},
		GlucoseCheck:  &GlucoseCheck{},
		MealCheck:     &MealCheck{},
		ExerciseCheck: &ExerciseCheck{},
	}
	assert.True(t, session.HasAllChecks())

	session.MealCheck = nil
	assert.False(t, session.HasAllChecks())
}

func TestEvaluateTarget(t *testing.T) {
	check := GlucoseCheck{TargetMin: 70, TargetMax: 140}

	check.GlucoseLevel = 65
	assert.Equal(t, "below", check.EvaluateTarget())

	check.GlucoseLevel = 100
	assert.Equal(t, "within", check.EvaluateTarget())

	check.GlucoseLevel = 160
	assert.Equal(t, "above", check.EvaluateTarget())

	// Band edges are inclusive
	check.GlucoseLevel = 70
	assert.Equal(t, "within", check.EvaluateTarget())
	check.GlucoseLevel = 140
	assert.Equal(t, "within", check.EvaluateTarget())
}

func TestEvaluateTargetUnknownBand(t *testing.T) {
	check := GlucoseCheck{TargetMin: 0, TargetMax: 0, GlucoseLevel: 100}
	assert.Equal(t, "unknown", check.EvaluateTarget())
}
