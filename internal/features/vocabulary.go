package features

// Symptoms is the fixed, ordered symptom vocabulary shared across all users.
// It defines the label columns of every feature table.
var Symptoms = []string{
	"Fatigue", "Headaches", "Dizziness", "Thirst", "Nausea", "Blurred Vision",
	"Irritability", "Sweating", "Frequent Urination", "Dry Mouth",
	"Slow Wound Healing", "Weight Loss", "Increased Hunger", "Shakiness",
	"Hunger", "Fast Heartbeat",
}

// Feature column identifiers, in the order classifiers consume them.
const (
	FeatureGlucoseLevel      = "glucose_level"
	FeatureWeightedGI        = "weighted_gi"
	FeatureSkippedMeals      = "skipped_meals"
	FeatureExerciseDuration  = "exercise_duration"
	FeatureStress            = "stress"
	FeatureAvgGlucose3d      = "avg_glucose_3d"
	FeatureTotalSkippedMeals = "total_skipped_meals"
	FeatureHourOfDay         = "hour_of_day"
	FeatureDayOfWeek         = "day_of_week"
)

// Names is the canonical feature column order. Every per-symptom classifier
// is trained and queried with vectors in exactly this order.
var Names = []string{
	FeatureGlucoseLevel,
	FeatureWeightedGI,
	FeatureSkippedMeals,
	FeatureExerciseDuration,
	FeatureStress,
	FeatureAvgGlucose3d,
	FeatureTotalSkippedMeals,
	FeatureHourOfDay,
	FeatureDayOfWeek,
}

// Labels maps feature identifiers to the phrasing used in rendered insights.
var Labels = map[string]string{
	FeatureGlucoseLevel:      "glucose level",
	FeatureWeightedGI:        "meal glycaemic index",
	FeatureSkippedMeals:      "meals skipped",
	FeatureExerciseDuration:  "exercise duration",
	FeatureStress:            "stress level",
	FeatureAvgGlucose3d:      "3-day average glucose",
	FeatureTotalSkippedMeals: "past skipped meals",
	FeatureHourOfDay:         "time of day",
	FeatureDayOfWeek:         "day of the week",
}
