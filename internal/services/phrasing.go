package services

import (
	"fmt"
	"math"

	"glycolog/internal/features"
)

// Glucose display units accepted by the explanation renderer. All thresholds
// below are defined in mg/dL; the unit only affects rendering.
const (
	UnitMgdL  = "mg/dL"
	UnitMmolL = "mmol/L"
)

// Interpretation thresholds, mg/dL.
const (
	glucoseLowThreshold  = 70.0
	glucoseHighThreshold = 140.0
)

var weekdayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// ConvertGlucose renders a mg/dL value in the caller's display unit.
func ConvertGlucose(val float64, unit string) float64 {
	if unit == UnitMmolL {
		return val / 18.0
	}
	return val
}

// weekdayLabel turns a mean Monday-indexed weekday value into a day name.
func weekdayLabel(avg float64) string {
	idx := int(math.Round(avg)) % 7
	if idx < 0 {
		idx += 7
	}
	return weekdayNames[idx]
}

// interpretFeature renders one top-attribution feature as a clause with
// unit-aware, band-specific phrasing and a tailored suggestion.
func interpretFeature(feature string, val float64, unit string) string {
	switch feature {
	case features.FeatureGlucoseLevel, features.FeatureAvgGlucose3d:
		converted := ConvertGlucose(val, unit)
		unitLabel := UnitMgdL
		if unit == UnitMmolL {
			unitLabel = UnitMmolL
		}
		label := fmt.Sprintf("glucose was around %.1f %s", converted, unitLabel)
		switch {
		case val < glucoseLowThreshold:
			return fmt.Sprintf("%s, which is low. Consider snacks or reviewing insulin timing", label)
		case val > glucoseHighThreshold:
			return fmt.Sprintf("%s, which is high. Watch carbs or consult your care team", label)
		default:
			return fmt.Sprintf("%s, within the normal range. Keep up the consistency", label)
		}

	case features.FeatureWeightedGI:
		switch {
		case val > 70:
			return fmt.Sprintf("meals had a high glycaemic index (avg: %.1f), which can cause sugar spikes. Try switching to lower-GI foods", val)
		case val < 50:
			return fmt.Sprintf("meals were mostly low GI (avg: %.1f), which helps stabilize energy. Great job", val)
		default:
			return fmt.Sprintf("meals had a moderate GI (avg: %.1f). Keep watching how different foods affect you", val)
		}

	case features.FeatureSkippedMeals:
		if val >= 2 {
			return fmt.Sprintf("skipped meals were frequent (avg: %.1f/day), which could lead to crashes or hunger swings", val)
		}

	case features.FeatureExerciseDuration:
		switch {
		case val < 15:
			return fmt.Sprintf("activity was very low (avg: %.1f mins). Even light walks may help reduce symptoms", val)
		case val >= 30:
			return fmt.Sprintf("activity was high (avg: %.1f mins). If symptoms follow exercise, consider lighter sessions or more recovery", val)
		default:
			return fmt.Sprintf("moderate activity (avg: %.1f mins) logged. Track if symptom timing links to movement", val)
		}

	case features.FeatureStress:
		if val >= 2 {
			return fmt.Sprintf("stress was elevated (avg: %.1f). Try stress-reduction strategies, even 5-minute breaks help", val)
		}

	case features.FeatureHourOfDay:
		return fmt.Sprintf("the symptom was mostly logged around %.1fh. Consider patterns in your routine at that time", val)

	case features.FeatureDayOfWeek:
		return fmt.Sprintf("it often occurs on %ss. Think about weekly cycles that might influence this", weekdayLabel(val))
	}

	label := features.Labels[feature]
	if label == "" {
		label = feature
	}
	return fmt.Sprintf("%s averaged %.1f. Review if it could relate to your symptoms", label, val)
}
