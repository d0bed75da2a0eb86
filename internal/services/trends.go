package services

import (
	"glycolog/internal/features"
	"glycolog/internal/models"
)

// minPredicateHits is the row-count threshold shared by every fixed trend
// predicate.
const minPredicateHits = 3

// trendPredicate pairs one aggregate condition with the fixed sentence it
// emits. Sentences are never randomized; the exact text is the dedup key in
// the insight store.
type trendPredicate struct {
	fires    func(rows []features.Row) bool
	sentence string
}

var trendPredicates = []trendPredicate{
	{
		fires: func(rows []features.Row) bool {
			return countRows(rows, func(r *features.Row) bool { return r.HourOfDay >= 20 }) >= minPredicateHits &&
				countAnySymptom(rows, "Blurred Vision", "Headaches", "Irritability") >= minPredicateHits
		},
		sentence: "Symptoms like blurred vision or headaches appear more frequently during late hours, indicating potential fatigue accumulation or screen overexposure.",
	},
	{
		fires: func(rows []features.Row) bool {
			return countRows(rows, func(r *features.Row) bool { return r.DayOfWeek >= 5 }) >= minPredicateHits &&
				countAnySymptom(rows, features.Symptoms...) >= minPredicateHits
		},
		sentence: "Symptom reporting is elevated on weekends, which may be due to irregular routines, dietary changes, or altered activity levels.",
	},
	{
		fires: func(rows []features.Row) bool {
			return countRows(rows, func(r *features.Row) bool { return r.ExerciseDuration < 10 }) >= minPredicateHits &&
				countAnySymptom(rows, "Fatigue", "Dizziness", "Blurred Vision") >= minPredicateHits
		},
		sentence: "Lack of regular exercise appears to be linked with increased symptoms like fatigue or dizziness, suggesting physical activity may offer protective benefits.",
	},
	{
		fires: func(rows []features.Row) bool {
			return countRows(rows, func(r *features.Row) bool { return r.ExerciseDuration >= 30 }) >= minPredicateHits &&
				meanSymptomCount(rows) < 5
		},
		sentence: "Regular exercise sessions (30+ minutes) are associated with fewer symptom reports, suggesting a protective effect.",
	},
	{
		fires: func(rows []features.Row) bool {
			return countRows(rows, func(r *features.Row) bool { return r.SkippedMeals >= 2 }) >= minPredicateHits &&
				countAnySymptom(rows, "Shakiness", "Dizziness", "Hunger") >= minPredicateHits
		},
		sentence: "Hypoglycemic symptoms such as shakiness or hunger may be mitigated with consistent meal timing.",
	},
	{
		fires: func(rows []features.Row) bool {
			return countRows(rows, func(r *features.Row) bool { return r.AvgGlucose3d <= 130 }) >= minPredicateHits &&
				meanSymptomCount(rows) < 5
		},
		sentence: "Stable average glucose levels (<=130) are associated with lower symptom frequency.",
	},
	{
		fires: func(rows []features.Row) bool {
			return countRows(rows, func(r *features.Row) bool { return r.WeightedGI > 70 }) >= minPredicateHits &&
				countAnySymptom(rows, "Thirst", "Fatigue", "Frequent Urination") >= minPredicateHits
		},
		sentence: "Meals with high glycaemic index values may be contributing to symptom spikes, while lower GI foods could offer more stable outcomes.",
	},
	{
		fires: func(rows []features.Row) bool {
			return countRows(rows, func(r *features.Row) bool { return r.WeightedGI > 70 }) >= minPredicateHits &&
				countRows(rows, func(r *features.Row) bool { return r.SkippedMeals >= 2 }) >= minPredicateHits
		},
		sentence: "Combining high-GI meals with skipped meals tends to amplify symptoms; regular balanced meals may help stabilize wellness.",
	},
	{
		// Stress is graded 0 to 3; any nonzero report counts.
		fires: func(rows []features.Row) bool {
			return countRows(rows, func(r *features.Row) bool { return r.Stress >= 1 }) >= minPredicateHits &&
				countAnySymptom(rows, "Irritability", "Headaches", "Fatigue") >= minPredicateHits
		},
		sentence: "Stress shows a consistent link with symptoms like fatigue or irritability; mindfulness or relaxation could provide relief.",
	},
	{
		fires: func(rows []features.Row) bool {
			return countRows(rows, func(r *features.Row) bool { return r.AvgGlucose3d > 150 }) >= minPredicateHits
		},
		sentence: "Persistent elevated glucose averages are observed and may coincide with symptom severity.",
	},
	{
		// SleepHours 0 means sleep was never logged, not zero sleep.
		fires: func(rows []features.Row) bool {
			return countRows(rows, func(r *features.Row) bool { return r.SleepHours > 0 && r.SleepHours < 5 }) >= minPredicateHits
		},
		sentence: "Limited sleep appears repeatedly and could be affecting your glucose stability and mood regulation.",
	},
	{
		fires: func(rows []features.Row) bool {
			return countRows(rows, func(r *features.Row) bool {
				gap := r.LastExerciseTime == "More than 5 Days Ago" || r.LastExerciseTime == "I Don't Remember"
				return gap && r.PostExerciseFeeling == "Tired"
			}) >= minPredicateHits
		},
		sentence: "Long intervals without exercise seem to lead to tiredness post-activity; regular movement may ease fatigue.",
	},
}

// deltaCheck compares a column's mean between the first and second half of
// the table. Each column carries its own directional threshold; firing emits
// an improvement-provenance sentence.
type deltaCheck struct {
	column    string
	threshold float64
	// below, when true, fires on delta < threshold; otherwise on
	// delta > threshold.
	below    bool
	sentence string
}

var deltaChecks = []deltaCheck{
	{features.FeatureSkippedMeals, -0.5, true, "You've reduced skipped meals recently. This could be helping stabilize hunger or glucose-related symptoms."},
	{features.FeatureStress, -0.5, true, "Reported stress levels are decreasing, which may be easing symptoms like fatigue or irritability."},
	{features.FeatureExerciseDuration, 5, false, "Your recent increase in physical activity may be supporting better symptom control."},
	{features.FeatureWeightedGI, -5, true, "Your recent meals have had a lower glycaemic index, which may help prevent spikes in fatigue or thirst."},
	{features.FeatureAvgGlucose3d, -10, true, "Your 3-day average glucose levels have come down, which may reduce symptom intensity."},
}

// fallbackTrendSentence is emitted when no predicate fires; the miner never
// returns an empty list for a non-empty table.
const fallbackTrendSentence = "Your logging efforts are essential; each entry helps refine insights and surface new trends."

// MineTrends applies the fixed predicate battery and the first-half versus
// second-half delta comparison over a user's full feature table. It is a
// pure function with no model dependency.
func MineTrends(rows []features.Row) []models.InsightCandidate {
	if len(rows) == 0 {
		return nil
	}

	var candidates []models.InsightCandidate
	for _, p := range trendPredicates {
		if p.fires(rows) {
			candidates = append(candidates, models.InsightCandidate{
				Text:       p.sentence,
				Provenance: models.ProvenanceTrend,
			})
		}
	}

	midpoint := len(rows) / 2
	if midpoint >= minPredicateHits {
		first, second := rows[:midpoint], rows[midpoint:]
		for _, check := range deltaChecks {
			delta := meanColumn(second, check.column) - meanColumn(first, check.column)
			fired := delta > check.threshold
			if check.below {
				fired = delta < check.threshold
			}
			if fired {
				candidates = append(candidates, models.InsightCandidate{
					Text:       check.sentence,
					Provenance: models.ProvenanceImprovement,
				})
			}
		}
	}

	if len(candidates) == 0 {
		candidates = append(candidates, models.InsightCandidate{
			Text:       fallbackTrendSentence,
			Provenance: models.ProvenanceTrend,
		})
	}
	return candidates
}

func countRows(rows []features.Row, match func(*features.Row) bool) int {
	n := 0
	for i := range rows {
		if match(&rows[i]) {
			n++
		}
	}
	return n
}

// countAnySymptom counts rows reporting at least one of the named symptoms.
func countAnySymptom(rows []features.Row, symptoms ...string) int {
	n := 0
	for i := range rows {
		for _, symptom := range symptoms {
			if rows[i].Labels[symptom] {
				n++
				break
			}
		}
	}
	return n
}

// meanSymptomCount is the average number of symptoms reported per row.
func meanSymptomCount(rows []features.Row) float64 {
	if len(rows) == 0 {
		return 0
	}
	total := 0
	for i := range rows {
		for _, present := range rows[i].Labels {
			if present {
				total++
			}
		}
	}
	return float64(total) / float64(len(rows))
}

func meanColumn(rows []features.Row, column string) float64 {
	if len(rows) == 0 {
		return 0
	}
	sum := 0.0
	for i := range rows {
		sum += rows[i].Value(column)
	}
	return sum / float64(len(rows))
}
