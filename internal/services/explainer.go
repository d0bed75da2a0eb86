package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"glycolog/internal/features"
	"glycolog/internal/ml"
	"glycolog/internal/models"
	"glycolog/internal/repository"
)

const (
	// explainSessionWindow bounds how much history the explanation engine
	// analyzes per run.
	explainSessionWindow = 30
	// recentSessionCount is the recency gate: only symptoms reported within
	// this many of the latest sessions are explained.
	recentSessionCount = 3
	// topFeatureCount is how many features make it into a rendered sentence.
	topFeatureCount = 3
	// trendWindowDays splits "recent" from "earlier" for the frequency trend
	// clause.
	trendWindowDays = 14
	// inactivityDays is the exercise-logging gap that adds the behavioral
	// flag to every explanation.
	inactivityDays = 5
)

// errNoInformativeFeatures marks a symptom whose feature scores carry no
// usable signal. The symptom is skipped rather than explained.
var errNoInformativeFeatures = errors.New("no informative features to explain")

// SymptomSkip records a symptom whose explanation attempt was abandoned,
// with the reason. Skips are values, not swallowed exceptions; the caller
// decides whether to surface them.
type SymptomSkip struct {
	Symptom string `json:"symptom"`
	Reason  string `json:"reason"`
}

// ExplainerService renders attribution-based causal sentences for the
// symptoms a user reported recently. It is read-only with respect to model
// artifacts.
type ExplainerService struct {
	sessionRepo repository.SessionRepository
	glucoseRepo repository.GlucoseRepository
	store       ml.ArtifactStore
}

func NewExplainerService(
	sessionRepo repository.SessionRepository,
	glucoseRepo repository.GlucoseRepository,
	store ml.ArtifactStore,
) *ExplainerService {
	return &ExplainerService{
		sessionRepo: sessionRepo,
		glucoseRepo: glucoseRepo,
		store:       store,
	}
}

// Explain produces one insight candidate per symptom that is both trained in
// the user's bundle and reported in the last three completed sessions. A
// bundle that cannot be loaded yields a single diagnostic candidate instead
// of an error, matching the "fewer, later insights over incorrect ones"
// policy everywhere else.
func (s *ExplainerService) Explain(userID uint, unit string) ([]models.InsightCandidate, []SymptomSkip, error) {
	bundle, err := s.store.LoadBundle(userID)
	if err != nil {
		log.Printf("Model bundle unavailable for user %d: %v", userID, err)
		return []models.InsightCandidate{{
			Text:       fmt.Sprintf("Model failed: %v", err),
			Provenance: models.ProvenanceAttribution,
		}}, nil, nil
	}

	sessions, err := s.sessionRepo.GetRecentCompletedSessions(userID, explainSessionWindow)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load recent sessions for user %d: %w", userID, err)
	}
	logs, err := s.glucoseRepo.GetLogsByUserID(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load glucose logs for user %d: %w", userID, err)
	}

	table := features.BuildUserTable(sessions, logs)
	if len(table.Rows) == 0 {
		return nil, nil, nil
	}

	recentSymptoms := reportedInRecentSessions(sessions, recentSessionCount)
	now := time.Now()
	inactive := s.exerciseInactive(userID, now)

	var candidates []models.InsightCandidate
	var skips []SymptomSkip

	for _, symptom := range bundle.TrainedSymptoms {
		if !recentSymptoms[symptom] {
			continue
		}
		forest := bundle.Model(symptom)
		if forest == nil {
			skips = append(skips, SymptomSkip{Symptom: symptom, Reason: "no classifier in bundle"})
			continue
		}

		positives := positiveRows(table.Rows, symptom)
		if len(positives) == 0 {
			continue
		}

		sentence, err := s.renderExplanation(symptom, forest, positives, unit, now, inactive)
		if err != nil {
			if errors.Is(err, ml.ErrShapeMismatch) {
				log.Printf("Attribution shape mismatch for user %d symptom %s: %v", userID, symptom, err)
				skips = append(skips, SymptomSkip{Symptom: symptom, Reason: err.Error()})
				continue
			}
			if errors.Is(err, errNoInformativeFeatures) {
				skips = append(skips, SymptomSkip{Symptom: symptom, Reason: err.Error()})
				continue
			}
			return nil, skips, err
		}

		candidates = append(candidates, models.InsightCandidate{
			Text:       sentence,
			Provenance: models.ProvenanceAttribution,
		})
	}

	return candidates, skips, nil
}

// renderExplanation builds the per-symptom sentence: top attribution clauses
// joined with "and", then the optional frequency-trend clause and the
// exercise-inactivity flag.
func (s *ExplainerService) renderExplanation(
	symptom string,
	forest *ml.Forest,
	positives []features.Row,
	unit string,
	now time.Time,
	inactive bool,
) (string, error) {
	X := make([][]float64, len(positives))
	for i := range positives {
		X[i] = positives[i].Vector()
	}

	meanAbs, err := forest.MeanAbsAttributions(X)
	if err != nil {
		return "", err
	}
	if allZero(meanAbs) {
		// An all-positive label column leaves every tree a single leaf, so
		// attributions carry no signal. Rank features by how far their means
		// sit from neutral instead.
		meanAbs = deviationScores(positives)
	}

	top := topFeatures(meanAbs, topFeatureCount)
	if len(top) == 0 {
		return "", errNoInformativeFeatures
	}
	clauses := make([]string, 0, len(top))
	for _, featureIdx := range top {
		name := features.Names[featureIdx]
		clauses = append(clauses, interpretFeature(name, columnMean(positives, name), unit))
	}

	sentence := fmt.Sprintf("%s may be triggered by %s.", symptom, strings.Join(clauses, " and "))

	if trend := frequencyTrend(positives, now); trend != "" {
		sentence += " " + trend
	}
	if inactive {
		sentence += " You haven't logged any exercise in the past 5 days."
	}
	return sentence, nil
}

func (s *ExplainerService) exerciseInactive(userID uint, now time.Time) bool {
	since := now.AddDate(0, 0, -inactivityDays)
	logged, err := s.sessionRepo.HasExerciseCheckSince(userID, since)
	if err != nil {
		log.Printf("Failed to check exercise recency for user %d: %v", userID, err)
		return false
	}
	return !logged
}

// reportedInRecentSessions collects the symptoms named in the newest n
// completed sessions' symptom checks. The gate counts sessions, not usable
// feature rows, so a session missing another sub-record still advances the
// window.
func reportedInRecentSessions(sessions []models.QuestionnaireSession, n int) map[string]bool {
	ordered := make([]models.QuestionnaireSession, len(sessions))
	copy(ordered, sessions)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})
	if n > len(ordered) {
		n = len(ordered)
	}

	reported := make(map[string]bool)
	for i := 0; i < n; i++ {
		if ordered[i].SymptomCheck == nil {
			continue
		}
		parsed := features.ParseSymptoms(json.RawMessage(ordered[i].SymptomCheck.Symptoms))
		for _, symptom := range features.Symptoms {
			if _, ok := parsed[strings.ToLower(symptom)]; ok {
				reported[symptom] = true
			}
		}
	}
	return reported
}

func positiveRows(rows []features.Row, symptom string) []features.Row {
	var out []features.Row
	for i := range rows {
		if rows[i].Labels[symptom] {
			out = append(out, rows[i])
		}
	}
	return out
}

// topFeatures returns the indices of the n largest nonzero scores,
// descending. A zero-score feature is never rendered as a trigger.
func topFeatures(scores []float64, n int) []int {
	indices := make([]int, 0, len(scores))
	for i, s := range scores {
		if s > 0 {
			indices = append(indices, i)
		}
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return scores[indices[a]] > scores[indices[b]]
	})
	if n > len(indices) {
		n = len(indices)
	}
	return indices[:n]
}

// featureBaselines anchors the fallback ranking used when attribution scores
// are degenerate: neutral value, and the spread counted as one unit of
// deviation. Features without a natural neutral band are left out and never
// surface through the fallback.
var featureBaselines = map[string][2]float64{
	features.FeatureGlucoseLevel:     {105, 35},
	features.FeatureAvgGlucose3d:     {105, 35},
	features.FeatureWeightedGI:       {60, 10},
	features.FeatureSkippedMeals:     {0, 1},
	features.FeatureExerciseDuration: {22.5, 7.5},
	features.FeatureStress:           {0, 2},
}

func deviationScores(rows []features.Row) []float64 {
	scores := make([]float64, len(features.Names))
	for i, name := range features.Names {
		ref, ok := featureBaselines[name]
		if !ok {
			continue
		}
		mean := columnMean(rows, name)
		// A zero 3-day average means no standalone readings, not hypoglycemia.
		if name == features.FeatureAvgGlucose3d && mean == 0 {
			continue
		}
		scores[i] = math.Abs(mean-ref[0]) / ref[1]
	}
	return scores
}

func allZero(scores []float64) bool {
	for _, s := range scores {
		if s != 0 {
			return false
		}
	}
	return true
}

func columnMean(rows []features.Row, feature string) float64 {
	if len(rows) == 0 {
		return 0
	}
	sum := 0.0
	for i := range rows {
		sum += rows[i].Value(feature)
	}
	return sum / float64(len(rows))
}

// frequencyTrend compares how often the symptom appeared within the last 14
// days against earlier occurrences, strict comparison both ways.
func frequencyTrend(positives []features.Row, now time.Time) string {
	cutoff := now.AddDate(0, 0, -trendWindowDays)
	recent, earlier := 0, 0
	for i := range positives {
		if positives[i].CreatedAt.After(cutoff) {
			recent++
		} else {
			earlier++
		}
	}
	switch {
	case recent > earlier:
		return "This symptom has increased in frequency recently."
	case recent < earlier:
		return "You've reported this symptom less often in the past two weeks."
	default:
		return ""
	}
}
