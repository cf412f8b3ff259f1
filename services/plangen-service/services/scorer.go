package services

import (
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
	"github.com/MacroPath/macro-path-backend/services/plangen-service/tables"
)

// RandomSource is the randomness the engine draws from. *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
	IntN(n int) int
}

// NewRandomSource returns a deterministic source for seed.
func NewRandomSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Ranked pairs a candidate with its selection score.
type Ranked[T any] struct {
	Item  T
	ID    string
	Score float64
}

// SelectWeighted sorts by score (ties by id), keeps the best topN and picks
// one at random weighted by score. When no weight is positive the best
// candidate wins. Reports false for an empty input.
func SelectWeighted[T any](ranked []Ranked[T], topN int, rng RandomSource) (T, bool) {
	var zero T
	if len(ranked) == 0 {
		return zero, false
	}

	sorted := make([]Ranked[T], len(ranked))
	copy(sorted, ranked)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].ID < sorted[j].ID
	})
	if topN > 0 && len(sorted) > topN {
		sorted = sorted[:topN]
	}

	var total float64
	for _, r := range sorted {
		total += math.Max(r.Score, 0)
	}
	if total <= 0 {
		return sorted[0].Item, true
	}

	pick := rng.Float64() * total
	for _, r := range sorted {
		pick -= math.Max(r.Score, 0)
		if pick < 0 {
			return r.Item, true
		}
	}
	return sorted[len(sorted)-1].Item, true
}

type Scorer struct {
	scoring tables.Scoring
}

func NewScorer(t *tables.Tables) *Scorer {
	return &Scorer{scoring: t.Scoring}
}

// FoodPreference rates how well a food suits the user, in [0,1].
func (s *Scorer) FoodPreference(food models.CandidateFood, prefs models.DietPreferences) float64 {
	score := s.scoring.Base

	name := strings.ToLower(strings.TrimSpace(food.Name))
	for _, preferred := range prefs.PreferredFoods {
		if strings.ToLower(strings.TrimSpace(preferred)) == name {
			score += s.scoring.PreferredBonus
			break
		}
	}
	if prefs.CookingTime != "" && prefs.CookingTime.Fits(food.PrepMinutes) {
		score += s.scoring.CookingTimeBonus
	}
	if prefs.Budget != "" && food.CostTier == prefs.Budget {
		score += s.scoring.BudgetBonus
	}

	return clamp01(score * food.Availability)
}

// ScoreFoods returns copies of foods with PreferenceScore set.
func (s *Scorer) ScoreFoods(foods []models.CandidateFood, prefs models.DietPreferences) []models.CandidateFood {
	scored := make([]models.CandidateFood, len(foods))
	for i, food := range foods {
		food.PreferenceScore = s.FoodPreference(food, prefs)
		scored[i] = food
	}
	return scored
}

// Adequacy measures how much of target 100g of the food covers, capped.
func (s *Scorer) Adequacy(nutrientPer100g, target float64) float64 {
	return math.Min(nutrientPer100g/math.Max(target, 1), s.scoring.AdequacyCap)
}

func (s *Scorer) FoodScore(food models.CandidateFood, nutrientPer100g, target float64) float64 {
	return s.Adequacy(nutrientPer100g, target)*s.scoring.AdequacyWeight + food.PreferenceScore*s.scoring.PreferenceWeight
}

// SelectFood picks one food for a nutrient target.
func (s *Scorer) SelectFood(foods []models.CandidateFood, nutrient func(models.CandidateFood) float64, target float64, rng RandomSource) (models.CandidateFood, bool) {
	ranked := make([]Ranked[models.CandidateFood], len(foods))
	for i, food := range foods {
		ranked[i] = Ranked[models.CandidateFood]{
			Item:  food,
			ID:    food.ID,
			Score: s.FoodScore(food, nutrient(food), target),
		}
	}
	return SelectWeighted(ranked, s.scoring.TopN, rng)
}

func ExerciseScore(e models.CandidateExercise) float64 {
	return e.EffectivenessRating * e.SafetyRating
}

// SelectExercise picks one exercise ranked by effectiveness times safety.
func (s *Scorer) SelectExercise(exercises []models.CandidateExercise, rng RandomSource) (models.CandidateExercise, bool) {
	ranked := make([]Ranked[models.CandidateExercise], len(exercises))
	for i, e := range exercises {
		ranked[i] = Ranked[models.CandidateExercise]{Item: e, ID: e.ID, Score: ExerciseScore(e)}
	}
	return SelectWeighted(ranked, s.scoring.TopN, rng)
}
