package models

// CandidateFood is a normalized food with nutrients expressed per 100g.
type CandidateFood struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	CaloriesPer100g float64  `json:"calories_per_100g"`
	ProteinPer100g  float64  `json:"protein_per_100g"`
	CarbsPer100g    float64  `json:"carbs_per_100g"`
	FatPer100g      float64  `json:"fat_per_100g"`
	ProteinPct      float64  `json:"protein_pct"`
	CarbsPct        float64  `json:"carbs_pct"`
	FatPct          float64  `json:"fat_pct"`
	PrepMinutes     int      `json:"prep_minutes"`
	CostTier        CostTier `json:"cost_tier"`
	Availability    float64  `json:"availability"`
	RoundingGrams   float64  `json:"rounding_grams"`
	DietaryTags     []string `json:"dietary_tags"`
	AllergenTags    []string `json:"allergen_tags"`

	// PreferenceScore is set per request by the scorer.
	PreferenceScore float64 `json:"preference_score"`
}

// HasDietaryTag reports whether the food carries tag.
func (f CandidateFood) HasDietaryTag(tag string) bool {
	return containsString(f.DietaryTags, tag)
}

// CandidateExercise is a normalized exercise.
type CandidateExercise struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	PrimaryMuscle         MuscleGroup     `json:"primary_muscle"`
	SecondaryMuscles      []MuscleGroup   `json:"secondary_muscles"`
	Equipment             Equipment       `json:"equipment"`
	Difficulty            Difficulty      `json:"difficulty"`
	MovementPattern       MovementPattern `json:"movement_pattern"`
	SafetyRating          float64         `json:"safety_rating"`
	EffectivenessRating   float64         `json:"effectiveness_rating"`
	LocationCompatibility []Location      `json:"location_compatibility"`
	TimeEfficiency        float64         `json:"time_efficiency"`
	METValue              float64         `json:"met_value"`
}

// Muscles returns the primary muscle followed by the secondary ones.
func (e CandidateExercise) Muscles() []MuscleGroup {
	muscles := make([]MuscleGroup, 0, len(e.SecondaryMuscles)+1)
	if e.PrimaryMuscle != "" {
		muscles = append(muscles, e.PrimaryMuscle)
	}
	return append(muscles, e.SecondaryMuscles...)
}

// TrainsAny reports whether the exercise works at least one of the given muscles.
func (e CandidateExercise) TrainsAny(targets []MuscleGroup) bool {
	for _, m := range e.Muscles() {
		for _, t := range targets {
			if m == t {
				return true
			}
		}
	}
	return false
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
