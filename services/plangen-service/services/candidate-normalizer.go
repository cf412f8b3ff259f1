package services

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
	"github.com/MacroPath/macro-path-backend/services/plangen-service/tables"
	"go.uber.org/zap"
)

const otherCategory = "other"

// CandidateNormalizer turns raw catalog records into candidates with a
// uniform per-100g nutrient basis and derived tags.
type CandidateNormalizer struct {
	tables *tables.Tables
	logger *zap.Logger
}

func NewCandidateNormalizer(t *tables.Tables, logger *zap.Logger) *CandidateNormalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CandidateNormalizer{tables: t, logger: logger}
}

// NormalizeFoods normalizes every record, skipping (and logging) the ones
// that fail and any repeated id.
func (n *CandidateNormalizer) NormalizeFoods(raws []models.RawFood) []models.CandidateFood {
	foods := make([]models.CandidateFood, 0, len(raws))
	seen := make(map[string]bool, len(raws))
	for _, raw := range raws {
		food, err := n.NormalizeFood(raw)
		if err != nil {
			n.logger.Warn("Skipping food record", zap.String("food_id", raw.FoodID), zap.Error(err))
			continue
		}
		if seen[food.ID] {
			n.logger.Warn("Skipping duplicate food record", zap.String("food_id", food.ID))
			continue
		}
		seen[food.ID] = true
		foods = append(foods, food)
	}
	return foods
}

// NormalizeExercises is the exercise counterpart of NormalizeFoods.
func (n *CandidateNormalizer) NormalizeExercises(raws []models.RawExercise) []models.CandidateExercise {
	exercises := make([]models.CandidateExercise, 0, len(raws))
	seen := make(map[string]bool, len(raws))
	for _, raw := range raws {
		exercise, err := n.NormalizeExercise(raw)
		if err != nil {
			n.logger.Warn("Skipping exercise record", zap.String("exercise_id", raw.ID), zap.Error(err))
			continue
		}
		if seen[exercise.ID] {
			n.logger.Warn("Skipping duplicate exercise record", zap.String("exercise_id", exercise.ID))
			continue
		}
		seen[exercise.ID] = true
		exercises = append(exercises, exercise)
	}
	return exercises
}

// NormalizeFood returns a *DataQualityError when the record has no id, no
// name, no serving, a NaN or infinite nutrient, or a non-positive calorie value.
func (n *CandidateNormalizer) NormalizeFood(raw models.RawFood) (models.CandidateFood, error) {
	id := strings.TrimSpace(raw.FoodID)
	name := strings.TrimSpace(raw.FoodName)
	if id == "" {
		return models.CandidateFood{}, &DataQualityError{Reason: "missing food_id"}
	}
	if name == "" {
		return models.CandidateFood{}, &DataQualityError{RecordID: id, Reason: "missing food_name"}
	}

	serving, ok := selectGramServing(raw.Servings)
	if !ok {
		return models.CandidateFood{}, &DataQualityError{RecordID: id, Reason: "no servings"}
	}

	// Servings without a usable amount are taken to be per 100g already.
	amount := parseFloatDefault(serving.MetricServingAmount)
	if amount <= 0 {
		amount = 100
	}
	factor := 100 / amount

	calories := parseFloatDefault(serving.Calories) * factor
	protein := parseFloatDefault(serving.Protein) * factor
	carbs := parseFloatDefault(serving.Carbohydrate) * factor
	fat := parseFloatDefault(serving.Fat) * factor
	if !allFinite(calories, protein, carbs, fat) {
		return models.CandidateFood{}, &DataQualityError{RecordID: id, Reason: "non-finite nutrient value"}
	}
	if calories <= 0 {
		return models.CandidateFood{}, &DataQualityError{RecordID: id, Reason: "non-positive calories"}
	}
	if protein < 0 || carbs < 0 || fat < 0 {
		return models.CandidateFood{}, &DataQualityError{RecordID: id, Reason: "negative macro value"}
	}

	category := n.canonicalCategory(raw.FoodCategory)
	row := n.tables.Category(category)
	lowerName := strings.ToLower(name)

	tokens := tokenize(lowerName)
	prep := row.PrepMinutes
	if matchesAny(lowerName, tokens, n.tables.FreshMarkers) {
		prep = 0
	}

	dietary := newTagSet(row.DietaryTags...)
	for tag, words := range n.tables.DietaryKeywords {
		if matchesAny(lowerName, tokens, words) {
			dietary.add(tag)
		}
	}
	if row.Plant && !dietary.has("meat") {
		dietary.add("vegetarian")
		if !dietary.has("dairy") && !dietary.has("egg") {
			dietary.add("vegan")
		}
	}

	allergens := newTagSet(row.AllergenTags...)
	for tag, words := range n.tables.AllergenKeywords {
		if matchesAny(lowerName, tokens, words) {
			allergens.add(tag)
		}
	}

	return models.CandidateFood{
		ID:              id,
		Name:            name,
		Category:        category,
		CaloriesPer100g: calories,
		ProteinPer100g:  protein,
		CarbsPer100g:    carbs,
		FatPer100g:      fat,
		ProteinPct:      macroPercent(protein, 4, calories),
		CarbsPct:        macroPercent(carbs, 4, calories),
		FatPct:          macroPercent(fat, 9, calories),
		PrepMinutes:     prep,
		CostTier:        row.CostTier,
		Availability:    clamp01(row.Availability),
		RoundingGrams:   row.RoundingGrams,
		DietaryTags:     dietary.sorted(),
		AllergenTags:    allergens.sorted(),
	}, nil
}

// NormalizeExercise fills missing attributes from the configured defaults
// and classifies the movement pattern when the catalog does not.
func (n *CandidateNormalizer) NormalizeExercise(raw models.RawExercise) (models.CandidateExercise, error) {
	id := strings.TrimSpace(raw.ID)
	name := strings.TrimSpace(raw.Name)
	if id == "" {
		return models.CandidateExercise{}, &DataQualityError{Reason: "missing exercise id"}
	}
	if name == "" {
		return models.CandidateExercise{}, &DataQualityError{RecordID: id, Reason: "missing exercise name"}
	}

	defaults := n.tables.ExerciseDefaults

	var muscles []models.MuscleGroup
	seen := make(map[models.MuscleGroup]bool)
	for _, s := range raw.MuscleGroups {
		m, ok := n.ParseMuscle(s)
		if !ok || seen[m] {
			continue
		}
		seen[m] = true
		muscles = append(muscles, m)
	}

	exercise := models.CandidateExercise{
		ID:                  id,
		Name:                name,
		Equipment:           defaults.Equipment,
		Difficulty:          defaults.Difficulty,
		SafetyRating:        ratingOr(raw.SafetyRating, defaults.SafetyRating),
		EffectivenessRating: ratingOr(raw.EffectivenessRating, defaults.EffectivenessRating),
		TimeEfficiency:      ratingOr(raw.TimeEfficiency, defaults.TimeEfficiency),
		SecondaryMuscles:    []models.MuscleGroup{},
	}
	if len(muscles) > 0 {
		exercise.PrimaryMuscle = muscles[0]
		exercise.SecondaryMuscles = append(exercise.SecondaryMuscles, muscles[1:]...)
	}
	if raw.METValue != nil && *raw.METValue > 0 {
		exercise.METValue = *raw.METValue
	}
	if strings.TrimSpace(raw.Equipment) != "" {
		exercise.Equipment = n.ParseEquipment(raw.Equipment)
	}
	if d, err := models.ParseDifficulty(raw.Difficulty); err == nil {
		exercise.Difficulty = d
	}

	exercise.MovementPattern = models.MovementPattern(models.NormalizeKey(raw.MovementPattern))
	if !exercise.MovementPattern.Valid() || exercise.MovementPattern == models.MovementAny {
		exercise.MovementPattern = classifyMovement(raw.ExerciseType, len(muscles))
	}

	for _, s := range raw.LocationCompatibility {
		if l, err := models.ParseLocation(s); err == nil && !containsLocation(exercise.LocationCompatibility, l) {
			exercise.LocationCompatibility = append(exercise.LocationCompatibility, l)
		}
	}
	if len(exercise.LocationCompatibility) == 0 {
		exercise.LocationCompatibility = append([]models.Location(nil), defaults.LocationCompatibility...)
	}

	return exercise, nil
}

// ParseMuscle resolves a catalog muscle name, including configured aliases.
func (n *CandidateNormalizer) ParseMuscle(s string) (models.MuscleGroup, bool) {
	key := models.NormalizeKey(s)
	if m := models.MuscleGroup(key); m.Valid() {
		return m, true
	}
	m, ok := n.tables.MuscleAliases[key]
	return m, ok
}

// ParseEquipment resolves an equipment name; unknown names map to EquipmentOther.
func (n *CandidateNormalizer) ParseEquipment(s string) models.Equipment {
	key := models.NormalizeKey(s)
	if e := models.Equipment(key); e.Valid() {
		return e
	}
	if e, ok := n.tables.EquipmentAliases[key]; ok {
		return e
	}
	return models.EquipmentOther
}

func (n *CandidateNormalizer) canonicalCategory(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := n.tables.FoodCategories[key]; ok {
		return key
	}
	if alias, ok := n.tables.CategoryAliases[key]; ok {
		return alias
	}
	return otherCategory
}

// classifyMovement: cardio by type, compound when two or more muscles are worked.
func classifyMovement(exerciseType string, muscleCount int) models.MovementPattern {
	if models.NormalizeKey(exerciseType) == string(models.MovementCardio) {
		return models.MovementCardio
	}
	if muscleCount >= 2 {
		return models.MovementCompound
	}
	return models.MovementIsolation
}

// selectGramServing prefers a gram-based serving and falls back to the first one.
func selectGramServing(servings []models.Serving) (models.Serving, bool) {
	for _, serving := range servings {
		descriptionLower := strings.ToLower(serving.MeasurementDescription)
		unitLower := strings.ToLower(serving.MetricServingUnit)
		if descriptionLower == "g" || descriptionLower == "gram" || descriptionLower == "grams" || unitLower == "g" {
			return serving, true
		}
	}
	if len(servings) > 0 {
		return servings[0], true
	}
	return models.Serving{}, false
}

func macroPercent(grams, kcalPerGram, calories float64) float64 {
	if calories <= 0 {
		return 0
	}
	return grams * kcalPerGram / calories * 100
}

func ratingOr(v *float64, fallback float64) float64 {
	if v == nil {
		return clamp01(fallback)
	}
	return clamp01(*v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// parseFloatDefault returns 0 for empty or unparsable input. NaN and Inf
// parse cleanly and are passed through for the caller to reject.
func parseFloatDefault(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func allFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, field := range strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) }) {
		tokens[field] = true
	}
	return tokens
}

// matchesAny matches single words against whole tokens (plural forms
// included) and multi-word phrases against the full name.
func matchesAny(name string, tokens map[string]bool, words []string) bool {
	for _, w := range words {
		if strings.Contains(w, " ") {
			if strings.Contains(name, w) {
				return true
			}
			continue
		}
		if tokens[w] || tokens[w+"s"] || tokens[w+"es"] {
			return true
		}
	}
	return false
}

func containsLocation(locations []models.Location, target models.Location) bool {
	for _, l := range locations {
		if l == target {
			return true
		}
	}
	return false
}

type tagSet map[string]bool

func newTagSet(tags ...string) tagSet {
	s := make(tagSet, len(tags))
	for _, t := range tags {
		s.add(t)
	}
	return s
}

func (s tagSet) add(tag string) { s[strings.ToLower(tag)] = true }

func (s tagSet) has(tag string) bool { return s[tag] }

func (s tagSet) sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
