// Package tables holds the static lookup data the plan engine runs on:
// food category attributes, meal distribution, training templates and
// prescription tables. Tables are loaded once and never mutated.
package tables

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
	"gopkg.in/yaml.v3"
)

//go:embed default-tables.yaml
var defaultYAML []byte

var (
	defaultOnce   sync.Once
	defaultTables *Tables
	defaultErr    error
)

type FoodCategory struct {
	PrepMinutes   int             `yaml:"prep_minutes"`
	CostTier      models.CostTier `yaml:"cost_tier"`
	Availability  float64         `yaml:"availability"`
	RoundingGrams float64         `yaml:"rounding_grams"`
	Plant         bool            `yaml:"plant"`
	DietaryTags   []string        `yaml:"dietary_tags"`
	AllergenTags  []string        `yaml:"allergen_tags"`
}

// MealShare is one slot of the daily distribution: its share of daily
// calories and the protein/carbs/fat split of those calories.
type MealShare struct {
	Slot       models.MealSlot `yaml:"slot"`
	Calories   float64         `yaml:"calories"`
	Proteins   float64         `yaml:"proteins"`
	Carbs      float64         `yaml:"carbs"`
	Fats       float64         `yaml:"fats"`
	Time       string          `yaml:"time"`
	Categories []string        `yaml:"categories"`
}

type Tolerance struct {
	Calories float64 `yaml:"calories"`
	Proteins float64 `yaml:"proteins"`
	Carbs    float64 `yaml:"carbs"`
	Fats     float64 `yaml:"fats"`
}

type MacroSplit struct {
	Proteins float64 `yaml:"proteins"`
	Carbs    float64 `yaml:"carbs"`
	Fats     float64 `yaml:"fats"`
}

type Allocation struct {
	ProteinMinPer100g    float64 `yaml:"protein_min_per_100g"`
	CarbsMinPer100g      float64 `yaml:"carbs_min_per_100g"`
	FatMinPer100g        float64 `yaml:"fat_min_per_100g"`
	CarbsRemainingMin    float64 `yaml:"carbs_remaining_min"`
	FatRemainingMin      float64 `yaml:"fat_remaining_min"`
	CaloriesRemainingMin float64 `yaml:"calories_remaining_min"`
}

type Scoring struct {
	Base             float64 `yaml:"base"`
	PreferredBonus   float64 `yaml:"preferred_bonus"`
	CookingTimeBonus float64 `yaml:"cooking_time_bonus"`
	BudgetBonus      float64 `yaml:"budget_bonus"`
	AdequacyWeight   float64 `yaml:"adequacy_weight"`
	PreferenceWeight float64 `yaml:"preference_weight"`
	AdequacyCap      float64 `yaml:"adequacy_cap"`
	TopN             int     `yaml:"top_n"`
}

type WaterIntake struct {
	BaseML          float64                 `yaml:"base_ml"`
	GoalMultipliers map[models.Goal]float64 `yaml:"goal_multipliers"`
}

type Regeneration struct {
	CalorieDelta float64 `yaml:"calorie_delta"`
	MaxAgeHours  int     `yaml:"max_age_hours"`
}

type ExerciseDefaults struct {
	Equipment             models.Equipment  `yaml:"equipment"`
	Difficulty            models.Difficulty `yaml:"difficulty"`
	SafetyRating          float64           `yaml:"safety_rating"`
	EffectivenessRating   float64           `yaml:"effectiveness_rating"`
	LocationCompatibility []models.Location `yaml:"location_compatibility"`
	TimeEfficiency        float64           `yaml:"time_efficiency"`
}

type RepRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

type VolumeRow struct {
	Strength    RepRange `yaml:"strength"`
	Hypertrophy RepRange `yaml:"hypertrophy"`
	Endurance   RepRange `yaml:"endurance"`
}

type Warmup struct {
	Minutes   int      `yaml:"minutes"`
	Exercises []string `yaml:"exercises"`
}

type Tables struct {
	FoodCategories      map[string]FoodCategory `yaml:"food_categories"`
	DefaultFoodCategory FoodCategory            `yaml:"default_food_category"`
	CategoryAliases     map[string]string       `yaml:"category_aliases"`
	FreshMarkers        []string                `yaml:"fresh_markers"`
	DietaryKeywords     map[string][]string     `yaml:"dietary_keywords"`
	AllergenKeywords    map[string][]string     `yaml:"allergen_keywords"`
	MealDistribution    []MealShare             `yaml:"meal_distribution"`
	Tolerance           Tolerance               `yaml:"tolerance"`
	DefaultMacroSplit   MacroSplit              `yaml:"default_macro_split"`
	Allocation          Allocation              `yaml:"allocation"`
	Scoring             Scoring                 `yaml:"scoring"`
	WaterIntake         WaterIntake             `yaml:"water_intake"`
	Regeneration        Regeneration            `yaml:"regeneration"`

	ExerciseDefaults ExerciseDefaults                        `yaml:"exercise_defaults"`
	MuscleAliases    map[string]models.MuscleGroup           `yaml:"muscle_aliases"`
	EquipmentAliases map[string]models.Equipment             `yaml:"equipment_aliases"`
	Templates        map[string]models.TrainingSplitTemplate `yaml:"templates"`
	Splits           map[int][]string                        `yaml:"splits"`
	Volume           map[models.Difficulty]VolumeRow         `yaml:"volume"`
	RestSeconds      map[models.Goal]RepRange                `yaml:"rest_seconds"`

	Warmups                  map[string]Warmup      `yaml:"warmups"`
	WarmupSecondsPerExercise int                    `yaml:"warmup_seconds_per_exercise"`
	Cooldowns                map[string]string      `yaml:"cooldowns"`
	CooldownMinutes          int                    `yaml:"cooldown_minutes"`
	MinutesPerSet            float64                `yaml:"minutes_per_set"`
	WeightTaper              float64                `yaml:"weight_taper"`
	ActiveRecovery           map[models.Goal]string `yaml:"active_recovery"`
	DefaultActiveRecovery    string                 `yaml:"default_active_recovery"`
}

// Default returns the embedded tables, parsed once and shared. Callers must
// not modify the result; use LoadDefault for a private copy.
func Default() (*Tables, error) {
	defaultOnce.Do(func() {
		defaultTables, defaultErr = Parse(defaultYAML)
	})
	return defaultTables, defaultErr
}

// LoadDefault parses a fresh copy of the embedded tables.
func LoadDefault() (*Tables, error) {
	return Parse(defaultYAML)
}

// Load reads tables from path, or returns the embedded defaults when path is empty.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse tables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Category returns the attributes of a canonical category, falling back to the default row.
func (t *Tables) Category(name string) FoodCategory {
	if c, ok := t.FoodCategories[name]; ok {
		return c
	}
	return t.DefaultFoodCategory
}

// Split returns the template rotation for a weekly available-day count.
// Counts without a configured split fall back to the three-day rotation.
func (t *Tables) Split(days int) []models.TrainingSplitTemplate {
	names, ok := t.Splits[days]
	if !ok {
		names = t.Splits[3]
	}
	templates := make([]models.TrainingSplitTemplate, 0, len(names))
	for _, name := range names {
		templates = append(templates, t.Templates[name])
	}
	return templates
}

// Warmup returns the warm-up of the given type, falling back to full body.
func (t *Tables) Warmup(kind string) (string, Warmup) {
	if w, ok := t.Warmups[kind]; ok {
		return kind, w
	}
	return "full_body", t.Warmups["full_body"]
}

func (t *Tables) Validate() error {
	if len(t.MealDistribution) == 0 {
		return fmt.Errorf("tables: meal_distribution is empty")
	}
	var share float64
	seen := make(map[models.MealSlot]bool, len(t.MealDistribution))
	for _, m := range t.MealDistribution {
		if !m.Slot.Valid() {
			return fmt.Errorf("tables: unknown meal slot %q", m.Slot)
		}
		if seen[m.Slot] {
			return fmt.Errorf("tables: duplicate meal slot %q", m.Slot)
		}
		seen[m.Slot] = true
		if !approxOne(m.Proteins + m.Carbs + m.Fats) {
			return fmt.Errorf("tables: macro ratios of %s must sum to 1", m.Slot)
		}
		share += m.Calories
	}
	if !approxOne(share) {
		return fmt.Errorf("tables: meal calorie shares sum to %.3f, want 1", share)
	}
	if !approxOne(t.DefaultMacroSplit.Proteins + t.DefaultMacroSplit.Carbs + t.DefaultMacroSplit.Fats) {
		return fmt.Errorf("tables: default_macro_split must sum to 1")
	}
	if t.Tolerance.Calories <= 0 {
		return fmt.Errorf("tables: calorie tolerance must be positive")
	}
	if t.Scoring.TopN <= 0 {
		return fmt.Errorf("tables: scoring top_n must be positive")
	}

	if t.DefaultFoodCategory.RoundingGrams <= 0 {
		return fmt.Errorf("tables: default food category needs a rounding increment")
	}
	for name, c := range t.FoodCategories {
		if !c.CostTier.Valid() {
			return fmt.Errorf("tables: category %s has unknown cost tier %q", name, c.CostTier)
		}
		if c.RoundingGrams <= 0 {
			return fmt.Errorf("tables: category %s needs a rounding increment", name)
		}
	}

	if !t.ExerciseDefaults.Equipment.Valid() || !t.ExerciseDefaults.Difficulty.Valid() {
		return fmt.Errorf("tables: invalid exercise defaults")
	}
	for alias, m := range t.MuscleAliases {
		if !m.Valid() {
			return fmt.Errorf("tables: muscle alias %s points to unknown muscle %q", alias, m)
		}
	}
	for alias, e := range t.EquipmentAliases {
		if !e.Valid() {
			return fmt.Errorf("tables: equipment alias %s points to unknown equipment %q", alias, e)
		}
	}
	for key, tpl := range t.Templates {
		if len(tpl.Slots) == 0 {
			return fmt.Errorf("tables: template %s has no slots", key)
		}
		for _, slot := range tpl.Slots {
			if !slot.Pattern.Valid() || slot.Sets <= 0 || len(slot.Muscles) == 0 {
				return fmt.Errorf("tables: template %s has an invalid slot", key)
			}
			for _, m := range slot.Muscles {
				if !m.Valid() {
					return fmt.Errorf("tables: template %s uses unknown muscle %q", key, m)
				}
			}
		}
	}
	for days := 1; days <= 7; days++ {
		names, ok := t.Splits[days]
		if !ok || len(names) == 0 {
			return fmt.Errorf("tables: no split for %d days", days)
		}
		for _, name := range names {
			if _, ok := t.Templates[name]; !ok {
				return fmt.Errorf("tables: split %d references unknown template %s", days, name)
			}
		}
	}
	for _, level := range []models.Difficulty{models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced, models.DifficultyExpert} {
		row, ok := t.Volume[level]
		if !ok {
			return fmt.Errorf("tables: no volume row for %s", level)
		}
		for _, r := range []RepRange{row.Strength, row.Hypertrophy, row.Endurance} {
			if r.Min < 1 || r.Max < r.Min {
				return fmt.Errorf("tables: invalid rep range for %s", level)
			}
		}
	}
	for _, goal := range []models.Goal{models.GoalLoseWeight, models.GoalGainMass, models.GoalIncreaseStrength, models.GoalImproveEndurance, models.GoalMaintainWeight} {
		r, ok := t.RestSeconds[goal]
		if !ok || r.Min < 0 || r.Max < r.Min {
			return fmt.Errorf("tables: invalid rest range for %s", goal)
		}
	}
	if _, ok := t.Warmups["full_body"]; !ok {
		return fmt.Errorf("tables: full_body warm-up is required")
	}
	return nil
}

func approxOne(v float64) bool {
	return math.Abs(v-1) < 1e-6
}
