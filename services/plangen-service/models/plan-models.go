package models

import "time"

// DateLayout is the key format of plan dates.
const DateLayout = "2006-01-02"

type MacroTarget struct {
	Calories float64 `firestore:"calories" json:"calories"`
	Carbs    float64 `firestore:"carbs" json:"carbs"`
	Fats     float64 `firestore:"fats" json:"fats"`
	Proteins float64 `firestore:"proteins" json:"proteins"`
}

// Add returns the element-wise sum of m and other.
func (m MacroTarget) Add(other MacroTarget) MacroTarget {
	return MacroTarget{
		Calories: m.Calories + other.Calories,
		Carbs:    m.Carbs + other.Carbs,
		Fats:     m.Fats + other.Fats,
		Proteins: m.Proteins + other.Proteins,
	}
}

type WarningKind string

const (
	WarningInsufficientCandidates WarningKind = "insufficient_candidates"
	WarningTargetUnreachable      WarningKind = "target_unreachable"
)

// PlanWarning records a degraded part of an otherwise valid plan.
type PlanWarning struct {
	Kind    WarningKind `firestore:"kind" json:"kind"`
	Scope   string      `firestore:"scope" json:"scope"`
	Message string      `firestore:"message" json:"message"`
}

type MealFood struct {
	FoodID        string  `firestore:"food_id" json:"food_id"`
	Name          string  `firestore:"name" json:"name"`
	Category      string  `firestore:"category" json:"category"`
	QuantityGrams float64 `firestore:"quantity_grams" json:"quantity_grams"`
	Calories      float64 `firestore:"calories" json:"calories"`
	Proteins      float64 `firestore:"proteins" json:"proteins"`
	Carbs         float64 `firestore:"carbs" json:"carbs"`
	Fats          float64 `firestore:"fats" json:"fats"`
}

// Meal is one slot of a day. Foods is never nil so it serializes as a list.
type Meal struct {
	Slot           MealSlot    `firestore:"slot" json:"slot"`
	TimeSuggestion string      `firestore:"time_suggestion" json:"time_suggestion"`
	Target         MacroTarget `firestore:"target" json:"target"`
	Foods          []MealFood  `firestore:"foods" json:"foods"`
	Totals         MacroTarget `firestore:"totals" json:"totals"`
	PrepMinutes    int         `firestore:"prep_minutes" json:"prep_minutes"`
}

type MealPlan struct {
	UserID         string        `firestore:"user_id" json:"user_id"`
	Date           string        `firestore:"date" json:"date"`
	Goal           Goal          `firestore:"goal" json:"goal"`
	DailyTarget    MacroTarget   `firestore:"daily_target" json:"daily_target"`
	Tolerance      float64       `firestore:"tolerance" json:"tolerance"`
	Meals          []Meal        `firestore:"meals" json:"meals"`
	Totals         MacroTarget   `firestore:"totals" json:"totals"`
	WaterIntakeML  float64       `firestore:"water_intake_ml" json:"water_intake_ml"`
	RequiresReview bool          `firestore:"requires_review" json:"requires_review"`
	Warnings       []PlanWarning `firestore:"warnings" json:"warnings"`
}

type ExerciseSet struct {
	SetNumber    int      `firestore:"set_number" json:"set_number"`
	Reps         int      `firestore:"reps" json:"reps"`
	RestSeconds  int      `firestore:"rest_seconds" json:"rest_seconds"`
	Weight       *float64 `firestore:"weight" json:"weight"`
	WeightFactor float64  `firestore:"weight_factor" json:"weight_factor"`
}

type SessionExercise struct {
	ExerciseID       string          `firestore:"exercise_id" json:"exercise_id"`
	Name             string          `firestore:"name" json:"name"`
	PrimaryMuscle    MuscleGroup     `firestore:"primary_muscle" json:"primary_muscle"`
	SecondaryMuscles []MuscleGroup   `firestore:"secondary_muscles" json:"secondary_muscles"`
	Equipment        Equipment       `firestore:"equipment" json:"equipment"`
	Difficulty       Difficulty      `firestore:"difficulty" json:"difficulty"`
	MovementPattern  MovementPattern `firestore:"movement_pattern" json:"movement_pattern"`
	Sets             []ExerciseSet   `firestore:"sets" json:"sets"`
}

type WarmupExercise struct {
	Name            string `firestore:"name" json:"name"`
	DurationSeconds int    `firestore:"duration_seconds" json:"duration_seconds"`
}

type WarmupBlock struct {
	Type      string           `firestore:"type" json:"type"`
	Minutes   int              `firestore:"minutes" json:"minutes"`
	Exercises []WarmupExercise `firestore:"exercises" json:"exercises"`
}

type WorkoutSession struct {
	ID               string            `firestore:"id" json:"id"`
	Template         string            `firestore:"template" json:"template"`
	Intensity        float64           `firestore:"intensity" json:"intensity"`
	Difficulty       Difficulty        `firestore:"difficulty" json:"difficulty"`
	Warmup           WarmupBlock       `firestore:"warmup" json:"warmup"`
	Exercises        []SessionExercise `firestore:"exercises" json:"exercises"`
	CooldownNotes    string            `firestore:"cooldown_notes" json:"cooldown_notes"`
	CooldownMinutes  int               `firestore:"cooldown_minutes" json:"cooldown_minutes"`
	EquipmentNeeded  []Equipment       `firestore:"equipment_needed" json:"equipment_needed"`
	Location         Location          `firestore:"location" json:"location"`
	EstimatedMinutes int               `firestore:"estimated_minutes" json:"estimated_minutes"`
}

// WorkoutPlan is either a rest day (Session nil) or a training day.
type WorkoutPlan struct {
	UserID         string          `firestore:"user_id" json:"user_id"`
	Date           string          `firestore:"date" json:"date"`
	Weekday        Weekday         `firestore:"weekday" json:"weekday"`
	Goal           Goal            `firestore:"goal" json:"goal"`
	RestDay        bool            `firestore:"rest_day" json:"rest_day"`
	ActiveRecovery string          `firestore:"active_recovery,omitempty" json:"active_recovery,omitempty"`
	Session        *WorkoutSession `firestore:"session,omitempty" json:"session,omitempty"`
	Warnings       []PlanWarning   `firestore:"warnings" json:"warnings"`
}

// StoredPlan is the immutable snapshot kept by a plan store under (kind, user, date).
type StoredPlan struct {
	ID             string       `firestore:"id" json:"id"`
	Kind           PlanKind     `firestore:"kind" json:"kind"`
	UserID         string       `firestore:"user_id" json:"user_id"`
	Date           string       `firestore:"date" json:"date"`
	Goal           Goal         `firestore:"goal" json:"goal"`
	TargetCalories float64      `firestore:"target_calories" json:"target_calories"`
	Version        int64        `firestore:"version" json:"version"`
	CreatedAt      time.Time    `firestore:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `firestore:"updated_at" json:"updated_at"`
	Diet           *MealPlan    `firestore:"diet,omitempty" json:"diet,omitempty"`
	Workout        *WorkoutPlan `firestore:"workout,omitempty" json:"workout,omitempty"`
}

// TemplateSlot is one exercise position inside a training split template.
type TemplateSlot struct {
	Pattern MovementPattern `yaml:"pattern" json:"pattern"`
	Muscles []MuscleGroup   `yaml:"muscles" json:"muscles"`
	Sets    int             `yaml:"sets" json:"sets"`
}

type TrainingSplitTemplate struct {
	Name          string         `yaml:"name" json:"name"`
	TargetMuscles []MuscleGroup  `yaml:"target_muscles" json:"target_muscles"`
	Slots         []TemplateSlot `yaml:"slots" json:"slots"`
	WarmupType    string         `yaml:"warmup_type" json:"warmup_type"`
	Intensity     float64        `yaml:"intensity" json:"intensity"`
}
