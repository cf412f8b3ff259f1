package models

import (
	"fmt"
	"strings"
	"time"
)

// Goal is the user's training/nutrition objective.
type Goal string

const (
	GoalLoseWeight       Goal = "lose_weight"
	GoalGainMass         Goal = "gain_mass"
	GoalIncreaseStrength Goal = "increase_strength"
	GoalImproveEndurance Goal = "improve_endurance"
	GoalMaintainWeight   Goal = "maintain_weight"
)

var goalAliases = map[string]Goal{
	"perder_peso":          GoalLoseWeight,
	"weight_loss":          GoalLoseWeight,
	"ganhar_massa":         GoalGainMass,
	"gain_muscle":          GoalGainMass,
	"muscle_gain":          GoalGainMass,
	"aumentar_forca":       GoalIncreaseStrength,
	"strength":             GoalIncreaseStrength,
	"melhorar_resistencia": GoalImproveEndurance,
	"endurance":            GoalImproveEndurance,
	"manter_peso":          GoalMaintainWeight,
	"maintain":             GoalMaintainWeight,
	"maintenance":          GoalMaintainWeight,
}

func (g Goal) Valid() bool {
	switch g {
	case GoalLoseWeight, GoalGainMass, GoalIncreaseStrength, GoalImproveEndurance, GoalMaintainWeight:
		return true
	}
	return false
}

// ParseGoal accepts canonical names and the legacy aliases used by older clients.
func ParseGoal(s string) (Goal, error) {
	key := NormalizeKey(s)
	if g := Goal(key); g.Valid() {
		return g, nil
	}
	if g, ok := goalAliases[key]; ok {
		return g, nil
	}
	return "", fmt.Errorf("unknown goal %q", s)
}

// Difficulty is shared by exercise difficulty and user experience level.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

// Rank orders difficulties from 0 (beginner) to 3 (expert); -1 for unknown values.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyBeginner:
		return 0
	case DifficultyIntermediate:
		return 1
	case DifficultyAdvanced:
		return 2
	case DifficultyExpert:
		return 3
	}
	return -1
}

func (d Difficulty) Valid() bool { return d.Rank() >= 0 }

func ParseDifficulty(s string) (Difficulty, error) {
	key := NormalizeKey(s)
	if d := Difficulty(key); d.Valid() {
		return d, nil
	}
	switch key {
	case "iniciante":
		return DifficultyBeginner, nil
	case "intermediario":
		return DifficultyIntermediate, nil
	case "avancado":
		return DifficultyAdvanced, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// MovementPattern classifies exercises. MovementAny only appears on template slots.
type MovementPattern string

const (
	MovementCompound  MovementPattern = "compound"
	MovementIsolation MovementPattern = "isolation"
	MovementCardio    MovementPattern = "cardio"
	MovementAny       MovementPattern = "any"
)

func (m MovementPattern) Valid() bool {
	switch m {
	case MovementCompound, MovementIsolation, MovementCardio, MovementAny:
		return true
	}
	return false
}

// Matches reports whether an exercise with pattern other fits a slot declaring m.
func (m MovementPattern) Matches(other MovementPattern) bool {
	return m == MovementAny || m == other
}

type MuscleGroup string

const (
	MuscleChest      MuscleGroup = "chest"
	MuscleBack       MuscleGroup = "back"
	MuscleShoulders  MuscleGroup = "shoulders"
	MuscleBiceps     MuscleGroup = "biceps"
	MuscleTriceps    MuscleGroup = "triceps"
	MuscleForearms   MuscleGroup = "forearms"
	MuscleCore       MuscleGroup = "core"
	MuscleQuadriceps MuscleGroup = "quadriceps"
	MuscleHamstrings MuscleGroup = "hamstrings"
	MuscleGlutes     MuscleGroup = "glutes"
	MuscleCalves     MuscleGroup = "calves"
	MuscleFullBody   MuscleGroup = "full_body"
)

func (m MuscleGroup) Valid() bool {
	switch m {
	case MuscleChest, MuscleBack, MuscleShoulders, MuscleBiceps, MuscleTriceps, MuscleForearms,
		MuscleCore, MuscleQuadriceps, MuscleHamstrings, MuscleGlutes, MuscleCalves, MuscleFullBody:
		return true
	}
	return false
}

type Equipment string

const (
	EquipmentBodyweight Equipment = "bodyweight"
	EquipmentDumbbell   Equipment = "dumbbell"
	EquipmentBarbell    Equipment = "barbell"
	EquipmentKettlebell Equipment = "kettlebell"
	EquipmentBand       Equipment = "band"
	EquipmentMachine    Equipment = "machine"
	EquipmentCable      Equipment = "cable"
	EquipmentBench      Equipment = "bench"
	EquipmentOther      Equipment = "other"
)

func (e Equipment) Valid() bool {
	switch e {
	case EquipmentBodyweight, EquipmentDumbbell, EquipmentBarbell, EquipmentKettlebell,
		EquipmentBand, EquipmentMachine, EquipmentCable, EquipmentBench, EquipmentOther:
		return true
	}
	return false
}

type Location string

const (
	LocationGym     Location = "gym"
	LocationHome    Location = "home"
	LocationOutdoor Location = "outdoor"
)

func (l Location) Valid() bool {
	switch l {
	case LocationGym, LocationHome, LocationOutdoor:
		return true
	}
	return false
}

func ParseLocation(s string) (Location, error) {
	key := NormalizeKey(s)
	if l := Location(key); l.Valid() {
		return l, nil
	}
	switch key {
	case "academia":
		return LocationGym, nil
	case "casa":
		return LocationHome, nil
	case "ar_livre", "parque":
		return LocationOutdoor, nil
	}
	return "", fmt.Errorf("unknown location %q", s)
}

type CostTier string

const (
	CostLow    CostTier = "low"
	CostMedium CostTier = "medium"
	CostHigh   CostTier = "high"
)

func (c CostTier) Valid() bool {
	switch c {
	case CostLow, CostMedium, CostHigh:
		return true
	}
	return false
}

// CookingTime is the user's tolerance for preparation time.
type CookingTime string

const (
	CookingQuick     CookingTime = "quick"
	CookingMedium    CookingTime = "medium"
	CookingElaborate CookingTime = "elaborate"
)

func (c CookingTime) Valid() bool {
	switch c {
	case CookingQuick, CookingMedium, CookingElaborate:
		return true
	}
	return false
}

// Fits reports whether a food needing prepMinutes matches this preference.
func (c CookingTime) Fits(prepMinutes int) bool {
	switch c {
	case CookingQuick:
		return prepMinutes <= 15
	case CookingMedium:
		return prepMinutes > 15 && prepMinutes <= 45
	case CookingElaborate:
		return prepMinutes > 45
	}
	return false
}

type DietaryStyle string

const (
	DietVegetarian  DietaryStyle = "vegetarian"
	DietVegan       DietaryStyle = "vegan"
	DietGlutenFree  DietaryStyle = "gluten_free"
	DietLactoseFree DietaryStyle = "lactose_free"
)

func (d DietaryStyle) Valid() bool {
	switch d {
	case DietVegetarian, DietVegan, DietGlutenFree, DietLactoseFree:
		return true
	}
	return false
}

func ParseDietaryStyle(s string) (DietaryStyle, error) {
	key := NormalizeKey(s)
	if d := DietaryStyle(key); d.Valid() {
		return d, nil
	}
	switch key {
	case "vegetariano":
		return DietVegetarian, nil
	case "vegano":
		return DietVegan, nil
	case "sem_gluten":
		return DietGlutenFree, nil
	case "sem_lactose":
		return DietLactoseFree, nil
	}
	return "", fmt.Errorf("unknown dietary restriction %q", s)
}

type MealSlot string

const (
	MealBreakfast      MealSlot = "breakfast"
	MealMorningSnack   MealSlot = "morning_snack"
	MealLunch          MealSlot = "lunch"
	MealAfternoonSnack MealSlot = "afternoon_snack"
	MealDinner         MealSlot = "dinner"
	MealLateSnack      MealSlot = "late_snack"
)

func (m MealSlot) Valid() bool {
	switch m {
	case MealBreakfast, MealMorningSnack, MealLunch, MealAfternoonSnack, MealDinner, MealLateSnack:
		return true
	}
	return false
}

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Index returns 0 for monday through 6 for sunday, -1 for unknown values.
func (w Weekday) Index() int {
	switch w {
	case Monday:
		return 0
	case Tuesday:
		return 1
	case Wednesday:
		return 2
	case Thursday:
		return 3
	case Friday:
		return 4
	case Saturday:
		return 5
	case Sunday:
		return 6
	}
	return -1
}

func (w Weekday) Valid() bool { return w.Index() >= 0 }

func ParseWeekday(s string) (Weekday, error) {
	key := NormalizeKey(s)
	if w := Weekday(key); w.Valid() {
		return w, nil
	}
	switch key {
	case "segunda":
		return Monday, nil
	case "terca":
		return Tuesday, nil
	case "quarta":
		return Wednesday, nil
	case "quinta":
		return Thursday, nil
	case "sexta":
		return Friday, nil
	case "sabado":
		return Saturday, nil
	case "domingo":
		return Sunday, nil
	}
	return "", fmt.Errorf("unknown weekday %q", s)
}

// WeekdayOf returns the weekday of t.
func WeekdayOf(t time.Time) Weekday {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

type PlanKind string

const (
	PlanKindDiet    PlanKind = "diet"
	PlanKindWorkout PlanKind = "workout"
)

func (k PlanKind) Valid() bool {
	switch k {
	case PlanKindDiet, PlanKindWorkout:
		return true
	}
	return false
}

// NormalizeKey lowercases s and turns spaces and dashes into underscores.
func NormalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, "-", "_")
}
