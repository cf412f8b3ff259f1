package services

import (
	"strconv"
	"testing"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
	"github.com/MacroPath/macro-path-backend/services/plangen-service/tables"
	"github.com/stretchr/testify/require"
)

func loadTables(t *testing.T) *tables.Tables {
	t.Helper()
	tbl, err := tables.LoadDefault()
	require.NoError(t, err)
	return tbl
}

func food(id, name, category string, calories, protein, carbs, fat float64) models.CandidateFood {
	return models.CandidateFood{
		ID:              id,
		Name:            name,
		Category:        category,
		CaloriesPer100g: calories,
		ProteinPer100g:  protein,
		CarbsPer100g:    carbs,
		FatPer100g:      fat,
		CostTier:        models.CostMedium,
		Availability:    0.9,
		RoundingGrams:   25,
		PreferenceScore: 0.5,
	}
}

// foodPool covers every meal slot of the default distribution.
func foodPool() []models.CandidateFood {
	return []models.CandidateFood{
		food("f-chicken", "Chicken Breast", "proteins", 165, 31, 0, 3.6),
		food("f-salmon", "Salmon Fillet", "fish", 208, 20, 0, 13),
		food("f-rice", "White Rice", "grains", 130, 2.7, 28, 0.3),
		food("f-oats", "Rolled Oats", "grains", 389, 17, 66, 7),
		food("f-bread", "Whole Wheat Bread", "breads", 265, 9, 49, 3.2),
		food("f-egg", "Boiled Egg", "eggs", 155, 13, 1.1, 11),
		food("f-banana", "Banana", "fruits", 89, 1.1, 23, 0.3),
		food("f-apple", "Apple", "fruits", 52, 0.3, 14, 0.2),
		food("f-broccoli", "Broccoli", "vegetables", 34, 2.8, 7, 0.4),
		food("f-beans", "Black Beans", "legumes", 132, 8.9, 24, 0.5),
		food("f-almonds", "Almonds", "nuts", 579, 21, 22, 50),
		food("f-yogurt", "Greek Yogurt", "dairy", 97, 16, 4, 0.4),
		food("f-bar", "Protein Bar", "bars", 350, 30, 40, 9),
		food("f-olive-oil", "Olive Oil", "fats", 884, 0, 0, 100),
	}
}

func exercise(id string, primary models.MuscleGroup, secondary []models.MuscleGroup, pattern models.MovementPattern, equipment models.Equipment, difficulty models.Difficulty) models.CandidateExercise {
	return models.CandidateExercise{
		ID:                    id,
		Name:                  id,
		PrimaryMuscle:         primary,
		SecondaryMuscles:      secondary,
		Equipment:             equipment,
		Difficulty:            difficulty,
		MovementPattern:       pattern,
		SafetyRating:          0.8,
		EffectivenessRating:   0.8,
		LocationCompatibility: []models.Location{models.LocationGym},
		TimeEfficiency:        0.7,
	}
}

// exercisePool fills every slot of the push, pull and legs templates.
func exercisePool() []models.CandidateExercise {
	none := []models.MuscleGroup{}
	return []models.CandidateExercise{
		exercise("bench-press", models.MuscleChest, []models.MuscleGroup{models.MuscleShoulders, models.MuscleTriceps}, models.MovementCompound, models.EquipmentBarbell, models.DifficultyIntermediate),
		exercise("push-up", models.MuscleChest, []models.MuscleGroup{models.MuscleTriceps}, models.MovementCompound, models.EquipmentBodyweight, models.DifficultyBeginner),
		exercise("overhead-press", models.MuscleShoulders, []models.MuscleGroup{models.MuscleTriceps}, models.MovementCompound, models.EquipmentDumbbell, models.DifficultyBeginner),
		exercise("dips", models.MuscleTriceps, []models.MuscleGroup{models.MuscleShoulders}, models.MovementCompound, models.EquipmentBodyweight, models.DifficultyIntermediate),
		exercise("barbell-row", models.MuscleBack, []models.MuscleGroup{models.MuscleBiceps}, models.MovementCompound, models.EquipmentBarbell, models.DifficultyIntermediate),
		exercise("pull-up", models.MuscleBack, []models.MuscleGroup{models.MuscleBiceps}, models.MovementCompound, models.EquipmentBodyweight, models.DifficultyIntermediate),
		exercise("lat-pulldown", models.MuscleBack, []models.MuscleGroup{models.MuscleBiceps}, models.MovementCompound, models.EquipmentCable, models.DifficultyBeginner),
		exercise("squat", models.MuscleQuadriceps, []models.MuscleGroup{models.MuscleGlutes}, models.MovementCompound, models.EquipmentBarbell, models.DifficultyIntermediate),
		exercise("romanian-deadlift", models.MuscleHamstrings, []models.MuscleGroup{models.MuscleGlutes}, models.MovementCompound, models.EquipmentBarbell, models.DifficultyIntermediate),
		exercise("chest-fly", models.MuscleChest, none, models.MovementIsolation, models.EquipmentDumbbell, models.DifficultyBeginner),
		exercise("lateral-raise", models.MuscleShoulders, none, models.MovementIsolation, models.EquipmentDumbbell, models.DifficultyBeginner),
		exercise("triceps-pushdown", models.MuscleTriceps, none, models.MovementIsolation, models.EquipmentCable, models.DifficultyBeginner),
		exercise("straight-arm-pulldown", models.MuscleBack, none, models.MovementIsolation, models.EquipmentCable, models.DifficultyBeginner),
		exercise("biceps-curl", models.MuscleBiceps, none, models.MovementIsolation, models.EquipmentDumbbell, models.DifficultyBeginner),
		exercise("wrist-curl", models.MuscleForearms, none, models.MovementIsolation, models.EquipmentDumbbell, models.DifficultyBeginner),
		exercise("leg-extension", models.MuscleQuadriceps, none, models.MovementIsolation, models.EquipmentMachine, models.DifficultyBeginner),
		exercise("leg-curl", models.MuscleHamstrings, none, models.MovementIsolation, models.EquipmentMachine, models.DifficultyBeginner),
		exercise("calf-raise", models.MuscleCalves, none, models.MovementIsolation, models.EquipmentBodyweight, models.DifficultyBeginner),
		exercise("plank", models.MuscleCore, none, models.MovementIsolation, models.EquipmentBodyweight, models.DifficultyBeginner),
	}
}

func rawFood(id, name, category string, calories, protein, carbs, fat float64) models.RawFood {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return models.RawFood{
		FoodID:       id,
		FoodName:     name,
		FoodCategory: category,
		Servings: []models.Serving{{
			MeasurementDescription: "g",
			MetricServingAmount:    "100",
			MetricServingUnit:      "g",
			Calories:               f(calories),
			Protein:                f(protein),
			Carbohydrate:           f(carbs),
			Fat:                    f(fat),
		}},
	}
}

func rawFoodCatalog() []models.RawFood {
	pool := foodPool()
	raws := make([]models.RawFood, 0, len(pool)+1)
	for _, f := range pool {
		raws = append(raws, rawFood(f.ID, f.Name, f.Category, f.CaloriesPer100g, f.ProteinPer100g, f.CarbsPer100g, f.FatPer100g))
	}
	return append(raws, rawFood("f-milk", "Whole Milk", "milk", 61, 3.2, 4.8, 3.3))
}

func rawExerciseCatalog() []models.RawExercise {
	pool := exercisePool()
	raws := make([]models.RawExercise, 0, len(pool))
	for _, e := range pool {
		muscles := []string{string(e.PrimaryMuscle)}
		for _, m := range e.SecondaryMuscles {
			muscles = append(muscles, string(m))
		}
		safety, effectiveness := e.SafetyRating, e.EffectivenessRating
		raws = append(raws, models.RawExercise{
			ID:                    e.ID,
			Name:                  e.Name,
			MuscleGroups:          muscles,
			Equipment:             string(e.Equipment),
			Difficulty:            string(e.Difficulty),
			MovementPattern:       string(e.MovementPattern),
			SafetyRating:          &safety,
			EffectivenessRating:   &effectiveness,
			LocationCompatibility: []string{"gym", "home"},
		})
	}
	return raws
}

// fixedRandom returns the same draw every time.
type fixedRandom struct {
	f float64
}

func (r fixedRandom) Float64() float64 { return r.f }

func (r fixedRandom) IntN(n int) int { return int(r.f * float64(n)) }
