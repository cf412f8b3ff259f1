package services

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAllocator(t *testing.T) *DietAllocator {
	tbl := loadTables(t)
	return NewDietAllocator(tbl, NewScorer(tbl), nil)
}

func dietInput(calories float64, foods []models.CandidateFood) DietInput {
	return DietInput{
		UserID: "user-1",
		Date:   "2024-01-01",
		Goal:   models.GoalLoseWeight,
		DailyTarget: models.MacroTarget{
			Calories: calories,
			Proteins: calories * 0.30 / 4,
			Carbs:    calories * 0.45 / 4,
			Fats:     calories * 0.25 / 9,
		},
		Foods: foods,
	}
}

func TestAllocateTotalsAreConsistent(t *testing.T) {
	a := newAllocator(t)
	plan := a.Allocate(dietInput(2000, foodPool()), NewRandomSource(1))

	require.Len(t, plan.Meals, 6)
	assert.Equal(t, models.MealBreakfast, plan.Meals[0].Slot)
	assert.Equal(t, models.MealLateSnack, plan.Meals[5].Slot)

	var daily models.MacroTarget
	for _, meal := range plan.Meals {
		var sum models.MacroTarget
		seen := map[string]bool{}
		for _, f := range meal.Foods {
			assert.False(t, seen[f.FoodID], "food %s repeated in %s", f.FoodID, meal.Slot)
			seen[f.FoodID] = true
			assert.Zero(t, math.Mod(f.QuantityGrams, 25), "%s quantity %v", f.Name, f.QuantityGrams)
			sum = sum.Add(models.MacroTarget{Calories: f.Calories, Proteins: f.Proteins, Carbs: f.Carbs, Fats: f.Fats})
		}
		assert.InDelta(t, sum.Calories, meal.Totals.Calories, 1e-6)
		assert.InDelta(t, sum.Proteins, meal.Totals.Proteins, 1e-6)
		daily = daily.Add(meal.Totals)
	}
	assert.InDelta(t, daily.Calories, plan.Totals.Calories, 1e-6)
	assert.InDelta(t, daily.Fats, plan.Totals.Fats, 1e-6)
	assert.Equal(t, 2400.0, plan.WaterIntakeML)
}

// practicalPool uses the per-category rounding increments of the default tables.
func practicalPool(t *testing.T) []models.CandidateFood {
	tbl := loadTables(t)
	pool := foodPool()
	for i := range pool {
		pool[i].RoundingGrams = tbl.Category(pool[i].Category).RoundingGrams
	}
	return pool
}

func TestAllocateMeetsCalorieTolerance(t *testing.T) {
	a := newAllocator(t)
	pool := practicalPool(t)

	for seed := uint64(1); seed <= 40; seed++ {
		plan := a.Allocate(dietInput(2000, pool), NewRandomSource(seed))

		assert.False(t, plan.RequiresReview, "seed %d", seed)
		assert.InDelta(t, 2000, plan.Totals.Calories, 2000*0.05, "seed %d", seed)
		for _, meal := range plan.Meals {
			assert.NotEmpty(t, meal.Foods, "seed %d meal %s", seed, meal.Slot)
			for _, f := range meal.Foods {
				inc := tableRounding(pool, f.FoodID)
				assert.InDelta(t, 0, math.Mod(f.QuantityGrams, inc), 1e-9, "seed %d %s", seed, f.Name)
				assert.InDelta(t, f.QuantityGrams*caloriesPer100g(pool, f.FoodID)/100, f.Calories, 1e-9)
			}
		}
		for _, w := range plan.Warnings {
			assert.NotEqual(t, models.WarningTargetUnreachable, w.Kind, "seed %d", seed)
		}
	}
}

func TestRescaleFlipsRoundingIntoTolerance(t *testing.T) {
	a := newAllocator(t)
	oats := food("oats", "Rolled Oats", "grains", 400, 17, 66, 7)
	// Nearest rounding alone lands 100 kcal over a 900 kcal target.
	drafts := []*mealDraft{
		{portions: []portion{{food: oats, grams: 150}}},
		{portions: []portion{{food: oats, grams: 150}}},
	}

	got := a.rescale(drafts, 0.75, 900)

	assert.InDelta(t, 900, got, 1e-9)
	assert.Equal(t, 225.0, drafts[0].portions[0].grams+drafts[1].portions[0].grams)
}

func tableRounding(pool []models.CandidateFood, id string) float64 {
	for _, f := range pool {
		if f.ID == id {
			return f.RoundingGrams
		}
	}
	return 1
}

func caloriesPer100g(pool []models.CandidateFood, id string) float64 {
	for _, f := range pool {
		if f.ID == id {
			return f.CaloriesPer100g
		}
	}
	return 0
}

func TestAllocateMealTargets(t *testing.T) {
	a := newAllocator(t)
	plan := a.Allocate(dietInput(2000, foodPool()), NewRandomSource(1))

	lunch := plan.Meals[2]
	assert.InDelta(t, 600, lunch.Target.Calories, 1e-9)
	assert.InDelta(t, 600*0.35/4, lunch.Target.Proteins, 1e-9)
	assert.InDelta(t, 600*0.20/9, lunch.Target.Fats, 1e-9)
	assert.Equal(t, "12:30", lunch.TimeSuggestion)
}

func TestAllocateEmptyPool(t *testing.T) {
	a := newAllocator(t)
	plan := a.Allocate(dietInput(2000, nil), NewRandomSource(1))

	require.Len(t, plan.Meals, 6)
	assert.True(t, plan.RequiresReview)
	assert.Zero(t, plan.Totals.Calories)

	var insufficient, unreachable int
	for _, w := range plan.Warnings {
		switch w.Kind {
		case models.WarningInsufficientCandidates:
			insufficient++
		case models.WarningTargetUnreachable:
			unreachable++
		}
	}
	assert.Equal(t, 6, insufficient)
	assert.Equal(t, 1, unreachable)

	for _, meal := range plan.Meals {
		assert.Equal(t, 15, meal.PrepMinutes)
	}

	body, err := json.Marshal(plan.Meals[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), `"foods":[]`)
}

func TestAllocateUnreachableTargetFlagsReview(t *testing.T) {
	a := newAllocator(t)
	// Oil sold only in 500g steps overshoots every meal it fits.
	oil := food("oil", "Olive Oil", "fats", 884, 0, 0, 100)
	oil.RoundingGrams = 500

	plan := a.Allocate(dietInput(2000, []models.CandidateFood{oil}), NewRandomSource(1))

	assert.True(t, plan.RequiresReview)
	var kinds []models.WarningKind
	for _, w := range plan.Warnings {
		kinds = append(kinds, w.Kind)
	}
	assert.Contains(t, kinds, models.WarningTargetUnreachable)
}

func TestAllocateIsDeterministicForSeed(t *testing.T) {
	a := newAllocator(t)

	first := a.Allocate(dietInput(2200, foodPool()), NewRandomSource(11))
	second := a.Allocate(dietInput(2200, foodPool()), NewRandomSource(11))

	assert.Equal(t, first, second)
}

func TestRoundToIncrement(t *testing.T) {
	assert.Equal(t, 150.0, roundToIncrement(162, 25))
	assert.Equal(t, 175.0, roundToIncrement(163, 25))
	assert.Equal(t, 25.0, roundToIncrement(3, 25))
	assert.Equal(t, 12.3, roundToIncrement(12.3, 0))
}
