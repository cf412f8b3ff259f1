package services

import (
	"fmt"
	"math"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
	"github.com/MacroPath/macro-path-backend/services/plangen-service/tables"
	"go.uber.org/zap"
)

const defaultMealPrepMinutes = 15

// DietInput is everything the allocator needs for one day. Foods must
// already be filtered and scored.
type DietInput struct {
	UserID      string
	Date        string
	Goal        models.Goal
	DailyTarget models.MacroTarget
	Foods       []models.CandidateFood
}

type portion struct {
	food  models.CandidateFood
	grams float64
	// exact is the unrounded quantity from the last scaling.
	exact float64
}

type mealDraft struct {
	share    tables.MealShare
	target   models.MacroTarget
	portions []portion
}

// DietAllocator fills the meal slots of a day greedily, macro by macro,
// then sizes portions and runs a single proportional correction.
type DietAllocator struct {
	tables *tables.Tables
	scorer *Scorer
	logger *zap.Logger
}

func NewDietAllocator(t *tables.Tables, scorer *Scorer, logger *zap.Logger) *DietAllocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DietAllocator{tables: t, scorer: scorer, logger: logger}
}

func (a *DietAllocator) Allocate(in DietInput, rng RandomSource) *models.MealPlan {
	plan := &models.MealPlan{
		UserID:        in.UserID,
		Date:          in.Date,
		Goal:          in.Goal,
		DailyTarget:   in.DailyTarget,
		Tolerance:     a.tables.Tolerance.Calories,
		WaterIntakeML: a.waterIntake(in.Goal),
		Warnings:      []models.PlanWarning{},
	}

	drafts := make([]*mealDraft, 0, len(a.tables.MealDistribution))
	for _, share := range a.tables.MealDistribution {
		target := a.MealTarget(in.DailyTarget.Calories, share)
		pool := FilterFoodsForMeal(in.Foods, share)
		chosen := a.fillMeal(pool, target, rng)

		drafts = append(drafts, &mealDraft{
			share:    share,
			target:   target,
			portions: a.sizePortions(chosen, target.Calories),
		})

		if len(chosen) == 0 {
			plan.Warnings = append(plan.Warnings, models.PlanWarning{
				Kind:    models.WarningInsufficientCandidates,
				Scope:   "meal:" + string(share.Slot),
				Message: fmt.Sprintf("no eligible food among %d candidates", len(pool)),
			})
		}
	}

	target := in.DailyTarget.Calories
	actual := draftCalories(drafts)
	if actual > 0 && !withinTolerance(actual, target, a.tables.Tolerance.Calories) {
		factor := target / actual
		adjusted := a.rescale(drafts, factor, target)
		a.logger.Debug("Adjusted meal plan quantities",
			zap.String("user_id", in.UserID),
			zap.Float64("factor", factor),
			zap.Float64("calories_before", actual),
			zap.Float64("calories_after", adjusted),
		)
		actual = adjusted
	}

	if !withinTolerance(actual, target, a.tables.Tolerance.Calories) {
		plan.RequiresReview = true
		plan.Warnings = append(plan.Warnings, models.PlanWarning{
			Kind:    models.WarningTargetUnreachable,
			Scope:   "plan",
			Message: fmt.Sprintf("%.0f kcal allocated for a %.0f kcal target", actual, target),
		})
	}

	for _, d := range drafts {
		meal := buildMeal(d)
		plan.Meals = append(plan.Meals, meal)
		plan.Totals = plan.Totals.Add(meal.Totals)
	}

	return plan
}

// MealTarget splits a slot's share of daily calories into macro grams.
func (a *DietAllocator) MealTarget(dailyCalories float64, share tables.MealShare) models.MacroTarget {
	calories := dailyCalories * share.Calories
	return models.MacroTarget{
		Calories: calories,
		Proteins: calories * share.Proteins / 4,
		Carbs:    calories * share.Carbs / 4,
		Fats:     calories * share.Fats / 9,
	}
}

// fillMeal runs the protein, carb, fat and calorie passes. Remaining
// targets subtract the per-100g reference contribution of chosen foods.
func (a *DietAllocator) fillMeal(pool []models.CandidateFood, target models.MacroTarget, rng RandomSource) []models.CandidateFood {
	rules := a.tables.Allocation
	var chosen []models.CandidateFood
	used := make(map[string]bool)

	pick := func(threshold float64, nutrient func(models.CandidateFood) float64, goal float64) {
		var candidates []models.CandidateFood
		for _, f := range pool {
			if !used[f.ID] && nutrient(f) >= threshold {
				candidates = append(candidates, f)
			}
		}
		if food, ok := a.scorer.SelectFood(candidates, nutrient, goal, rng); ok {
			chosen = append(chosen, food)
			used[food.ID] = true
		}
	}

	pick(rules.ProteinMinPer100g, proteinOf, target.Proteins)

	if remaining := target.Carbs - sumOf(chosen, carbsOf); remaining > rules.CarbsRemainingMin {
		pick(rules.CarbsMinPer100g, carbsOf, remaining)
	}
	if remaining := target.Fats - sumOf(chosen, fatOf); remaining > rules.FatRemainingMin {
		pick(rules.FatMinPer100g, fatOf, remaining)
	}
	if remaining := target.Calories - sumOf(chosen, caloriesOf); remaining > rules.CaloriesRemainingMin {
		pick(0, caloriesOf, remaining)
	}

	return chosen
}

// sizePortions splits meal calories by preference share and converts them to rounded grams.
func (a *DietAllocator) sizePortions(chosen []models.CandidateFood, mealCalories float64) []portion {
	portions := make([]portion, 0, len(chosen))
	var totalPref float64
	for _, f := range chosen {
		totalPref += f.PreferenceScore
	}

	for _, f := range chosen {
		share := 1 / float64(len(chosen))
		if totalPref > 0 {
			share = f.PreferenceScore / totalPref
		}
		grams := mealCalories * share / f.CaloriesPer100g * 100
		portions = append(portions, portion{food: f, grams: roundToIncrement(grams, f.RoundingGrams)})
	}
	return portions
}

// rescale applies factor to every portion and rounds to practical
// increments. Portions are rounded to nearest first; while the day is still
// outside tolerance, the portion whose opposite rounding direction best
// closes the gap is flipped. Each flip must shrink the gap.
func (a *DietAllocator) rescale(drafts []*mealDraft, factor, target float64) float64 {
	var all []*portion
	for _, d := range drafts {
		for i := range d.portions {
			p := &d.portions[i]
			p.exact = p.grams * factor
			p.grams = roundToIncrement(p.exact, p.food.RoundingGrams)
			all = append(all, p)
		}
	}

	actual := draftCalories(drafts)
	tolerance := a.tables.Tolerance.Calories
	for !withinTolerance(actual, target, tolerance) {
		var best *portion
		var bestGrams float64
		bestGap := math.Abs(actual - target)
		for _, p := range all {
			alt := alternateRounding(p, actual > target)
			if alt == p.grams {
				continue
			}
			gap := math.Abs(actual + (alt-p.grams)*p.food.CaloriesPer100g/100 - target)
			if gap < bestGap {
				best, bestGrams, bestGap = p, alt, gap
			}
		}
		if best == nil {
			break
		}
		best.grams = bestGrams
		actual = draftCalories(drafts)
	}
	return actual
}

// alternateRounding returns the floor increment when down is set, the
// ceiling otherwise. The floor never drops below one increment.
func alternateRounding(p *portion, down bool) float64 {
	inc := p.food.RoundingGrams
	if inc <= 0 {
		return p.grams
	}
	if down {
		return math.Max(math.Floor(p.exact/inc)*inc, inc)
	}
	return math.Ceil(p.exact/inc) * inc
}

func (a *DietAllocator) waterIntake(goal models.Goal) float64 {
	multiplier, ok := a.tables.WaterIntake.GoalMultipliers[goal]
	if !ok {
		multiplier = 1
	}
	return a.tables.WaterIntake.BaseML * multiplier
}

func buildMeal(d *mealDraft) models.Meal {
	meal := models.Meal{
		Slot:           d.share.Slot,
		TimeSuggestion: d.share.Time,
		Target:         d.target,
		Foods:          make([]models.MealFood, 0, len(d.portions)),
	}
	for _, p := range d.portions {
		item := mealFood(p)
		meal.Foods = append(meal.Foods, item)
		meal.Totals = meal.Totals.Add(models.MacroTarget{
			Calories: item.Calories,
			Carbs:    item.Carbs,
			Fats:     item.Fats,
			Proteins: item.Proteins,
		})
		if p.food.PrepMinutes > meal.PrepMinutes {
			meal.PrepMinutes = p.food.PrepMinutes
		}
	}
	if len(d.portions) == 0 {
		meal.PrepMinutes = defaultMealPrepMinutes
	}
	return meal
}

func mealFood(p portion) models.MealFood {
	ratio := p.grams / 100
	return models.MealFood{
		FoodID:        p.food.ID,
		Name:          p.food.Name,
		Category:      p.food.Category,
		QuantityGrams: p.grams,
		Calories:      p.food.CaloriesPer100g * ratio,
		Proteins:      p.food.ProteinPer100g * ratio,
		Carbs:         p.food.CarbsPer100g * ratio,
		Fats:          p.food.FatPer100g * ratio,
	}
}

func draftCalories(drafts []*mealDraft) float64 {
	var total float64
	for _, d := range drafts {
		for _, p := range d.portions {
			total += mealFood(p).Calories
		}
	}
	return total
}

// roundToIncrement rounds to the nearest practical increment, never below one increment.
func roundToIncrement(grams, increment float64) float64 {
	if increment <= 0 {
		return grams
	}
	rounded := math.Round(grams/increment) * increment
	if rounded < increment {
		return increment
	}
	return rounded
}

func withinTolerance(actual, target, tolerance float64) bool {
	if target <= 0 {
		return false
	}
	return math.Abs(actual-target)/target <= tolerance
}

func sumOf(foods []models.CandidateFood, nutrient func(models.CandidateFood) float64) float64 {
	var total float64
	for _, f := range foods {
		total += nutrient(f)
	}
	return total
}

func proteinOf(f models.CandidateFood) float64  { return f.ProteinPer100g }
func carbsOf(f models.CandidateFood) float64    { return f.CarbsPer100g }
func fatOf(f models.CandidateFood) float64      { return f.FatPer100g }
func caloriesOf(f models.CandidateFood) float64 { return f.CaloriesPer100g }
