package services

import (
	"strings"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
	"github.com/MacroPath/macro-path-backend/services/plangen-service/tables"
)

type FoodRestrictions struct {
	Allergies []string
	Styles    []models.DietaryStyle
	Disliked  []string
}

type ExerciseRestrictions struct {
	Location  models.Location
	Equipment []models.Equipment
}

// FilterFoods returns, in input order, the foods that pass every restriction.
func FilterFoods(foods []models.CandidateFood, r FoodRestrictions) []models.CandidateFood {
	allergies := lowerSet(r.Allergies)
	disliked := lowerSet(r.Disliked)

	var conflicts []string
	for _, style := range r.Styles {
		conflicts = append(conflicts, conflictingTags(style)...)
	}

	out := make([]models.CandidateFood, 0, len(foods))
	for _, food := range foods {
		if intersects(food.AllergenTags, allergies) {
			continue
		}
		if disliked[strings.ToLower(strings.TrimSpace(food.Name))] {
			continue
		}
		if hasAnyTag(food, conflicts) {
			continue
		}
		out = append(out, food)
	}
	return out
}

// FilterFoodsForMeal keeps the foods whose category suits the meal slot.
// A slot without configured categories accepts every food.
func FilterFoodsForMeal(foods []models.CandidateFood, share tables.MealShare) []models.CandidateFood {
	if len(share.Categories) == 0 {
		return foods
	}
	accepted := lowerSet(share.Categories)
	out := make([]models.CandidateFood, 0, len(foods))
	for _, food := range foods {
		if accepted[food.Category] {
			out = append(out, food)
		}
	}
	return out
}

// FilterExercises returns, in input order, the exercises usable at the
// location with the available equipment. Bodyweight needs no equipment.
func FilterExercises(exercises []models.CandidateExercise, r ExerciseRestrictions) []models.CandidateExercise {
	available := make(map[models.Equipment]bool, len(r.Equipment))
	for _, e := range r.Equipment {
		available[e] = true
	}

	out := make([]models.CandidateExercise, 0, len(exercises))
	for _, exercise := range exercises {
		if !containsLocation(exercise.LocationCompatibility, r.Location) {
			continue
		}
		if exercise.Equipment != models.EquipmentBodyweight && !available[exercise.Equipment] {
			continue
		}
		out = append(out, exercise)
	}
	return out
}

// conflictingTags lists the dietary tags a style rules out.
func conflictingTags(style models.DietaryStyle) []string {
	switch style {
	case models.DietVegetarian:
		return []string{"meat"}
	case models.DietVegan:
		return []string{"meat", "dairy", "egg"}
	case models.DietGlutenFree:
		return []string{"gluten"}
	case models.DietLactoseFree:
		return []string{"lactose"}
	}
	return nil
}

func hasAnyTag(food models.CandidateFood, tags []string) bool {
	for _, t := range tags {
		if food.HasDietaryTag(t) {
			return true
		}
	}
	return false
}

func intersects(values []string, set map[string]bool) bool {
	for _, v := range values {
		if set[strings.ToLower(v)] {
			return true
		}
	}
	return false
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			set[v] = true
		}
	}
	return set
}
