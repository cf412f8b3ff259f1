package models

// FoodAPIResult is one page of the content service food listing.
type FoodAPIResult struct {
	ProviderName string    `json:"provider_name"`
	PageNumber   string    `json:"page_number"`   //Page numbers offset, starting from 0
	MaxResults   string    `json:"max_results"`   //Total results fetched
	TotalResults string    `json:"total_results"` //Total available results
	Foods        []RawFood `json:"foods"`
}

// RawFood is a catalog food record as delivered by the food API. Nutrient
// values arrive as strings and are only trusted after normalization.
type RawFood struct {
	FoodID       string    `json:"food_id"`
	FoodName     string    `json:"food_name"`
	FoodType     string    `json:"food_type"`
	FoodCategory string    `json:"food_category"`
	BrandName    string    `json:"brand_name"`
	Servings     []Serving `json:"servings"`
}

type Serving struct {
	ServingID              string `json:"serving_id"`
	ServingDescription     string `json:"serving_description"`
	MeasurementDescription string `json:"measurement_description"`
	MetricServingAmount    string `json:"metric_serving_amount"`
	MetricServingUnit      string `json:"metric_serving_unit"`

	// Macro Nutrients
	Calories     string `json:"calories"`
	Protein      string `json:"protein"`
	Carbohydrate string `json:"carbohydrate"`
	Fat          string `json:"fat"`
	Fiber        string `json:"fiber"`
}

// ExerciseAPIResult is the content service exercise listing.
type ExerciseAPIResult struct {
	TotalResults string        `json:"total_results"`
	Exercises    []RawExercise `json:"exercises"`
}

// RawExercise is a catalog exercise record. Optional ratings are pointers so
// a missing value can be told apart from zero.
type RawExercise struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	MuscleGroups          []string `json:"muscle_groups"`
	ExerciseType          string   `json:"exercise_type"`
	Equipment             string   `json:"equipment"`
	Difficulty            string   `json:"difficulty"`
	MovementPattern       string   `json:"movement_pattern"`
	SafetyRating          *float64 `json:"safety_rating,omitempty"`
	EffectivenessRating   *float64 `json:"effectiveness_rating,omitempty"`
	LocationCompatibility []string `json:"location_compatibility"`
	TimeEfficiency        *float64 `json:"time_efficiency,omitempty"`
	METValue              *float64 `json:"met_value,omitempty"`
}
