package models

type DietPreferences struct {
	Restrictions   []string    `firestore:"restrictions" json:"restrictions"`
	Allergies      []string    `firestore:"allergies" json:"allergies"`
	DislikedFoods  []string    `firestore:"disliked_foods" json:"disliked_foods"`
	PreferredFoods []string    `firestore:"preferred_foods" json:"preferred_foods"`
	CookingTime    CookingTime `firestore:"cooking_time" json:"cooking_time"`
	Budget         CostTier    `firestore:"budget" json:"budget"`
}

type WorkoutPreferences struct {
	AvailableDays      []string `firestore:"available_days" json:"available_days"`
	Location           string   `firestore:"location" json:"location"`
	AvailableEquipment []string `firestore:"available_equipment" json:"available_equipment"`
}

// DietRequest asks for the meal plan of one user and day. Foods are supplied pre-fetched.
type DietRequest struct {
	UserID             string          `json:"user_id"`
	TargetDate         string          `json:"target_date"`
	Goal               Goal            `json:"goal"`
	DailyCalorieTarget float64         `json:"daily_calorie_target"`
	MacroTargets       MacroTarget     `json:"macro_targets"`
	Preferences        DietPreferences `json:"preferences"`
	AvailableFoods     []RawFood       `json:"available_foods"`

	// Seed fixes the random source; zero derives one from user and date.
	Seed uint64 `json:"seed,omitempty"`
	// Force regenerates even when the stored plan is still valid.
	Force bool `json:"force,omitempty"`
}

// WorkoutRequest asks for the workout of one user and day. Exercises are supplied pre-fetched.
type WorkoutRequest struct {
	UserID             string             `json:"user_id"`
	TargetDate         string             `json:"target_date"`
	Goal               Goal               `json:"goal"`
	ExperienceLevel    Difficulty         `json:"experience_level"`
	Preferences        WorkoutPreferences `json:"preferences"`
	AvailableExercises []RawExercise      `json:"available_exercises"`
	Seed               uint64             `json:"seed,omitempty"`
	Force              bool               `json:"force,omitempty"`
}

// UserProfile is what the users service knows about a person.
type UserProfile struct {
	UserID             string             `json:"user_id"`
	Age                int                `json:"age"`
	Gender             string             `json:"gender"`
	Weight             float64            `json:"weight"`
	Height             float64            `json:"height"`
	BMR                float64            `json:"bmr"`
	TDEE               float64            `json:"tdee"`
	Goal               Goal               `json:"goal"`
	ExperienceLevel    Difficulty         `json:"experience_level"`
	TargetCalories     float64            `json:"target_calories"`
	TargetMacros       MacroTarget        `json:"target_macros"`
	DietPreferences    DietPreferences    `json:"diet_preferences"`
	WorkoutPreferences WorkoutPreferences `json:"workout_preferences"`
}
