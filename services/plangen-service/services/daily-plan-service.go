package services

import (
	"context"
	"fmt"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
	"github.com/MacroPath/macro-path-backend/services/plangen-service/tables"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type DailyPlans struct {
	Diet    *models.StoredPlan `json:"diet"`
	Workout *models.StoredPlan `json:"workout"`
}

// DailyPlanService produces both plans of a day from the provider data.
type DailyPlanService struct {
	catalog   CatalogProvider
	profiles  ProfileProvider
	generator *PlanGenerator
	split     tables.MacroSplit
	logger    *zap.Logger
}

func NewDailyPlanService(catalog CatalogProvider, profiles ProfileProvider, generator *PlanGenerator, t *tables.Tables, logger *zap.Logger) *DailyPlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyPlanService{
		catalog:   catalog,
		profiles:  profiles,
		generator: generator,
		split:     t.DefaultMacroSplit,
		logger:    logger,
	}
}

// GenerateDaily reads the catalog and the profile concurrently, then
// generates the diet and the workout plan of date in turn. force skips the
// regeneration gate for both.
func (s *DailyPlanService) GenerateDaily(ctx context.Context, userID, date string, force bool) (*DailyPlans, error) {
	var (
		foods     []models.RawFood
		exercises []models.RawExercise
		profile   *models.UserProfile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.catalog.ListFoods(gctx)
		if err != nil {
			return err
		}
		foods = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.catalog.ListExercises(gctx)
		if err != nil {
			return err
		}
		exercises = rows
		return nil
	})
	g.Go(func() error {
		p, err := s.profiles.GetProfile(gctx, userID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load plan inputs: %w", err)
	}

	calories := profile.TargetCalories
	if calories <= 0 {
		calories = profile.TDEE
	}
	macros := profile.TargetMacros
	if macros.Proteins <= 0 || macros.Carbs <= 0 || macros.Fats <= 0 {
		macros = s.DefaultMacros(calories)
	}

	level := profile.ExperienceLevel
	if level == "" {
		level = models.DifficultyBeginner
	}

	s.logger.Info("Generating daily plans",
		zap.String("user_id", userID),
		zap.String("date", date),
		zap.Int("foods", len(foods)),
		zap.Int("exercises", len(exercises)),
		zap.Float64("calorie_target", calories),
	)

	diet, err := s.generator.GenerateDietPlan(ctx, models.DietRequest{
		UserID:             userID,
		TargetDate:         date,
		Goal:               profile.Goal,
		DailyCalorieTarget: calories,
		MacroTargets:       macros,
		Preferences:        profile.DietPreferences,
		AvailableFoods:     foods,
		Force:              force,
	})
	if err != nil {
		return nil, err
	}

	workout, err := s.generator.GenerateWorkoutPlan(ctx, models.WorkoutRequest{
		UserID:             userID,
		TargetDate:         date,
		Goal:               profile.Goal,
		ExperienceLevel:    level,
		Preferences:        profile.WorkoutPreferences,
		AvailableExercises: exercises,
		Force:              force,
	})
	if err != nil {
		return nil, err
	}

	return &DailyPlans{Diet: diet, Workout: workout}, nil
}

// DefaultMacros splits calories into macro grams with the default split.
func (s *DailyPlanService) DefaultMacros(calories float64) models.MacroTarget {
	return models.MacroTarget{
		Calories: calories,
		Proteins: calories * s.split.Proteins / 4,
		Carbs:    calories * s.split.Carbs / 4,
		Fats:     calories * s.split.Fats / 9,
	}
}
