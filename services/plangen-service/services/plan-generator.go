package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
	"github.com/MacroPath/macro-path-backend/services/plangen-service/store"
	"github.com/MacroPath/macro-path-backend/services/plangen-service/tables"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlanNotifier is told about every plan snapshot that was written.
type PlanNotifier interface {
	PlanSaved(plan *models.StoredPlan)
}

type GeneratorOption func(*PlanGenerator)

// WithClock replaces time.Now for the regeneration gate and timestamps.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *PlanGenerator) { g.now = now }
}

func WithNotifier(n PlanNotifier) GeneratorOption {
	return func(g *PlanGenerator) { g.notifier = n }
}

// PlanGenerator runs the full pipeline for one plan: validation, the
// regeneration gate, normalization, filtering, scoring, allocation or
// composition, and the conditional write to the plan store.
type PlanGenerator struct {
	normalizer *CandidateNormalizer
	scorer     *Scorer
	allocator  *DietAllocator
	composer   *WorkoutComposer
	gate       *RegenerationGate
	store      store.PlanStore
	notifier   PlanNotifier
	logger     *zap.Logger
	now        func() time.Time
}

func NewPlanGenerator(t *tables.Tables, planStore store.PlanStore, logger *zap.Logger, opts ...GeneratorOption) *PlanGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &PlanGenerator{
		store:  planStore,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.scorer = NewScorer(t)
	g.normalizer = NewCandidateNormalizer(t, logger)
	g.allocator = NewDietAllocator(t, g.scorer, logger)
	g.composer = NewWorkoutComposer(t, g.scorer, logger)
	g.gate = NewRegenerationGate(t, g.now)
	return g
}

type dietConfig struct {
	goal         models.Goal
	date         string
	restrictions FoodRestrictions
}

type workoutConfig struct {
	goal      models.Goal
	level     models.Difficulty
	date      string
	weekday   models.Weekday
	days      []models.Weekday
	location  models.Location
	equipment []models.Equipment
}

// GenerateDietPlan returns the stored plan when it is still valid, otherwise
// generates, saves and returns a new one. Input problems are reported as
// ErrInvalidConfiguration.
func (g *PlanGenerator) GenerateDietPlan(ctx context.Context, req models.DietRequest) (*models.StoredPlan, error) {
	cfg, err := g.validateDiet(req)
	if err != nil {
		return nil, err
	}

	stored, err := g.existing(ctx, models.PlanKindDiet, req.UserID, cfg.date)
	if err != nil {
		return nil, err
	}
	if !req.Force && !g.gate.DietNeedsRegeneration(stored, req.DailyCalorieTarget, cfg.goal) {
		g.logger.Info("Reusing stored diet plan",
			zap.String("user_id", req.UserID),
			zap.String("date", cfg.date),
			zap.Int64("version", stored.Version),
		)
		return stored, nil
	}

	start := time.Now()
	rng := NewRandomSource(seedFor(req.Seed, models.PlanKindDiet, req.UserID, cfg.date))

	foods := g.normalizer.NormalizeFoods(req.AvailableFoods)
	eligible := FilterFoods(foods, cfg.restrictions)
	scored := g.scorer.ScoreFoods(eligible, req.Preferences)

	target := req.MacroTargets
	target.Calories = req.DailyCalorieTarget
	mealPlan := g.allocator.Allocate(DietInput{
		UserID:      req.UserID,
		Date:        cfg.date,
		Goal:        cfg.goal,
		DailyTarget: target,
		Foods:       scored,
	}, rng)

	g.logger.Info("Generated diet plan",
		zap.String("user_id", req.UserID),
		zap.String("date", cfg.date),
		zap.Int("catalog_foods", len(req.AvailableFoods)),
		zap.Int("eligible_foods", len(scored)),
		zap.Float64("calories", mealPlan.Totals.Calories),
		zap.Bool("requires_review", mealPlan.RequiresReview),
		zap.Duration("elapsed", time.Since(start)),
	)

	return g.save(ctx, stored, &models.StoredPlan{
		ID:             uuid.NewString(),
		Kind:           models.PlanKindDiet,
		UserID:         req.UserID,
		Date:           cfg.date,
		Goal:           cfg.goal,
		TargetCalories: req.DailyCalorieTarget,
		CreatedAt:      g.now().UTC(),
		Diet:           mealPlan,
	})
}

// GenerateWorkoutPlan is the workout counterpart of GenerateDietPlan.
func (g *PlanGenerator) GenerateWorkoutPlan(ctx context.Context, req models.WorkoutRequest) (*models.StoredPlan, error) {
	cfg, err := g.validateWorkout(req)
	if err != nil {
		return nil, err
	}

	stored, err := g.existing(ctx, models.PlanKindWorkout, req.UserID, cfg.date)
	if err != nil {
		return nil, err
	}
	if !req.Force && !g.gate.WorkoutNeedsRegeneration(stored, cfg.goal) {
		g.logger.Info("Reusing stored workout plan",
			zap.String("user_id", req.UserID),
			zap.String("date", cfg.date),
			zap.Int64("version", stored.Version),
		)
		return stored, nil
	}

	rng := NewRandomSource(seedFor(req.Seed, models.PlanKindWorkout, req.UserID, cfg.date))

	exercises := g.normalizer.NormalizeExercises(req.AvailableExercises)
	eligible := FilterExercises(exercises, ExerciseRestrictions{
		Location:  cfg.location,
		Equipment: cfg.equipment,
	})

	workout := g.composer.Compose(WorkoutInput{
		UserID:        req.UserID,
		Date:          cfg.date,
		Weekday:       cfg.weekday,
		Goal:          cfg.goal,
		Level:         cfg.level,
		AvailableDays: cfg.days,
		Location:      cfg.location,
		Exercises:     eligible,
	}, rng)

	g.logger.Info("Generated workout plan",
		zap.String("user_id", req.UserID),
		zap.String("date", cfg.date),
		zap.String("weekday", string(cfg.weekday)),
		zap.Bool("rest_day", workout.RestDay),
		zap.Int("eligible_exercises", len(eligible)),
	)

	return g.save(ctx, stored, &models.StoredPlan{
		ID:        uuid.NewString(),
		Kind:      models.PlanKindWorkout,
		UserID:    req.UserID,
		Date:      cfg.date,
		Goal:      cfg.goal,
		CreatedAt: g.now().UTC(),
		Workout:   workout,
	})
}

func (g *PlanGenerator) existing(ctx context.Context, kind models.PlanKind, userID, date string) (*models.StoredPlan, error) {
	stored, err := g.store.GetPlan(ctx, kind, userID, date)
	if errors.Is(err, store.ErrPlanNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stored %s plan: %w", kind, err)
	}
	return stored, nil
}

// save writes plan over previous. When a concurrent request wrote first,
// its snapshot is returned instead so a key only ever holds one plan.
func (g *PlanGenerator) save(ctx context.Context, previous, plan *models.StoredPlan) (*models.StoredPlan, error) {
	var expected int64
	if previous != nil {
		expected = previous.Version
	}

	err := g.store.SavePlan(ctx, plan, expected)
	if errors.Is(err, store.ErrVersionConflict) {
		g.logger.Warn("Plan written concurrently, returning stored snapshot",
			zap.String("user_id", plan.UserID),
			zap.String("kind", string(plan.Kind)),
			zap.String("date", plan.Date),
		)
		winner, getErr := g.store.GetPlan(ctx, plan.Kind, plan.UserID, plan.Date)
		if getErr != nil {
			return nil, fmt.Errorf("failed to read concurrently saved plan: %w", getErr)
		}
		return winner, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save %s plan: %w", plan.Kind, err)
	}

	if g.notifier != nil {
		g.notifier.PlanSaved(plan)
	}
	return plan, nil
}

func (g *PlanGenerator) validateDiet(req models.DietRequest) (dietConfig, error) {
	var cfg dietConfig
	if strings.TrimSpace(req.UserID) == "" {
		return cfg, invalidConfig("user_id is required")
	}
	date, err := g.planDate(req.TargetDate)
	if err != nil {
		return cfg, err
	}
	cfg.date = date.Format(models.DateLayout)

	if cfg.goal, err = models.ParseGoal(string(req.Goal)); err != nil {
		return cfg, invalidConfig("%v", err)
	}
	if req.DailyCalorieTarget <= 0 {
		return cfg, invalidConfig("daily calorie target must be positive")
	}
	m := req.MacroTargets
	if m.Proteins <= 0 || m.Carbs <= 0 || m.Fats <= 0 {
		return cfg, invalidConfig("macro targets must be positive")
	}

	prefs := req.Preferences
	if prefs.CookingTime != "" && !prefs.CookingTime.Valid() {
		return cfg, invalidConfig("unknown cooking time %q", prefs.CookingTime)
	}
	if prefs.Budget != "" && !prefs.Budget.Valid() {
		return cfg, invalidConfig("unknown budget %q", prefs.Budget)
	}
	for _, r := range prefs.Restrictions {
		style, err := models.ParseDietaryStyle(r)
		if err != nil {
			return cfg, invalidConfig("%v", err)
		}
		cfg.restrictions.Styles = append(cfg.restrictions.Styles, style)
	}
	cfg.restrictions.Allergies = prefs.Allergies
	cfg.restrictions.Disliked = prefs.DislikedFoods
	return cfg, nil
}

func (g *PlanGenerator) validateWorkout(req models.WorkoutRequest) (workoutConfig, error) {
	var cfg workoutConfig
	if strings.TrimSpace(req.UserID) == "" {
		return cfg, invalidConfig("user_id is required")
	}
	date, err := g.planDate(req.TargetDate)
	if err != nil {
		return cfg, err
	}
	cfg.date = date.Format(models.DateLayout)
	cfg.weekday = models.WeekdayOf(date)

	if cfg.goal, err = models.ParseGoal(string(req.Goal)); err != nil {
		return cfg, invalidConfig("%v", err)
	}
	if cfg.level, err = models.ParseDifficulty(string(req.ExperienceLevel)); err != nil {
		return cfg, invalidConfig("unknown experience level %q", req.ExperienceLevel)
	}

	prefs := req.Preferences
	for _, s := range prefs.AvailableDays {
		day, err := models.ParseWeekday(s)
		if err != nil {
			return cfg, invalidConfig("%v", err)
		}
		if !containsWeekday(cfg.days, day) {
			cfg.days = append(cfg.days, day)
		}
	}

	cfg.location = models.LocationGym
	if strings.TrimSpace(prefs.Location) != "" {
		if cfg.location, err = models.ParseLocation(prefs.Location); err != nil {
			return cfg, invalidConfig("%v", err)
		}
	}
	for _, s := range prefs.AvailableEquipment {
		cfg.equipment = append(cfg.equipment, g.normalizer.ParseEquipment(s))
	}
	return cfg, nil
}

// planDate parses a YYYY-MM-DD date; empty means today.
func (g *PlanGenerator) planDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return g.now().UTC(), nil
	}
	date, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, invalidConfig("target_date must be YYYY-MM-DD, got %q", s)
	}
	return date, nil
}

// seedFor keeps explicit seeds and otherwise derives one from the plan key,
// so regenerating the same day yields the same plan.
func seedFor(seed uint64, kind models.PlanKind, userID, date string) uint64 {
	if seed != 0 {
		return seed
	}
	h := fnv.New64a()
	h.Write([]byte(string(kind) + "|" + userID + "|" + date))
	return h.Sum64()
}
