package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
	"github.com/MacroPath/macro-path-backend/services/plangen-service/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generatorNow = time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu    sync.Mutex
	plans []*models.StoredPlan
}

func (n *recordingNotifier) PlanSaved(plan *models.StoredPlan) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.plans = append(n.plans, plan)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.plans)
}

// racingStore behaves as if another request saved the plan first.
type racingStore struct {
	winner *models.StoredPlan
}

func (s *racingStore) GetPlan(ctx context.Context, kind models.PlanKind, userID, date string) (*models.StoredPlan, error) {
	if s.winner == nil {
		return nil, store.ErrPlanNotFound
	}
	return s.winner, nil
}

func (s *racingStore) SavePlan(ctx context.Context, plan *models.StoredPlan, expectedVersion int64) error {
	s.winner = &models.StoredPlan{ID: "winner", Kind: plan.Kind, UserID: plan.UserID, Date: plan.Date, Version: 1}
	return fmt.Errorf("%w: stored version 1, expected %d", store.ErrVersionConflict, expectedVersion)
}

type brokenStore struct{ err error }

func (s brokenStore) GetPlan(ctx context.Context, kind models.PlanKind, userID, date string) (*models.StoredPlan, error) {
	return nil, s.err
}

func (s brokenStore) SavePlan(ctx context.Context, plan *models.StoredPlan, expectedVersion int64) error {
	return s.err
}

func newGenerator(t *testing.T, planStore store.PlanStore, opts ...GeneratorOption) *PlanGenerator {
	opts = append([]GeneratorOption{WithClock(func() time.Time { return generatorNow })}, opts...)
	return NewPlanGenerator(loadTables(t), planStore, nil, opts...)
}

func dietRequest() models.DietRequest {
	return models.DietRequest{
		UserID:             "user-1",
		TargetDate:         "2024-01-01",
		Goal:               models.GoalLoseWeight,
		DailyCalorieTarget: 2000,
		MacroTargets:       models.MacroTarget{Proteins: 150, Carbs: 225, Fats: 55},
		AvailableFoods:     rawFoodCatalog(),
	}
}

func workoutRequest(date string) models.WorkoutRequest {
	return models.WorkoutRequest{
		UserID:          "user-1",
		TargetDate:      date,
		Goal:            models.GoalGainMass,
		ExperienceLevel: models.DifficultyIntermediate,
		Preferences: models.WorkoutPreferences{
			AvailableDays:      []string{"segunda", "Wednesday", "friday", "monday"},
			AvailableEquipment: []string{"barbell", "Halteres", "cable", "machine"},
		},
		AvailableExercises: rawExerciseCatalog(),
	}
}

func TestGenerateDietPlanSavesAndReuses(t *testing.T) {
	notifier := &recordingNotifier{}
	g := newGenerator(t, store.NewMemoryStore(), WithNotifier(notifier))
	ctx := context.Background()

	first, err := g.GenerateDietPlan(ctx, dietRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Version)
	assert.Equal(t, models.PlanKindDiet, first.Kind)
	assert.Equal(t, "2024-01-01", first.Date)
	require.NotNil(t, first.Diet)
	assert.Len(t, first.Diet.Meals, 6)
	assert.Equal(t, 1, notifier.count())

	again, err := g.GenerateDietPlan(ctx, dietRequest())
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, int64(1), again.Version)
	assert.Equal(t, 1, notifier.count())

	req := dietRequest()
	req.DailyCalorieTarget = 2300
	changed, err := g.GenerateDietPlan(ctx, req)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, changed.ID)
	assert.Equal(t, int64(2), changed.Version)
	assert.Equal(t, 2300.0, changed.TargetCalories)
	assert.Equal(t, 2, notifier.count())
}

func TestGenerateForceBypassesGate(t *testing.T) {
	notifier := &recordingNotifier{}
	g := newGenerator(t, store.NewMemoryStore(), WithNotifier(notifier))
	ctx := context.Background()

	first, err := g.GenerateDietPlan(ctx, dietRequest())
	require.NoError(t, err)

	req := dietRequest()
	req.Force = true
	forced, err := g.GenerateDietPlan(ctx, req)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, forced.ID)
	assert.Equal(t, int64(2), forced.Version)

	workout, err := g.GenerateWorkoutPlan(ctx, workoutRequest("2024-01-01"))
	require.NoError(t, err)
	wreq := workoutRequest("2024-01-01")
	wreq.Force = true
	forcedWorkout, err := g.GenerateWorkoutPlan(ctx, wreq)
	require.NoError(t, err)
	assert.NotEqual(t, workout.ID, forcedWorkout.ID)
	assert.Equal(t, int64(2), forcedWorkout.Version)
	assert.Equal(t, 4, notifier.count())
}

func TestGenerateDietPlanHonorsRestrictions(t *testing.T) {
	g := newGenerator(t, store.NewMemoryStore())

	req := dietRequest()
	req.Preferences.Restrictions = []string{"sem lactose"}
	req.Preferences.Allergies = []string{"nuts"}
	plan, err := g.GenerateDietPlan(context.Background(), req)
	require.NoError(t, err)

	for _, meal := range plan.Diet.Meals {
		for _, f := range meal.Foods {
			assert.NotContains(t, []string{"f-milk", "f-yogurt", "f-almonds"}, f.FoodID)
		}
	}
}

func TestGenerateDietPlanDefaultsDateToToday(t *testing.T) {
	g := newGenerator(t, store.NewMemoryStore())

	req := dietRequest()
	req.TargetDate = ""
	plan, err := g.GenerateDietPlan(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", plan.Date)
}

func TestGenerateDietPlanRejectsInvalidInput(t *testing.T) {
	g := newGenerator(t, store.NewMemoryStore())

	tests := []struct {
		name   string
		mutate func(*models.DietRequest)
	}{
		{"missing user", func(r *models.DietRequest) { r.UserID = " " }},
		{"bad date", func(r *models.DietRequest) { r.TargetDate = "01/02/2024" }},
		{"unknown goal", func(r *models.DietRequest) { r.Goal = "get_huge" }},
		{"zero calories", func(r *models.DietRequest) { r.DailyCalorieTarget = 0 }},
		{"zero protein", func(r *models.DietRequest) { r.MacroTargets.Proteins = 0 }},
		{"unknown restriction", func(r *models.DietRequest) { r.Preferences.Restrictions = []string{"carnivore"} }},
		{"unknown cooking time", func(r *models.DietRequest) { r.Preferences.CookingTime = "overnight" }},
		{"unknown budget", func(r *models.DietRequest) { r.Preferences.Budget = "free" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := dietRequest()
			tt.mutate(&req)
			_, err := g.GenerateDietPlan(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestGenerateReturnsConcurrentWinner(t *testing.T) {
	notifier := &recordingNotifier{}
	g := newGenerator(t, &racingStore{}, WithNotifier(notifier))

	plan, err := g.GenerateDietPlan(context.Background(), dietRequest())
	require.NoError(t, err)
	assert.Equal(t, "winner", plan.ID)
	assert.Zero(t, notifier.count())
}

func TestGenerateSurfacesStoreErrors(t *testing.T) {
	boom := errors.New("boom")
	g := newGenerator(t, brokenStore{err: boom})

	_, err := g.GenerateDietPlan(context.Background(), dietRequest())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidConfiguration)

	_, err = g.GenerateWorkoutPlan(context.Background(), workoutRequest("2024-01-01"))
	assert.ErrorIs(t, err, boom)
}

func TestGenerateWorkoutPlan(t *testing.T) {
	g := newGenerator(t, store.NewMemoryStore())
	ctx := context.Background()

	monday, err := g.GenerateWorkoutPlan(ctx, workoutRequest("2024-01-01"))
	require.NoError(t, err)
	require.NotNil(t, monday.Workout)
	require.NotNil(t, monday.Workout.Session)
	assert.Equal(t, models.Monday, monday.Workout.Weekday)
	assert.Equal(t, "Push", monday.Workout.Session.Template)
	assert.Equal(t, models.LocationGym, monday.Workout.Session.Location)
	assert.NotEmpty(t, monday.Workout.Session.Exercises)

	tuesday, err := g.GenerateWorkoutPlan(ctx, workoutRequest("2024-01-02"))
	require.NoError(t, err)
	assert.True(t, tuesday.Workout.RestDay)
	assert.Nil(t, tuesday.Workout.Session)

	again, err := g.GenerateWorkoutPlan(ctx, workoutRequest("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, monday.ID, again.ID)

	req := workoutRequest("2024-01-01")
	req.Goal = models.GoalIncreaseStrength
	changed, err := g.GenerateWorkoutPlan(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed.Version)
}

func TestGenerateWorkoutPlanRejectsInvalidInput(t *testing.T) {
	g := newGenerator(t, store.NewMemoryStore())

	tests := []struct {
		name   string
		mutate func(*models.WorkoutRequest)
	}{
		{"unknown level", func(r *models.WorkoutRequest) { r.ExperienceLevel = "legend" }},
		{"unknown weekday", func(r *models.WorkoutRequest) { r.Preferences.AvailableDays = []string{"funday"} }},
		{"unknown location", func(r *models.WorkoutRequest) { r.Preferences.Location = "moon" }},
		{"unknown goal", func(r *models.WorkoutRequest) { r.Goal = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := workoutRequest("2024-01-01")
			tt.mutate(&req)
			_, err := g.GenerateWorkoutPlan(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestGenerationIsDeterministicPerUserAndDate(t *testing.T) {
	ctx := context.Background()
	a := newGenerator(t, store.NewMemoryStore())
	b := newGenerator(t, store.NewMemoryStore())

	dietA, err := a.GenerateDietPlan(ctx, dietRequest())
	require.NoError(t, err)
	dietB, err := b.GenerateDietPlan(ctx, dietRequest())
	require.NoError(t, err)
	assert.Equal(t, dietA.Diet, dietB.Diet)

	workoutA, err := a.GenerateWorkoutPlan(ctx, workoutRequest("2024-01-03"))
	require.NoError(t, err)
	workoutB, err := b.GenerateWorkoutPlan(ctx, workoutRequest("2024-01-03"))
	require.NoError(t, err)
	assert.Equal(t, workoutA.Workout, workoutB.Workout)
}

func TestSeedFor(t *testing.T) {
	assert.Equal(t, uint64(42), seedFor(42, models.PlanKindDiet, "u", "2024-01-01"))
	assert.Equal(t, seedFor(0, models.PlanKindDiet, "u", "2024-01-01"), seedFor(0, models.PlanKindDiet, "u", "2024-01-01"))
	assert.NotEqual(t, seedFor(0, models.PlanKindDiet, "u", "2024-01-01"), seedFor(0, models.PlanKindWorkout, "u", "2024-01-01"))
}
