package services

import (
	"fmt"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
	"github.com/MacroPath/macro-path-backend/services/plangen-service/tables"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkoutInput describes one training day. Exercises must already be
// filtered for location and equipment.
type WorkoutInput struct {
	UserID        string
	Date          string
	Weekday       models.Weekday
	Goal          models.Goal
	Level         models.Difficulty
	AvailableDays []models.Weekday
	Location      models.Location
	Exercises     []models.CandidateExercise
}

type WorkoutComposer struct {
	tables *tables.Tables
	scorer *Scorer
	logger *zap.Logger
}

func NewWorkoutComposer(t *tables.Tables, scorer *Scorer, logger *zap.Logger) *WorkoutComposer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkoutComposer{tables: t, scorer: scorer, logger: logger}
}

// Compose returns a rest day when the weekday is not available, otherwise
// the session of the split template scheduled for that weekday.
func (c *WorkoutComposer) Compose(in WorkoutInput, rng RandomSource) *models.WorkoutPlan {
	plan := &models.WorkoutPlan{
		UserID:   in.UserID,
		Date:     in.Date,
		Weekday:  in.Weekday,
		Goal:     in.Goal,
		Warnings: []models.PlanWarning{},
	}

	if !containsWeekday(in.AvailableDays, in.Weekday) {
		plan.RestDay = true
		plan.ActiveRecovery = c.activeRecovery(in.Goal)
		return plan
	}

	templates := c.tables.Split(len(in.AvailableDays))
	template := templates[in.Weekday.Index()%len(templates)]

	session := &models.WorkoutSession{
		ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(in.UserID+"|"+in.Date+"|"+template.Name)).String(),
		Template:   template.Name,
		Intensity:  template.Intensity,
		Difficulty: in.Level,
		Exercises:  []models.SessionExercise{},
		Location:   in.Location,
	}

	used := make(map[string]bool)
	totalSets := 0
	for i, slot := range template.Slots {
		var candidates []models.CandidateExercise
		for _, e := range in.Exercises {
			if used[e.ID] || !slot.Pattern.Matches(e.MovementPattern) || !e.TrainsAny(slot.Muscles) {
				continue
			}
			if e.Difficulty.Rank() > in.Level.Rank()+1 {
				continue
			}
			candidates = append(candidates, e)
		}

		exercise, ok := c.scorer.SelectExercise(candidates, rng)
		if !ok {
			plan.Warnings = append(plan.Warnings, models.PlanWarning{
				Kind:    models.WarningInsufficientCandidates,
				Scope:   fmt.Sprintf("slot:%d", i+1),
				Message: fmt.Sprintf("no %s exercise for %v", slot.Pattern, slot.Muscles),
			})
			c.logger.Debug("Workout slot left empty",
				zap.String("template", template.Name),
				zap.Int("slot", i+1),
			)
			continue
		}
		used[exercise.ID] = true

		session.Exercises = append(session.Exercises, models.SessionExercise{
			ExerciseID:       exercise.ID,
			Name:             exercise.Name,
			PrimaryMuscle:    exercise.PrimaryMuscle,
			SecondaryMuscles: exercise.SecondaryMuscles,
			Equipment:        exercise.Equipment,
			Difficulty:       exercise.Difficulty,
			MovementPattern:  exercise.MovementPattern,
			Sets:             c.Prescribe(slot.Sets, in.Goal, in.Level, rng),
		})
		totalSets += slot.Sets
		if exercise.Equipment != models.EquipmentBodyweight && !containsEquipment(session.EquipmentNeeded, exercise.Equipment) {
			session.EquipmentNeeded = append(session.EquipmentNeeded, exercise.Equipment)
		}
	}

	warmupType, warmup := c.tables.Warmup(template.WarmupType)
	session.Warmup = models.WarmupBlock{Type: warmupType, Minutes: warmup.Minutes}
	for _, name := range warmup.Exercises {
		session.Warmup.Exercises = append(session.Warmup.Exercises, models.WarmupExercise{
			Name:            name,
			DurationSeconds: c.tables.WarmupSecondsPerExercise,
		})
	}
	session.CooldownNotes = c.tables.Cooldowns[warmupType]
	session.CooldownMinutes = c.tables.CooldownMinutes
	session.EstimatedMinutes = c.EstimateMinutes(warmup.Minutes, totalSets)

	plan.Session = session
	return plan
}

// Prescribe draws one rest period for the exercise and reps per set from
// the level and goal tables. Weight stays empty; WeightFactor tapers per set.
func (c *WorkoutComposer) Prescribe(sets int, goal models.Goal, level models.Difficulty, rng RandomSource) []models.ExerciseSet {
	reps := c.RepRange(goal, level)
	rest := c.tables.RestSeconds[goal]
	restSeconds := rest.Min + rng.IntN(rest.Max-rest.Min+1)

	prescribed := make([]models.ExerciseSet, 0, sets)
	for i := 0; i < sets; i++ {
		prescribed = append(prescribed, models.ExerciseSet{
			SetNumber:    i + 1,
			Reps:         reps.Min + rng.IntN(reps.Max-reps.Min+1),
			RestSeconds:  restSeconds,
			WeightFactor: 1 - c.tables.WeightTaper*float64(i),
		})
	}
	return prescribed
}

// RepRange picks the strength, endurance or hypertrophy column for the goal.
func (c *WorkoutComposer) RepRange(goal models.Goal, level models.Difficulty) tables.RepRange {
	row := c.tables.Volume[level]
	switch goal {
	case models.GoalIncreaseStrength:
		return row.Strength
	case models.GoalImproveEndurance:
		return row.Endurance
	case models.GoalLoseWeight, models.GoalGainMass, models.GoalMaintainWeight:
		return row.Hypertrophy
	}
	return row.Hypertrophy
}

// EstimateMinutes is warm-up plus a fixed time per set plus the cooldown, truncated.
func (c *WorkoutComposer) EstimateMinutes(warmupMinutes, totalSets int) int {
	return int(float64(warmupMinutes) + float64(totalSets)*c.tables.MinutesPerSet + float64(c.tables.CooldownMinutes))
}

func (c *WorkoutComposer) activeRecovery(goal models.Goal) string {
	if s, ok := c.tables.ActiveRecovery[goal]; ok {
		return s
	}
	return c.tables.DefaultActiveRecovery
}

func containsWeekday(days []models.Weekday, target models.Weekday) bool {
	for _, d := range days {
		if d == target {
			return true
		}
	}
	return false
}

func containsEquipment(items []models.Equipment, target models.Equipment) bool {
	for _, e := range items {
		if e == target {
			return true
		}
	}
	return false
}
