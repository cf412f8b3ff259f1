package services

import (
	"math"
	"time"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
	"github.com/MacroPath/macro-path-backend/services/plangen-service/tables"
)

// RegenerationGate decides whether a stored plan can be served again.
type RegenerationGate struct {
	calorieDelta float64
	maxAge       time.Duration
	now          func() time.Time
}

func NewRegenerationGate(t *tables.Tables, now func() time.Time) *RegenerationGate {
	if now == nil {
		now = time.Now
	}
	return &RegenerationGate{
		calorieDelta: t.Regeneration.CalorieDelta,
		maxAge:       time.Duration(t.Regeneration.MaxAgeHours) * time.Hour,
		now:          now,
	}
}

// DietNeedsRegeneration is true when there is no plan, the calorie target
// moved by more than the allowed delta, the goal changed, or the plan expired.
func (g *RegenerationGate) DietNeedsRegeneration(stored *models.StoredPlan, calorieTarget float64, goal models.Goal) bool {
	if stored == nil || stored.Diet == nil {
		return true
	}
	if math.Abs(stored.TargetCalories-calorieTarget) > g.calorieDelta {
		return true
	}
	return stored.Goal != goal || g.expired(stored)
}

// WorkoutNeedsRegeneration is true when there is no plan, the goal changed, or the plan expired.
func (g *RegenerationGate) WorkoutNeedsRegeneration(stored *models.StoredPlan, goal models.Goal) bool {
	if stored == nil || stored.Workout == nil {
		return true
	}
	return stored.Goal != goal || g.expired(stored)
}

func (g *RegenerationGate) expired(stored *models.StoredPlan) bool {
	return g.now().Sub(stored.CreatedAt) > g.maxAge
}
