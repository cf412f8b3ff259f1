package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	s, err := NewSQLStore(db)
	require.NoError(t, err)
	return s
}

func TestSQLStore(t *testing.T) {
	testPlanStore(t, newSQLStore(t), "user-1")
}

func TestSQLStoreKeepsOneRowPerKey(t *testing.T) {
	s := newSQLStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePlan(ctx, dietPlan("user-1", 2000), 0))
	require.NoError(t, s.SavePlan(ctx, dietPlan("user-1", 2200), 1))
	require.NoError(t, s.SavePlan(ctx, dietPlan("user-2", 1800), 0))

	var count int64
	require.NoError(t, s.db.Model(&PlanRecord{}).Where("kind = ?", string(models.PlanKindDiet)).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var rec PlanRecord
	require.NoError(t, s.db.Where("user_id = ?", "user-1").First(&rec).Error)
	assert.Equal(t, int64(2), rec.Version)
	assert.Equal(t, 2200.0, rec.TargetCalories)
}
