package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PlanRecord is one plan snapshot row. The plan body is kept as JSON; the
// key and version columns drive lookups and the conditional update.
type PlanRecord struct {
	ID uuid.UUID `gorm:"type:text;primaryKey" json:"id"`

	Kind   string `gorm:"column:kind;type:text;not null;uniqueIndex:idx_plan_key,priority:1" json:"kind"`
	UserID string `gorm:"column:user_id;type:text;not null;uniqueIndex:idx_plan_key,priority:2" json:"user_id"`
	Date   string `gorm:"column:plan_date;type:text;not null;uniqueIndex:idx_plan_key,priority:3" json:"date"`

	Goal           string  `gorm:"column:goal;type:text;not null" json:"goal"`
	TargetCalories float64 `gorm:"column:target_calories" json:"target_calories"`
	Version        int64   `gorm:"column:version;not null" json:"version"`

	PlanJSON datatypes.JSON `gorm:"column:plan_json;not null" json:"plan_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PlanRecord) TableName() string { return "plan_records" }

// OpenSQLite opens (creating if needed) the sqlite database at path.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return db, nil
}

type SQLStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSQLStore migrates the plan table and returns a store backed by db.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&PlanRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate plan records: %w", err)
	}
	return &SQLStore{db: db, now: time.Now}, nil
}

func (s *SQLStore) GetPlan(ctx context.Context, kind models.PlanKind, userID, date string) (*models.StoredPlan, error) {
	var rec PlanRecord
	err := s.db.WithContext(ctx).
		Where("kind = ? AND user_id = ? AND plan_date = ?", string(kind), userID, date).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	var plan models.StoredPlan
	if err := json.Unmarshal(rec.PlanJSON, &plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan %s: %w", rec.ID, err)
	}
	plan.ID = rec.ID.String()
	plan.Version = rec.Version
	return &plan, nil
}

func (s *SQLStore) SavePlan(ctx context.Context, plan *models.StoredPlan, expectedVersion int64) error {
	if err := validatePlan(plan); err != nil {
		return err
	}

	snapshot := *plan
	snapshot.Version = expectedVersion + 1
	snapshot.UpdatedAt = s.now().UTC()
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = snapshot.UpdatedAt
	}
	id, err := uuid.Parse(snapshot.ID)
	if err != nil {
		id = uuid.New()
	}
	snapshot.ID = id.String()

	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		key := tx.Model(&PlanRecord{}).
			Where("kind = ? AND user_id = ? AND plan_date = ?", string(snapshot.Kind), snapshot.UserID, snapshot.Date)

		if expectedVersion == 0 {
			var count int64
			if err := key.Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrVersionConflict
			}
			rec := PlanRecord{
				ID:             id,
				Kind:           string(snapshot.Kind),
				UserID:         snapshot.UserID,
				Date:           snapshot.Date,
				Goal:           string(snapshot.Goal),
				TargetCalories: snapshot.TargetCalories,
				Version:        snapshot.Version,
				PlanJSON:       datatypes.JSON(body),
				CreatedAt:      snapshot.CreatedAt,
				UpdatedAt:      snapshot.UpdatedAt,
			}
			if err := tx.Create(&rec).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrVersionConflict
				}
				return err
			}
			return nil
		}

		res := key.Where("version = ?", expectedVersion).Updates(map[string]any{
			"id":              id,
			"goal":            string(snapshot.Goal),
			"target_calories": snapshot.TargetCalories,
			"version":         snapshot.Version,
			"plan_json":       datatypes.JSON(body),
			"created_at":      snapshot.CreatedAt,
			"updated_at":      snapshot.UpdatedAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}
		return nil
	})
	if errors.Is(err, ErrVersionConflict) {
		return fmt.Errorf("%w: expected version %d", ErrVersionConflict, expectedVersion)
	}
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	*plan = snapshot
	return nil
}
