// Package store persists generated plans as immutable snapshots keyed by
// plan kind, user and date.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
)

var (
	ErrPlanNotFound    = errors.New("plan not found")
	ErrVersionConflict = errors.New("plan version conflict")
)

// PlanStore is implemented by every backend. SavePlan is a compare-and-swap:
// it succeeds only if the stored version equals expectedVersion (zero when
// no plan exists yet), and on success sets plan.Version to expectedVersion+1.
type PlanStore interface {
	GetPlan(ctx context.Context, kind models.PlanKind, userID, date string) (*models.StoredPlan, error)
	SavePlan(ctx context.Context, plan *models.StoredPlan, expectedVersion int64) error
}

// DocumentID is the key of a plan within its kind.
func DocumentID(userID, date string) string {
	return fmt.Sprintf("%s_%s", userID, date)
}

func validatePlan(plan *models.StoredPlan) error {
	if plan == nil {
		return errors.New("plan is nil")
	}
	if !plan.Kind.Valid() {
		return fmt.Errorf("invalid plan kind %q", plan.Kind)
	}
	if plan.UserID == "" || plan.Date == "" {
		return errors.New("plan needs a user id and a date")
	}
	return nil
}

type memoryKey struct {
	kind   models.PlanKind
	userID string
	date   string
}

type memoryRecord struct {
	version int64
	body    []byte
}

// MemoryStore keeps plans in process memory, encoded as JSON so callers
// never share a snapshot with the store.
type MemoryStore struct {
	mu    sync.Mutex
	plans map[memoryKey]memoryRecord
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		plans: make(map[memoryKey]memoryRecord),
		now:   time.Now,
	}
}

func (s *MemoryStore) GetPlan(ctx context.Context, kind models.PlanKind, userID, date string) (*models.StoredPlan, error) {
	s.mu.Lock()
	rec, ok := s.plans[memoryKey{kind, userID, date}]
	s.mu.Unlock()
	if !ok {
		return nil, ErrPlanNotFound
	}

	var plan models.StoredPlan
	if err := json.Unmarshal(rec.body, &plan); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &plan, nil
}

func (s *MemoryStore) SavePlan(ctx context.Context, plan *models.StoredPlan, expectedVersion int64) error {
	if err := validatePlan(plan); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey{plan.Kind, plan.UserID, plan.Date}
	if current := s.plans[key].version; current != expectedVersion {
		return fmt.Errorf("%w: stored version %d, expected %d", ErrVersionConflict, current, expectedVersion)
	}

	snapshot := *plan
	snapshot.Version = expectedVersion + 1
	snapshot.UpdatedAt = s.now().UTC()
	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}

	s.plans[key] = memoryRecord{version: snapshot.Version, body: body}
	plan.Version = snapshot.Version
	plan.UpdatedAt = snapshot.UpdatedAt
	return nil
}
