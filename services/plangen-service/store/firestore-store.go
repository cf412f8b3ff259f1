package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/MacroPath/macro-path-backend/services/plangen-service/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	dietPlansCollection    = "diet_plans"
	workoutPlansCollection = "workout_plans"
)

type FirestoreStore struct {
	client *firestore.Client
	now    func() time.Time
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client, now: time.Now}
}

func collectionFor(kind models.PlanKind) string {
	switch kind {
	case models.PlanKindDiet:
		return dietPlansCollection
	case models.PlanKindWorkout:
		return workoutPlansCollection
	}
	return ""
}

func (s *FirestoreStore) GetPlan(ctx context.Context, kind models.PlanKind, userID, date string) (*models.StoredPlan, error) {
	collection := collectionFor(kind)
	if collection == "" {
		return nil, fmt.Errorf("invalid plan kind %q", kind)
	}

	docSnap, err := s.client.Collection(collection).Doc(DocumentID(userID, date)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	var plan models.StoredPlan
	if err := docSnap.DataTo(&plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan %s: %w", docSnap.Ref.ID, err)
	}
	return &plan, nil
}

// SavePlan reads the current version and writes the snapshot in one transaction.
func (s *FirestoreStore) SavePlan(ctx context.Context, plan *models.StoredPlan, expectedVersion int64) error {
	if err := validatePlan(plan); err != nil {
		return err
	}

	snapshot := *plan
	snapshot.Version = expectedVersion + 1
	snapshot.UpdatedAt = s.now().UTC()
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = snapshot.UpdatedAt
	}

	ref := s.client.Collection(collectionFor(snapshot.Kind)).Doc(DocumentID(snapshot.UserID, snapshot.Date))
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var current int64
		docSnap, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
		case err != nil:
			return err
		default:
			var existing models.StoredPlan
			if err := docSnap.DataTo(&existing); err != nil {
				return err
			}
			current = existing.Version
		}

		if current != expectedVersion {
			return fmt.Errorf("%w: stored version %d, expected %d", ErrVersionConflict, current, expectedVersion)
		}
		return tx.Set(ref, snapshot)
	})
	if errors.Is(err, ErrVersionConflict) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	*plan = snapshot
	return nil
}
