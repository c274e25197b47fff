package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adaptivelang/srs-backend/internal/domain"
)

// LogEncounter records one exposure of a learner to an item and makes sure a
// scheduling record exists for the pair. The encounter row is append-only;
// the default ReviewState is created only on the first exposure.
func (s *Service) LogEncounter(ctx context.Context, input LogEncounterInput) (*domain.Encounter, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.items.GetByID(ctx, input.ItemID); err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	now := time.Now()

	key := lockKey(input.UserID, input.ItemID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	var created *domain.Encounter
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		enc := &domain.Encounter{
			ID:        uuid.New(),
			UserID:    input.UserID,
			ItemID:    input.ItemID,
			Signals:   input.Signals,
			RawText:   input.RawText,
			LatencyMs: input.LatencyMs,
			HintsUsed: input.HintsUsed,
			CreatedAt: now,
		}

		var encErr error
		created, encErr = s.logs.CreateEncounter(txCtx, enc)
		if encErr != nil {
			return fmt.Errorf("create encounter: %w", encErr)
		}

		_, getErr := s.states.Get(txCtx, input.UserID, input.ItemID)
		switch {
		case getErr == nil:
			return nil
		case errors.Is(getErr, domain.ErrNotFound):
			state := domain.NewReviewState(input.UserID, input.ItemID, now)
			if _, createErr := s.states.Create(txCtx, state); createErr != nil {
				return fmt.Errorf("create review state: %w", createErr)
			}
			return nil
		default:
			return fmt.Errorf("get review state: %w", getErr)
		}
	})
	if err != nil {
		return nil, err
	}

	s.log.DebugContext(ctx, "encounter logged",
		"user_id", input.UserID,
		"item_id", input.ItemID,
	)
	return created, nil
}
