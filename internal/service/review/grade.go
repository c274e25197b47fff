package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adaptivelang/srs-backend/internal/domain"
	"github.com/adaptivelang/srs-backend/internal/service/review/fsrs"
	"github.com/adaptivelang/srs-backend/internal/service/review/sm2"
)

// Grade applies a grade event to a (learner, item) pair and persists the
// resulting transition together with its audit log. Mutations for the same
// pair are serialized: the per-key lock is taken before the state is loaded,
// so a second grade observes the first one's result rather than racing it.
func (s *Service) Grade(ctx context.Context, input GradeInput) (domain.ReviewState, error) {
	if err := input.Validate(); err != nil {
		return domain.ReviewState{}, err
	}

	now := time.Now()

	key := lockKey(input.UserID, input.ItemID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	state, err := s.states.Get(ctx, input.UserID, input.ItemID)
	if err != nil {
		return domain.ReviewState{}, fmt.Errorf("get review state: %w", err)
	}

	snapshot := &domain.ReviewSnapshot{
		State:        state.State,
		EaseFactor:   state.EaseFactor,
		IntervalDays: state.IntervalDays,
		Repetitions:  state.Repetitions,
		Stability:    state.Stability,
		Difficulty:   state.Difficulty,
		Due:          state.Due,
		LastGrade:    state.LastGrade,
	}

	next, err := s.transition(state, input.Grade, now)
	if err != nil {
		return domain.ReviewState{}, err
	}

	var updated domain.ReviewState
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var updateErr error
		updated, updateErr = s.states.Update(txCtx, next)
		if updateErr != nil {
			return fmt.Errorf("update review state: %w", updateErr)
		}

		_, logErr := s.logs.CreateLog(txCtx, &domain.ReviewLog{
			ID:         uuid.New(),
			UserID:     input.UserID,
			ItemID:     input.ItemID,
			Grade:      input.Grade,
			PrevState:  snapshot,
			DurationMs: input.DurationMs,
			ReviewedAt: now,
		})
		if logErr != nil {
			return fmt.Errorf("create review log: %w", logErr)
		}
		return nil
	})
	if err != nil {
		return domain.ReviewState{}, err
	}

	s.log.InfoContext(ctx, "grade applied",
		"user_id", input.UserID,
		"item_id", input.ItemID,
		"grade", input.Grade.String(),
		"interval_days", updated.IntervalDays,
		"due_at", updated.Due,
	)
	return updated, nil
}

func (s *Service) transition(state domain.ReviewState, grade domain.ReviewGrade, now time.Time) (domain.ReviewState, error) {
	if s.cfg.Model == ModelFSRS {
		return fsrs.Apply(s.cfg.FSRS, state, grade, now)
	}
	return sm2.Apply(state, grade, now)
}
