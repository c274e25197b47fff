package review

import (
	"context"
	"fmt"
	"time"

	"github.com/adaptivelang/srs-backend/internal/domain"
)

// ListDue returns the learner's due queue, ordered by due_at ascending.
// A zero limit falls back to the default page size.
func (s *Service) ListDue(ctx context.Context, input ListDueInput) ([]domain.ReviewState, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = defaultDueLimit
	}

	states, err := s.states.ListDue(ctx, input.UserID, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("list due states: %w", err)
	}
	return states, nil
}
