package review

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/adaptivelang/srs-backend/internal/domain"
)

// Stats returns aggregated review statistics for one learner.
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (domain.ReviewStats, error) {
	if userID == uuid.Nil {
		return domain.ReviewStats{}, domain.NewValidationError("user_id", "required")
	}

	stats, err := s.logs.GetStats(ctx, userID)
	if err != nil {
		return domain.ReviewStats{}, fmt.Errorf("get stats: %w", err)
	}
	return stats, nil
}
