package placement

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/adaptivelang/srs-backend/internal/domain"
	"github.com/adaptivelang/srs-backend/internal/service/placement/cat"
)

// StartResult is a freshly created session together with its first item.
type StartResult struct {
	Session *domain.PlacementSession
	Item    domain.Item
}

// Start creates a placement session. The initial ability estimate comes from
// the learner's claimed CEFR band midpoint (0.0 when none is claimed); the
// first item is the catalog entry closest to that estimate.
func (s *Service) Start(ctx context.Context, input StartInput) (*StartResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	theta := 0.0
	if input.ClaimedLevel != nil {
		theta = input.ClaimedLevel.Theta()
	}

	items, err := s.items.ListByLanguage(ctx, input.Language)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	first, ok := cat.SelectNext(theta, items, nil)
	if !ok {
		return nil, fmt.Errorf("no items for language %q: %w", input.Language, domain.ErrNotFound)
	}

	session := &domain.PlacementSession{
		ID:                  uuid.New(),
		UserID:              input.UserID,
		Language:            input.Language,
		Theta:               theta,
		ThetaSE:             s.params.InitialSE,
		AdministeredItemIDs: []uuid.UUID{first.ID},
		Status:              domain.SessionStatusInProgress,
	}

	created, err := s.sessions.CreateSession(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.InfoContext(ctx, "placement session started",
		"session_id", created.ID,
		"user_id", input.UserID,
		"language", input.Language,
		"theta", theta,
	)
	return &StartResult{Session: created, Item: first}, nil
}
