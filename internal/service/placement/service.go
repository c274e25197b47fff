// Package placement implements the adaptive placement test lifecycle:
// session start, answer processing and termination. The pure IRT/CAT math
// lives in the cat subpackage; this layer owns session state, item
// selection over the catalog and the stopping rule.
package placement

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/adaptivelang/srs-backend/internal/domain"
	"github.com/adaptivelang/srs-backend/internal/service/placement/cat"
	"github.com/adaptivelang/srs-backend/pkg/kmutex"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type sessionRepo interface {
	CreateSession(ctx context.Context, s *domain.PlacementSession) (*domain.PlacementSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (*domain.PlacementSession, error)
	UpdateSession(ctx context.Context, s *domain.PlacementSession) (*domain.PlacementSession, error)
	CreateResponse(ctx context.Context, resp *domain.PlacementResponse) (*domain.PlacementResponse, error)
}

type itemRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Item, error)
	ListByLanguage(ctx context.Context, language string) ([]domain.Item, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the placement operations.
type Service struct {
	sessions sessionRepo
	items    itemRepo
	tx       txManager
	locks    *kmutex.KMutex
	log      *slog.Logger
	params   cat.Parameters
}

// NewService creates a new placement service.
func NewService(
	log *slog.Logger,
	sessions sessionRepo,
	items itemRepo,
	tx txManager,
	params cat.Parameters,
) *Service {
	return &Service{
		sessions: sessions,
		items:    items,
		tx:       tx,
		locks:    kmutex.New(),
		log:      log.With("service", "placement"),
		params:   params,
	}
}
