// Package review implements the review scheduling business logic: encounter
// logging, grade transitions, due queues and learner statistics. The pure
// transition math lives in the sm2 and fsrs subpackages; this layer does
// load, kmutex-guarded compute and store-in-transaction.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/adaptivelang/srs-backend/internal/domain"
	"github.com/adaptivelang/srs-backend/internal/service/review/fsrs"
	"github.com/adaptivelang/srs-backend/pkg/kmutex"
)

// Scheduling models selectable via config.
const (
	ModelSM2  = "sm2"
	ModelFSRS = "fsrs"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type stateRepo interface {
	Get(ctx context.Context, userID, itemID uuid.UUID) (domain.ReviewState, error)
	Create(ctx context.Context, state domain.ReviewState) (domain.ReviewState, error)
	Update(ctx context.Context, state domain.ReviewState) (domain.ReviewState, error)
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]domain.ReviewState, error)
}

type logRepo interface {
	CreateEncounter(ctx context.Context, enc *domain.Encounter) (*domain.Encounter, error)
	CreateLog(ctx context.Context, log *domain.ReviewLog) (*domain.ReviewLog, error)
	GetStats(ctx context.Context, userID uuid.UUID) (domain.ReviewStats, error)
}

type itemRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Item, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Config selects the scheduling model and its parameters.
type Config struct {
	Model string
	FSRS  fsrs.Parameters
}

// Service implements the review scheduling operations.
type Service struct {
	states stateRepo
	logs   logRepo
	items  itemRepo
	tx     txManager
	locks  *kmutex.KMutex
	log    *slog.Logger
	cfg    Config
}

// NewService creates a new review service.
func NewService(
	log *slog.Logger,
	states stateRepo,
	logs logRepo,
	items itemRepo,
	tx txManager,
	cfg Config,
) (*Service, error) {
	switch cfg.Model {
	case ModelSM2:
	case ModelFSRS:
		if err := fsrs.ValidateWeights(cfg.FSRS.W); err != nil {
			return nil, fmt.Errorf("invalid FSRS weights: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown scheduling model %q", cfg.Model)
	}

	return &Service{
		states: states,
		logs:   logs,
		items:  items,
		tx:     tx,
		locks:  kmutex.New(),
		log:    log.With("service", "review"),
		cfg:    cfg,
	}, nil
}

// lockKey serializes mutations per (learner, item) pair.
func lockKey(userID, itemID uuid.UUID) string {
	return userID.String() + "/" + itemID.String()
}
