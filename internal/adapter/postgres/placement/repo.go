// Package placement implements the placement session and response
// repositories. Sessions are versioned for optimistic concurrency;
// responses are append-only and write-once.
package placement

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/adaptivelang/srs-backend/internal/adapter/postgres"
	"github.com/adaptivelang/srs-backend/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const sessionTable = "placement_sessions"

var sessionColumns = []string{
	"id", "user_id", "language", "theta", "theta_se", "items_completed",
	"administered_item_ids", "status", "final_theta", "final_level",
	"low_confidence", "version", "created_at", "updated_at",
}

// Repo provides placement persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new placement repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// CreateSession inserts a new in-progress session.
func (r *Repo) CreateSession(ctx context.Context, s *domain.PlacementSession) (*domain.PlacementSession, error) {
	query, args, err := psql.Insert(sessionTable).
		Columns("id", "user_id", "language", "theta", "theta_se",
			"items_completed", "administered_item_ids", "status").
		Values(s.ID, s.UserID, s.Language, s.Theta, s.ThetaSE,
			s.ItemsCompleted, s.AdministeredItemIDs, s.Status).
		Suffix("RETURNING " + columnList(sessionColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build session insert: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	created, err := scanSession(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "placement session", s.ID.String())
	}
	return created, nil
}

// GetSession returns a session by id.
func (r *Repo) GetSession(ctx context.Context, id uuid.UUID) (*domain.PlacementSession, error) {
	query, args, err := psql.Select(sessionColumns...).
		From(sessionTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build session get: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	s, err := scanSession(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "placement session", id.String())
	}
	return s, nil
}

// UpdateSession persists a session transition guarded by the loaded version.
// A missed version maps to domain.ErrConflict.
func (r *Repo) UpdateSession(ctx context.Context, s *domain.PlacementSession) (*domain.PlacementSession, error) {
	query, args, err := psql.Update(sessionTable).
		Set("theta", s.Theta).
		Set("theta_se", s.ThetaSE).
		Set("items_completed", s.ItemsCompleted).
		Set("administered_item_ids", s.AdministeredItemIDs).
		Set("status", s.Status).
		Set("final_theta", s.FinalTheta).
		Set("final_level", levelPtr(s.FinalLevel)).
		Set("low_confidence", s.LowConfidence).
		Set("version", s.Version+1).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": s.ID, "version": s.Version}).
		Suffix("RETURNING " + columnList(sessionColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build session update: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	updated, err := scanSession(q.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("placement session %s: %w", s.ID, domain.ErrConflict)
		}
		return nil, postgres.MapError(err, "placement session", s.ID.String())
	}
	return updated, nil
}

// CreateResponse appends a write-once response record.
func (r *Repo) CreateResponse(ctx context.Context, resp *domain.PlacementResponse) (*domain.PlacementResponse, error) {
	query, args, err := psql.Insert("placement_responses").
		Columns("id", "session_id", "item_id", "user_answer", "is_correct",
			"response_time_ms", "theta_before", "theta_after", "se_before", "se_after").
		Values(resp.ID, resp.SessionID, resp.ItemID, resp.UserAnswer, resp.IsCorrect,
			resp.ResponseTimeMs, resp.ThetaBefore, resp.ThetaAfter, resp.SEBefore, resp.SEAfter).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build response insert: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	created := *resp
	if err := q.QueryRow(ctx, query, args...).Scan(&created.CreatedAt); err != nil {
		return nil, postgres.MapError(err, "placement response", resp.ID.String())
	}
	return &created, nil
}

func columnList(cols []string) string {
	list := cols[0]
	for _, c := range cols[1:] {
		list += ", " + c
	}
	return list
}

func levelPtr(l *domain.CEFRLevel) *string {
	if l == nil {
		return nil
	}
	v := string(*l)
	return &v
}

func scanSession(row pgx.Row) (*domain.PlacementSession, error) {
	var (
		s     domain.PlacementSession
		level *string
	)
	err := row.Scan(
		&s.ID, &s.UserID, &s.Language, &s.Theta, &s.ThetaSE, &s.ItemsCompleted,
		&s.AdministeredItemIDs, &s.Status, &s.FinalTheta, &level,
		&s.LowConfidence, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if level != nil {
		l := domain.CEFRLevel(*level)
		s.FinalLevel = &l
	}
	return &s, nil
}
