// Package reviewstate implements the ReviewState repository using PostgreSQL.
// The (user_id, item_id) pair is the primary key; rows are superseded via
// versioned updates, never deleted.
package reviewstate

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/adaptivelang/srs-backend/internal/adapter/postgres"
	"github.com/adaptivelang/srs-backend/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const table = "review_states"

var columns = []string{
	"user_id", "item_id", "state", "ease_factor", "interval_days",
	"repetitions", "stability", "difficulty", "due_at", "last_grade",
	"version", "created_at", "updated_at",
}

// Repo provides review state persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new review state repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Get returns the scheduling record for a (learner, item) pair.
func (r *Repo) Get(ctx context.Context, userID, itemID uuid.UUID) (domain.ReviewState, error) {
	query, args, err := psql.Select(columns...).
		From(table).
		Where(sq.Eq{"user_id": userID, "item_id": itemID}).
		ToSql()
	if err != nil {
		return domain.ReviewState{}, fmt.Errorf("build get query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	state, err := scanState(q.QueryRow(ctx, query, args...))
	if err != nil {
		return domain.ReviewState{}, postgres.MapError(err, "review state", itemID.String())
	}
	return state, nil
}

// Create inserts a fresh scheduling record and returns it as stored.
// A pair that already exists maps to domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, state domain.ReviewState) (domain.ReviewState, error) {
	query, args, err := psql.Insert(table).
		Columns("user_id", "item_id", "state", "ease_factor", "interval_days",
			"repetitions", "stability", "difficulty", "due_at", "last_grade").
		Values(state.UserID, state.ItemID, state.State, state.EaseFactor,
			state.IntervalDays, state.Repetitions, state.Stability,
			state.Difficulty, state.Due, gradePtr(state.LastGrade)).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return domain.ReviewState{}, fmt.Errorf("build insert query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	created, err := scanState(q.QueryRow(ctx, query, args...))
	if err != nil {
		return domain.ReviewState{}, postgres.MapError(err, "review state", state.ItemID.String())
	}
	return created, nil
}

// Update persists a computed transition guarded by the version the caller
// loaded. A missed version means a concurrent writer won; the caller gets
// domain.ErrConflict and must re-fetch.
func (r *Repo) Update(ctx context.Context, state domain.ReviewState) (domain.ReviewState, error) {
	query, args, err := psql.Update(table).
		Set("state", state.State).
		Set("ease_factor", state.EaseFactor).
		Set("interval_days", state.IntervalDays).
		Set("repetitions", state.Repetitions).
		Set("stability", state.Stability).
		Set("difficulty", state.Difficulty).
		Set("due_at", state.Due).
		Set("last_grade", gradePtr(state.LastGrade)).
		Set("version", state.Version+1).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{
			"user_id": state.UserID,
			"item_id": state.ItemID,
			"version": state.Version,
		}).
		Suffix("RETURNING " + columnList()).
		ToSql()
	if err != nil {
		return domain.ReviewState{}, fmt.Errorf("build update query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	updated, err := scanState(q.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.ReviewState{}, fmt.Errorf("review state %s: %w", state.ItemID, domain.ErrConflict)
		}
		return domain.ReviewState{}, postgres.MapError(err, "review state", state.ItemID.String())
	}
	return updated, nil
}

// ListDue returns states with due_at <= now, ascending by due_at.
func (r *Repo) ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]domain.ReviewState, error) {
	query, args, err := psql.Select(columns...).
		From(table).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.LtOrEq{"due_at": now}).
		OrderBy("due_at ASC", "item_id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list due query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list due states: %w", err)
	}
	defer rows.Close()

	var states []domain.ReviewState
	for rows.Next() {
		state, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due state: %w", err)
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list due states: %w", err)
	}
	return states, nil
}

func columnList() string {
	list := columns[0]
	for _, c := range columns[1:] {
		list += ", " + c
	}
	return list
}

func gradePtr(g *domain.ReviewGrade) *int {
	if g == nil {
		return nil
	}
	v := int(*g)
	return &v
}

func scanState(row pgx.Row) (domain.ReviewState, error) {
	var (
		s         domain.ReviewState
		lastGrade *int
	)
	err := row.Scan(
		&s.UserID, &s.ItemID, &s.State, &s.EaseFactor, &s.IntervalDays,
		&s.Repetitions, &s.Stability, &s.Difficulty, &s.Due, &lastGrade,
		&s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return domain.ReviewState{}, err
	}
	if lastGrade != nil {
		g := domain.ReviewGrade(*lastGrade)
		s.LastGrade = &g
	}
	return s, nil
}
