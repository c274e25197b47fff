// Package reviewlog implements the append-only review history: encounter
// records, grade logs with pre-grade snapshots, and the SQL-side stats
// aggregation.
package reviewlog

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/adaptivelang/srs-backend/internal/adapter/postgres"
	"github.com/adaptivelang/srs-backend/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides review history persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new review log repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

const getStatsSQL = `
SELECT
    count(*) AS total,
    count(*) FILTER (WHERE grade = 1) AS again_count,
    count(*) FILTER (WHERE grade = 2) AS hard_count,
    count(*) FILTER (WHERE grade = 3) AS good_count,
    count(*) FILTER (WHERE grade = 4) AS easy_count,
    count(DISTINCT reviewed_at::date) AS active_days,
    avg(duration_ms) FILTER (WHERE duration_ms IS NOT NULL) AS avg_duration_ms
FROM review_logs
WHERE user_id = $1`

// CreateEncounter appends an immutable encounter record.
func (r *Repo) CreateEncounter(ctx context.Context, enc *domain.Encounter) (*domain.Encounter, error) {
	signals, err := json.Marshal(enc.Signals)
	if err != nil {
		return nil, fmt.Errorf("marshal signals: %w", err)
	}

	query, args, err := psql.Insert("encounters").
		Columns("id", "user_id", "item_id", "signals", "raw_text", "latency_ms", "hints_used").
		Values(enc.ID, enc.UserID, enc.ItemID, signals, enc.RawText, enc.LatencyMs, enc.HintsUsed).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build encounter insert: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	created := *enc
	if err := q.QueryRow(ctx, query, args...).Scan(&created.CreatedAt); err != nil {
		return nil, postgres.MapError(err, "encounter", enc.ID.String())
	}
	return &created, nil
}

// CreateLog appends a grade event with its pre-grade snapshot.
func (r *Repo) CreateLog(ctx context.Context, log *domain.ReviewLog) (*domain.ReviewLog, error) {
	var prevState []byte
	if log.PrevState != nil {
		var err error
		prevState, err = json.Marshal(log.PrevState)
		if err != nil {
			return nil, fmt.Errorf("marshal prev state: %w", err)
		}
	}

	query, args, err := psql.Insert("review_logs").
		Columns("id", "user_id", "item_id", "grade", "prev_state", "duration_ms", "reviewed_at").
		Values(log.ID, log.UserID, log.ItemID, int(log.Grade), prevState, log.DurationMs, log.ReviewedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build review log insert: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return nil, postgres.MapError(err, "review log", log.ID.String())
	}
	return log, nil
}

// GetStats aggregates a learner's review history in SQL.
func (r *Repo) GetStats(ctx context.Context, userID uuid.UUID) (domain.ReviewStats, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var (
		stats domain.ReviewStats
		avgMs *float64
	)
	err := q.QueryRow(ctx, getStatsSQL, userID).Scan(
		&stats.TotalReviews,
		&stats.GradeCounts.Again,
		&stats.GradeCounts.Hard,
		&stats.GradeCounts.Good,
		&stats.GradeCounts.Easy,
		&stats.ActiveDays,
		&avgMs,
	)
	if err != nil {
		return domain.ReviewStats{}, postgres.MapError(err, "review stats", userID.String())
	}

	if stats.TotalReviews > 0 {
		correct := stats.GradeCounts.Good + stats.GradeCounts.Easy
		stats.AccuracyRate = float64(correct) / float64(stats.TotalReviews)
	}
	if avgMs != nil {
		ms := int(*avgMs)
		stats.AvgDurationMs = &ms
	}
	return stats, nil
}
