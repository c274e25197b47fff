// Package item implements the read-only item catalog repository.
// Difficulty and discrimination are catalog attributes: nothing in this
// package (or its callers) ever writes them back from engine state.
package item

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

const table = "items"

var columns = []string{
	"id", "language", "kind", "content", "difficulty", "discrimination", "cefr_level",
}

// Repo provides item catalog access backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new item repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// GetByID returns a single catalog item.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Item, error) {
	query, args, err := psql.Select(columns...).
		From(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Item{}, fmt.Errorf("build get query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	item, err := scanItem(q.QueryRow(ctx, query, args...))
	if err != nil {
		return domain.Item{}, postgres.MapError(err, "item", id.String())
	}
	return item, nil
}

// ListByLanguage returns all catalog items for a language, ordered by id so
// downstream selection is deterministic.
func (r *Repo) ListByLanguage(ctx context.Context, language string) ([]domain.Item, error) {
	query, args, err := psql.Select(columns...).
		From(table).
		Where(sq.Eq{"language": language}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// CreateBatch inserts catalog items (seeder use). Content is validated and
// serialized through the tagged-variant model.
func (r *Repo) CreateBatch(ctx context.Context, items []domain.Item) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	builder := psql.Insert(table).
		Columns("id", "language", "kind", "content", "difficulty", "discrimination", "cefr_level")

	for _, item := range items {
		if err := domain.ValidateContent(item.Content); err != nil {
			return 0, fmt.Errorf("item %s: %w", item.ID, err)
		}
		content, err := domain.MarshalContent(item.Content)
		if err != nil {
			return 0, fmt.Errorf("item %s: %w", item.ID, err)
		}
		builder = builder.Values(item.ID, item.Language, item.Kind, content,
			item.Difficulty, item.Discrimination, levelPtr(item.Level))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build batch insert: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.db)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, postgres.MapError(err, "items", "batch")
	}
	return int(tag.RowsAffected()), nil
}

func levelPtr(l *domain.CEFRLevel) *string {
	if l == nil {
		return nil
	}
	v := string(*l)
	return &v
}

func scanItem(row pgx.Row) (domain.Item, error) {
	var (
		item    domain.Item
		kind    string
		content []byte
		level   *string
	)
	err := row.Scan(&item.ID, &item.Language, &kind, &content,
		&item.Difficulty, &item.Discrimination, &level)
	if err != nil {
		return domain.Item{}, err
	}

	item.Kind = domain.ContentKind(kind)
	item.Content, err = domain.UnmarshalContent(item.Kind, content)
	if err != nil {
		return domain.Item{}, err
	}
	if level != nil {
		l := domain.CEFRLevel(*level)
		item.Level = &l
	}
	return item, nil
}
