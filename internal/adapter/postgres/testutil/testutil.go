// Package testutil provides pgxmock helpers for repository tests.
package testutil

import (
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/adaptivelang/srs-backend/internal/adapter/postgres"
)

// NewMockQuerier returns a pgxmock pool wired as a postgres.Querier.
func NewMockQuerier(t *testing.T) (postgres.Querier, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create pgxmock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, mock
}

// ExpectationsWereMet fails the test if any configured expectation was
// not satisfied.
func ExpectationsWereMet(t *testing.T, mock pgxmock.PgxPoolIface) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet mock expectations: %v", err)
	}
}
