package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestTrendRepositoryActiveNotFound(t *testing.T) {
	mock := newMock(t)
	r := NewTrendRepository(mock)

	mock.ExpectQuery(`SELECT id, trend_type, trend_data, created_at, valid_until, is_active`).
		WithArgs("general").
		WillReturnError(pgx.ErrNoRows)

	_, err := r.Active(context.Background(), "general")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrendRepositoryActivateDeactivatesThenInserts(t *testing.T) {
	mock := newMock(t)
	r := NewTrendRepository(mock)

	data := json.RawMessage(`{"genre_distribution":{"Pop":30}}`)
	validUntil := time.Now().Add(24 * time.Hour)
	createdAt := time.Now()

	// Deactivation and insertion share one transaction, so exactly one
	// snapshot per trend type is ever active.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE trend_snapshots SET is_active = false WHERE trend_type = \$1 AND is_active`).
		WithArgs("general").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`INSERT INTO trend_snapshots`).
		WithArgs(pgxmock.AnyArg(), "general", data, validUntil).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))
	mock.ExpectCommit()

	snapshot := &TrendSnapshot{
		TrendType:  "general",
		TrendData:  data,
		ValidUntil: validUntil,
	}
	require.NoError(t, r.Activate(context.Background(), snapshot))
	require.True(t, snapshot.IsActive)
	require.NotEqual(t, snapshot.ID.String(), "00000000-0000-0000-0000-000000000000")
	require.Equal(t, createdAt, snapshot.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrendRepositoryActivateRollsBackOnInsertFailure(t *testing.T) {
	mock := newMock(t)
	r := NewTrendRepository(mock)

	data := json.RawMessage(`{}`)
	validUntil := time.Now().Add(24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE trend_snapshots SET is_active = false`).
		WithArgs("general").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`INSERT INTO trend_snapshots`).
		WithArgs(pgxmock.AnyArg(), "general", data, validUntil).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	err := r.Activate(context.Background(), &TrendSnapshot{
		TrendType:  "general",
		TrendData:  data,
		ValidUntil: validUntil,
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
