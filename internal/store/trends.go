package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TrendRepository handles trend snapshot rows.
type TrendRepository struct {
	db Querier
}

// NewTrendRepository constructs a trend repository.
func NewTrendRepository(db Querier) *TrendRepository {
	return &TrendRepository{db: db}
}

// Active returns the current active, unexpired snapshot for the given
// trend type, or ErrNotFound.
func (r *TrendRepository) Active(ctx context.Context, trendType string) (*TrendSnapshot, error) {
	query := `
		SELECT id, trend_type, trend_data, created_at, valid_until, is_active
		FROM trend_snapshots
		WHERE trend_type = $1 AND is_active AND valid_until > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`
	var s TrendSnapshot
	err := r.db.QueryRow(ctx, query, trendType).Scan(
		&s.ID,
		&s.TrendType,
		&s.TrendData,
		&s.CreatedAt,
		&s.ValidUntil,
		&s.IsActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying active trend: %w", err)
	}
	return &s, nil
}

// Activate stores a new snapshot as the single active row for its
// trend type. Deactivation of all prior active rows and insertion of
// the new one happen in one transaction, so no two snapshots of the
// same type can be active at once.
func (r *TrendRepository) Activate(ctx context.Context, s *TrendSnapshot) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	deactivate := `UPDATE trend_snapshots SET is_active = false WHERE trend_type = $1 AND is_active`
	if _, err = tx.Exec(ctx, deactivate, s.TrendType); err != nil {
		return fmt.Errorf("deactivating prior snapshots: %w", err)
	}

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	insert := `
		INSERT INTO trend_snapshots (id, trend_type, trend_data, created_at, valid_until, is_active)
		VALUES ($1, $2, $3, NOW(), $4, true)
		RETURNING created_at
	`
	if err = tx.QueryRow(ctx, insert, s.ID, s.TrendType, s.TrendData, s.ValidUntil).Scan(&s.CreatedAt); err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}
	s.IsActive = true

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}
