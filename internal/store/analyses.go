package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// AnalysisRepository handles playlist analysis rows.
type AnalysisRepository struct {
	db Querier
}

// NewAnalysisRepository constructs an analysis repository.
func NewAnalysisRepository(db Querier) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Upsert stores an analysis, replacing any prior row for the same
// (playlist_id, user_id) pair.
func (r *AnalysisRepository) Upsert(ctx context.Context, a *PlaylistAnalysis) error {
	query := `
		INSERT INTO playlist_analyses (playlist_id, user_id, name, analysis_data, track_count, total_duration_ms, last_updated, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (playlist_id, user_id) DO UPDATE SET
			name = EXCLUDED.name,
			analysis_data = EXCLUDED.analysis_data,
			track_count = EXCLUDED.track_count,
			total_duration_ms = EXCLUDED.total_duration_ms,
			last_updated = NOW()
		RETURNING last_updated, created_at
	`
	err := r.db.QueryRow(ctx, query,
		a.PlaylistID,
		a.UserID,
		a.Name,
		a.AnalysisData,
		a.TrackCount,
		a.TotalDurationMS,
	).Scan(&a.LastUpdated, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting analysis: %w", err)
	}
	return nil
}

// Get retrieves the analysis for one playlist and user.
func (r *AnalysisRepository) Get(ctx context.Context, playlistID, userID string) (*PlaylistAnalysis, error) {
	query := `
		SELECT playlist_id, user_id, name, analysis_data, track_count, total_duration_ms, last_updated, created_at
		FROM playlist_analyses
		WHERE playlist_id = $1 AND user_id = $2
	`
	var a PlaylistAnalysis
	err := r.db.QueryRow(ctx, query, playlistID, userID).Scan(
		&a.PlaylistID,
		&a.UserID,
		&a.Name,
		&a.AnalysisData,
		&a.TrackCount,
		&a.TotalDurationMS,
		&a.LastUpdated,
		&a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying analysis: %w", err)
	}
	return &a, nil
}

// ListByUser returns all stored analyses for a user, most recently
// updated first.
func (r *AnalysisRepository) ListByUser(ctx context.Context, userID string) ([]PlaylistAnalysis, error) {
	query := `
		SELECT playlist_id, user_id, name, analysis_data, track_count, total_duration_ms, last_updated, created_at
		FROM playlist_analyses
		WHERE user_id = $1
		ORDER BY last_updated DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	var analyses []PlaylistAnalysis
	for rows.Next() {
		var a PlaylistAnalysis
		if err := rows.Scan(
			&a.PlaylistID,
			&a.UserID,
			&a.Name,
			&a.AnalysisData,
			&a.TrackCount,
			&a.TotalDurationMS,
			&a.LastUpdated,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning analysis: %w", err)
		}
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}
