// Package store provides PostgreSQL persistence for playlist analyses,
// trend snapshots, users and sessions.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Common errors.
var (
	ErrNotFound = errors.New("not found")
)

// Querier is the subset of pgxpool.Pool the repositories use. It is an
// interface so repository tests can substitute a mock pool.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a connection pool and verifies connectivity.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Users returns a UserRepository.
func (s *Store) Users() *UserRepository {
	return NewUserRepository(s.pool)
}

// Sessions returns a SessionRepository.
func (s *Store) Sessions() *SessionRepository {
	return NewSessionRepository(s.pool)
}

// Analyses returns an AnalysisRepository.
func (s *Store) Analyses() *AnalysisRepository {
	return NewAnalysisRepository(s.pool)
}

// Trends returns a TrendRepository.
func (s *Store) Trends() *TrendRepository {
	return NewTrendRepository(s.pool)
}
