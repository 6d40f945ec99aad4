package trends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/soundlens/spotify-pulse/internal/store"
)

const (
	// TrendTypeGeneral is the only trend type synthesized today.
	TrendTypeGeneral = "general"

	// snapshotTTL bounds how long a persisted snapshot serves reads
	// before a fresh synthesis runs.
	snapshotTTL = 24 * time.Hour
)

// SnapshotStore is the persistence boundary the service talks to.
type SnapshotStore interface {
	Active(ctx context.Context, trendType string) (*store.TrendSnapshot, error)
	Activate(ctx context.Context, s *store.TrendSnapshot) error
}

// Service serves the public trend payload, preferring a valid cached
// snapshot and synthesizing a fresh one otherwise.
type Service struct {
	snapshots SnapshotStore
	synth     *Synthesizer
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(snapshots SnapshotStore, synth *Synthesizer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		snapshots: snapshots,
		synth:     synth,
		logger:    logger.Named("trends"),
		now:       time.Now,
	}
}

// Current returns the trend payload as JSON. An active, unexpired
// snapshot short-circuits synthesis entirely; otherwise a fresh payload
// is synthesized and, when complete, stored as the new active snapshot.
func (s *Service) Current(ctx context.Context) (json.RawMessage, error) {
	snapshot, err := s.snapshots.Active(ctx, TrendTypeGeneral)
	if err == nil {
		s.logger.Debug("serving cached trend snapshot",
			zap.Time("valid_until", snapshot.ValidUntil))
		return snapshot.TrendData, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		// Treat a read failure as a cache miss rather than an outage.
		s.logger.Warn("trend snapshot lookup failed", zap.Error(err))
	}

	payload := s.synth.Synthesize(ctx)
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding trend payload: %w", err)
	}

	if !payload.Complete() {
		s.logger.Warn("trend payload incomplete, skipping persistence",
			zap.String("missing", strings.Join(payload.MissingSections(), ",")))
		return data, nil
	}

	if err := s.persist(ctx, data); err != nil {
		// The caller still gets the fresh payload.
		s.logger.Error("persisting trend snapshot failed", zap.Error(err))
	}
	return data, nil
}

func (s *Service) persist(ctx context.Context, data json.RawMessage) error {
	snapshot := &store.TrendSnapshot{
		TrendType:  TrendTypeGeneral,
		TrendData:  data,
		ValidUntil: s.now().Add(snapshotTTL),
	}
	if err := s.snapshots.Activate(ctx, snapshot); err != nil {
		return err
	}
	s.logger.Info("stored new trend snapshot",
		zap.String("id", snapshot.ID.String()),
		zap.Time("valid_until", snapshot.ValidUntil))
	return nil
}
