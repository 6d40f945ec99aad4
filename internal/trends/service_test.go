package trends

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/soundlens/spotify-pulse/internal/store"
)

type fakeSnapshotStore struct {
	active    *store.TrendSnapshot
	activeErr error

	activated []*store.TrendSnapshot
}

func (f *fakeSnapshotStore) Active(_ context.Context, trendType string) (*store.TrendSnapshot, error) {
	if f.activeErr != nil {
		return nil, f.activeErr
	}
	if f.active == nil || f.active.TrendType != trendType {
		return nil, store.ErrNotFound
	}
	return f.active, nil
}

func (f *fakeSnapshotStore) Activate(_ context.Context, s *store.TrendSnapshot) error {
	f.activated = append(f.activated, s)
	return nil
}

func TestCurrentServesCachedSnapshot(t *testing.T) {
	cached := json.RawMessage(`{"genre_distribution":{"Pop":100}}`)
	snapshots := &fakeSnapshotStore{active: &store.TrendSnapshot{
		TrendType:  TrendTypeGeneral,
		TrendData:  cached,
		ValidUntil: time.Now().Add(time.Hour),
		IsActive:   true,
	}}
	catalog := healthyCatalog()
	svc := NewService(snapshots, NewSynthesizer(catalog, nil), nil)

	data, err := svc.Current(context.Background())
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if string(data) != string(cached) {
		t.Errorf("data = %s, want cached snapshot", data)
	}

	// The fast path makes zero upstream calls.
	if catalog.recsCalls != 0 || catalog.artistCalls != 0 {
		t.Errorf("upstream calls on cache hit: recs=%d artists=%d", catalog.recsCalls, catalog.artistCalls)
	}
	if len(snapshots.activated) != 0 {
		t.Errorf("Activate called %d times on cache hit", len(snapshots.activated))
	}
}

func TestCurrentSynthesizesAndPersistsOnMiss(t *testing.T) {
	snapshots := &fakeSnapshotStore{}
	catalog := healthyCatalog()
	svc := NewService(snapshots, NewSynthesizer(catalog, nil), nil)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	data, err := svc.Current(context.Background())
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("returned payload is not valid JSON: %v", err)
	}
	if !payload.Complete() {
		t.Errorf("payload incomplete, missing %v", payload.MissingSections())
	}

	if len(snapshots.activated) != 1 {
		t.Fatalf("Activate called %d times, want 1", len(snapshots.activated))
	}
	stored := snapshots.activated[0]
	if stored.TrendType != TrendTypeGeneral {
		t.Errorf("trend type = %q, want %q", stored.TrendType, TrendTypeGeneral)
	}
	if want := now.Add(24 * time.Hour); !stored.ValidUntil.Equal(want) {
		t.Errorf("valid_until = %v, want %v", stored.ValidUntil, want)
	}
	if string(stored.TrendData) != string(data) {
		t.Error("persisted payload differs from the one returned to the caller")
	}
}

func TestCurrentTreatsLookupErrorAsMiss(t *testing.T) {
	snapshots := &fakeSnapshotStore{activeErr: context.DeadlineExceeded}
	catalog := healthyCatalog()
	svc := NewService(snapshots, NewSynthesizer(catalog, nil), nil)

	data, err := svc.Current(context.Background())
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if len(data) == 0 {
		t.Error("empty payload on lookup failure")
	}
	if catalog.recsCalls == 0 {
		t.Error("synthesis did not run after lookup failure")
	}
}
