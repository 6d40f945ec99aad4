// Package analytics orchestrates the playlist analysis pipeline: fetch
// a playlist from Spotify, join feature vectors and artist genres, run
// the statistics, and persist the result.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/soundlens/spotify-pulse/internal/analysis"
	"github.com/soundlens/spotify-pulse/internal/spotify"
	"github.com/soundlens/spotify-pulse/internal/store"
)

// LibraryClient is the slice of the Spotify client the analytics
// service consumes on behalf of one user.
type LibraryClient interface {
	ArtistFetcher
	CurrentUserPlaylists(ctx context.Context, limit, offset int) (*spotify.PlaylistPage, error)
	AllPlaylistTracks(ctx context.Context, playlistID string) (*spotify.Playlist, []spotify.Track, error)
	AudioFeaturesBatch(ctx context.Context, trackIDs []string) ([]*spotify.AudioFeatures, error)
	GetRecentlyPlayed(ctx context.Context, limit int) (*spotify.RecentlyPlayed, error)
	GetTopArtists(ctx context.Context, limit int, timeRange string) (*spotify.TopArtists, error)
}

// AnalysisStore is the persistence boundary for playlist analyses.
type AnalysisStore interface {
	Upsert(ctx context.Context, a *store.PlaylistAnalysis) error
	Get(ctx context.Context, playlistID, userID string) (*store.PlaylistAnalysis, error)
	ListByUser(ctx context.Context, userID string) ([]store.PlaylistAnalysis, error)
}

// UserStore is the persistence boundary for user bookkeeping.
type UserStore interface {
	TouchAnalyzed(ctx context.Context, id string, at time.Time) error
}

// Service runs analyses and reads back stored results.
type Service struct {
	analyses AnalysisStore
	users    UserStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(analyses AnalysisStore, users UserStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		analyses: analyses,
		users:    users,
		logger:   logger.Named("analytics"),
		now:      time.Now,
	}
}

// RefreshPlaylistAnalysis fetches a playlist's full track list, joins
// feature vectors and artist genres, computes the analysis and stores
// it, replacing any prior analysis of the same playlist for this user.
func (s *Service) RefreshPlaylistAnalysis(ctx context.Context, client LibraryClient, userID, playlistID string) (*analysis.Result, error) {
	playlist, tracks, err := client.AllPlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("fetching playlist tracks: %w", err)
	}

	trackIDs := make([]string, len(tracks))
	for i, track := range tracks {
		trackIDs[i] = track.ID
	}
	features, err := client.AudioFeaturesBatch(ctx, trackIDs)
	if err != nil {
		return nil, fmt.Errorf("fetching audio features: %w", err)
	}

	resolver := NewArtistGenreResolver(client, s.logger)
	genres := resolver.Resolve(ctx, tracks)

	result := analysis.AnalyzePlaylist(playlistID, playlist.Name, tracks, features, genres)

	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encoding analysis: %w", err)
	}
	record := &store.PlaylistAnalysis{
		PlaylistID:      playlistID,
		UserID:          userID,
		Name:            result.Name,
		AnalysisData:    data,
		TrackCount:      result.TrackCount,
		TotalDurationMS: result.TotalDurationMS,
	}
	if err := s.analyses.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("storing analysis: %w", err)
	}
	if err := s.users.TouchAnalyzed(ctx, userID, s.now()); err != nil {
		s.logger.Warn("recording analysis time failed",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	s.logger.Info("playlist analysis refreshed",
		zap.String("playlist_id", playlistID),
		zap.String("user_id", userID),
		zap.Int("track_count", result.TrackCount))
	return result, nil
}

// StoredAnalysis returns a previously stored analysis, or
// store.ErrNotFound when the playlist was never analyzed.
func (s *Service) StoredAnalysis(ctx context.Context, userID, playlistID string) (*analysis.Result, error) {
	record, err := s.analyses.Get(ctx, playlistID, userID)
	if err != nil {
		return nil, err
	}

	var result analysis.Result
	if err := json.Unmarshal(record.AnalysisData, &result); err != nil {
		return nil, fmt.Errorf("decoding stored analysis: %w", err)
	}
	return &result, nil
}

// AggregateForUser rolls every stored analysis for a user into one
// cross-playlist summary. A user with no stored analyses gets the
// empty aggregate shape, not an error.
func (s *Service) AggregateForUser(ctx context.Context, userID string) (*analysis.Aggregate, error) {
	records, err := s.analyses.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}

	results := make([]analysis.Result, 0, len(records))
	for _, record := range records {
		var result analysis.Result
		if err := json.Unmarshal(record.AnalysisData, &result); err != nil {
			s.logger.Warn("skipping undecodable stored analysis",
				zap.String("playlist_id", record.PlaylistID),
				zap.Error(err))
			continue
		}
		results = append(results, result)
	}
	return analysis.AggregateAcrossAnalyses(results), nil
}
