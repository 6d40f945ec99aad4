package analytics

import (
	"context"

	"go.uber.org/zap"

	"github.com/soundlens/spotify-pulse/internal/analysis"
)

// Dashboard sample sizes.
const (
	overviewPlaylistLimit = 5
	overviewRecentLimit   = 20
	overviewArtistLimit   = 8
)

// PlaylistSummary is one playlist tile on the dashboard.
type PlaylistSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TrackCount int    `json:"track_count"`
	Image      string `json:"image,omitempty"`
}

// RecentTrack is one entry of the recently-played feed.
type RecentTrack struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	PlayedAt string `json:"played_at"`
}

// ArtistSummary is one entry of the top-artists section.
type ArtistSummary struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
	Image      string   `json:"image,omitempty"`
}

// Overview is the personalized dashboard payload. Its shape is fixed:
// every section is present even when every upstream call failed, so
// the dashboard always renders. Error carries the last section failure
// for display; it never blocks the payload.
type Overview struct {
	Playlists         []PlaylistSummary      `json:"playlists"`
	RecentlyPlayed    []RecentTrack          `json:"recently_played"`
	TopArtists        []ArtistSummary        `json:"top_artists"`
	TopGenre          string                 `json:"top_genre"`
	GenreDistribution map[string]int         `json:"genre_distribution"`
	AudioFeatures     map[string]float64     `json:"audio_features"`
	ListeningMoods    []analysis.MoodCluster `json:"listening_moods"`
	Error             string                 `json:"error,omitempty"`
}

// EmptyOverview is the zero-valued dashboard payload, served when no
// section could be computed at all.
func EmptyOverview() *Overview {
	return &Overview{
		Playlists:         []PlaylistSummary{},
		RecentlyPlayed:    []RecentTrack{},
		TopArtists:        []ArtistSummary{},
		GenreDistribution: map[string]int{},
		AudioFeatures:     map[string]float64{},
		ListeningMoods:    []analysis.MoodCluster{},
	}
}

// PersonalizedOverview builds the dashboard payload for one user. Each
// section is fetched independently; a failed section stays empty while
// the rest still populate.
func (s *Service) PersonalizedOverview(ctx context.Context, client LibraryClient) *Overview {
	overview := EmptyOverview()

	if page, err := client.CurrentUserPlaylists(ctx, overviewPlaylistLimit, 0); err != nil {
		s.logger.Warn("overview playlists failed", zap.Error(err))
		overview.Error = "some sections are temporarily unavailable"
	} else {
		for _, p := range page.Items {
			summary := PlaylistSummary{ID: p.ID, Name: p.Name, TrackCount: p.Tracks.Total}
			if len(p.Images) > 0 {
				summary.Image = p.Images[0].URL
			}
			overview.Playlists = append(overview.Playlists, summary)
		}
	}

	recentIDs := s.fillRecentlyPlayed(ctx, client, overview)
	s.fillTopArtists(ctx, client, overview)
	s.fillListeningSound(ctx, client, overview, recentIDs)

	return overview
}

// fillRecentlyPlayed populates the recent feed and returns the track
// ids it saw, which seed the audio-feature and mood sections.
func (s *Service) fillRecentlyPlayed(ctx context.Context, client LibraryClient, overview *Overview) []string {
	recent, err := client.GetRecentlyPlayed(ctx, overviewRecentLimit)
	if err != nil {
		s.logger.Warn("overview recently played failed", zap.Error(err))
		overview.Error = "some sections are temporarily unavailable"
		return nil
	}

	var ids []string
	for _, item := range recent.Items {
		if item.Track == nil {
			continue
		}
		entry := RecentTrack{ID: item.Track.ID, Name: item.Track.Name, PlayedAt: item.PlayedAt}
		if len(item.Track.Artists) > 0 {
			entry.Artist = item.Track.Artists[0].Name
		}
		overview.RecentlyPlayed = append(overview.RecentlyPlayed, entry)
		if item.Track.ID != "" {
			ids = append(ids, item.Track.ID)
		}
	}
	return ids
}

// fillTopArtists populates the top-artists section and derives the
// genre distribution and top genre from the artists' tags.
func (s *Service) fillTopArtists(ctx context.Context, client LibraryClient, overview *Overview) {
	top, err := client.GetTopArtists(ctx, overviewArtistLimit, "")
	if err != nil {
		s.logger.Warn("overview top artists failed", zap.Error(err))
		overview.Error = "some sections are temporarily unavailable"
		return
	}

	genreCounts := map[string]int{}
	for _, artist := range top.Items {
		summary := ArtistSummary{
			ID:         artist.ID,
			Name:       artist.Name,
			Genres:     artist.Genres,
			Popularity: artist.Popularity,
		}
		if len(artist.Images) > 0 {
			summary.Image = artist.Images[0].URL
		}
		overview.TopArtists = append(overview.TopArtists, summary)

		for _, genre := range artist.Genres {
			genreCounts[genre]++
		}
	}
	overview.GenreDistribution = genreCounts

	best := 0
	for genre, count := range genreCounts {
		if count > best || (count == best && (overview.TopGenre == "" || genre < overview.TopGenre)) {
			best = count
			overview.TopGenre = genre
		}
	}
}

// fillListeningSound populates the audio-feature averages and mood
// clusters from the recently-played sample.
func (s *Service) fillListeningSound(ctx context.Context, client LibraryClient, overview *Overview, trackIDs []string) {
	if len(trackIDs) == 0 {
		return
	}

	features, err := client.AudioFeaturesBatch(ctx, trackIDs)
	if err != nil {
		s.logger.Warn("overview audio features failed", zap.Error(err))
		overview.Error = "some sections are temporarily unavailable"
		return
	}

	sums := map[string]float64{}
	count := 0
	for _, f := range features {
		if f == nil {
			continue
		}
		count++
		sums["danceability"] += f.Danceability
		sums["energy"] += f.Energy
		sums["valence"] += f.Valence
		sums["acousticness"] += f.Acousticness
		sums["instrumentalness"] += f.Instrumentalness
		sums["tempo"] += f.Tempo
	}
	if count > 0 {
		averages := make(map[string]float64, len(sums))
		for dim, sum := range sums {
			averages[dim] = sum / float64(count)
		}
		overview.AudioFeatures = averages
	}

	overview.ListeningMoods = analysis.MoodClusters(features, analysis.DefaultMoodClusterCount)
}
