// Package trends composes live Spotify discovery data into the public
// trend payload served to unauthenticated callers.
package trends

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/soundlens/spotify-pulse/internal/spotify"
)

// Seeds for the recommendation sample the audio-feature and tempo
// sections are computed from.
var trendSeedGenres = []string{"pop", "rock", "hip-hop", "dance"}

const (
	recommendationSampleSize = 50
	newReleaseScanSize       = 20
	maxTrendingArtists       = 4
	maxArtistGenres          = 3
)

// Catalog is the slice of the Spotify client the synthesizer consumes.
type Catalog interface {
	GetRecommendations(ctx context.Context, seedGenres, seedArtists, seedTracks []string, limit int) (*spotify.Recommendations, error)
	AudioFeaturesBatch(ctx context.Context, trackIDs []string) ([]*spotify.AudioFeatures, error)
	GetNewReleases(ctx context.Context, limit int) (*spotify.NewReleases, error)
	GetArtist(ctx context.Context, artistID string) (*spotify.Artist, error)
}

// TrendingArtist is one entry of the trending-artists section.
type TrendingArtist struct {
	Name       string   `json:"name"`
	Image      string   `json:"image"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
}

// MoodAnalysis is the derived mood section.
type MoodAnalysis struct {
	Metrics  map[string]float64 `json:"metrics"`
	Summary  string             `json:"summary"`
	Insights map[string]string  `json:"insights"`
}

// Payload is one public trend snapshot. A nil section means it could
// not be computed and no baseline applied; Complete reports whether the
// payload may be persisted.
type Payload struct {
	GenreDistribution map[string]int     `json:"genre_distribution,omitempty"`
	AudioFeatures     map[string]float64 `json:"audio_features,omitempty"`
	TempoDistribution map[string]int     `json:"tempo_distribution,omitempty"`
	TrendingArtists   []TrendingArtist   `json:"trending_artists,omitempty"`
	MoodAnalysis      *MoodAnalysis      `json:"mood_analysis,omitempty"`
}

// Complete reports whether all five sections are present.
func (p *Payload) Complete() bool {
	return p.GenreDistribution != nil &&
		p.AudioFeatures != nil &&
		p.TempoDistribution != nil &&
		p.TrendingArtists != nil &&
		p.MoodAnalysis != nil
}

// MissingSections names the absent sections, for logging.
func (p *Payload) MissingSections() []string {
	var missing []string
	if p.GenreDistribution == nil {
		missing = append(missing, "genre_distribution")
	}
	if p.AudioFeatures == nil {
		missing = append(missing, "audio_features")
	}
	if p.TempoDistribution == nil {
		missing = append(missing, "tempo_distribution")
	}
	if p.TrendingArtists == nil {
		missing = append(missing, "trending_artists")
	}
	if p.MoodAnalysis == nil {
		missing = append(missing, "mood_analysis")
	}
	return missing
}

// Synthesizer builds trend payloads section by section. Each section
// degrades to its baseline on failure without affecting the others.
type Synthesizer struct {
	catalog Catalog
	logger  *zap.Logger
}

// NewSynthesizer constructs a Synthesizer.
func NewSynthesizer(catalog Catalog, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{catalog: catalog, logger: logger.Named("trends")}
}

// Synthesize assembles a trend payload from live discovery calls,
// substituting the section baselines where those calls fail. It never
// returns an error; the worst outcome is a payload of baselines.
func (s *Synthesizer) Synthesize(ctx context.Context) *Payload {
	p := &Payload{}

	// Not computed live yet; a fixed illustrative split.
	p.GenreDistribution = staticGenreDistribution()

	s.sampleAudioFeatures(ctx, p)
	s.collectTrendingArtists(ctx, p)
	s.deriveMoodAnalysis(p)

	return p
}

// sampleAudioFeatures fills the audio_features and tempo_distribution
// sections from the feature vectors of a recommendation sample. Both
// sections fall back together because they share the sample.
func (s *Synthesizer) sampleAudioFeatures(ctx context.Context, p *Payload) {
	recs, err := s.catalog.GetRecommendations(ctx, trendSeedGenres, nil, nil, recommendationSampleSize)
	if err != nil {
		s.logger.Warn("recommendation sample failed, using baseline features", zap.Error(err))
		p.AudioFeatures = fallbackAudioFeatures()
		p.TempoDistribution = fallbackTempoDistribution()
		return
	}

	trackIDs := make([]string, 0, len(recs.Tracks))
	for _, track := range recs.Tracks {
		if track.ID != "" {
			trackIDs = append(trackIDs, track.ID)
		}
	}

	features, err := s.catalog.AudioFeaturesBatch(ctx, trackIDs)
	if err != nil {
		s.logger.Warn("feature fetch failed, using baseline features", zap.Error(err))
		p.AudioFeatures = fallbackAudioFeatures()
		p.TempoDistribution = fallbackTempoDistribution()
		return
	}

	featureKeys := []string{
		"danceability", "energy", "speechiness", "acousticness",
		"instrumentalness", "liveness", "valence",
	}
	sums := make(map[string]float64, len(featureKeys))
	tempoBins := make(map[string]int)
	count := 0
	for _, f := range features {
		if f == nil {
			continue
		}
		count++
		sums["danceability"] += f.Danceability
		sums["energy"] += f.Energy
		sums["speechiness"] += f.Speechiness
		sums["acousticness"] += f.Acousticness
		sums["instrumentalness"] += f.Instrumentalness
		sums["liveness"] += f.Liveness
		sums["valence"] += f.Valence
		tempoBins[tempoBucket(f.Tempo)]++
	}
	if count == 0 {
		s.logger.Warn("recommendation sample held no feature vectors, using baseline features")
		p.AudioFeatures = fallbackAudioFeatures()
		p.TempoDistribution = fallbackTempoDistribution()
		return
	}

	averages := make(map[string]float64, len(featureKeys))
	for _, key := range featureKeys {
		averages[key] = sums[key] / float64(count)
	}
	p.AudioFeatures = averages

	// Percentages are rounded independently and need not sum to 100.
	distribution := make(map[string]int, len(tempoBins))
	for bucket, n := range tempoBins {
		distribution[bucket] = int(math.Round(float64(n) / float64(count) * 100))
	}
	p.TempoDistribution = distribution
}

// tempoBucket maps a BPM value into one of six fixed 20-BPM buckets.
func tempoBucket(tempo float64) string {
	switch {
	case tempo < 80:
		return "60-80 BPM"
	case tempo < 100:
		return "80-100 BPM"
	case tempo < 120:
		return "100-120 BPM"
	case tempo < 140:
		return "120-140 BPM"
	case tempo < 160:
		return "140-160 BPM"
	default:
		return "160+ BPM"
	}
}

// collectTrendingArtists fills the trending_artists section by scanning
// new-release albums in order, resolving each distinct artist until 4
// are collected, then ordering them by popularity.
func (s *Synthesizer) collectTrendingArtists(ctx context.Context, p *Payload) {
	releases, err := s.catalog.GetNewReleases(ctx, newReleaseScanSize)
	if err != nil {
		s.logger.Warn("new releases failed, using baseline artists", zap.Error(err))
		p.TrendingArtists = fallbackTrendingArtists()
		return
	}

	collected := make([]TrendingArtist, 0, maxTrendingArtists)
	seen := make(map[string]struct{})

scan:
	for _, album := range releases.Albums.Items {
		for _, ref := range album.Artists {
			if ref.ID == "" {
				continue
			}
			if _, ok := seen[ref.ID]; ok {
				continue
			}

			artist, err := s.catalog.GetArtist(ctx, ref.ID)
			if err != nil {
				s.logger.Warn("artist lookup failed", zap.String("artist_id", ref.ID), zap.Error(err))
				continue
			}
			seen[ref.ID] = struct{}{}

			image := defaultArtistImage
			if len(artist.Images) > 0 {
				image = artist.Images[0].URL
			}
			genres := artist.Genres
			if len(genres) > maxArtistGenres {
				genres = genres[:maxArtistGenres]
			}
			collected = append(collected, TrendingArtist{
				Name:       artist.Name,
				Image:      image,
				Genres:     genres,
				Popularity: artist.Popularity,
			})
			if len(collected) >= maxTrendingArtists {
				break scan
			}
		}
	}

	if len(collected) == 0 {
		s.logger.Warn("no artists collected from new releases, using baseline artists")
		p.TrendingArtists = fallbackTrendingArtists()
		return
	}

	sort.SliceStable(collected, func(i, j int) bool {
		return collected[i].Popularity > collected[j].Popularity
	})
	p.TrendingArtists = collected
}

// moodOrder fixes iteration order so ties resolve deterministically.
var moodOrder = []string{"Happy", "Energetic", "Relaxed", "Melancholic", "Aggressive"}

// deriveMoodAnalysis computes the mood section from the audio_features
// section. It is derived, not fetched: if audio features fell back to
// the baseline the moods are computed from that baseline, and if the
// section is absent entirely the moods are absent too.
func (s *Synthesizer) deriveMoodAnalysis(p *Payload) {
	af := p.AudioFeatures
	if af == nil {
		s.logger.Warn("audio features absent, skipping mood analysis")
		return
	}

	metrics := map[string]float64{
		"Happy":       clamp01(af["valence"]*0.8 + af["energy"]*0.2),
		"Energetic":   clamp01(af["energy"]*0.8 + af["danceability"]*0.2),
		"Relaxed":     clamp01((1-af["energy"])*0.6 + af["acousticness"]*0.4),
		"Melancholic": clamp01((1-af["valence"])*0.7 + af["acousticness"]*0.3),
		"Aggressive":  clamp01(af["energy"]*0.6 + (1-af["valence"])*0.4),
	}

	topMood := moodOrder[0]
	for _, name := range moodOrder[1:] {
		if metrics[name] > metrics[topMood] {
			topMood = name
		}
	}
	prevalence := int(metrics[topMood] * 100)

	p.MoodAnalysis = &MoodAnalysis{
		Metrics: metrics,
		Summary: fmt.Sprintf("Current global trends show a preference for %s and engaging music.", strings.ToLower(topMood)),
		Insights: map[string]string{
			"Top mood":            fmt.Sprintf("%s with %d%% prevalence", topMood, prevalence),
			"Fastest growing":     "Upbeat tracks with high energy",
			"Regional difference": "More acoustic tracks popular in Europe",
			"Seasonal shift":      "Trending toward more danceable music this season",
		},
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
