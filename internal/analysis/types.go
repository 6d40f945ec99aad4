// Package analysis computes aggregate statistics over in-memory track
// collections. Every function here is pure: no network, no storage.
// Degenerate input never produces an error — it produces a fully
// populated, zero-valued result so consumers can rely on the shape.
package analysis

// GenreStat is one entry of a genre distribution, ordered by count
// descending.
type GenreStat struct {
	Genre      string  `json:"genre"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ArtistStat is one entry of an artist distribution. Percentage is the
// artist's share of the feature-joined track count, not of the unique
// artist count.
type ArtistStat struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	TrackCount int      `json:"track_count"`
	Percentage float64  `json:"percentage"`
	Popularity int      `json:"popularity"`
	Genres     []string `json:"genres"`
}

// ArtistBreakdown groups the artist distribution with its unique count.
type ArtistBreakdown struct {
	UniqueCount  int          `json:"unique_count"`
	Distribution []ArtistStat `json:"distribution"`
}

// PopularityStats holds the popularity average and bucket counts
// (low < 30, medium 30-69, high >= 70).
type PopularityStats struct {
	Average      float64        `json:"average"`
	Distribution map[string]int `json:"distribution"`
}

// Breakdown is the per-playlist analysis payload. All sections are
// always present.
type Breakdown struct {
	GenreDistribution []GenreStat        `json:"genre_distribution"`
	AudioFeatures     map[string]float64 `json:"audio_features"`
	Artists           ArtistBreakdown    `json:"artists"`
	Popularity        PopularityStats    `json:"popularity"`
	Decades           map[string]int     `json:"decades"`
	KeyDistribution   map[string]int     `json:"key_distribution"`
	TempoDistribution map[string]int     `json:"tempo_distribution"`
}

// Result is the full analysis of one playlist. TrackCount counts every
// track in the playlist, including those without a feature vector;
// feature-dependent sections are computed only from joined tracks.
type Result struct {
	PlaylistID      string    `json:"playlist_id"`
	Name            string    `json:"name"`
	TrackCount      int       `json:"track_count"`
	TotalDurationMS int64     `json:"total_duration_ms"`
	Analysis        Breakdown `json:"analysis"`
}

// ArtistGenreInfo is the per-artist record resolved once per analysis
// run. Genres carries at most the artist's top three tags.
type ArtistGenreInfo struct {
	Name       string   `json:"name"`
	Popularity int      `json:"popularity"`
	Genres     []string `json:"genres"`
}

// GenreCount is one entry of an aggregated genre ranking.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// AggregateArtist is one entry of an aggregated artist ranking.
type AggregateArtist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Count      int      `json:"count"`
	Popularity int      `json:"popularity"`
	Genres     []string `json:"genres"`
}

// Aggregate is a rollup across several playlist analyses.
type Aggregate struct {
	GenreCounts       []GenreCount       `json:"genre_counts"`
	AudioFeatures     map[string]float64 `json:"audio_features"`
	Artists           []AggregateArtist  `json:"artists"`
	TempoDistribution map[string]int     `json:"tempo_distribution"`
	KeyDistribution   map[string]int     `json:"key_distribution"`
}
