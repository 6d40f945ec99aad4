package analysis

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/soundlens/spotify-pulse/internal/spotify"
)

// pitchClasses maps the upstream key field to note names.
var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Popularity bucket thresholds.
const (
	popularityHigh = 70
	popularityLow  = 30
)

// Tempo range thresholds in BPM.
const (
	tempoMediumFloor = 90
	tempoFastFloor   = 120
)

// joined is a track paired with its feature vector.
type joined struct {
	track    spotify.Track
	features *spotify.AudioFeatures
}

// AnalyzePlaylist computes the full analysis for one playlist.
//
// Tracks and features are joined positionally: features[i] belongs to
// tracks[i] and may be nil (the upstream had no analysis, or its chunk
// failed). Tracks without a vector still count toward TrackCount and
// TotalDurationMS but are excluded from feature-dependent sections.
// genres maps artist id to the genre info resolved for this run; an
// artist missing from the map contributes no genre tags.
func AnalyzePlaylist(playlistID, name string, tracks []spotify.Track, features []*spotify.AudioFeatures, genres map[string]ArtistGenreInfo) *Result {
	result := &Result{
		PlaylistID: playlistID,
		Name:       name,
		TrackCount: len(tracks),
		Analysis:   emptyBreakdown(),
	}
	for _, t := range tracks {
		result.TotalDurationMS += t.DurationMS
	}

	var withFeatures []joined
	for i, t := range tracks {
		if i < len(features) && features[i] != nil {
			withFeatures = append(withFeatures, joined{track: t, features: features[i]})
		}
	}
	if len(withFeatures) == 0 {
		return result
	}

	result.Analysis = Breakdown{
		GenreDistribution: analyzeGenres(withFeatures, genres),
		AudioFeatures:     analyzeAudioFeatures(withFeatures),
		Artists:           analyzeArtists(withFeatures, genres),
		Popularity:        analyzePopularity(withFeatures),
		Decades:           analyzeDecades(withFeatures),
		KeyDistribution:   analyzeKeys(withFeatures),
		TempoDistribution: analyzeTempo(withFeatures),
	}
	return result
}

// emptyBreakdown is the zero-shape result: every section present with
// empty or zero contents.
func emptyBreakdown() Breakdown {
	return Breakdown{
		GenreDistribution: []GenreStat{},
		AudioFeatures:     map[string]float64{},
		Artists:           ArtistBreakdown{Distribution: []ArtistStat{}},
		Popularity:        PopularityStats{Distribution: map[string]int{"high": 0, "medium": 0, "low": 0}},
		Decades:           map[string]int{},
		KeyDistribution:   map[string]int{},
		TempoDistribution: map[string]int{},
	}
}

func analyzeGenres(tracks []joined, genres map[string]ArtistGenreInfo) []GenreStat {
	counts := make(map[string]int)
	for _, j := range tracks {
		for _, artist := range j.track.Artists {
			info, ok := genres[artist.ID]
			if !ok {
				continue
			}
			for _, g := range info.Genres {
				counts[g]++
			}
		}
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	stats := make([]GenreStat, 0, len(counts))
	for genre, count := range counts {
		stats = append(stats, GenreStat{
			Genre:      genre,
			Count:      count,
			Percentage: float64(count) / float64(total) * 100,
		})
	}
	sortGenreStats(stats)
	return stats
}

func sortGenreStats(stats []GenreStat) {
	slices.SortFunc(stats, func(a, b GenreStat) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return compareStrings(a.Genre, b.Genre)
	})
}

// analyzeAudioFeatures returns the mean of each continuous feature
// dimension over the joined tracks. Key, mode and time signature feed
// their own histograms and are not averaged.
func analyzeAudioFeatures(tracks []joined) map[string]float64 {
	sums := map[string]float64{}
	for _, j := range tracks {
		f := j.features
		sums["danceability"] += f.Danceability
		sums["energy"] += f.Energy
		sums["loudness"] += f.Loudness
		sums["speechiness"] += f.Speechiness
		sums["acousticness"] += f.Acousticness
		sums["instrumentalness"] += f.Instrumentalness
		sums["liveness"] += f.Liveness
		sums["valence"] += f.Valence
		sums["tempo"] += f.Tempo
	}

	n := float64(len(tracks))
	means := make(map[string]float64, len(sums))
	for k, v := range sums {
		means[k] = v / n
	}
	return means
}

func analyzeArtists(tracks []joined, genres map[string]ArtistGenreInfo) ArtistBreakdown {
	counts := make(map[string]int)
	names := make(map[string]string)
	for _, j := range tracks {
		for _, artist := range j.track.Artists {
			counts[artist.ID]++
			names[artist.ID] = artist.Name
		}
	}

	total := float64(len(tracks))
	stats := make([]ArtistStat, 0, len(counts))
	for id, count := range counts {
		stat := ArtistStat{
			ID:         id,
			Name:       names[id],
			TrackCount: count,
			Percentage: float64(count) / total * 100,
			Genres:     []string{},
		}
		if info, ok := genres[id]; ok {
			stat.Popularity = info.Popularity
			stat.Genres = info.Genres
		}
		stats = append(stats, stat)
	}

	slices.SortFunc(stats, func(a, b ArtistStat) int {
		if a.TrackCount != b.TrackCount {
			return b.TrackCount - a.TrackCount
		}
		if a.Popularity != b.Popularity {
			return b.Popularity - a.Popularity
		}
		return compareStrings(a.ID, b.ID)
	})

	return ArtistBreakdown{UniqueCount: len(stats), Distribution: stats}
}

func analyzePopularity(tracks []joined) PopularityStats {
	dist := map[string]int{"high": 0, "medium": 0, "low": 0}
	sum := 0
	for _, j := range tracks {
		p := j.track.Popularity
		sum += p
		switch {
		case p >= popularityHigh:
			dist["high"]++
		case p >= popularityLow:
			dist["medium"]++
		default:
			dist["low"]++
		}
	}

	return PopularityStats{
		Average:      float64(sum) / float64(len(tracks)),
		Distribution: dist,
	}
}

func analyzeDecades(tracks []joined) map[string]int {
	decades := map[string]int{}
	for _, j := range tracks {
		date := j.track.Album.ReleaseDate
		if len(date) < 4 {
			continue
		}
		year, err := strconv.Atoi(date[:4])
		if err != nil {
			continue
		}
		decade := fmt.Sprintf("%ds", year/10*10)
		decades[decade]++
	}
	return decades
}

// analyzeKeys builds the musical-key histogram. Only tracks whose
// vector carries a valid pitch class and mode participate; the upstream
// reports -1 when it could not detect a key.
func analyzeKeys(tracks []joined) map[string]int {
	keys := map[string]int{}
	for _, j := range tracks {
		k, m := j.features.Key, j.features.Mode
		if k < 0 || k > 11 || (m != 0 && m != 1) {
			continue
		}
		quality := "minor"
		if m == 1 {
			quality = "major"
		}
		keys[pitchClasses[k]+" "+quality]++
	}
	return keys
}

func analyzeTempo(tracks []joined) map[string]int {
	dist := map[string]int{}
	for _, j := range tracks {
		tempo := j.features.Tempo
		switch {
		case tempo >= tempoFastFloor:
			dist["fast"]++
		case tempo >= tempoMediumFloor:
			dist["medium"]++
		default:
			dist["slow"]++
		}
	}
	return dist
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
