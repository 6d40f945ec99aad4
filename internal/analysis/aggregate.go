package analysis

import "slices"

// Aggregation caps.
const (
	maxAggregateGenres  = 20
	maxAggregateArtists = 20
)

// AggregateAcrossAnalyses rolls several playlist analyses into one
// summary. Genre counts merge and cap at the top 20 by count. Audio
// features are the simple mean of each analysis's per-playlist mean,
// deliberately not re-weighted by track count. Artists merge by id,
// summing counts and keeping the most recently seen popularity and
// genres, capped at the top 20 by (count, popularity) descending.
// Tempo and key histograms sum bucket-wise.
func AggregateAcrossAnalyses(analyses []Result) *Aggregate {
	agg := &Aggregate{
		GenreCounts:       []GenreCount{},
		AudioFeatures:     map[string]float64{},
		Artists:           []AggregateArtist{},
		TempoDistribution: map[string]int{},
		KeyDistribution:   map[string]int{},
	}
	if len(analyses) == 0 {
		return agg
	}

	genreCounts := make(map[string]int)
	featureSums := make(map[string]float64)
	featureSeen := make(map[string]int)
	artists := make(map[string]*AggregateArtist)

	for _, a := range analyses {
		for _, g := range a.Analysis.GenreDistribution {
			genreCounts[g.Genre] += g.Count
		}

		for dim, mean := range a.Analysis.AudioFeatures {
			featureSums[dim] += mean
			featureSeen[dim]++
		}

		for _, s := range a.Analysis.Artists.Distribution {
			entry, ok := artists[s.ID]
			if !ok {
				entry = &AggregateArtist{ID: s.ID}
				artists[s.ID] = entry
			}
			entry.Count += s.TrackCount
			entry.Name = s.Name
			entry.Popularity = s.Popularity
			entry.Genres = s.Genres
		}

		for bucket, n := range a.Analysis.TempoDistribution {
			agg.TempoDistribution[bucket] += n
		}
		for key, n := range a.Analysis.KeyDistribution {
			agg.KeyDistribution[key] += n
		}
	}

	for genre, count := range genreCounts {
		agg.GenreCounts = append(agg.GenreCounts, GenreCount{Genre: genre, Count: count})
	}
	slices.SortFunc(agg.GenreCounts, func(a, b GenreCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return compareStrings(a.Genre, b.Genre)
	})
	if len(agg.GenreCounts) > maxAggregateGenres {
		agg.GenreCounts = agg.GenreCounts[:maxAggregateGenres]
	}

	for dim, sum := range featureSums {
		agg.AudioFeatures[dim] = sum / float64(featureSeen[dim])
	}

	for _, entry := range artists {
		agg.Artists = append(agg.Artists, *entry)
	}
	slices.SortFunc(agg.Artists, func(a, b AggregateArtist) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		if a.Popularity != b.Popularity {
			return b.Popularity - a.Popularity
		}
		return compareStrings(a.ID, b.ID)
	})
	if len(agg.Artists) > maxAggregateArtists {
		agg.Artists = agg.Artists[:maxAggregateArtists]
	}

	return agg
}
