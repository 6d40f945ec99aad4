package analysis

import (
	"fmt"
	"math"
	"testing"
)

func TestAggregateAcrossAnalysesEmpty(t *testing.T) {
	agg := AggregateAcrossAnalyses(nil)

	if agg.GenreCounts == nil || len(agg.GenreCounts) != 0 {
		t.Errorf("GenreCounts = %v, want empty non-nil", agg.GenreCounts)
	}
	if agg.AudioFeatures == nil || agg.Artists == nil {
		t.Error("aggregate sections must be non-nil")
	}
	if agg.TempoDistribution == nil || agg.KeyDistribution == nil {
		t.Error("histogram sections must be non-nil")
	}
}

func analysisWith(genres []GenreStat, features map[string]float64, artists []ArtistStat) Result {
	return Result{
		Analysis: Breakdown{
			GenreDistribution: genres,
			AudioFeatures:     features,
			Artists:           ArtistBreakdown{UniqueCount: len(artists), Distribution: artists},
			TempoDistribution: map[string]int{},
			KeyDistribution:   map[string]int{},
		},
	}
}

func TestAggregateMeanOfMeans(t *testing.T) {
	// Deliberately unweighted: a 1000-track playlist and a 10-track
	// playlist contribute equally.
	analyses := []Result{
		analysisWith(nil, map[string]float64{"energy": 0.2}, nil),
		analysisWith(nil, map[string]float64{"energy": 0.8}, nil),
	}

	agg := AggregateAcrossAnalyses(analyses)
	if math.Abs(agg.AudioFeatures["energy"]-0.5) > 1e-9 {
		t.Errorf("energy = %f, want 0.5", agg.AudioFeatures["energy"])
	}
}

func TestAggregateGenreCap(t *testing.T) {
	var genres []GenreStat
	for i := 0; i < 30; i++ {
		genres = append(genres, GenreStat{Genre: fmt.Sprintf("genre-%02d", i), Count: i + 1})
	}
	agg := AggregateAcrossAnalyses([]Result{analysisWith(genres, nil, nil)})

	if len(agg.GenreCounts) != 20 {
		t.Fatalf("len(GenreCounts) = %d, want 20", len(agg.GenreCounts))
	}
	// Ordered by count descending; the top entry is the largest count.
	if agg.GenreCounts[0].Genre != "genre-29" || agg.GenreCounts[0].Count != 30 {
		t.Errorf("top genre = %+v", agg.GenreCounts[0])
	}
	// The 10 smallest fall off the end.
	if last := agg.GenreCounts[19]; last.Count != 11 {
		t.Errorf("last kept genre count = %d, want 11", last.Count)
	}
}

func TestAggregateArtistsMergeAndOrder(t *testing.T) {
	first := analysisWith(nil, nil, []ArtistStat{
		{ID: "a1", Name: "Alpha", TrackCount: 3, Popularity: 40, Genres: []string{"rock"}},
		{ID: "a2", Name: "Beta", TrackCount: 2, Popularity: 90},
	})
	second := analysisWith(nil, nil, []ArtistStat{
		{ID: "a1", Name: "Alpha", TrackCount: 1, Popularity: 55, Genres: []string{"indie rock"}},
		{ID: "a3", Name: "Gamma", TrackCount: 2, Popularity: 10},
	})

	agg := AggregateAcrossAnalyses([]Result{first, second})

	if len(agg.Artists) != 3 {
		t.Fatalf("len(Artists) = %d, want 3", len(agg.Artists))
	}

	// a1's counts sum across analyses; the most recently seen
	// popularity and genres win.
	top := agg.Artists[0]
	if top.ID != "a1" || top.Count != 4 {
		t.Errorf("top artist = %+v, want a1 with count 4", top)
	}
	if top.Popularity != 55 || len(top.Genres) != 1 || top.Genres[0] != "indie rock" {
		t.Errorf("merged artist kept stale values: %+v", top)
	}

	// a2 and a3 tie on count; popularity breaks the tie.
	if agg.Artists[1].ID != "a2" || agg.Artists[2].ID != "a3" {
		t.Errorf("order = %s, %s; want a2, a3", agg.Artists[1].ID, agg.Artists[2].ID)
	}
}

func TestAggregateHistogramsSumBucketWise(t *testing.T) {
	first := Result{Analysis: Breakdown{
		TempoDistribution: map[string]int{"fast": 2, "slow": 1},
		KeyDistribution:   map[string]int{"C major": 1},
	}}
	second := Result{Analysis: Breakdown{
		TempoDistribution: map[string]int{"fast": 1, "medium": 4},
		KeyDistribution:   map[string]int{"C major": 2, "A minor": 1},
	}}

	agg := AggregateAcrossAnalyses([]Result{first, second})

	if agg.TempoDistribution["fast"] != 3 || agg.TempoDistribution["medium"] != 4 || agg.TempoDistribution["slow"] != 1 {
		t.Errorf("tempo = %v", agg.TempoDistribution)
	}
	if agg.KeyDistribution["C major"] != 3 || agg.KeyDistribution["A minor"] != 1 {
		t.Errorf("keys = %v", agg.KeyDistribution)
	}
}
