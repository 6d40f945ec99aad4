package analysis

import (
	"testing"

	"github.com/soundlens/spotify-pulse/internal/spotify"
)

func TestMoodName(t *testing.T) {
	tests := []struct {
		name     string
		centroid map[string]float64
		want     string
	}{
		{
			name:     "high energy high valence",
			centroid: map[string]float64{"energy": 0.8, "valence": 0.7, "acousticness": 0.2},
			want:     "Upbeat Party",
		},
		{
			name:     "high energy low valence",
			centroid: map[string]float64{"energy": 0.8, "valence": 0.3, "acousticness": 0.2},
			want:     "Intense & Dark",
		},
		{
			name:     "low energy high valence",
			centroid: map[string]float64{"energy": 0.4, "valence": 0.7, "acousticness": 0.3},
			want:     "Chill & Happy",
		},
		{
			name:     "low energy low valence",
			centroid: map[string]float64{"energy": 0.3, "valence": 0.3, "acousticness": 0.4},
			want:     "Reflective & Melancholy",
		},
		{
			name:     "high acousticness adds modifier",
			centroid: map[string]float64{"energy": 0.4, "valence": 0.7, "acousticness": 0.8},
			want:     "Chill & Happy (Acoustic)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := moodName(tt.centroid); got != tt.want {
				t.Errorf("moodName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMoodClustersTooFewVectors(t *testing.T) {
	features := []*spotify.AudioFeatures{
		{Energy: 0.5, Valence: 0.5},
		nil,
	}

	got := MoodClusters(features, 3)
	if got == nil || len(got) != 0 {
		t.Errorf("MoodClusters() = %v, want empty non-nil", got)
	}
}

func TestMoodClustersSkipsNilVectors(t *testing.T) {
	// Two well-separated groups of identical points plus nils.
	var features []*spotify.AudioFeatures
	for i := 0; i < 4; i++ {
		features = append(features, &spotify.AudioFeatures{Energy: 0.9, Valence: 0.9, Danceability: 0.9, Acousticness: 0.1})
		features = append(features, &spotify.AudioFeatures{Energy: 0.1, Valence: 0.1, Danceability: 0.1, Acousticness: 0.9})
		features = append(features, nil)
	}

	got := MoodClusters(features, 2)
	if len(got) != 2 {
		t.Fatalf("len(MoodClusters()) = %d, want 2", len(got))
	}

	total := 0
	for _, c := range got {
		total += c.Size
		if c.Name == "" {
			t.Error("cluster has empty name")
		}
		if len(c.Centroid) != len(clusterDimensions) {
			t.Errorf("centroid has %d dimensions, want %d", len(c.Centroid), len(clusterDimensions))
		}
	}
	if total != 8 {
		t.Errorf("cluster sizes sum to %d, want 8 (nils skipped)", total)
	}

	// Largest first.
	for i := 1; i < len(got); i++ {
		if got[i].Size > got[i-1].Size {
			t.Errorf("clusters not ordered by size: %v", got)
		}
	}
}
