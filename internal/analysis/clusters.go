package analysis

import (
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/soundlens/spotify-pulse/internal/spotify"
)

// DefaultMoodClusterCount is the number of listening-mood groups shown
// on the personalized dashboard.
const DefaultMoodClusterCount = 3

// clusterDimensions are the feature dimensions used for mood grouping,
// in coordinate order.
var clusterDimensions = []string{"energy", "valence", "danceability", "acousticness"}

// MoodCluster is one group of similar-sounding tracks.
type MoodCluster struct {
	Name     string             `json:"name"`
	Size     int                `json:"size"`
	Centroid map[string]float64 `json:"centroid"`
}

type featureObservation struct {
	coords clusters.Coordinates
}

func (o featureObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o featureObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// MoodClusters groups feature vectors into k listening moods using
// k-means over energy, valence, danceability and acousticness. Nil
// vectors are skipped. When fewer vectors than clusters remain, or
// partitioning fails, it returns an empty slice; the dashboard section
// simply stays empty.
func MoodClusters(features []*spotify.AudioFeatures, k int) []MoodCluster {
	if k <= 0 {
		k = DefaultMoodClusterCount
	}

	var obs clusters.Observations
	for _, f := range features {
		if f == nil {
			continue
		}
		obs = append(obs, featureObservation{coords: clusters.Coordinates{
			f.Energy, f.Valence, f.Danceability, f.Acousticness,
		}})
	}
	if len(obs) < k {
		return []MoodCluster{}
	}

	km := kmeans.New()
	partition, err := km.Partition(obs, k)
	if err != nil {
		return []MoodCluster{}
	}

	result := make([]MoodCluster, 0, len(partition))
	for _, cluster := range partition {
		centroid := make(map[string]float64, len(clusterDimensions))
		for i, dim := range clusterDimensions {
			centroid[dim] = cluster.Center[i]
		}
		result = append(result, MoodCluster{
			Name:     moodName(centroid),
			Size:     len(cluster.Observations),
			Centroid: centroid,
		})
	}

	// Largest groups first, name as tiebreak for stable output.
	slices.SortFunc(result, func(a, b MoodCluster) int {
		if a.Size != b.Size {
			return b.Size - a.Size
		}
		return compareStrings(a.Name, b.Name)
	})
	return result
}

// moodName labels a centroid using an energy/valence quadrant with an
// acoustic modifier.
func moodName(centroid map[string]float64) string {
	highEnergy := centroid["energy"] > 0.6
	highValence := centroid["valence"] > 0.5

	var name string
	switch {
	case highEnergy && highValence:
		name = "Upbeat Party"
	case highEnergy && !highValence:
		name = "Intense & Dark"
	case !highEnergy && highValence:
		name = "Chill & Happy"
	default:
		name = "Reflective & Melancholy"
	}

	if centroid["acousticness"] > 0.6 {
		return name + " (Acoustic)"
	}
	return name
}
