package match

import (
	"math"
	"math/rand"
)

// Constants for colour clustering
const (
	// DefaultKMeansSeed makes runs reproducible; RunParams records it.
	DefaultKMeansSeed = 1
)

// KMeansConfig holds parameters for the colour clusterer.
type KMeansConfig struct {
	Clusters             int        // number of clusters (2 for home/away)
	MaxIterations        int        // assign/update iteration cap
	ConvergenceThreshold float64    // centroid movement below this stops iteration
	ColorSpace           ColorSpace // distance metric
	MinSamples           int        // fewer samples than this short-circuits
	Seed                 int64      // RNG seed for k-means++ initialisation
}

// DefaultKMeansConfig returns defaults for two-team jersey clustering.
func DefaultKMeansConfig() KMeansConfig {
	return KMeansConfig{
		Clusters:             2,
		MaxIterations:        50,
		ConvergenceThreshold: 1e-3,
		ColorSpace:           ColorSpaceHSV,
		MinSamples:           4,
		Seed:                 DefaultKMeansSeed,
	}
}

// ColorSample is one jersey colour observation for a track.
type ColorSample struct {
	TrackID  string `json:"trackId"`
	Color    RGB    `json:"color"`
	Position Point  `json:"position"`
}

// ClusterResult groups samples around a centroid.
type ClusterResult struct {
	Centroid    RGB
	Samples     []ColorSample
	AvgDistance float64 // mean intra-cluster distance to the centroid
}

// KMeansCluster runs k-means with k-means++ seeding over colour samples.
// Returns nil when there are fewer samples than the configured minimum;
// clustering is unreliable with too few samples and callers must treat the
// nil result as "no answer" rather than an error.
func KMeansCluster(samples []ColorSample, config KMeansConfig) []ClusterResult {
	if len(samples) < config.MinSamples || len(samples) < config.Clusters {
		return nil
	}

	rng := rand.New(rand.NewSource(config.Seed))
	centroids := seedCentroids(samples, config, rng)
	assignments := make([]int, len(samples))

	for iter := 0; iter < config.MaxIterations; iter++ {
		// Assign each sample to the nearest centroid.
		for i, s := range samples {
			best := 0
			bestDist := math.Inf(1)
			for c, centroid := range centroids {
				d := ColorDistance(s.Color, centroid, config.ColorSpace)
				if d < bestDist {
					bestDist = d
					best = c
				}
			}
			assignments[i] = best
		}

		// Recompute centroids; an emptied cluster is reseeded to neutral
		// gray rather than left undefined.
		moved := 0.0
		for c := range centroids {
			var members []RGB
			for i, s := range samples {
				if assignments[i] == c {
					members = append(members, s.Color)
				}
			}
			next := NeutralGray
			if len(members) > 0 {
				next = AverageColor(members)
			}
			moved += ColorDistance(centroids[c], next, config.ColorSpace)
			centroids[c] = next
		}

		if moved < config.ConvergenceThreshold {
			break
		}
	}

	return buildClusterResults(samples, assignments, centroids, config)
}

// seedCentroids implements k-means++ initialisation: the first centroid is a
// uniform-random sample, subsequent centroids are chosen with probability
// proportional to squared distance from the nearest existing centroid.
func seedCentroids(samples []ColorSample, config KMeansConfig, rng *rand.Rand) []RGB {
	centroids := make([]RGB, 0, config.Clusters)
	centroids = append(centroids, samples[rng.Intn(len(samples))].Color)

	for len(centroids) < config.Clusters {
		weights := make([]float64, len(samples))
		var total float64
		for i, s := range samples {
			nearest := math.Inf(1)
			for _, c := range centroids {
				if d := ColorDistance(s.Color, c, config.ColorSpace); d < nearest {
					nearest = d
				}
			}
			weights[i] = nearest * nearest
			total += weights[i]
		}

		if total == 0 {
			// All samples coincide with existing centroids; any pick works.
			centroids = append(centroids, samples[rng.Intn(len(samples))].Color)
			continue
		}

		target := rng.Float64() * total
		var acc float64
		picked := len(samples) - 1
		for i, w := range weights {
			acc += w
			if acc >= target {
				picked = i
				break
			}
		}
		centroids = append(centroids, samples[picked].Color)
	}

	return centroids
}

func buildClusterResults(samples []ColorSample, assignments []int, centroids []RGB, config KMeansConfig) []ClusterResult {
	results := make([]ClusterResult, len(centroids))
	for c, centroid := range centroids {
		results[c].Centroid = centroid
	}

	for i, s := range samples {
		c := assignments[i]
		results[c].Samples = append(results[c].Samples, s)
		results[c].AvgDistance += ColorDistance(s.Color, centroids[c], config.ColorSpace)
	}

	for c := range results {
		if n := len(results[c].Samples); n > 0 {
			results[c].AvgDistance /= float64(n)
		}
	}
	return results
}
