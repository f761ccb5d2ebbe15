package index

import (
	"fmt"
	"math/rand/v2"

	caseselection "github.com/Mineru98/case-selection-go"
	"github.com/Mineru98/case-selection-go/utils"
)

// KMeans partitions the stored vectors into k clusters and returns one label
// per vector. Seeding uses k-means++ driven by seed, so the same seed over the
// same vectors always yields the same labels. Every label in [0, k) is used.
func (v *Vectors) KMeans(k int, seed uint64, maxIterations int) ([]int, error) {
	n := len(v.items)
	if k < 1 || k > n {
		return nil, fmt.Errorf("%w: cluster number %d must be in [1, %d]", caseselection.ErrInvalidConfig, k, n)
	}
	if maxIterations < 1 {
		maxIterations = 1
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	centroids := v.seedCentroids(k, rng)

	labels := make([]int, n)
	prev := make([]int, n)
	for i := range prev {
		prev[i] = -1
	}

	for iter := 0; iter < maxIterations; iter++ {
		v.assign(centroids, labels)
		v.fillEmpty(centroids, labels)
		centroids = v.centroids(k, labels)

		if equalLabels(labels, prev) {
			break
		}
		copy(prev, labels)
	}

	return labels, nil
}

// seedCentroids picks k distinct points with the k-means++ rule
func (v *Vectors) seedCentroids(k int, rng *rand.Rand) [][]float64 {
	n := len(v.items)
	chosen := make([]bool, n)
	centroids := make([][]float64, 0, k)

	first := rng.IntN(n)
	chosen[first] = true
	centroids = append(centroids, toFloat64(v.items[first]))

	dist := make([]float64, n)
	for i, item := range v.items {
		dist[i] = utils.SquaredDistance(item, centroids[0])
	}

	for len(centroids) < k {
		var total float64
		for i := range dist {
			if !chosen[i] {
				total += dist[i]
			}
		}

		next := -1
		if total > 0 {
			target := rng.Float64() * total
			var cum float64
			for i := range dist {
				if chosen[i] || dist[i] == 0 {
					continue
				}
				cum += dist[i]
				next = i
				if cum >= target {
					break
				}
			}
		} else {
			// only duplicates of existing centroids remain
			free := make([]int, 0, n)
			for i := range chosen {
				if !chosen[i] {
					free = append(free, i)
				}
			}
			next = free[rng.IntN(len(free))]
		}

		chosen[next] = true
		c := toFloat64(v.items[next])
		centroids = append(centroids, c)
		for i, item := range v.items {
			if d := utils.SquaredDistance(item, c); d < dist[i] {
				dist[i] = d
			}
		}
	}

	return centroids
}

// assign labels every vector with its nearest centroid (lowest index on ties)
func (v *Vectors) assign(centroids [][]float64, labels []int) {
	for i, item := range v.items {
		best := 0
		bestDist := utils.SquaredDistance(item, centroids[0])
		for c := 1; c < len(centroids); c++ {
			if d := utils.SquaredDistance(item, centroids[c]); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
	}
}

// fillEmpty moves, for each empty cluster, the point farthest from its own
// centroid out of a cluster that has more than one member
func (v *Vectors) fillEmpty(centroids [][]float64, labels []int) {
	counts := make([]int, len(centroids))
	for _, l := range labels {
		counts[l]++
	}

	for c := range counts {
		if counts[c] > 0 {
			continue
		}
		far, farDist := -1, -1.0
		for i, item := range v.items {
			if counts[labels[i]] < 2 {
				continue
			}
			if d := utils.SquaredDistance(item, centroids[labels[i]]); d > farDist {
				far, farDist = i, d
			}
		}
		counts[labels[far]]--
		labels[far] = c
		counts[c]++
		centroids[c] = toFloat64(v.items[far])
	}
}

// centroids recomputes cluster means
func (v *Vectors) centroids(k int, labels []int) [][]float64 {
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := range sums {
		sums[c] = make([]float64, v.dim)
	}
	for i, item := range v.items {
		c := labels[i]
		counts[c]++
		for j, x := range item {
			sums[c][j] += float64(x)
		}
	}
	for c := range sums {
		if counts[c] == 0 {
			continue
		}
		for j := range sums[c] {
			sums[c][j] /= float64(counts[c])
		}
	}
	return sums
}

// Groups collects member indices per cluster label. Groups come in order of
// their lowest member index; members are ascending.
func Groups(labels []int) [][]int {
	byLabel := make(map[int][]int)
	order := make([]int, 0)
	for i, l := range labels {
		if _, ok := byLabel[l]; !ok {
			order = append(order, l)
		}
		byLabel[l] = append(byLabel[l], i)
	}

	groups := make([][]int, len(order))
	for i, l := range order {
		groups[i] = byLabel[l]
	}
	return groups
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func equalLabels(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
