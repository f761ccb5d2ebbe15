package index

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	caseselection "github.com/Mineru98/case-selection-go"
	"github.com/Mineru98/case-selection-go/utils"
)

// blobs returns n points around each of the given 2-d centres
func blobs(centres [][2]float32, n int) [][]float32 {
	out := make([][]float32, 0, len(centres)*n)
	for _, c := range centres {
		for i := 0; i < n; i++ {
			jitter := float32(i) * 0.01
			out = append(out, []float32{c[0] + jitter, c[1] - jitter})
		}
	}
	return out
}

func TestNewVectorsNormalizes(t *testing.T) {
	v, err := NewVectors([][]float32{{3, 4}, {0, 2}, {0, 0}})
	require.NoError(t, err)

	assert.Equal(t, 3, v.Len())
	assert.Equal(t, 2, v.Dim())
	assert.InDelta(t, 1.0, utils.Norm32(v.At(0)), 1e-6)
	assert.InDelta(t, 1.0, utils.Norm32(v.At(1)), 1e-6)
	assert.Zero(t, utils.Norm32(v.At(2)))
}

func TestNewVectorsErrors(t *testing.T) {
	_, err := NewVectors(nil)
	assert.True(t, errors.Is(err, caseselection.ErrEmptyPool))

	_, err = NewVectors([][]float32{{1, 2}, {1}})
	assert.Error(t, err)
}

func TestNewVectorsCopiesInput(t *testing.T) {
	in := [][]float32{{1, 0}}
	v, err := NewVectors(in)
	require.NoError(t, err)

	in[0][0] = 42
	assert.Equal(t, float32(1), v.At(0)[0])
}

func TestSearchIdenticalVectorRanksFirst(t *testing.T) {
	vecs := [][]float32{{1, 0, 0}, {0.6, 0.8, 0}, {0, 0, 1}, {0.5, 0.5, 0.7}}
	v, err := NewVectors(vecs)
	require.NoError(t, err)

	hits, err := v.Search([]float32{0.6, 0.8, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 1, hits[0].Index)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
}

func TestSearchTiesAscendingIndex(t *testing.T) {
	v, err := NewVectors([][]float32{{0, 1}, {1, 0}, {0, 2}, {2, 0}})
	require.NoError(t, err)

	hits, err := v.Search([]float32{1, 0}, 4)
	require.NoError(t, err)
	got := []int{hits[0].Index, hits[1].Index, hits[2].Index, hits[3].Index}
	assert.Equal(t, []int{1, 3, 0, 2}, got)
}

func TestSearchCapsAndChecksDimension(t *testing.T) {
	v, err := NewVectors([][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)

	hits, err := v.Search([]float32{1, 1}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	_, err = v.Search([]float32{1, 1, 1}, 1)
	assert.Error(t, err)
}

func TestKMeansPartitions(t *testing.T) {
	vecs := blobs([][2]float32{{10, 0}, {0, 10}, {-10, 0}, {0, -10}, {7, 7}}, 2)
	v, err := NewVectors(vecs)
	require.NoError(t, err)

	labels, err := v.KMeans(5, 7, 300)
	require.NoError(t, err)
	require.Len(t, labels, 10)

	groups := Groups(labels)
	assert.Len(t, groups, 5)
	seen := make(map[int]bool)
	for _, g := range groups {
		for _, m := range g {
			assert.False(t, seen[m], "member %d assigned twice", m)
			seen[m] = true
		}
	}
	assert.Len(t, seen, 10)

	// points from the same blob end up together
	for i := 0; i < 10; i += 2 {
		assert.Equal(t, labels[i], labels[i+1])
	}
}

func TestKMeansDeterministic(t *testing.T) {
	vecs := blobs([][2]float32{{1, 2}, {3, 1}, {-2, 5}}, 4)
	v, err := NewVectors(vecs)
	require.NoError(t, err)

	first, err := v.KMeans(3, 11, 300)
	require.NoError(t, err)
	second, err := v.KMeans(3, 11, 300)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestKMeansDuplicatesStillFillEveryCluster(t *testing.T) {
	vecs := [][]float32{{1, 0}, {1, 0}, {1, 0}, {1, 0}, {0, 1}}
	v, err := NewVectors(vecs)
	require.NoError(t, err)

	labels, err := v.KMeans(4, 3, 50)
	require.NoError(t, err)

	counts := make(map[int]int)
	for _, l := range labels {
		counts[l]++
	}
	assert.Len(t, counts, 4)
	for c := 0; c < 4; c++ {
		assert.Positive(t, counts[c])
	}
}

func TestKMeansInvalidK(t *testing.T) {
	v, err := NewVectors([][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)

	_, err = v.KMeans(3, 1, 10)
	assert.True(t, errors.Is(err, caseselection.ErrInvalidConfig))
	_, err = v.KMeans(0, 1, 10)
	assert.True(t, errors.Is(err, caseselection.ErrInvalidConfig))
}

func TestGroupsOrder(t *testing.T) {
	groups := Groups([]int{2, 0, 2, 1, 0})
	assert.Equal(t, [][]int{{0, 2}, {1, 4}, {3}}, groups)
}
