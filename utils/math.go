package utils

import (
	"container/heap"
	"math"
)

type scored struct {
	index int
	value float64
}

// worse reports whether a ranks below b: lower value, or equal value and later index
func worse(a, b scored) bool {
	if a.value != b.value {
		return a.value < b.value
	}
	return a.index > b.index
}

// topHeap is a min-heap keyed on rank, so the root is the weakest kept entry
type topHeap []scored

func (h topHeap) Len() int           { return len(h) }
func (h topHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h topHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *topHeap) Push(x any)        { *h = append(*h, x.(scored)) }
func (h *topHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopK returns the indices and values of the top k scores in descending order.
// Equal scores keep ascending index order. k is capped at len(scores).
func TopK(scores []float64, k int) ([]int, []float64) {
	if k > len(scores) {
		k = len(scores)
	}
	if k <= 0 {
		return []int{}, []float64{}
	}

	h := make(topHeap, 0, k)
	for i, v := range scores {
		s := scored{index: i, value: v}
		if len(h) < k {
			heap.Push(&h, s)
			continue
		}
		if worse(h[0], s) {
			h[0] = s
			heap.Fix(&h, 0)
		}
	}

	indices := make([]int, k)
	values := make([]float64, k)
	for i := k - 1; i >= 0; i-- {
		s := heap.Pop(&h).(scored)
		indices[i] = s.index
		values[i] = s.value
	}

	return indices, values
}

// Norm32 computes the L2 norm of a float32 vector in float64 precision
func Norm32(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// CosineSimilarity32 computes cosine similarity between two float32 vectors.
// Vectors of different length are compared over the shared prefix.
func CosineSimilarity32(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		fa := float64(a[i])
		fb := float64(b[i])
		dot += fa * fb
		na += fa * fa
		nb += fb * fb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Normalize32 returns a unit-length copy of v. A zero vector is copied unchanged.
func Normalize32(v []float32) []float32 {
	result := make([]float32, len(v))
	norm := Norm32(v)
	if norm == 0 {
		copy(result, v)
		return result
	}
	for i, x := range v {
		result[i] = float32(float64(x) / norm)
	}
	return result
}

// SquaredDistance returns the squared euclidean distance between a point and a centroid
func SquaredDistance(a []float32, b []float64) float64 {
	var sum float64
	for i := range b {
		d := float64(a[i]) - b[i]
		sum += d * d
	}
	return sum
}
