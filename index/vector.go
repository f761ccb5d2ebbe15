package index

import (
	"fmt"

	caseselection "github.com/Mineru98/case-selection-go"
	"github.com/Mineru98/case-selection-go/utils"
)

// Hit is one search result: a position in the index and its cosine similarity
type Hit struct {
	Index int
	Score float64
}

// Vectors is a brute-force dense index. Stored vectors are unit-norm copies of
// the inputs; the caller's slices are never retained.
type Vectors struct {
	items [][]float32
	dim   int
}

// NewVectors normalizes and stores vectors. All vectors must share a dimension.
func NewVectors(vectors [][]float32) (*Vectors, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no vectors to index", caseselection.ErrEmptyPool)
	}
	dim := len(vectors[0])
	items := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, expected %d", i, len(v), dim)
		}
		items[i] = utils.Normalize32(v)
	}
	return &Vectors{items: items, dim: dim}, nil
}

// Len returns the number of stored vectors
func (v *Vectors) Len() int {
	return len(v.items)
}

// Dim returns the vector dimension
func (v *Vectors) Dim() int {
	return v.dim
}

// At returns the stored (normalized) vector at i
func (v *Vectors) At(i int) []float32 {
	return v.items[i]
}

// Similarities returns the cosine similarity of query against every stored vector
func (v *Vectors) Similarities(query []float32) []float64 {
	scores := make([]float64, len(v.items))
	for i, item := range v.items {
		scores[i] = utils.CosineSimilarity32(query, item)
	}
	return scores
}

// Search returns the k most similar vectors, best first. Equal similarities
// keep ascending index order; k is capped at Len.
func (v *Vectors) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != v.dim {
		return nil, fmt.Errorf("query has dimension %d, expected %d", len(query), v.dim)
	}
	indices, scores := utils.TopK(v.Similarities(query), k)
	hits := make([]Hit, len(indices))
	for i, idx := range indices {
		hits[i] = Hit{Index: idx, Score: scores[i]}
	}
	return hits, nil
}
