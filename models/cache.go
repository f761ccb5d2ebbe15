package models

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash"
	lru "github.com/hashicorp/golang-lru/v2"

	caseselection "github.com/Mineru98/case-selection-go"
)

// CachedEncoder wraps an Encoder and embeds each distinct text once. It is
// meant to live for a single selection run so candidate and query pools that
// share records are not encoded twice.
type CachedEncoder struct {
	encoder caseselection.Encoder
	cache   *lru.Cache[uint64, []float32]
	hits    int
	misses  int
}

var _ caseselection.Encoder = (*CachedEncoder)(nil)

// NewCachedEncoder creates a cache holding up to size vectors
func NewCachedEncoder(encoder caseselection.Encoder, size int) *CachedEncoder {
	if size <= 0 {
		size = 10000
	}
	cache, err := lru.New[uint64, []float32](size)
	if err != nil {
		// only fails for non-positive sizes
		panic(err)
	}
	return &CachedEncoder{encoder: encoder, cache: cache}
}

// Encode returns one vector per text, calling the wrapped encoder only for
// texts it has not seen yet
func (c *CachedEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]uint64, len(texts))
	pending := make(map[uint64][]int)
	toEncode := make([]string, 0)
	order := make([]uint64, 0)

	for i, text := range texts {
		key := xxhash.Sum64String(text)
		keys[i] = key
		if vec, ok := c.cache.Get(key); ok {
			out[i] = cloneVector(vec)
			c.hits++
			continue
		}
		if _, queued := pending[key]; !queued {
			toEncode = append(toEncode, text)
			order = append(order, key)
		}
		pending[key] = append(pending[key], i)
	}

	if len(toEncode) == 0 {
		return out, nil
	}

	vecs, err := c.encoder.Encode(ctx, toEncode)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(toEncode) {
		return nil, fmt.Errorf("encoder returned %d vectors for %d texts", len(vecs), len(toEncode))
	}
	c.misses += len(toEncode)

	for j, key := range order {
		c.cache.Add(key, cloneVector(vecs[j]))
		for _, i := range pending[key] {
			out[i] = cloneVector(vecs[j])
		}
	}
	return out, nil
}

// Stats returns cache hits and encoded texts so far
func (c *CachedEncoder) Stats() (hits, misses int) {
	return c.hits, c.misses
}

func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
