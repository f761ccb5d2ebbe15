package selector

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	caseselection "github.com/Mineru98/case-selection-go"
	"github.com/Mineru98/case-selection-go/index"
	"github.com/Mineru98/case-selection-go/models"
	"github.com/Mineru98/case-selection-go/utils"
)

// runEncoder returns the encoder for one invocation, wrapped in a fresh cache
func (d deps) runEncoder() (*models.CachedEncoder, error) {
	if d.encoder == nil {
		return nil, fmt.Errorf("%w: strategy needs an encoder", caseselection.ErrInvalidConfig)
	}
	return models.NewCachedEncoder(d.encoder, d.cfg.Encoder.CacheSize), nil
}

// encodeRecords embeds the Key field of every record
func (d deps) encodeRecords(ctx context.Context, enc caseselection.Encoder, records []caseselection.Record, what string) (*index.Vectors, error) {
	vecs, err := enc.Encode(ctx, fieldValues(records, d.cfg.Key))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", what, err)
	}
	if len(vecs) != len(records) {
		return nil, fmt.Errorf("encode %s: got %d vectors for %d records", what, len(vecs), len(records))
	}
	return index.NewVectors(vecs)
}

// ClusterRepresentative clusters the pool embeddings with k-means and picks
// one random member of every cluster, independent of queries
type ClusterRepresentative struct {
	deps
}

// Kind implements Strategy
func (c *ClusterRepresentative) Kind() caseselection.StrategyKind {
	return caseselection.StrategyTaskKMeans
}

// Select implements Strategy. Cluster labels depend only on ClusterSeed; the
// representative inside each cluster is drawn from rng.
func (c *ClusterRepresentative) Select(ctx context.Context, pool, _ []caseselection.Record, rng *rand.Rand) (*caseselection.Result, error) {
	k := c.cfg.ClusterNumber
	if k < 1 || k > len(pool) {
		return nil, fmt.Errorf("%w: cannot form %d clusters from %d candidates", caseselection.ErrInvalidConfig, k, len(pool))
	}
	enc, err := c.runEncoder()
	if err != nil {
		return nil, err
	}

	vectors, err := c.encodeRecords(ctx, enc, pool, "candidates")
	if err != nil {
		return nil, err
	}
	labels, err := vectors.KMeans(k, c.cfg.ClusterSeed, c.cfg.MaxIterations)
	if err != nil {
		return nil, err
	}

	groups := index.Groups(labels)
	selected := make([]caseselection.Pick, 0, len(groups))
	for _, members := range groups {
		idx := members[rng.IntN(len(members))]
		selected = append(selected, caseselection.Pick{Index: idx, Record: pool[idx]})
	}
	c.logger.Debug("clusters formed",
		slog.Int("clusters", len(groups)),
		slog.Int("candidates", len(pool)),
	)

	return &caseselection.Result{
		Strategy: caseselection.StrategyTaskKMeans,
		Selected: selected,
		Clusters: labels,
	}, nil
}

// NearestNeighbor ranks the pool for each query by cosine similarity of
// embeddings
type NearestNeighbor struct {
	deps
}

// Kind implements Strategy
func (n *NearestNeighbor) Kind() caseselection.StrategyKind {
	return caseselection.StrategyNearestNeighbor
}

// Select implements Strategy. Number larger than the pool is capped, not an
// error.
func (n *NearestNeighbor) Select(ctx context.Context, pool, queries []caseselection.Record, _ *rand.Rand) (*caseselection.Result, error) {
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: no candidates", caseselection.ErrEmptyPool)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: no queries", caseselection.ErrEmptyPool)
	}
	enc, err := n.runEncoder()
	if err != nil {
		return nil, err
	}

	candidates, err := n.encodeRecords(ctx, enc, pool, "candidates")
	if err != nil {
		return nil, err
	}
	queryVectors, err := n.encodeRecords(ctx, enc, queries, "queries")
	if err != nil {
		return nil, err
	}
	hits, misses := enc.Stats()
	n.logger.Debug("pools encoded",
		slog.Int("cache_hits", hits),
		slog.Int("encoded", misses),
		slog.Int("dim", candidates.Dim()),
	)

	key := n.cfg.Key
	progress := utils.NewProgressBar(len(queries), "nearest neighbour queries", n.logger)
	results := make([]caseselection.QueryResult, len(queries))
	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := candidates.Search(queryVectors.At(i), n.cfg.Number)
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i, err)
		}
		indices := make([]int, len(found))
		scores := make([]float64, len(found))
		for j, h := range found {
			indices[j] = h.Index
			scores[j] = h.Score
		}
		results[i] = caseselection.QueryResult{
			Query:      q,
			Candidates: rankCandidates(pool, key, indices, scores),
		}
		progress.Increment()
	}
	progress.Finish()

	return &caseselection.Result{
		Strategy: caseselection.StrategyNearestNeighbor,
		Queries:  results,
	}, nil
}
