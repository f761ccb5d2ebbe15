package caseselection

import "context"

// Record is a candidate or query item: field name -> text
type Record map[string]string

// Field returns the value stored under key, or "" when absent
func (r Record) Field(key string) string {
	return r[key]
}

// StrategyKind names one of the selection strategies
type StrategyKind string

const (
	// StrategyRandom samples candidates uniformly without replacement (task level)
	StrategyRandom StrategyKind = "random"
	// StrategyBM25 ranks candidates lexically per query
	StrategyBM25 StrategyKind = "bm25"
	// StrategyTaskKMeans picks one representative per embedding cluster (task level)
	StrategyTaskKMeans StrategyKind = "task_kmeans"
	// StrategyNearestNeighbor ranks candidates by embedding cosine similarity per query
	StrategyNearestNeighbor StrategyKind = "nearest_neighbor"
	// StrategyState selects by structural/identifier metadata (not implemented)
	StrategyState StrategyKind = "state"
	// StrategyInstanceKMeans clusters per query instance (not implemented)
	StrategyInstanceKMeans StrategyKind = "instance_kmeans"
)

// Strategies lists every known strategy kind
var Strategies = []StrategyKind{
	StrategyRandom,
	StrategyBM25,
	StrategyTaskKMeans,
	StrategyNearestNeighbor,
	StrategyState,
	StrategyInstanceKMeans,
}

// TaskLevel reports whether the strategy ignores the query pool
func (k StrategyKind) TaskLevel() bool {
	return k == StrategyRandom || k == StrategyTaskKMeans
}

// NeedsEncoder reports whether the strategy embeds text
func (k StrategyKind) NeedsEncoder() bool {
	return k == StrategyTaskKMeans || k == StrategyNearestNeighbor
}

// Pick is one task-level selection
type Pick struct {
	Index  int    `json:"index"`
	Record Record `json:"record"`
}

// ScoredCandidate is one ranked candidate for a query
type ScoredCandidate struct {
	Index  int     `json:"index"`
	Value  string  `json:"value"`
	Record Record  `json:"record"`
	Score  float64 `json:"score"`
	Rank   int     `json:"rank"`
}

// QueryResult holds the ranked candidates for a single query
type QueryResult struct {
	Query      Record            `json:"case"`
	Candidates []ScoredCandidate `json:"candidates"`
}

// Result is the output of one strategy invocation.
//
// Task-level strategies fill Selected; the cluster strategy also reports the
// label of every pool entry in Clusters. Query-level strategies fill Queries.
type Result struct {
	Strategy StrategyKind  `json:"strategy"`
	Selected []Pick        `json:"selected,omitempty"`
	Clusters []int         `json:"clusters,omitempty"`
	Queries  []QueryResult `json:"queries,omitempty"`
}

// Encoder turns texts into fixed-size embedding vectors, one per input
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// EncoderFunc adapts a function to the Encoder interface
type EncoderFunc func(ctx context.Context, texts []string) ([][]float32, error)

// Encode calls f
func (f EncoderFunc) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	return f(ctx, texts)
}
