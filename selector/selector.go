// Package selector picks in-context demonstration examples from a candidate
// pool. Each strategy implements Strategy; Selector dispatches on
// Config.Strategy and also exposes one named method per strategy.
package selector

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	caseselection "github.com/Mineru98/case-selection-go"
)

// Strategy is one selection algorithm.
//
// pool and queries are borrowed read-only. rng is the only source of
// randomness a strategy may use; strategies that are deterministic ignore it.
type Strategy interface {
	Kind() caseselection.StrategyKind
	Select(ctx context.Context, pool, queries []caseselection.Record, rng *rand.Rand) (*caseselection.Result, error)
}

// deps is shared by every strategy variant
type deps struct {
	cfg     caseselection.Config
	encoder caseselection.Encoder
	logger  *slog.Logger
}

// Selector is the entry point used by drivers
type Selector struct {
	cfg     caseselection.Config
	encoder caseselection.Encoder
	logger  *slog.Logger
}

// Option configures a Selector
type Option func(*Selector)

// WithEncoder injects the embedding capability used by task_kmeans and
// nearest_neighbor
func WithEncoder(encoder caseselection.Encoder) Option {
	return func(s *Selector) {
		s.encoder = encoder
	}
}

// WithLogger sets the logger; slog.Default is used otherwise
func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) {
		s.logger = logger
	}
}

// New validates cfg (after applying defaults) and builds a Selector
func New(cfg caseselection.Config, opts ...Option) (*Selector, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Selector{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Config returns the selector configuration
func (s *Selector) Config() caseselection.Config {
	return s.cfg
}

// Number returns the configured selection count
func (s *Selector) Number() int {
	return s.cfg.Number
}

// Key returns the record field used as the text signal
func (s *Selector) Key() string {
	return s.cfg.Key
}

// Strategy returns the variant for kind, bound to this selector's config
func (s *Selector) Strategy(kind caseselection.StrategyKind) (Strategy, error) {
	d := deps{cfg: s.cfg, encoder: s.encoder, logger: s.logger}
	switch kind {
	case caseselection.StrategyRandom:
		return &Random{d}, nil
	case caseselection.StrategyBM25:
		return &Lexical{d}, nil
	case caseselection.StrategyTaskKMeans:
		return &ClusterRepresentative{d}, nil
	case caseselection.StrategyNearestNeighbor:
		return &NearestNeighbor{d}, nil
	case caseselection.StrategyState:
		return &StateBased{d}, nil
	case caseselection.StrategyInstanceKMeans:
		return &InstanceKMeans{d}, nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", caseselection.ErrInvalidConfig, kind)
	}
}

// Select runs the configured strategy. A nil rng is replaced by one seeded
// from Config.Seed.
func (s *Selector) Select(ctx context.Context, pool, queries []caseselection.Record, rng *rand.Rand) (*caseselection.Result, error) {
	return s.run(ctx, s.cfg.Strategy, pool, queries, rng)
}

// RandomSelection samples Number candidates without replacement
func (s *Selector) RandomSelection(ctx context.Context, pool []caseselection.Record, rng *rand.Rand) (*caseselection.Result, error) {
	return s.run(ctx, caseselection.StrategyRandom, pool, nil, rng)
}

// BM25Selection ranks the pool lexically for every query
func (s *Selector) BM25Selection(ctx context.Context, pool, queries []caseselection.Record) (*caseselection.Result, error) {
	return s.run(ctx, caseselection.StrategyBM25, pool, queries, nil)
}

// TaskKMeansSelection returns one representative per embedding cluster
func (s *Selector) TaskKMeansSelection(ctx context.Context, pool []caseselection.Record, rng *rand.Rand) (*caseselection.Result, error) {
	return s.run(ctx, caseselection.StrategyTaskKMeans, pool, nil, rng)
}

// NearestNeighborSelection ranks the pool by embedding similarity for every query
func (s *Selector) NearestNeighborSelection(ctx context.Context, pool, queries []caseselection.Record) (*caseselection.Result, error) {
	return s.run(ctx, caseselection.StrategyNearestNeighbor, pool, queries, nil)
}

// StateSelection is reserved for selection by structural metadata
func (s *Selector) StateSelection(ctx context.Context, pool, queries []caseselection.Record) (*caseselection.Result, error) {
	return s.run(ctx, caseselection.StrategyState, pool, queries, nil)
}

// InstanceKMeansSelection is reserved for per-query cluster selection
func (s *Selector) InstanceKMeansSelection(ctx context.Context, pool, queries []caseselection.Record) (*caseselection.Result, error) {
	return s.run(ctx, caseselection.StrategyInstanceKMeans, pool, queries, nil)
}

func (s *Selector) run(ctx context.Context, kind caseselection.StrategyKind, pool, queries []caseselection.Record, rng *rand.Rand) (*caseselection.Result, error) {
	strategy, err := s.Strategy(kind)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRand(s.cfg.Seed)
	}

	s.logger.Debug("selection started",
		slog.String("strategy", string(kind)),
		slog.Int("pool", len(pool)),
		slog.Int("queries", len(queries)),
	)
	result, err := strategy.Select(ctx, pool, queries, rng)
	if err != nil {
		return nil, fmt.Errorf("%s selection: %w", kind, err)
	}
	s.logger.Info("selection finished",
		slog.String("strategy", string(kind)),
		slog.Int("selected", len(result.Selected)),
		slog.Int("queries", len(result.Queries)),
	)
	return result, nil
}

// NewRand returns a deterministic random source for seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xda942042e4dd58b5))
}

// rankCandidates turns top-k indices and scores into 1-based ranked candidates
func rankCandidates(pool []caseselection.Record, key string, indices []int, scores []float64) []caseselection.ScoredCandidate {
	out := make([]caseselection.ScoredCandidate, len(indices))
	for i, idx := range indices {
		out[i] = caseselection.ScoredCandidate{
			Index:  idx,
			Value:  pool[idx].Field(key),
			Record: pool[idx],
			Score:  scores[i],
			Rank:   i + 1,
		}
	}
	return out
}

func fieldValues(records []caseselection.Record, key string) []string {
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Field(key)
	}
	return texts
}
