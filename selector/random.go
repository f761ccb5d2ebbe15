package selector

import (
	"context"
	"fmt"
	"math/rand/v2"

	caseselection "github.com/Mineru98/case-selection-go"
)

// Random samples Number distinct candidates uniformly, independent of queries
type Random struct {
	deps
}

// Kind implements Strategy
func (r *Random) Kind() caseselection.StrategyKind {
	return caseselection.StrategyRandom
}

// Select implements Strategy. The pool order is left untouched.
func (r *Random) Select(_ context.Context, pool, _ []caseselection.Record, rng *rand.Rand) (*caseselection.Result, error) {
	n := r.cfg.Number
	if n < 1 || n > len(pool) {
		return nil, fmt.Errorf("%w: cannot sample %d of %d candidates", caseselection.ErrInvalidConfig, n, len(pool))
	}

	perm := rng.Perm(len(pool))[:n]
	selected := make([]caseselection.Pick, n)
	for i, idx := range perm {
		selected[i] = caseselection.Pick{Index: idx, Record: pool[idx]}
	}

	return &caseselection.Result{
		Strategy: caseselection.StrategyRandom,
		Selected: selected,
	}, nil
}
