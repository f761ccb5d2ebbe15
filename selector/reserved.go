package selector

import (
	"context"
	"fmt"
	"math/rand/v2"

	caseselection "github.com/Mineru98/case-selection-go"
)

// StateBased would select by structural metadata (file, class and method
// names). It is reserved and always fails with ErrNotImplemented.
type StateBased struct {
	deps
}

// Kind implements Strategy
func (s *StateBased) Kind() caseselection.StrategyKind {
	return caseselection.StrategyState
}

// Select implements Strategy
func (s *StateBased) Select(context.Context, []caseselection.Record, []caseselection.Record, *rand.Rand) (*caseselection.Result, error) {
	return nil, fmt.Errorf("%w: %s", caseselection.ErrNotImplemented, caseselection.StrategyState)
}

// InstanceKMeans would cluster candidates per query. It is reserved and
// always fails with ErrNotImplemented.
type InstanceKMeans struct {
	deps
}

// Kind implements Strategy
func (i *InstanceKMeans) Kind() caseselection.StrategyKind {
	return caseselection.StrategyInstanceKMeans
}

// Select implements Strategy
func (i *InstanceKMeans) Select(context.Context, []caseselection.Record, []caseselection.Record, *rand.Rand) (*caseselection.Result, error) {
	return nil, fmt.Errorf("%w: %s", caseselection.ErrNotImplemented, caseselection.StrategyInstanceKMeans)
}
