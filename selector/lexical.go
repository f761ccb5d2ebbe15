package selector

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	caseselection "github.com/Mineru98/case-selection-go"
	"github.com/Mineru98/case-selection-go/retrieve"
	"github.com/Mineru98/case-selection-go/tokenizer"
	"github.com/Mineru98/case-selection-go/utils"
)

// Lexical ranks the pool for each query with BM25 over the Key field
type Lexical struct {
	deps
}

// Kind implements Strategy
func (l *Lexical) Kind() caseselection.StrategyKind {
	return caseselection.StrategyBM25
}

// Select implements Strategy. The index is built once and shared by all
// queries; each query gets at most Number candidates.
func (l *Lexical) Select(ctx context.Context, pool, queries []caseselection.Record, _ *rand.Rand) (*caseselection.Result, error) {
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: no candidates to index", caseselection.ErrEmptyCorpus)
	}

	key := l.cfg.Key
	tk := tokenizer.NewWordTokenizer(!l.cfg.NoCamelSplit)
	bm, err := retrieve.NewBM25FromTexts(fieldValues(pool, key), tk, l.cfg.BM25.K1, l.cfg.BM25.B, l.cfg.BM25.Epsilon)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("bm25 index built",
		slog.Int("documents", bm.NDocuments),
		slog.Int("vocabulary", bm.VocabularySize()),
		slog.Float64("average_idf", bm.AverageIDF()),
	)

	progress := utils.NewProgressBar(len(queries), "bm25 queries", l.logger)
	results := make([]caseselection.QueryResult, 0, len(queries))
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		indices, scores := bm.TopK(tk.Tokenize(q.Field(key)), l.cfg.Number)
		results = append(results, caseselection.QueryResult{
			Query:      q,
			Candidates: rankCandidates(pool, key, indices, scores),
		})
		progress.Increment()
	}
	progress.Finish()

	return &caseselection.Result{
		Strategy: caseselection.StrategyBM25,
		Queries:  results,
	}, nil
}
