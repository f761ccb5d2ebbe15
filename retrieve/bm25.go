package retrieve

import (
	"fmt"
	"math"

	caseselection "github.com/Mineru98/case-selection-go"
	"github.com/Mineru98/case-selection-go/tokenizer"
	"github.com/Mineru98/case-selection-go/utils"
)

// BM25 is an Okapi BM25 index over a tokenized corpus.
//
// Scoring follows the classic gensim formulation:
//   - idf(t) = ln(N - df + 0.5) - ln(df + 0.5)
//   - negative idf values are floored to Epsilon * AverageIDF
//   - score(q, d) = sum over query tokens of idf(t) * f(t,d) * (K1+1) / (f(t,d) + K1*(1 - B + B*|d|/avgdl))
//
// The index is built once and is read-only afterwards, so any number of
// queries can be scored against it.
type BM25 struct {
	K1      float64 // Term frequency saturation parameter
	B       float64 // Length normalization parameter
	Epsilon float64 // Floor for negative idf, as a fraction of the average idf

	NDocuments int
	AvgDocLen  float64
	DocLengths []float64
	DocFreqs   []map[string]float64 // Per-document term frequencies
	IDF        map[string]float64

	vocabulary []string // Terms in first-seen order
	averageIDF float64
}

// NewBM25 builds an index over an already tokenized corpus
func NewBM25(corpus [][]string, k1, b, epsilon float64) (*BM25, error) {
	if len(corpus) == 0 {
		return nil, fmt.Errorf("%w: bm25 needs at least one document", caseselection.ErrEmptyCorpus)
	}

	bm := &BM25{
		K1:         k1,
		B:          b,
		Epsilon:    epsilon,
		NDocuments: len(corpus),
		DocLengths: make([]float64, len(corpus)),
		DocFreqs:   make([]map[string]float64, len(corpus)),
		IDF:        make(map[string]float64),
	}

	// Document frequency per term
	nd := make(map[string]int)
	var totalLen float64
	for i, doc := range corpus {
		freqs := make(map[string]float64, len(doc))
		for _, term := range doc {
			if freqs[term] == 0 {
				if _, seen := nd[term]; !seen {
					bm.vocabulary = append(bm.vocabulary, term)
				}
				nd[term]++
			}
			freqs[term]++
		}
		bm.DocFreqs[i] = freqs
		bm.DocLengths[i] = float64(len(doc))
		totalLen += float64(len(doc))
	}
	bm.AvgDocLen = totalLen / float64(bm.NDocuments)

	bm.computeIDF(nd)
	return bm, nil
}

// NewBM25FromTexts tokenizes texts with tk and builds an index over them
func NewBM25FromTexts(texts []string, tk *tokenizer.WordTokenizer, k1, b, epsilon float64) (*BM25, error) {
	return NewBM25(tk.TokenizeAll(texts), k1, b, epsilon)
}

// computeIDF fills IDF in vocabulary order so the average is reproducible
func (bm *BM25) computeIDF(nd map[string]int) {
	n := float64(bm.NDocuments)
	var idfSum float64
	negative := make([]string, 0)
	for _, term := range bm.vocabulary {
		df := float64(nd[term])
		idf := math.Log(n-df+0.5) - math.Log(df+0.5)
		bm.IDF[term] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, term)
		}
	}

	if len(bm.vocabulary) > 0 {
		bm.averageIDF = idfSum / float64(len(bm.vocabulary))
	}

	eps := bm.Epsilon * bm.averageIDF
	for _, term := range negative {
		bm.IDF[term] = eps
	}
}

// AverageIDF returns the mean idf over the vocabulary, before flooring
func (bm *BM25) AverageIDF() float64 {
	return bm.averageIDF
}

// VocabularySize returns the number of distinct terms in the corpus
func (bm *BM25) VocabularySize() int {
	return len(bm.vocabulary)
}

// Score computes the BM25 score of one document against a tokenized query
func (bm *BM25) Score(query []string, index int) float64 {
	freqs := bm.DocFreqs[index]
	ratio := 0.0
	if bm.AvgDocLen > 0 {
		ratio = bm.DocLengths[index] / bm.AvgDocLen
	}
	denominator := bm.K1 * (1 - bm.B + bm.B*ratio)

	var score float64
	for _, term := range query {
		f, ok := freqs[term]
		if !ok {
			continue
		}
		score += bm.IDF[term] * f * (bm.K1 + 1) / (f + denominator)
	}
	return score
}

// Scores scores every document against a tokenized query
func (bm *BM25) Scores(query []string) []float64 {
	scores := make([]float64, bm.NDocuments)
	for i := range scores {
		scores[i] = bm.Score(query, i)
	}
	return scores
}

// TopK returns the k best document indices and scores for a tokenized query.
// Ties keep document order; k is capped at the corpus size.
func (bm *BM25) TopK(query []string, k int) ([]int, []float64) {
	return utils.TopK(bm.Scores(query), k)
}
