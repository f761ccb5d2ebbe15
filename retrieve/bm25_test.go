package retrieve

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	caseselection "github.com/Mineru98/case-selection-go"
	"github.com/Mineru98/case-selection-go/tokenizer"
)

var methods = []string{
	"public String getUserName() { return userName; }",
	"public void setUserName(String name) { this.userName = name; }",
	"public int getAge() { return age; }",
	"private static Logger createLogger(String name) { return Logger.create(name); }",
	"public boolean isEmpty() { return items.isEmpty(); }",
}

func newIndex(t *testing.T) *BM25 {
	t.Helper()
	bm, err := NewBM25FromTexts(methods, tokenizer.NewWordTokenizer(true), 1.5, 0.75, 0.25)
	require.NoError(t, err)
	return bm
}

func TestNewBM25EmptyCorpus(t *testing.T) {
	_, err := NewBM25(nil, 1.5, 0.75, 0.25)
	assert.True(t, errors.Is(err, caseselection.ErrEmptyCorpus))
}

func TestBM25Statistics(t *testing.T) {
	corpus := [][]string{
		{"a", "b", "a"},
		{"b", "c"},
		{"c"},
	}
	bm, err := NewBM25(corpus, 1.5, 0.75, 0.25)
	require.NoError(t, err)

	assert.Equal(t, 3, bm.NDocuments)
	assert.InDelta(t, 2.0, bm.AvgDocLen, 1e-12)
	assert.Equal(t, 3, bm.VocabularySize())
	assert.Equal(t, 2.0, bm.DocFreqs[0]["a"])

	idfA := math.Log(3-1+0.5) - math.Log(1+0.5)
	idfB := math.Log(3-2+0.5) - math.Log(2+0.5) // negative, floored
	avg := (idfA + 2*idfB) / 3
	assert.InDelta(t, avg, bm.AverageIDF(), 1e-12)
	assert.InDelta(t, idfA, bm.IDF["a"], 1e-12)
	assert.InDelta(t, 0.25*avg, bm.IDF["b"], 1e-12)
	assert.InDelta(t, 0.25*avg, bm.IDF["c"], 1e-12)
}

func TestBM25ScoreFormula(t *testing.T) {
	corpus := [][]string{
		{"a", "b", "a"},
		{"b", "c"},
		{"c"},
	}
	bm, err := NewBM25(corpus, 1.5, 0.75, 0.25)
	require.NoError(t, err)

	idfA := bm.IDF["a"]
	denom := 1.5 * (1 - 0.75 + 0.75*3.0/2.0)
	want := idfA * 2 * 2.5 / (2 + denom)
	assert.InDelta(t, want, bm.Score([]string{"a"}, 0), 1e-12)

	// repeated query terms count twice
	assert.InDelta(t, 2*want, bm.Score([]string{"a", "a"}, 0), 1e-12)
	assert.Zero(t, bm.Score([]string{"a"}, 1))
	assert.Zero(t, bm.Score([]string{"zzz"}, 2))
}

func TestBM25TopKDescending(t *testing.T) {
	bm := newIndex(t)
	tk := tokenizer.NewWordTokenizer(true)

	indices, scores := bm.TopK(tk.Tokenize("String getUserName()"), 3)
	require.Len(t, indices, 3)
	assert.Equal(t, 0, indices[0])
	for i := 1; i < len(scores); i++ {
		assert.GreaterOrEqual(t, scores[i-1], scores[i])
	}
}

func TestBM25EmptyQueryKeepsOrder(t *testing.T) {
	bm := newIndex(t)

	indices, scores := bm.TopK(nil, 3)
	assert.Equal(t, []int{0, 1, 2}, indices)
	assert.Equal(t, []float64{0, 0, 0}, scores)
}

func TestBM25TopKCaps(t *testing.T) {
	bm := newIndex(t)

	indices, _ := bm.TopK([]string{"get"}, 50)
	assert.Len(t, indices, len(methods))
}

func TestBM25RebuildIsStable(t *testing.T) {
	first := newIndex(t)
	second := newIndex(t)

	assert.Equal(t, first.AverageIDF(), second.AverageIDF())
	assert.Equal(t, first.IDF, second.IDF)
}

func TestBM25ReusedAcrossQueries(t *testing.T) {
	bm := newIndex(t)
	tk := tokenizer.NewWordTokenizer(true)

	for _, q := range methods {
		indices, scores := bm.TopK(tk.Tokenize(q), 2)
		require.Len(t, indices, 2)
		assert.GreaterOrEqual(t, scores[0], scores[1])
	}
	assert.Equal(t, len(methods), bm.NDocuments)
}

func TestBM25EmptyDocuments(t *testing.T) {
	bm, err := NewBM25([][]string{{}, {}}, 1.5, 0.75, 0.25)
	require.NoError(t, err)

	assert.Zero(t, bm.AverageIDF())
	assert.Equal(t, []float64{0, 0}, bm.Scores([]string{"a"}))
}
