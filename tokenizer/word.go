package tokenizer

import (
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/unicode/norm"
)

// camelCasePattern matches a capitalised or lowercase word, or an uppercase run
// that is followed by another capital or ends the token (URLPath -> URL, Path).
// The lookahead needs regexp2; the standard regexp package has none.
var camelCasePattern = regexp2.MustCompile(`[A-Z]?[a-z]+|[A-Z]+(?=[A-Z]|$)`, regexp2.None)

// CamelCaseSplit splits an identifier into its camel-case sub-words.
// Characters outside [A-Za-z] separate words and are dropped.
func CamelCaseSplit(identifier string) []string {
	words := []string{}
	m, err := camelCasePattern.FindStringMatch(identifier)
	for err == nil && m != nil {
		words = append(words, m.String())
		m, err = camelCasePattern.FindNextMatch(m)
	}
	return words
}

// Normalize applies NFKC normalization and strips control characters other than
// newlines and tabs.
func Normalize(text string) string {
	normed := norm.NFKC.String(text)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
}

// WordTokenizer turns a document's text field into word tokens for lexical ranking
type WordTokenizer struct {
	CamelCase bool
}

// NewWordTokenizer creates a tokenizer; camelCase enables sub-word splitting
func NewWordTokenizer(camelCase bool) *WordTokenizer {
	return &WordTokenizer{CamelCase: camelCase}
}

// Tokenize splits text on whitespace and, when enabled, on camel-case boundaries
func (t *WordTokenizer) Tokenize(text string) []string {
	fields := strings.Fields(Normalize(text))
	if !t.CamelCase {
		return fields
	}

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		tokens = append(tokens, CamelCaseSplit(field)...)
	}
	return tokens
}

// TokenizeAll tokenizes every text in order
func (t *WordTokenizer) TokenizeAll(texts []string) [][]string {
	out := make([][]string, len(texts))
	for i, text := range texts {
		out[i] = t.Tokenize(text)
	}
	return out
}
