package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCamelCaseSplit(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"getUserName", []string{"get", "User", "Name"}},
		{"URLPath", []string{"URL", "Path"}},
		{"parseHTTP", []string{"parse", "HTTP"}},
		{"simple", []string{"simple"}},
		{"get_user2Name", []string{"get", "user", "Name"}},
		{"(a,", []string{"a"}},
		{"42", []string{}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CamelCaseSplit(tt.in))
		})
	}
}

func TestWordTokenizerCamel(t *testing.T) {
	tk := NewWordTokenizer(true)

	got := tk.Tokenize("  public String getUserName() {\n\treturn userName; }")
	assert.Equal(t, []string{"public", "String", "get", "User", "Name", "return", "user", "Name"}, got)
}

func TestWordTokenizerPlain(t *testing.T) {
	tk := NewWordTokenizer(false)

	got := tk.Tokenize("public String getUserName()")
	assert.Equal(t, []string{"public", "String", "getUserName()"}, got)
}

func TestWordTokenizerEmpty(t *testing.T) {
	tk := NewWordTokenizer(true)

	assert.Empty(t, tk.Tokenize(""))
	assert.Empty(t, tk.Tokenize("   \n "))
	assert.Empty(t, tk.Tokenize("{ } ;"))
}

func TestNormalize(t *testing.T) {
	// full-width letters fold to ASCII under NFKC
	assert.Equal(t, "getName", Normalize("ｇｅｔＮａｍｅ"))
	assert.Equal(t, "a\tb\nc", Normalize("a\tb\nc\x00"))
}

func TestTokenizeAll(t *testing.T) {
	tk := NewWordTokenizer(true)

	got := tk.TokenizeAll([]string{"fooBar", "baz"})
	assert.Equal(t, [][]string{{"foo", "Bar"}, {"baz"}}, got)
}

func TestWordTokenizerFullWidthMatchesASCII(t *testing.T) {
	tk := NewWordTokenizer(true)
	assert.Equal(t, tk.Tokenize("getUserName(id)"), tk.Tokenize("ｇｅｔＵｓｅｒＮａｍｅ（ｉｄ）"))
}
