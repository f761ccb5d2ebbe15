package tokenizer

import (
	"fmt"

	"github.com/daulet/tokenizers"
)

// Default boundary marker strings for UniXcoder-style encoders
const (
	ClsToken         = "<s>"
	SepToken         = "</s>"
	PadToken         = "<pad>"
	EncoderOnlyToken = "<encoder-only>"
)

// reservedSlots is the number of boundary markers framing each sequence
const reservedSlots = 4

// Markers holds the vocabulary ids of the boundary markers
type Markers struct {
	CLS  int64
	Mode int64
	SEP  int64
	PAD  int64
}

// CodeTokenizer wraps a HuggingFace tokenizer and frames code for the encoder
type CodeTokenizer struct {
	tokenizer *tokenizers.Tokenizer
	maxLength int
	markers   Markers
}

// NewCodeTokenizer loads tokenizer.json and resolves the boundary marker ids
func NewCodeTokenizer(tokenizerPath string, maxLength int) (*CodeTokenizer, error) {
	if maxLength <= reservedSlots {
		return nil, fmt.Errorf("max length %d leaves no room for tokens", maxLength)
	}
	tk, err := tokenizers.FromFile(tokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	ct := &CodeTokenizer{tokenizer: tk, maxLength: maxLength}
	for _, m := range []struct {
		token string
		dst   *int64
	}{
		{ClsToken, &ct.markers.CLS},
		{EncoderOnlyToken, &ct.markers.Mode},
		{SepToken, &ct.markers.SEP},
		{PadToken, &ct.markers.PAD},
	} {
		id, err := ct.tokenID(m.token)
		if err != nil {
			_ = ct.Close()
			return nil, err
		}
		*m.dst = id
	}

	return ct, nil
}

func (ct *CodeTokenizer) tokenID(token string) (int64, error) {
	ids, _ := ct.tokenizer.Encode(token, false)
	if len(ids) != 1 {
		return 0, fmt.Errorf("token %q is not a single vocabulary entry", token)
	}
	return int64(ids[0]), nil
}

// Encode tokenizes a single text into framed ids (unpadded)
func (ct *CodeTokenizer) Encode(text string) []int64 {
	encoding := ct.tokenizer.EncodeWithOptions(text, false)
	return Frame(encoding.IDs, ct.markers, ct.maxLength)
}

// EncodeBatch encodes multiple texts and pads them to the longest sequence
func (ct *CodeTokenizer) EncodeBatch(texts []string) ([][]int64, [][]int64, error) {
	if len(texts) == 0 {
		return nil, nil, fmt.Errorf("empty batch")
	}
	seqs := make([][]int64, len(texts))
	for i, text := range texts {
		seqs[i] = ct.Encode(text)
	}
	ids, mask := PadBatch(seqs, ct.markers.PAD)
	return ids, mask, nil
}

// Close releases tokenizer resources
func (ct *CodeTokenizer) Close() error {
	if ct.tokenizer != nil {
		ct.tokenizer.Close()
		ct.tokenizer = nil
	}
	return nil
}

// Frame wraps token ids as <cls> <mode> <sep> ids <sep>, truncating ids so the
// framed sequence fits in maxLength.
func Frame(ids []uint32, markers Markers, maxLength int) []int64 {
	budget := maxLength - reservedSlots
	if budget < 0 {
		budget = 0
	}
	if len(ids) > budget {
		ids = ids[:budget]
	}

	framed := make([]int64, 0, len(ids)+reservedSlots)
	framed = append(framed, markers.CLS, markers.Mode, markers.SEP)
	for _, id := range ids {
		framed = append(framed, int64(id))
	}
	return append(framed, markers.SEP)
}

// PadBatch right-pads sequences to a common length. The attention mask is 1
// wherever the id is not the pad id.
func PadBatch(seqs [][]int64, pad int64) ([][]int64, [][]int64) {
	width := 0
	for _, s := range seqs {
		if len(s) > width {
			width = len(s)
		}
	}

	ids := make([][]int64, len(seqs))
	mask := make([][]int64, len(seqs))
	for i, s := range seqs {
		ids[i] = make([]int64, width)
		mask[i] = make([]int64, width)
		for j := range ids[i] {
			ids[i][j] = pad
			if j < len(s) {
				ids[i][j] = s[j]
			}
			if ids[i][j] != pad {
				mask[i][j] = 1
			}
		}
	}
	return ids, mask
}
