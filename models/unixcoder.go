package models

import (
	"context"
	"fmt"

	caseselection "github.com/Mineru98/case-selection-go"
	"github.com/Mineru98/case-selection-go/tokenizer"
	"github.com/Mineru98/case-selection-go/utils"
)

// UniXcoder is an encoder-only code embedding model served through ONNX Runtime.
// Each text is framed with boundary markers, run through the model, mean-pooled
// over non-pad positions and L2-normalized.
type UniXcoder struct {
	model     *ONNXModel
	tokenizer *tokenizer.CodeTokenizer
	batchSize int
	workers   int
	output    string
}

var _ caseselection.Encoder = (*UniXcoder)(nil)

// NewUniXcoder loads the tokenizer and the ONNX model described by cfg
func NewUniXcoder(cfg caseselection.EncoderConfig) (*UniXcoder, error) {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		return nil, fmt.Errorf("%w: encoder needs modelPath and tokenizerPath", caseselection.ErrInvalidConfig)
	}
	if err := InitRuntime(cfg.OrtLibrary); err != nil {
		return nil, err
	}

	tk, err := tokenizer.NewCodeTokenizer(cfg.TokenizerPath, cfg.MaxSeqLen)
	if err != nil {
		return nil, err
	}
	model, err := NewONNXModel(cfg.ModelPath)
	if err != nil {
		_ = tk.Close()
		return nil, fmt.Errorf("failed to load ONNX model: %w", err)
	}

	output := "last_hidden_state"
	found := false
	for _, name := range model.GetOutputNames() {
		if name == output {
			found = true
			break
		}
	}
	if !found {
		if len(model.GetOutputNames()) == 0 {
			_ = model.Close()
			_ = tk.Close()
			return nil, fmt.Errorf("model %s declares no outputs", cfg.ModelPath)
		}
		output = model.GetOutputNames()[0]
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}
	return &UniXcoder{
		model:     model,
		tokenizer: tk,
		batchSize: batchSize,
		workers:   cfg.Workers,
		output:    output,
	}, nil
}

// Encode embeds texts in batches; results follow input order
func (u *UniXcoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return utils.BatchProcessParallel(texts, u.batchSize, u.workers, func(batch []string) ([][]float32, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return u.encodeBatch(batch)
	})
}

func (u *UniXcoder) encodeBatch(texts []string) ([][]float32, error) {
	inputIDs, attentionMask, err := u.tokenizer.EncodeBatch(texts)
	if err != nil {
		return nil, fmt.Errorf("tokenization failed: %w", err)
	}

	inputs := map[string]any{
		"input_ids":      inputIDs,
		"attention_mask": attentionMask,
	}
	if u.model.HasInput("token_type_ids") {
		typeIDs := make([][]int64, len(inputIDs))
		for i := range typeIDs {
			typeIDs[i] = make([]int64, len(inputIDs[i]))
		}
		inputs["token_type_ids"] = typeIDs
	}

	outputs, err := u.model.Run(inputs)
	if err != nil {
		return nil, fmt.Errorf("model inference failed: %w", err)
	}
	hidden, ok := outputs[u.output]
	if !ok {
		return nil, fmt.Errorf("could not find %s in model output", u.output)
	}

	return MeanPool(hidden, attentionMask)
}

// MeanPool averages hidden states [batch, seq, hidden] over positions whose
// mask is 1 and L2-normalizes the result
func MeanPool(hidden Output, attentionMask [][]int64) ([][]float32, error) {
	if len(hidden.Shape) != 3 {
		return nil, fmt.Errorf("expected 3-d hidden states, got shape %v", hidden.Shape)
	}
	batchSize := int(hidden.Shape[0])
	seqLen := int(hidden.Shape[1])
	hiddenSize := int(hidden.Shape[2])
	if len(hidden.Data) != batchSize*seqLen*hiddenSize {
		return nil, fmt.Errorf("hidden state data does not match shape %v", hidden.Shape)
	}
	if len(attentionMask) != batchSize {
		return nil, fmt.Errorf("attention mask has %d rows, expected %d", len(attentionMask), batchSize)
	}

	embeddings := make([][]float32, batchSize)
	for i := 0; i < batchSize; i++ {
		sum := make([]float64, hiddenSize)
		var count float64
		for j := 0; j < seqLen; j++ {
			if j >= len(attentionMask[i]) || attentionMask[i][j] != 1 {
				continue
			}
			count++
			offset := (i*seqLen + j) * hiddenSize
			for k := 0; k < hiddenSize; k++ {
				sum[k] += float64(hidden.Data[offset+k])
			}
		}

		pooled := make([]float32, hiddenSize)
		if count > 0 {
			for k := range sum {
				pooled[k] = float32(sum[k] / count)
			}
		}
		embeddings[i] = utils.Normalize32(pooled)
	}

	return embeddings, nil
}

// Close releases model and tokenizer resources
func (u *UniXcoder) Close() error {
	var err error
	if u.model != nil {
		err = u.model.Close()
		u.model = nil
	}
	if u.tokenizer != nil {
		_ = u.tokenizer.Close()
		u.tokenizer = nil
	}
	return err
}
