package onnx

import (
	"fmt"

	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// HFTokenizer wraps a HuggingFace tokenizer for cross-encoder inputs.
type HFTokenizer struct {
	tok   *tk.Tokenizer
	padID int
}

// NewHFTokenizerFromLocal loads a tokenizer from a local tokenizer.json file.
func NewHFTokenizerFromLocal(path string) (*HFTokenizer, error) {
	tok, err := pretrained.FromFile(path) // loads tokenizer.json
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}
	return &HFTokenizer{tok: tok, padID: idOrDefault(tok, "[PAD]", 0)}, nil
}

// idOrDefault returns the token ID for a given token or a default if not found.
func idOrDefault(t *tk.Tokenizer, token string, def int) int {
	id, ok := t.TokenToId(token)
	if !ok {
		return def
	}
	return int(id)
}

// Example holds one tokenized (query, document) pair shaped [1][T],
// flattened row-major the way ORT tensors want it.
type Example struct {
	InputIDs      []int64
	AttentionMask []int64
	TokenTypeIDs  []int64
	SeqLen        int
}

// EncodePair tokenizes a (query, document) pair jointly, truncating and
// right-padding to maxLen so all three sequences share the same shape.
func (h *HFTokenizer) EncodePair(query, document string, maxLen int) (*Example, error) {
	if h == nil || h.tok == nil {
		return nil, fmt.Errorf("tokenizer is not initialized")
	}
	if maxLen <= 0 {
		return nil, fmt.Errorf("max length must be positive, got %d", maxLen)
	}

	enc, err := h.tok.EncodePair(query, document, true)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pair: %w", err)
	}
	return padEncoding(enc.Ids, enc.TypeIds, maxLen, h.padID), nil
}

// padEncoding truncates ids/typeIDs to maxLen and right-pads with the pad
// token. The attention mask covers real tokens only.
func padEncoding(ids, typeIDs []int, maxLen, padID int) *Example {
	ex := &Example{
		InputIDs:      make([]int64, maxLen),
		AttentionMask: make([]int64, maxLen),
		TokenTypeIDs:  make([]int64, maxLen),
		SeqLen:        maxLen,
	}

	L := len(ids)
	if L > maxLen {
		L = maxLen
	}
	for t := 0; t < L; t++ {
		ex.InputIDs[t] = int64(ids[t])
		ex.AttentionMask[t] = 1
		if t < len(typeIDs) {
			ex.TokenTypeIDs[t] = int64(typeIDs[t])
		}
	}
	for t := L; t < maxLen; t++ {
		ex.InputIDs[t] = int64(padID)
		// mask and type ids stay zero
	}
	return ex
}
