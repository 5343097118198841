package crossencoder

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fluxindex/crossencoder/pkg/domain"
)

// DefaultCatalog returns the popular MS MARCO cross-encoders converted in
// batch mode when no catalog file is given.
func DefaultCatalog() []domain.ModelRef {
	return []domain.ModelRef{
		{ID: "cross-encoder/ms-marco-MiniLM-L6-v2", File: "ms-marco-MiniLM-L6-v2.onnx"},
		{ID: "cross-encoder/ms-marco-MiniLM-L12-v2", File: "ms-marco-MiniLM-L12-v2.onnx"},
		{ID: "cross-encoder/ms-marco-TinyBERT-L-2-v2", File: "ms-marco-TinyBERT-L2-v2.onnx"},
	}
}

// LoadCatalog reads an ordered model list from a YAML file:
//
//	- id: cross-encoder/ms-marco-MiniLM-L6-v2
//	  file: ms-marco-MiniLM-L6-v2.onnx
func LoadCatalog(path string) ([]domain.ModelRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var refs []domain.ModelRef
	if err := yaml.Unmarshal(data, &refs); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("catalog %s is empty", path)
	}
	for i, ref := range refs {
		if ref.ID == "" || ref.File == "" {
			return nil, fmt.Errorf("catalog entry %d is missing id or file", i)
		}
	}
	return refs, nil
}
