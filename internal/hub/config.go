package hub

import (
	"encoding/json"
	"fmt"
	"os"
)

// ModelConfig is the slice of a hub config.json this tool cares about.
type ModelConfig struct {
	ModelType             string            `json:"model_type"`
	NumLabelsField        int               `json:"num_labels"`
	ID2Label              map[string]string `json:"id2label"`
	MaxPositionEmbeddings int               `json:"max_position_embeddings"`
}

// LoadModelConfig parses a downloaded config.json.
func LoadModelConfig(path string) (*ModelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model config: %w", err)
	}
	var cfg ModelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse model config: %w", err)
	}
	return &cfg, nil
}

// NumLabels resolves the classifier label count: the explicit num_labels
// field when present, else the id2label map size, else one.
func (c *ModelConfig) NumLabels() int {
	if c == nil {
		return 1
	}
	if c.NumLabelsField > 0 {
		return c.NumLabelsField
	}
	if len(c.ID2Label) > 0 {
		return len(c.ID2Label)
	}
	return 1
}
