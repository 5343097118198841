package hub

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadModelConfigNumLabelsField(t *testing.T) {
	cfg, err := LoadModelConfig(writeConfig(t, `{"model_type":"bert","num_labels":3}`))
	if err != nil {
		t.Fatalf("LoadModelConfig: %v", err)
	}
	if got := cfg.NumLabels(); got != 3 {
		t.Fatalf("NumLabels() = %d, want 3", got)
	}
}

func TestLoadModelConfigID2LabelFallback(t *testing.T) {
	cfg, err := LoadModelConfig(writeConfig(t, `{"id2label":{"0":"LABEL_0"},"max_position_embeddings":512}`))
	if err != nil {
		t.Fatalf("LoadModelConfig: %v", err)
	}
	if got := cfg.NumLabels(); got != 1 {
		t.Fatalf("NumLabels() = %d, want 1", got)
	}
	if cfg.MaxPositionEmbeddings != 512 {
		t.Fatalf("MaxPositionEmbeddings = %d, want 512", cfg.MaxPositionEmbeddings)
	}
}

func TestLoadModelConfigDefaultsToSingleLabel(t *testing.T) {
	cfg, err := LoadModelConfig(writeConfig(t, `{"model_type":"bert"}`))
	if err != nil {
		t.Fatalf("LoadModelConfig: %v", err)
	}
	if got := cfg.NumLabels(); got != 1 {
		t.Fatalf("NumLabels() = %d, want 1", got)
	}
}

func TestLoadModelConfigRejectsGarbage(t *testing.T) {
	if _, err := LoadModelConfig(writeConfig(t, "not json")); err == nil {
		t.Fatal("expected parse error")
	}
}
