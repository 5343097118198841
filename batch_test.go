package crossencoder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fluxindex/crossencoder/pkg/domain"
)

func fakeConvert(calls *[]string, fail map[string]error) convertFunc {
	return func(_ context.Context, cfg domain.ExportConfig) (*Result, error) {
		*calls = append(*calls, cfg.ModelID)
		if err := fail[cfg.ModelID]; err != nil {
			return nil, err
		}
		if err := os.WriteFile(cfg.OutputPath, []byte(cfg.ModelID), 0644); err != nil {
			return nil, err
		}
		return &Result{ModelID: cfg.ModelID, OutputPath: cfg.OutputPath, NumLabels: 1}, nil
	}
}

func testCatalog() []domain.ModelRef {
	return []domain.ModelRef{
		{ID: "org/model-a", File: "a.onnx"},
		{ID: "org/model-b", File: "b.onnx"},
		{ID: "org/model-c", File: "c.onnx"},
	}
}

func TestConvertAllProcessesInOrder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "models")
	var calls []string

	items, err := convertAll(context.Background(), dir, testCatalog(), domain.ExportConfig{}, fakeConvert(&calls, nil))
	if err != nil {
		t.Fatalf("convertAll: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	for i, want := range []string{"org/model-a", "org/model-b", "org/model-c"} {
		if calls[i] != want {
			t.Fatalf("call %d = %s, want %s", i, calls[i], want)
		}
	}
	for _, item := range items {
		if item.Skipped || item.Err != nil {
			t.Fatalf("unexpected item state %+v", item)
		}
		if _, err := os.Stat(item.Path); err != nil {
			t.Fatalf("missing output %s: %v", item.Path, err)
		}
	}
}

func TestConvertAllSkipsExistingOutputs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "models")
	var first []string
	if _, err := convertAll(context.Background(), dir, testCatalog(), domain.ExportConfig{}, fakeConvert(&first, nil)); err != nil {
		t.Fatalf("first run: %v", err)
	}

	before := map[string][]byte{}
	for _, m := range testCatalog() {
		data, err := os.ReadFile(filepath.Join(dir, m.File))
		if err != nil {
			t.Fatalf("read output: %v", err)
		}
		before[m.File] = data
	}

	var second []string
	items, err := convertAll(context.Background(), dir, testCatalog(), domain.ExportConfig{}, fakeConvert(&second, nil))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("second run performed %d conversions, want 0", len(second))
	}
	for _, item := range items {
		if !item.Skipped {
			t.Fatalf("item %s not skipped on re-run", item.Model.File)
		}
	}
	for _, m := range testCatalog() {
		data, _ := os.ReadFile(filepath.Join(dir, m.File))
		if string(data) != string(before[m.File]) {
			t.Fatalf("output %s changed across idempotent re-run", m.File)
		}
	}
}

func TestConvertAllIsolatesFailures(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "models")
	var calls []string
	boom := errors.New("model not found")

	items, err := convertAll(context.Background(), dir, testCatalog(), domain.ExportConfig{},
		fakeConvert(&calls, map[string]error{"org/model-b": boom}))
	if err != nil {
		t.Fatalf("convertAll must not fail the batch: %v", err)
	}
	if len(calls) != 3 {
		t.Fatalf("got %d conversion attempts, want 3", len(calls))
	}

	if items[1].Err == nil || !errors.Is(items[1].Err, boom) {
		t.Fatalf("middle item error = %v, want %v", items[1].Err, boom)
	}
	for _, i := range []int{0, 2} {
		if items[i].Err != nil {
			t.Fatalf("item %d failed: %v", i, items[i].Err)
		}
		if _, err := os.Stat(items[i].Path); err != nil {
			t.Fatalf("surviving output missing: %v", err)
		}
	}
	if _, err := os.Stat(items[1].Path); !os.IsNotExist(err) {
		t.Fatalf("failed conversion left an output file")
	}
}

func TestConvertAllCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deep", "models")
	var calls []string
	if _, err := convertAll(context.Background(), dir, testCatalog()[:1], domain.ExportConfig{}, fakeConvert(&calls, nil)); err != nil {
		t.Fatalf("convertAll: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("output dir not created: %v", err)
	}
}

func TestConvertAllFailsWhenDirUncreatable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	var calls []string
	_, err := convertAll(context.Background(), filepath.Join(blocker, "models"), testCatalog(), domain.ExportConfig{}, fakeConvert(&calls, nil))
	if err == nil {
		t.Fatal("expected error when output dir cannot be created")
	}
	if len(calls) != 0 {
		t.Fatalf("conversions attempted despite dir failure: %v", calls)
	}
}
