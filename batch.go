package crossencoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/comfforts/logger"

	"github.com/fluxindex/crossencoder/pkg/domain"
)

// BatchItem records the outcome for one catalog entry.
type BatchItem struct {
	Model   domain.ModelRef
	Path    string
	Skipped bool
	Err     error
}

type convertFunc func(context.Context, domain.ExportConfig) (*Result, error)

// ConvertAll processes the catalog in order: the output directory is
// created, entries whose file already exists are skipped, and a failed
// conversion is logged and does not stop the batch. The returned error
// covers only directory creation.
func (c *Converter) ConvertAll(ctx context.Context, outputDir string, catalog []domain.ModelRef, base domain.ExportConfig) ([]BatchItem, error) {
	return convertAll(ctx, outputDir, catalog, base, c.Convert)
}

func convertAll(ctx context.Context, outputDir string, catalog []domain.ModelRef, base domain.ExportConfig, convert convertFunc) ([]BatchItem, error) {
	l, err := logger.LoggerFromContext(ctx)
	if err != nil {
		l = logger.GetSlogLogger()
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	items := make([]BatchItem, 0, len(catalog))
	for _, m := range catalog {
		item := BatchItem{Model: m, Path: filepath.Join(outputDir, m.File)}

		if _, err := os.Stat(item.Path); err == nil {
			item.Skipped = true
			l.Info("output already exists, skipping", "file", m.File)
			items = append(items, item)
			continue
		}

		cfg := base
		cfg.ModelID = m.ID
		cfg.OutputPath = item.Path
		if _, err := convert(ctx, cfg); err != nil {
			item.Err = err
			l.Error("failed to convert model", "model", m.ID, "error", err.Error())
		}
		items = append(items, item)
	}
	return items, nil
}
