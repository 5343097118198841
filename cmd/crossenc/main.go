package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/comfforts/logger"
	"github.com/spf13/cobra"

	"github.com/fluxindex/crossencoder"
	"github.com/fluxindex/crossencoder/internal/transformer/onnx"
	"github.com/fluxindex/crossencoder/pkg/domain"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		model        string
		output       string
		maxLength    int
		opset        int
		batchMode    bool
		outputDir    string
		modelsConfig string
		cacheDir     string
	)

	cmd := &cobra.Command{
		Use:           "crossenc",
		Short:         "Convert cross-encoder models to portable ONNX graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := logger.GetSlogLogger()
			ctx := logger.WithLogger(cmd.Context(), l)

			conv, err := crossencoder.NewConverter(ctx)
			if err != nil {
				return fmt.Errorf("%w\nhint: point %s at the onnxruntime shared library, or unset it to skip verification",
					err, onnx.SharedLibraryEnv)
			}
			defer conv.Close(ctx)

			base := domain.ExportConfig{
				MaxSeqLen:    maxLength,
				OpsetVersion: opset,
				CacheDir:     cacheDir,
			}

			if batchMode {
				catalog := crossencoder.DefaultCatalog()
				if modelsConfig != "" {
					catalog, err = crossencoder.LoadCatalog(modelsConfig)
					if err != nil {
						return err
					}
				}
				// per-model failures are logged inside and do not fail the batch
				_, err := conv.ConvertAll(ctx, outputDir, catalog, base)
				return err
			}

			if dir := filepath.Dir(output); dir != "" && dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create output dir: %w", err)
				}
			}
			cfg := base
			cfg.ModelID = model
			cfg.OutputPath = output
			_, err = conv.Convert(ctx, cfg)
			return err
		},
	}

	cmd.Flags().StringVar(&model, "model", domain.DefaultModelID, "hub model identifier")
	cmd.Flags().StringVar(&output, "output", "models/cross-encoder.onnx", "output path for the exported graph")
	cmd.Flags().IntVar(&maxLength, "max-length", domain.DefaultMaxSeqLen, "maximum sequence length of the example input")
	cmd.Flags().IntVar(&opset, "opset", domain.DefaultOpsetVersion, "highest accepted default-domain opset version")
	cmd.Flags().BoolVar(&batchMode, "download-popular", false, "convert the popular cross-encoder catalog")
	cmd.Flags().StringVar(&outputDir, "output-dir", "models", "output directory for batch mode")
	cmd.Flags().StringVar(&modelsConfig, "models-config", "", "YAML catalog overriding the built-in batch list")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "hub cache directory (default: user cache dir)")
	return cmd
}
