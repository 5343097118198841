package crossencoder

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/comfforts/logger"

	"github.com/fluxindex/crossencoder/internal/hub"
	"github.com/fluxindex/crossencoder/internal/transformer/onnx"
	"github.com/fluxindex/crossencoder/pkg/domain"
)

// Example pair used to exercise the exported graph. The verification
// score of the concrete MS MARCO models depends on these literals.
const (
	exampleQuery    = "What is machine learning?"
	exampleDocument = "Machine learning is a subset of artificial intelligence."
)

// Result summarizes one conversion.
type Result struct {
	ModelID    string
	OutputPath string
	NumLabels  int
	// Verified is false when the inference runtime was unavailable or
	// the advisory check failed; the artifact is written either way.
	Verified    bool
	OutputShape []int64
	Score       float32
}

// pairEncoder turns a (query, document) pair into fixed-shape example
// tensors.
type pairEncoder interface {
	EncodePair(query, document string, maxLen int) (*onnx.Example, error)
}

// Converter exports cross-encoder models from the hub into portable ONNX
// artifacts with the standard graph interface.
type Converter struct {
	hub      *hub.Client
	verifier *onnx.Verifier
	// swapped in tests; defaults to loading the downloaded tokenizer.json
	loadTokenizer func(path string) (pairEncoder, error)
}

// NewConverter builds a converter, resolving verification availability
// once from the environment. A shared-library path that names a missing
// file is a configuration error.
func NewConverter(ctx context.Context) (*Converter, error) {
	l, err := logger.LoggerFromContext(ctx)
	if err != nil {
		l = logger.GetSlogLogger()
	}

	v, err := onnx.NewVerifier()
	if err != nil {
		l.Error("NewConverter - onnxruntime misconfigured", "error", err.Error())
		return nil, err
	}
	return &Converter{
		hub:      hub.NewClient(),
		verifier: v,
		loadTokenizer: func(path string) (pairEncoder, error) {
			return onnx.NewHFTokenizerFromLocal(path)
		},
	}, nil
}

// Close releases the verification runtime, if it was initialized.
func (c *Converter) Close(ctx context.Context) error {
	if c == nil || c.verifier == nil {
		return nil
	}
	return c.verifier.Close()
}

// Convert resolves cfg.ModelID, validates the graph against the
// cross-encoder interface contract and writes the artifact to
// cfg.OutputPath, overwriting any existing file. Verification is best
// effort: skipped with a warning when the runtime is unavailable, and
// advisory when it fails.
func (c *Converter) Convert(ctx context.Context, cfg domain.ExportConfig) (*Result, error) {
	l, err := logger.LoggerFromContext(ctx)
	if err != nil {
		l = logger.GetSlogLogger()
	}

	if cfg.ModelID == "" {
		return nil, fmt.Errorf("model ID is required")
	}
	if cfg.OutputPath == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if cfg.MaxSeqLen < 0 {
		return nil, fmt.Errorf("max length must not be negative, got %d", cfg.MaxSeqLen)
	}
	if cfg.MaxSeqLen == 0 {
		cfg.MaxSeqLen = domain.DefaultMaxSeqLen
	}
	if cfg.OpsetVersion <= 0 {
		cfg.OpsetVersion = domain.DefaultOpsetVersion
	}

	cacheDir, err := hub.ResolveCacheDir(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	l.Info("loading model", "model", cfg.ModelID)
	assets, err := c.hub.EnsureModel(ctx, cacheDir, cfg.ModelID)
	if err != nil {
		return nil, err
	}
	modelCfg, err := hub.LoadModelConfig(assets.ConfigPath)
	if err != nil {
		return nil, err
	}

	tok, err := c.loadTokenizer(assets.TokenizerPath)
	if err != nil {
		return nil, err
	}
	example, err := tok.EncodePair(exampleQuery, exampleDocument, cfg.MaxSeqLen)
	if err != nil {
		return nil, err
	}

	l.Info("converting to portable graph", "model", cfg.ModelID, "opset", cfg.OpsetVersion)
	info, err := onnx.InspectFile(assets.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("export failed for %s: %w", cfg.ModelID, err)
	}
	if err := onnx.ValidateCrossEncoder(info, cfg.OpsetVersion); err != nil {
		return nil, fmt.Errorf("export failed for %s: %w", cfg.ModelID, err)
	}

	numLabels := onnx.StaticLabelCount(info)
	if numLabels == 0 {
		numLabels = modelCfg.NumLabels()
	}

	if err := stageArtifact(assets.ModelPath, cfg.OutputPath); err != nil {
		return nil, err
	}
	l.Info("model saved",
		"path", cfg.OutputPath,
		"input-dims", fmt.Sprintf("batch_size x %d", cfg.MaxSeqLen),
		"output-dims", fmt.Sprintf("batch_size x %d", numLabels))

	res := &Result{
		ModelID:    cfg.ModelID,
		OutputPath: cfg.OutputPath,
		NumLabels:  numLabels,
	}

	if !c.verifier.Available() {
		l.Warn("onnxruntime not configured, skipping verification",
			"hint", "set "+onnx.SharedLibraryEnv+" to enable it")
		return res, nil
	}

	l.Info("verifying exported model", "path", cfg.OutputPath)
	shape, logits, err := c.verifier.Run(ctx, cfg.OutputPath, example, numLabels)
	if err != nil {
		// advisory: the artifact is already written
		l.Warn("verification failed", "model", cfg.ModelID, "error", err.Error())
		return res, nil
	}
	res.Verified = true
	res.OutputShape = shape
	res.Score = onnx.Score(logits)
	l.Info("verification successful", "output-shape", shape, "score", res.Score)
	return res, nil
}

// stageArtifact copies the cached graph to its destination via a temp
// file so consumers never observe a partial artifact.
func stageArtifact(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open cached model: %w", err)
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to finalize artifact: %w", err)
	}
	return nil
}
