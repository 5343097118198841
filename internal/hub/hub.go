package hub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultEndpoint = "https://huggingface.co"

	// EndpointEnv overrides the hub base URL.
	EndpointEnv = "HF_ENDPOINT"
	// TokenEnv carries a bearer token for gated or private models.
	TokenEnv = "HF_TOKEN"

	tokenizerFileName = "tokenizer.json"
	configFileName    = "config.json"
	modelFileName     = "model.onnx"
	// hub exports usually live under onnx/; tried before the repo root
	modelONNXSubdir = "onnx/model.onnx"
)

// Loader error taxonomy. Wrapped into every resolution failure so callers
// can distinguish a bad identifier from a transport problem.
var (
	ErrModelNotFound = errors.New("model not found")
	ErrUnauthorized  = errors.New("unauthorized")
)

// ModelAssets holds resolved local paths for one model's artifacts.
type ModelAssets struct {
	Dir           string
	ModelPath     string
	TokenizerPath string
	ConfigPath    string
}

// Client resolves model identifiers against a Hugging Face style hub and
// caches the downloaded assets on disk.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// NewClient builds a hub client from the environment. HF_ENDPOINT and
// HF_TOKEN are honored when set.
func NewClient() *Client {
	endpoint := strings.TrimRight(os.Getenv(EndpointEnv), "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		token:    os.Getenv(TokenEnv),
		http:     &http.Client{Timeout: 5 * time.Minute},
	}
}

// EnsureModel downloads the model graph, tokenizer and config for modelID
// into the cache dir, skipping files already present, and returns their
// local paths.
func (c *Client) EnsureModel(ctx context.Context, cacheDir, modelID string) (ModelAssets, error) {
	if strings.TrimSpace(modelID) == "" {
		return ModelAssets{}, fmt.Errorf("model ID is required")
	}

	dir := ModelDir(cacheDir, modelID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ModelAssets{}, fmt.Errorf("failed to create model dir: %w", err)
	}

	assets := ModelAssets{
		Dir:           dir,
		ModelPath:     filepath.Join(dir, modelFileName),
		TokenizerPath: filepath.Join(dir, tokenizerFileName),
		ConfigPath:    filepath.Join(dir, configFileName),
	}

	if err := c.ensureFile(ctx, assets.TokenizerPath, modelID, tokenizerFileName); err != nil {
		return ModelAssets{}, err
	}
	if err := c.ensureFile(ctx, assets.ConfigPath, modelID, configFileName); err != nil {
		return ModelAssets{}, err
	}
	if err := c.ensureGraph(ctx, assets.ModelPath, modelID); err != nil {
		return ModelAssets{}, err
	}
	return assets, nil
}

// ensureGraph fetches the ONNX graph, preferring the hub's onnx/ export
// location and falling back to the repository root.
func (c *Client) ensureGraph(ctx context.Context, path, modelID string) error {
	if fileExists(path) {
		return nil
	}
	err := c.download(ctx, path, modelID, modelONNXSubdir)
	if err == nil || !errors.Is(err, ErrModelNotFound) {
		return err
	}
	return c.download(ctx, path, modelID, modelFileName)
}

func (c *Client) ensureFile(ctx context.Context, path, modelID, remote string) error {
	if fileExists(path) {
		return nil
	}
	return c.download(ctx, path, modelID, remote)
}

func (c *Client) download(ctx context.Context, path, modelID, remote string) error {
	url := fmt.Sprintf("%s/%s/resolve/main/%s", c.endpoint, modelID, remote)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s for %s: %w", remote, modelID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s of %s: %w", remote, modelID, ErrModelNotFound)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s of %s: %w", remote, modelID, ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%s of %s: unexpected status %d", remote, modelID, resp.StatusCode)
	}

	tmp := path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to download %s for %s: %w", remote, modelID, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to finalize download: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}
