package hub

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveCacheDirExplicit(t *testing.T) {
	dir := t.TempDir()
	got, err := ResolveCacheDir(dir)
	if err != nil {
		t.Fatalf("ResolveCacheDir: %v", err)
	}
	if got != dir {
		t.Fatalf("ResolveCacheDir = %q, want %q", got, dir)
	}
}

func TestResolveCacheDirDefault(t *testing.T) {
	got, err := ResolveCacheDir("")
	if err != nil {
		t.Fatalf("ResolveCacheDir: %v", err)
	}
	if filepath.Base(got) != defaultCacheDirName {
		t.Fatalf("default cache dir %q does not end in %q", got, defaultCacheDirName)
	}
}

func TestModelDirFlattensIdentifier(t *testing.T) {
	dir := ModelDir("/cache", "cross-encoder/ms-marco-MiniLM-L6-v2")
	if strings.Contains(filepath.Base(dir), "/") {
		t.Fatalf("model dir %q keeps identifier slashes", dir)
	}
	want := filepath.Join("/cache", "models", "cross-encoder--ms-marco-MiniLM-L6-v2")
	if dir != want {
		t.Fatalf("ModelDir = %q, want %q", dir, want)
	}
}
