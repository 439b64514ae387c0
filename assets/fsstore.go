package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FSStore is a filesystem-backed ObjectStore: assets are written under Dir
// and addressed as BaseURL/name. It lets the CLI and service run without an
// external object store; production deployments swap in a real one behind
// the same interface.
type FSStore struct {
	Dir     string
	BaseURL string
}

// NewFSStore creates the directory if needed.
func NewFSStore(dir, baseURL string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create assets dir: %w", err)
	}
	return &FSStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// PutAsset writes data to Dir/name and returns its public URL. Names
// containing path separators or traversal components are rejected.
func (s *FSStore) PutAsset(_ context.Context, name string, data []byte, _ string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid asset name %q", name)
	}
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write asset %s: %w", name, err)
	}
	return s.BaseURL + "/" + name, nil
}
