// Package assets uploads a document's embedded images to object storage
// and maps internal relationship ids to external URLs.
//
// Asset names are content-addressed: {doc}_{hash12}.{ext}, where hash12 is
// the first 12 hex characters of the payload's SHA-256. Re-processing the
// same document therefore overwrites rather than duplicates.
package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/pikahelper/docmill/docload"
)

// ObjectStore is the storage collaborator contract. Implementations may
// fail per call; a failed put is non-fatal to the document.
type ObjectStore interface {
	PutAsset(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Resolver externalizes embedded images. One Resolver per worker; it holds
// no per-document state between calls.
type Resolver struct {
	store  ObjectStore
	logger *slog.Logger
}

// NewResolver creates a Resolver. A nil logger falls back to slog.Default.
func NewResolver(store ObjectStore, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve uploads every image asset of doc and returns relationship id →
// external URL. Failures are logged and skipped: the id is simply absent
// from the mapping and the document proceeds without that image.
func (r *Resolver) Resolve(ctx context.Context, doc *docload.Document) map[string]string {
	resolved := make(map[string]string, len(doc.Assets))
	for relID, asset := range doc.Assets {
		url, err := r.putAsset(ctx, doc.Name, asset)
		if err != nil {
			r.logger.Error("image upload failed, skipping",
				"doc", doc.Name, "rel_id", relID, "target", asset.Target, "error", err)
			continue
		}
		resolved[relID] = url
	}
	return resolved
}

func (r *Resolver) putAsset(ctx context.Context, docName string, asset docload.Asset) (string, error) {
	if len(asset.Data) == 0 {
		return "", fmt.Errorf("empty payload for %s", asset.Target)
	}

	sum := sha256.Sum256(asset.Data)
	hash := hex.EncodeToString(sum[:])[:12]

	ext := extension(asset.Target)
	name := fmt.Sprintf("%s_%s.%s", docName, hash, ext)

	return r.store.PutAsset(ctx, name, asset.Data, contentType(ext))
}

// extension returns the asset target's extension without the dot, or "png"
// when the target has none.
func extension(target string) string {
	ext := strings.TrimPrefix(path.Ext(target), ".")
	if ext == "" {
		return "png"
	}
	return strings.ToLower(ext)
}

func contentType(ext string) string {
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "webp":
		return "image/webp"
	case "svg":
		return "image/svg+xml"
	default:
		return "image/png"
	}
}
