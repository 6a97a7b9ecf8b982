// Package artifact persists generated project files. Records about a
// project live in projectstore; the file contents themselves go through one
// of these stores, keyed by project ID and relative path.
package artifact

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("artifact not found")

// Store persists and retrieves generated file contents.
type Store interface {
	Put(ctx context.Context, projectID, path string, content []byte) error
	Get(ctx context.Context, projectID, path string) ([]byte, error)
	Delete(ctx context.Context, projectID, path string) error
	List(ctx context.Context, projectID string) ([]string, error)
}

func objectKey(projectID, path string) string {
	normalized := strings.TrimLeft(strings.TrimSpace(path), "/")
	return strings.TrimSpace(projectID) + "/" + normalized
}

// contentTypeFor maps a generated file's extension to the MIME type stored
// alongside it, so previews served straight from the bucket render.
func contentTypeFor(path string) string {
	switch filepath.Ext(strings.ToLower(path)) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".js", ".jsx", ".mjs":
		return "application/javascript"
	case ".ts", ".tsx":
		return "application/typescript"
	case ".json":
		return "application/json"
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".txt", ".env", ".gitignore":
		return "text/plain; charset=utf-8"
	case ".yaml", ".yml":
		return "application/yaml"
	default:
		return "application/octet-stream"
	}
}
