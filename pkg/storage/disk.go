// Package storage provides the object storage abstraction used for menu
// images.
//
// Two drivers are available:
//   - "s3"     S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//   - "local"  local filesystem, served by the app under /storage
//
// Quick start:
//
//	disk, err := storage.Open(ctx, config.StorageDisk())
//	if errors.Is(err, storage.ErrDiskNotConfigured) {
//	    // uploads answer 503
//	}
//	err = disk.Put(ctx, "menu-items/1700000000000-abc.png", r, "image/png")
//	url := disk.URL("menu-items/1700000000000-abc.png")
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrDiskNotConfigured is returned by Open when the selected driver lacks
// the settings it needs.
var ErrDiskNotConfigured = errors.New("storage: disk is not configured")

// ErrNotFound is returned by Get for a missing object.
var ErrNotFound = errors.New("storage: object not found")

// Disk is the driver interface.
type Disk interface {
	// Put writes r to path with the given content type.
	Put(ctx context.Context, path string, r io.Reader, contentType string) error

	// Get returns the full content of the object at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether an object exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string

	// PathFromURL is the inverse of URL. ok is false for URLs that do not
	// belong to this disk.
	PathFromURL(url string) (path string, ok bool)
}

// urlPrefix implements URL and PathFromURL for drivers with a flat base URL.
type urlPrefix string

func (p urlPrefix) URL(path string) string {
	return string(p) + "/" + strings.TrimLeft(path, "/")
}

func (p urlPrefix) PathFromURL(url string) (string, bool) {
	rest, ok := strings.CutPrefix(url, string(p)+"/")
	if !ok || rest == "" || !ValidKey(rest) {
		return "", false
	}
	return rest, true
}

// ValidKey rejects empty segments and traversal so a key can never address
// anything outside the disk root.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
