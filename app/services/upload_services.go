package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/qrmenu/pkg/apperr"
	"github.com/shashiranjanraj/qrmenu/pkg/metrics"
	"github.com/shashiranjanraj/qrmenu/pkg/storage"
)

const (
	DefaultUploadFolder = "menu-items"
	sniffLen            = 512
)

// imageTypes maps every accepted content type to its file extension.
var imageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

var (
	folderJunk    = regexp.MustCompile(`[^a-z0-9\-_/]+`)
	folderSlashes = regexp.MustCompile(`/{2,}`)
)

const (
	msgUploadUnavailable = "Image upload is not configured"
	msgFileMissing       = "The file field is required."
	msgFileType          = "Only JPEG, PNG, WebP and GIF images are supported."
)

// UploadService proxies image bytes to the configured storage disk.
type UploadService struct {
	disk     storage.Disk
	maxBytes int64
	now      func() time.Time
}

// NewUploadService returns a service writing to disk. A nil disk means
// storage is not configured and every call answers Unavailable.
func NewUploadService(disk storage.Disk, maxBytes int64) *UploadService {
	return &UploadService{disk: disk, maxBytes: maxBytes, now: time.Now}
}

// MaxBytes is the largest accepted file.
func (s *UploadService) MaxBytes() int64 { return s.maxBytes }

// Ready fails with Unavailable when no storage disk is configured.
func (s *UploadService) Ready() error {
	if s.disk == nil {
		metrics.Uploads.WithLabelValues("unavailable").Inc()
		return apperr.Unavailable(msgUploadUnavailable)
	}
	return nil
}

// SanitizeFolder lower-cases folder, drops characters outside [a-z0-9-_/],
// collapses repeated slashes and trims them at both ends. An empty result
// falls back to DefaultUploadFolder.
func SanitizeFolder(folder string) string {
	f := folderJunk.ReplaceAllString(strings.ToLower(strings.TrimSpace(folder)), "")
	f = strings.Trim(folderSlashes.ReplaceAllString(f, "/"), "/")
	if f == "" {
		return DefaultUploadFolder
	}
	return f
}

// Store validates an uploaded image and writes it under
// <folder>/<unix millis>-<uuid>.<ext>, returning its public URL.
func (s *UploadService) Store(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error) {
	if err := s.Ready(); err != nil {
		return "", err
	}
	if fh == nil {
		return "", s.reject(msgFileMissing)
	}

	declared := strings.ToLower(strings.TrimSpace(fh.Header.Get("Content-Type")))
	if declared == "image/jpg" {
		declared = "image/jpeg"
	}
	if _, ok := imageTypes[declared]; !ok {
		return "", s.reject(msgFileType)
	}
	if fh.Size > s.maxBytes {
		return "", s.reject(fmt.Sprintf("The file must not be larger than %s.", humanBytes(s.maxBytes)))
	}

	f, err := fh.Open()
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("upload: open part: %w", err))
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", apperr.Internal(fmt.Errorf("upload: read part: %w", err))
	}
	head = head[:n]

	sniffed := http.DetectContentType(head)
	ext, ok := imageTypes[sniffed]
	if !ok {
		return "", s.reject(msgFileType)
	}

	key := fmt.Sprintf("%s/%d-%s.%s", SanitizeFolder(folder), s.now().UnixMilli(), uuid.NewString(), ext)
	body := io.MultiReader(bytes.NewReader(head), f)
	if err := s.disk.Put(ctx, key, body, sniffed); err != nil {
		metrics.Uploads.WithLabelValues("failed").Inc()
		return "", apperr.Internal(fmt.Errorf("upload: put %s: %w", key, err))
	}

	metrics.Uploads.WithLabelValues("stored").Inc()
	return s.disk.URL(key), nil
}

// Remove deletes an object previously returned by Store. URLs that do not
// belong to the configured disk are rejected.
func (s *UploadService) Remove(ctx context.Context, url string) error {
	if s.disk == nil {
		return apperr.Unavailable(msgUploadUnavailable)
	}
	key, ok := s.disk.PathFromURL(strings.TrimSpace(url))
	if !ok {
		msg := "The url does not point to an uploaded image."
		return apperr.Validation(msg, map[string]string{"url": msg})
	}
	if err := s.disk.Delete(ctx, key); err != nil {
		return apperr.Internal(fmt.Errorf("upload: delete %s: %w", key, err))
	}
	return nil
}

func (s *UploadService) reject(msg string) error {
	metrics.Uploads.WithLabelValues("rejected").Inc()
	return apperr.Validation(msg, map[string]string{"file": msg})
}

// RejectTooLarge is used when the request body exceeds the limit before the
// file part could be read.
func (s *UploadService) RejectTooLarge() error {
	return s.reject(fmt.Sprintf("The file must not be larger than %s.", humanBytes(s.maxBytes)))
}

func humanBytes(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	if n >= 1<<10 && n%(1<<10) == 0 {
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}

type DeleteUploadInput struct {
	URL string `json:"url" validate:"required,max=2048"`
}
