// Package blob stores uploaded images and returns their public URLs.
package blob

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

var ErrUnknownKey = errors.New("blob: url does not belong to this store")

// Store uploads local files and deletes previously uploaded blobs by URL.
type Store interface {
	Upload(ctx context.Context, localPath string) (string, error)
	Delete(ctx context.Context, url string) error
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// KeyFromURL extracts the public id of a Cloudinary delivery URL:
// everything after /upload/, minus an optional version segment and the
// file extension.
func KeyFromURL(url string) string {
	_, rest, ok := strings.Cut(url, "/upload/")
	if !ok || rest == "" {
		return ""
	}
	parts := strings.Split(rest, "/")
	if len(parts) > 1 && versionSegment.MatchString(parts[0]) {
		parts = parts[1:]
	}
	key := strings.Join(parts, "/")
	if i := strings.LastIndex(key, "."); i > strings.LastIndex(key, "/") {
		key = key[:i]
	}
	return key
}
