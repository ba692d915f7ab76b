// Package storage provides the object store abstraction that transcoded
// media is read from and written to, plus the canonical key layout for
// HLS output.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by object stores.
var (
	// ErrObjectNotFound is returned when the requested key does not exist.
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidKey is returned for keys that escape the store root or are empty.
	ErrInvalidKey = errors.New("invalid object key")
)

// ObjectStore is the gateway to durable media storage. Implementations must
// be safe for concurrent use.
type ObjectStore interface {
	// Download copies the object at key to localPath.
	Download(ctx context.Context, key string, localPath string) error
	// Upload stores the file at localPath under key, replacing any
	// existing object.
	Upload(ctx context.Context, localPath string, key string, contentType string) error
	// URL returns the public playback URL for a key.
	URL(key string) string
	// Delete removes the object at key. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
}

// RenditionKey returns the object key for one encoded rendition.
// Layout: videos/{owner}/{video}/hls/{quality}.mp4
func RenditionKey(ownerID, videoID, quality string) string {
	return fmt.Sprintf("videos/%s/%s/hls/%s.mp4", ownerID, videoID, quality)
}

// ManifestKey returns the object key for the HLS master playlist.
// Layout: videos/{owner}/{video}/hls/master.m3u8
func ManifestKey(ownerID, videoID string) string {
	return fmt.Sprintf("videos/%s/%s/hls/master.m3u8", ownerID, videoID)
}

// ValidateKey rejects empty keys, absolute paths, and any key containing a
// path traversal segment.
func ValidateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if strings.HasPrefix(key, "/") {
		return fmt.Errorf("%w: %q is absolute", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "" {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}
