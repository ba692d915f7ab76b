package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileStore is a filesystem-backed ObjectStore rooted at a base directory.
// Keys map directly onto relative paths under the root.
type FileStore struct {
	root    string
	baseURL string
	logger  *slog.Logger
}

var _ ObjectStore = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at root. baseURL, when non-empty,
// is prepended to keys by URL; otherwise URL returns "/" + key.
func NewFileStore(root string, baseURL string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating store root: %w", err)
	}
	return &FileStore{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}, nil
}

// path resolves a key to an absolute path under the root.
func (s *FileStore) path(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

// Download copies the object at key to localPath.
func (s *FileStore) Download(ctx context.Context, key string, localPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := s.path(key)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return fmt.Errorf("opening object %s: %w", key, err)
	}
	defer in.Close()

	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("creating local file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying object %s: %w", key, err)
	}
	return nil
}

// Upload stores the file at localPath under key, replacing any existing
// object. The write goes through a temp file and rename so readers never
// observe a partial object.
func (s *FileStore) Upload(ctx context.Context, localPath string, key string, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dst, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating object directory: %w", err)
	}

	in, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("opening local file: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("creating temp object: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("writing object %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp object: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("publishing object %s: %w", key, err)
	}

	s.logger.Debug("object stored",
		slog.String("key", key),
		slog.String("content_type", contentType),
	)
	return nil
}

// URL returns the public playback URL for a key.
func (s *FileStore) URL(key string) string {
	if s.baseURL == "" {
		return "/" + key
	}
	return s.baseURL + "/" + key
}

// Delete removes the object at key. Missing objects are not an error.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting object %s: %w", key, err)
	}
	return nil
}
