package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"wallpaper-backend/internal/shared/storage/object"
)

// MediaPath is the URL prefix the API serves local objects under.
const MediaPath = "/media"

// Store implements ObjectStore using the local filesystem.
type Store struct {
	baseDir string
	baseURL string
	limit   int64
}

// New creates a local object store rooted at baseDir. Public URLs are built
// from publicBaseURL + MediaPath.
func New(baseDir, publicBaseURL string, limit int64) *Store {
	return &Store{
		baseDir: baseDir,
		baseURL: object.JoinURL(publicBaseURL, MediaPath),
		limit:   limit,
	}
}

// Dir is the directory served under MediaPath.
func (s *Store) Dir() string {
	return s.baseDir
}

// Save writes the reader to disk under folder with a random prefix.
func (s *Store) Save(ctx context.Context, folder, fileName string, r io.Reader) (object.Object, error) {
	key, err := object.BuildKey(folder, fileName)
	if err != nil {
		return object.Object{}, err
	}
	if err := ctx.Err(); err != nil {
		return object.Object{}, err
	}

	data, mimeType, err := object.ReadAll(r, s.limit)
	if err != nil {
		return object.Object{}, err
	}

	fullPath, err := s.resolve(key)
	if err != nil {
		return object.Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return object.Object{}, fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return object.Object{}, fmt.Errorf("write file: %w", err)
	}

	return object.Object{
		Key:       key,
		URL:       object.JoinURL(s.baseURL, key),
		MimeType:  mimeType,
		SizeBytes: int64(len(data)),
	}, nil
}

func (s *Store) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key")
	}
	return filepath.Join(s.baseDir, clean), nil
}

var _ object.ObjectStore = (*Store)(nil)
