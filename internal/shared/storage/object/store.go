package object

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"wallpaper-backend/internal/shared/util"
)

var (
	// ErrEmptyObject is returned when the reader yields no bytes.
	ErrEmptyObject = errors.New("object is empty")
	// ErrInvalidFileName is returned when the upload name cannot form a key.
	ErrInvalidFileName = util.ErrInvalidFileName
)

// Object describes a stored image.
type Object struct {
	Key       string
	URL       string
	MimeType  string
	SizeBytes int64
}

// ObjectStore uploads image bytes to an asset host and returns a durable public URL.
type ObjectStore interface {
	Save(ctx context.Context, folder, fileName string, r io.Reader) (Object, error)
}

// BuildKey joins folder and a sanitized, randomly prefixed file name into a
// slash-separated key without a leading slash.
func BuildKey(folder, fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	finalName := fmt.Sprintf("%s_%s", util.RandomID(), name)
	cleanFolder := strings.Trim(path.Clean("/"+strings.TrimSpace(folder)), "/")
	if cleanFolder == "" {
		return finalName, nil
	}
	return cleanFolder + "/" + finalName, nil
}

// ReadAll buffers r up to limit bytes (0 means unlimited) and detects its
// content type.
func ReadAll(r io.Reader, limit int64) ([]byte, string, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, "", fmt.Errorf("object exceeds %d bytes", limit)
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyObject
	}
	sniff := data
	if len(sniff) > 512 {
		sniff = sniff[:512]
	}
	return data, http.DetectContentType(sniff), nil
}

// JoinURL appends key to base with exactly one separating slash. Each key
// segment is path-escaped so names with spaces, '#' or '?' stay addressable.
func JoinURL(base, key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
