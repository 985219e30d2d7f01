package imagekit

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"path"
	"strings"

	ik "github.com/imagekit-developer/imagekit-go"
	"github.com/imagekit-developer/imagekit-go/api/uploader"

	"wallpaper-backend/internal/shared/storage/object"
	"wallpaper-backend/internal/shared/util"
)

// Options configures the ImageKit client.
type Options struct {
	PrivateKey  string
	PublicKey   string
	URLEndpoint string
	MaxBytes    int64
}

// uploadAPI is the part of the ImageKit SDK the store calls.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, param uploader.UploadParam) (*uploader.UploadResponse, error)
}

// Store uploads images through the ImageKit upload API.
type Store struct {
	api   uploadAPI
	limit int64
}

// New creates an ImageKit store. The private key authenticates uploads.
func New(opts Options) (*Store, error) {
	if strings.TrimSpace(opts.PrivateKey) == "" {
		return nil, fmt.Errorf("imagekit private key is required")
	}
	client := ik.NewFromParams(ik.NewParams{
		PrivateKey:  strings.TrimSpace(opts.PrivateKey),
		PublicKey:   strings.TrimSpace(opts.PublicKey),
		UrlEndpoint: strings.TrimSpace(opts.URLEndpoint),
	})
	return newWithAPI(&client.Uploader, opts.MaxBytes), nil
}

func newWithAPI(api uploadAPI, limit int64) *Store {
	return &Store{api: api, limit: limit}
}

// Save uploads the image into folder and returns the CDN URL ImageKit reports.
func (s *Store) Save(ctx context.Context, folder, fileName string, r io.Reader) (object.Object, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return object.Object{}, fmt.Errorf("sanitize file name: %w", err)
	}
	data, mimeType, err := object.ReadAll(r, s.limit)
	if err != nil {
		return object.Object{}, err
	}

	unique := true
	resp, err := s.api.Upload(ctx, base64.StdEncoding.EncodeToString(data), uploader.UploadParam{
		FileName:          name,
		Folder:            path.Clean("/" + strings.TrimSpace(folder)),
		UseUniqueFileName: &unique,
	})
	if err != nil {
		return object.Object{}, fmt.Errorf("imagekit upload: %w", err)
	}
	if resp == nil || resp.Data.Url == "" {
		return object.Object{}, fmt.Errorf("imagekit upload returned no url")
	}

	size := int64(resp.Data.Size)
	if size == 0 {
		size = int64(len(data))
	}
	key := strings.TrimLeft(resp.Data.FilePath, "/")
	if key == "" {
		key = resp.Data.FileId
	}
	return object.Object{
		Key:       key,
		URL:       resp.Data.Url,
		MimeType:  mimeType,
		SizeBytes: size,
	}, nil
}

var _ object.ObjectStore = (*Store)(nil)
