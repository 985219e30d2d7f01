package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"wallpaper-backend/internal/shared/storage/object"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures the S3 store.
type Options struct {
	Region        string
	Bucket        string
	Prefix        string
	PublicBaseURL string
	MaxBytes      int64
}

// Store implements ObjectStore using Amazon S3.
type Store struct {
	client  putObjectAPI
	bucket  string
	prefix  string
	baseURL string
	limit   int64
}

// New creates an S3-backed object store using the default credential chain.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newWithClient(s3.NewFromConfig(cfg), cfg.Region, opts), nil
}

func newWithClient(client putObjectAPI, region string, opts Options) *Store {
	return &Store{
		client:  client,
		bucket:  opts.Bucket,
		prefix:  normalizePrefix(opts.Prefix),
		baseURL: publicBaseURL(opts.PublicBaseURL, opts.Bucket, region),
		limit:   opts.MaxBytes,
	}
}

// Save uploads the reader contents to S3 under folder.
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

	objectKey := applyPrefix(s.prefix, key)
	input := &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(objectKey),
		Body:                 bytes.NewReader(data),
		ContentLength:        aws.Int64(int64(len(data))),
		ContentType:          aws.String(mimeType),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return object.Object{}, fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}

	return object.Object{
		Key:       objectKey,
		URL:       object.JoinURL(s.baseURL, objectKey),
		MimeType:  mimeType,
		SizeBytes: int64(len(data)),
	}, nil
}

func publicBaseURL(configured, bucket, region string) string {
	if base := strings.TrimSpace(configured); base != "" {
		return strings.TrimRight(base, "/")
	}
	if region == "" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

var _ object.ObjectStore = (*Store)(nil)
