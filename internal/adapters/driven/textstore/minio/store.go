// Package minio stores extracted text as objects in a MinIO (S3) bucket.
// Handles have the form "minio://<bucket>/<object>".
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/custodia-labs/plagscan/internal/core/domain"
	"github.com/custodia-labs/plagscan/internal/core/ports/driven"
	"github.com/custodia-labs/plagscan/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.TextStore = (*Store)(nil)

// DefaultBucket is used when no bucket is configured.
const DefaultBucket = "plagscan-text"

const scheme = "minio://"

// Config holds object store connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Secure    bool
}

// Store is a TextStore on a MinIO bucket.
type Store struct {
	client *minio.Client
	bucket string
}

// NewStore connects and creates the bucket if it does not exist.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: minio endpoint is required", domain.ErrInvalidInput)
	}
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("textstore: created bucket %s", cfg.Bucket)
	}

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads the text as text/plain.
func (s *Store) Put(ctx context.Context, documentID, text string) (string, error) {
	if documentID == "" {
		return "", domain.ErrInvalidInput
	}
	object := ObjectName(documentID)
	_, err := s.client.PutObject(ctx, s.bucket, object, strings.NewReader(text), int64(len(text)),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"})
	if err != nil {
		return "", fmt.Errorf("uploading text: %w", err)
	}
	return Handle(s.bucket, object), nil
}

// Get downloads the object behind a handle.
func (s *Store) Get(ctx context.Context, handle string) (string, error) {
	bucket, object, err := ParseHandle(handle)
	if err != nil {
		return "", err
	}

	obj, err := s.client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("fetching text: %w", err)
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("reading text: %w", err)
	}
	return buf.String(), nil
}

// ObjectName returns the object key for a document.
func ObjectName(documentID string) string {
	return "text/" + documentID + ".txt"
}

// Handle builds a handle from bucket and object.
func Handle(bucket, object string) string {
	return scheme + bucket + "/" + object
}

// ParseHandle splits a handle into bucket and object.
func ParseHandle(handle string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(handle, scheme)
	if !ok {
		return "", "", fmt.Errorf("%w: not a minio handle: %q", domain.ErrInvalidInput, handle)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%w: malformed minio handle: %q", domain.ErrInvalidInput, handle)
	}
	return bucket, object, nil
}
