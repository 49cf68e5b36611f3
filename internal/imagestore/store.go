package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dermassist/skin-triage-platform/pkg/logging"
)

// Store persists uploaded lesion images and returns an opaque reference that
// is recorded alongside the prediction.
type Store interface {
	Save(ctx context.Context, data []byte, contentType string) (ref string, err error)
}

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes images to an S3 bucket under a by-date prefix.
type S3Store struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
}

// NewS3Store creates an image store backed by S3.
func NewS3Store(s3Client S3API, bucket string, logger *logging.Logger) *S3Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Store{bucket: bucket, s3Client: s3Client, logger: logger}
}

// Enabled reports whether the store can accept uploads.
func (s *S3Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// Save uploads the image and returns its s3:// reference.
func (s *S3Store) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("imagestore: s3 store not configured")
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("uploads/v1/by-date/%d/%02d/%02d/%s%s",
		now.Year(), now.Month(), now.Day(), uuid.NewString(), extensionFor(contentType))

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("imagestore: s3 put %s: %w", key, err)
	}

	s.logger.Info("image archived to S3", "s3_key", key, "bytes", len(data))
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

// LocalStore writes images to a directory on disk. It is the fallback when no
// bucket is configured.
type LocalStore struct {
	dir    string
	logger *logging.Logger
}

// NewLocalStore creates a disk-backed image store rooted at dir.
func NewLocalStore(dir string, logger *logging.Logger) *LocalStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &LocalStore{dir: dir, logger: logger}
}

// Save writes the image under the store directory and returns its path.
func (s *LocalStore) Save(ctx context.Context, data []byte, contentType string) (string, error) {
	if s.dir == "" {
		return "", fmt.Errorf("imagestore: upload directory not configured")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("imagestore: create upload dir: %w", err)
	}

	name := uuid.NewString() + extensionFor(contentType)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("imagestore: write %s: %w", path, err)
	}

	s.logger.Info("image stored on disk", "path", path, "bytes", len(data))
	return path, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		return ".bin"
	}
}

var (
	_ Store = (*S3Store)(nil)
	_ Store = (*LocalStore)(nil)
)
