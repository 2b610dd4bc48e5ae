package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/SaiRama-Doddi/Matrixindrani-Silks/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var (
	// ErrUpload wraps transport or quota failures while storing an
	// object. Uploads are not retried at this layer.
	ErrUpload = errors.New("media upload failed")
)

// objectPrefix is the fixed logical folder all saree images land in.
const objectPrefix = "sarees"

// Object is a binary image to be stored.
type Object struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Store uploads image objects and deletes them by their public URL.
type Store interface {
	Upload(ctx context.Context, obj Object) (string, error)
	// Delete removes the object behind the URL. A missing object is
	// not an error; deletion is idempotent.
	Delete(ctx context.Context, rawURL string) error
}

type minioStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	logger        *zap.Logger
}

// NewMinioStore connects to the MinIO endpoint and ensures the image
// bucket exists.
func NewMinioStore(ctx context.Context, cfg config.MediaConfig, logger *zap.Logger) (Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", cfg.Bucket, err)
		}
	}

	publicBaseURL := cfg.PublicBaseURL
	if publicBaseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicBaseURL = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	return &minioStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}, nil
}

// Upload stores the object under the sarees/ prefix and returns its
// public URL.
func (s *minioStore) Upload(ctx context.Context, obj Object) (string, error) {
	key := objectName(obj.Filename)

	_, err := s.client.PutObject(ctx, s.bucket, key, obj.Reader, obj.Size,
		minio.PutObjectOptions{ContentType: obj.ContentType})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, key)

	s.logger.Debug("Uploaded media object",
		zap.String("key", key),
		zap.String("url", url),
	)

	return url, nil
}

// Delete derives the object key from the URL and removes the object.
// MinIO treats removal of an absent object as success, which gives us
// the idempotency the catalog relies on.
func (s *minioStore) Delete(ctx context.Context, rawURL string) error {
	key, err := ObjectKey(rawURL)
	if err != nil {
		return fmt.Errorf("failed to derive object key: %w", err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %q: %w", key, err)
	}

	return nil
}

// objectName builds a unique object key from the original filename,
// keeping the extension for content-type sniffing by browsers.
func objectName(filename string) string {
	ext := path.Ext(filename)
	base := strings.TrimSuffix(path.Base(filename), ext)
	if base == "" || base == "." {
		base = "image"
	}
	return fmt.Sprintf("%s/%s-%d%s", objectPrefix, base, time.Now().UnixNano(), ext)
}

// ObjectKey extracts the store-internal object key from a public URL.
// The last two path segments form the key (prefix + object name), so
// the bucket and any host-path mounting are ignored.
func ObjectKey(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	segments := []string{}
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	if len(segments) < 2 {
		return "", fmt.Errorf("url %q has no object path", rawURL)
	}

	return path.Join(segments[len(segments)-2], segments[len(segments)-1]), nil
}
