package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/fync-app/fync-server/internal/logger"
	"github.com/fync-app/fync-server/internal/model"
)

// Internal adapter interface to enable mocking without a real MinIO server.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// Wrapper to adapt *minio.Client to minioAPI.
type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}
func (w minioClientWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucketName, opts)
}
func (w minioClientWrapper) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}
func (w minioClientWrapper) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return w.c.RemoveObject(ctx, bucketName, objectName, opts)
}
func (w minioClientWrapper) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return w.c.StatObject(ctx, bucketName, objectName, opts)
}

var _ model.ImageStorage = (*Client)(nil)

type Client struct {
	api           minioAPI
	bucket        string
	publicBaseURL string
	logger        *logger.Logger
}

// NewClient creates a new MinIO storage client using a real *minio.Client instance.
func NewClient(ctx context.Context, client *minio.Client, bucket, publicBaseURL string, logger *logger.Logger) (*Client, error) {
	return NewClientWithAPI(ctx, minioClientWrapper{c: client}, bucket, publicBaseURL, logger)
}

// NewClientWithAPI allows injecting a mockable API (used in tests).
func NewClientWithAPI(ctx context.Context, api minioAPI, bucket, publicBaseURL string, logger *logger.Logger) (*Client, error) {
	c := &Client{
		api:           api,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}

	// Ensure bucket exists
	err := c.ensureBucketExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return c, nil
}

// ensureBucketExists creates the bucket if it doesn't exist
func (c *Client) ensureBucketExists(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// UploadImage validates and stores an image in the identity's slot, replacing
// any previous image there. The returned URL is publicly resolvable.
func (c *Client) UploadImage(ctx context.Context, userID uuid.UUID, slot model.ImageSlot, reader io.Reader, size int64, contentType string) (string, error) {
	if !slot.Valid() {
		return "", model.NewValidationError("slot", fmt.Sprintf("unknown image slot %q", slot))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", model.NewValidationError("image", "file must be an image")
	}
	if size <= 0 {
		return "", model.NewValidationError("image", "no file provided")
	}
	if size > slot.MaxSize() {
		return "", model.NewValidationError("image",
			fmt.Sprintf("file size must be less than %d MB", slot.MaxSize()>>20))
	}

	key := fmt.Sprintf("%s/%s.%s", userID, slot, extensionFor(contentType))

	// The put overwrites the same key, but a re-upload with a different
	// content type would leave the previous object behind under its old
	// extension. Stale cleanup is advisory: failures are logged, not fatal.
	for _, ext := range imageExtensions {
		staleKey := fmt.Sprintf("%s/%s.%s", userID, slot, ext)
		if staleKey == key {
			continue
		}
		exists, err := c.Exists(ctx, staleKey)
		if err != nil {
			c.logger.Warn("could not check stale image", "key", staleKey, "error", err.Error())
			continue
		}
		if !exists {
			continue
		}
		if err := c.api.RemoveObject(ctx, c.bucket, staleKey, minio.RemoveObjectOptions{}); err != nil {
			c.logger.Warn("could not delete stale image", "key", staleKey, "error", err.Error())
		}
	}

	_, err := c.api.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "max-age=3600",
	})
	if err != nil {
		return "", &model.StorageError{Op: "upload", Err: err}
	}

	return fmt.Sprintf("%s/%s/%s", c.publicBaseURL, c.bucket, key), nil
}

// imageExtensions lists every extension UploadImage can produce for the
// content types it accepts. Stale cleanup checks these sibling keys.
var imageExtensions = []string{"jpg", "png", "gif", "webp"}

// Exists checks if an object exists in the identity's slot.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.api.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		// Check if it's a "not found" error
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object: %w", err)
	}
	return true, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return strings.TrimPrefix(contentType, "image/")
	}
}
