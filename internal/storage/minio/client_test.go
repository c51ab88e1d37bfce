package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fync-app/fync-server/internal/model"
	"github.com/fync-app/fync-server/internal/testutil"
)

// fakeMinio implements minioAPI for testing without network.
type fakeMinio struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error

	putInfo minioLib.UploadInfo
	putErr  error
	putKey  string

	removeErr   error
	removedKeys []string

	existingKeys []string
	statErr      error
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}
func (f *fakeMinio) MakeBucket(_ context.Context, _ string, _ minioLib.MakeBucketOptions) error {
	return f.makeBucketErr
}
func (f *fakeMinio) PutObject(_ context.Context, _ string, key string, _ io.Reader, _ int64, _ minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	f.putKey = key
	return f.putInfo, f.putErr
}
func (f *fakeMinio) RemoveObject(_ context.Context, _ string, key string, _ minioLib.RemoveObjectOptions) error {
	f.removedKeys = append(f.removedKeys, key)
	return f.removeErr
}
func (f *fakeMinio) StatObject(_ context.Context, _ string, key string, _ minioLib.StatObjectOptions) (minioLib.ObjectInfo, error) {
	if f.statErr != nil {
		return minioLib.ObjectInfo{}, f.statErr
	}
	for _, existing := range f.existingKeys {
		if existing == key {
			return minioLib.ObjectInfo{Key: key}, nil
		}
	}
	return minioLib.ObjectInfo{}, minioLib.ErrorResponse{Code: "NoSuchKey"}
}

func newTestClient(t *testing.T, api *fakeMinio) *Client {
	t.Helper()
	c, err := NewClientWithAPI(context.Background(), api, "profile-pictures", "http://localhost:9000", testutil.MakeNoopLogger())
	require.NoError(t, err)
	return c
}

func TestNewClientWithAPI_BucketExists(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true}
	c, err := NewClientWithAPI(ctx, api, "b", "http://localhost:9000", testutil.MakeNoopLogger())
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, "b", c.bucket)
}

func TestNewClientWithAPI_CreatesBucket(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: false}
	_, err := NewClientWithAPI(ctx, api, "b", "http://localhost:9000", testutil.MakeNoopLogger())
	require.NoError(t, err)
}

func TestUploadImage_ReturnsPublicURL(t *testing.T) {
	api := &fakeMinio{bucketExists: true}
	c := newTestClient(t, api)
	userID := uuid.New()

	url, err := c.UploadImage(context.Background(), userID, model.SlotProfile,
		bytes.NewReader([]byte("img")), 3, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/profile-pictures/"+userID.String()+"/profile.jpg", url)
	assert.Equal(t, userID.String()+"/profile.jpg", api.putKey)
}

func TestUploadImage_RejectsNonImage(t *testing.T) {
	api := &fakeMinio{bucketExists: true}
	c := newTestClient(t, api)

	_, err := c.UploadImage(context.Background(), uuid.New(), model.SlotProfile,
		strings.NewReader("nope"), 4, "application/pdf")
	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestUploadImage_RejectsOversize(t *testing.T) {
	api := &fakeMinio{bucketExists: true}
	c := newTestClient(t, api)

	_, err := c.UploadImage(context.Background(), uuid.New(), model.SlotProfile,
		strings.NewReader(""), model.MaxProfileImageSize+1, "image/png")
	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)

	// the cover slot allows a larger payload
	_, err = c.UploadImage(context.Background(), uuid.New(), model.SlotCover,
		strings.NewReader("x"), model.MaxProfileImageSize+1, "image/png")
	require.NoError(t, err)
}

func TestUploadImage_RejectsUnknownSlot(t *testing.T) {
	api := &fakeMinio{bucketExists: true}
	c := newTestClient(t, api)

	_, err := c.UploadImage(context.Background(), uuid.New(), model.ImageSlot("avatar"),
		strings.NewReader("x"), 1, "image/png")
	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestUploadImage_RemovesStaleSibling(t *testing.T) {
	userID := uuid.New()
	api := &fakeMinio{
		bucketExists: true,
		existingKeys: []string{userID.String() + "/profile.jpg"},
	}
	c := newTestClient(t, api)

	_, err := c.UploadImage(context.Background(), userID, model.SlotProfile,
		strings.NewReader("x"), 1, "image/png")
	require.NoError(t, err)
	assert.Equal(t, userID.String()+"/profile.png", api.putKey)
	assert.Equal(t, []string{userID.String() + "/profile.jpg"}, api.removedKeys)
}

func TestUploadImage_NoStaleSiblingNoDelete(t *testing.T) {
	api := &fakeMinio{bucketExists: true}
	c := newTestClient(t, api)

	_, err := c.UploadImage(context.Background(), uuid.New(), model.SlotProfile,
		strings.NewReader("x"), 1, "image/png")
	require.NoError(t, err)
	assert.Empty(t, api.removedKeys)
}

func TestUploadImage_StaleDeleteFailureIsNonFatal(t *testing.T) {
	userID := uuid.New()
	api := &fakeMinio{
		bucketExists: true,
		existingKeys: []string{userID.String() + "/profile.jpg"},
		removeErr:    errors.New("boom"),
	}
	c := newTestClient(t, api)

	_, err := c.UploadImage(context.Background(), userID, model.SlotProfile,
		strings.NewReader("x"), 1, "image/png")
	require.NoError(t, err)
	assert.Len(t, api.removedKeys, 1)
}

func TestUploadImage_StaleCheckFailureIsNonFatal(t *testing.T) {
	api := &fakeMinio{bucketExists: true, statErr: errors.New("network down")}
	c := newTestClient(t, api)

	_, err := c.UploadImage(context.Background(), uuid.New(), model.SlotProfile,
		strings.NewReader("x"), 1, "image/png")
	require.NoError(t, err)
	assert.Empty(t, api.removedKeys)
}

func TestUploadImage_PutFailureIsStorageError(t *testing.T) {
	api := &fakeMinio{bucketExists: true, putErr: errors.New("network down")}
	c := newTestClient(t, api)

	_, err := c.UploadImage(context.Background(), uuid.New(), model.SlotProfile,
		strings.NewReader("x"), 1, "image/png")
	var sErr *model.StorageError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "upload", sErr.Op)
}
