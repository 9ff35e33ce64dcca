package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"fridge-chef/internal/infrastructure/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePublish(t *testing.T) {
	store := NewLocalStore("/artifacts/")

	url, err := store.Publish(context.Background(), "output/run-1/recipe_0.pdf", Key("run-1", "recipe_0.pdf"), ContentTypePDF)
	require.NoError(t, err)
	assert.Equal(t, "/artifacts/run-1/recipe_0.pdf", url)
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)

	store, err := New(context.Background(), config.StorageConfig{Driver: "local", OutputDir: "out", PublicBase: "/a"})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3StorePublish(t *testing.T) {
	local := filepath.Join(t.TempDir(), "recipe_image_0.png")
	require.NoError(t, os.WriteFile(local, []byte("png-bytes"), 0644))

	putter := &fakePutter{}
	store := newS3StoreWithClient(putter, config.S3Config{Bucket: "fridge-bucket", Prefix: "fridge-chef/"})

	url, err := store.Publish(context.Background(), local, Key("run-1", "recipe_image_0.png"), ContentTypePNG)
	require.NoError(t, err)

	assert.Equal(t, "https://fridge-bucket.s3.amazonaws.com/fridge-chef/run-1/recipe_image_0.png", url)
	assert.Equal(t, "fridge-bucket", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "fridge-chef/run-1/recipe_image_0.png", aws.ToString(putter.input.Key))
	assert.Equal(t, ContentTypePNG, aws.ToString(putter.input.ContentType))
	assert.Equal(t, []byte("png-bytes"), putter.body)
}

func TestS3StorePublishErrors(t *testing.T) {
	store := newS3StoreWithClient(&fakePutter{}, config.S3Config{Bucket: "b"})
	_, err := store.Publish(context.Background(), filepath.Join(t.TempDir(), "missing.png"), "k", ContentTypePNG)
	assert.Error(t, err)

	local := filepath.Join(t.TempDir(), "a.pdf")
	require.NoError(t, os.WriteFile(local, []byte("pdf"), 0644))
	store = newS3StoreWithClient(&fakePutter{err: errors.New("denied")}, config.S3Config{Bucket: "b"})
	_, err = store.Publish(context.Background(), local, "k", ContentTypePDF)
	assert.ErrorContains(t, err, "denied")
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), config.S3Config{})
	assert.Error(t, err)
}
