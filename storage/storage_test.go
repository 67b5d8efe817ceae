package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	key := NewKey("Holiday.JPG", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(key, "2026/03/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
	assert.NotEqual(t, key, NewKey("Holiday.JPG", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)))
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, "image", MediaType("image/png"))
	assert.Equal(t, "video", MediaType("video/mp4"))
	assert.Equal(t, "audio", MediaType("audio/mpeg"))
	assert.Equal(t, "other", MediaType("application/pdf"))
}

func TestLocalPutAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Put(ctx, "2026/01/a.txt", strings.NewReader("hello"), 5, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/2026/01/a.txt", url)

	data, err := os.ReadFile(filepath.Join(dir, "2026", "01", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Delete(ctx, "2026/01/a.txt"))
	require.NoError(t, store.Delete(ctx, "2026/01/a.txt"), "deleting twice is fine")
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)
	_, err = store.Put(context.Background(), "../outside.txt", strings.NewReader("x"), 1, "text/plain")
	assert.Error(t, err)
}

type fakeS3 struct {
	objects map[string]string
	types   map[string]string
	fail    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = string(data)
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3PutAndDelete(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{}, types: map[string]string{}}
	store := &S3{client: fake, bucket: "blog", publicURL: "https://cdn.example.com"}
	ctx := context.Background()

	url, err := store.Put(ctx, "2026/01/a.png", strings.NewReader("png"), 3, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/2026/01/a.png", url)
	assert.Equal(t, "png", fake.objects["2026/01/a.png"])
	assert.Equal(t, "image/png", fake.types["2026/01/a.png"])

	require.NoError(t, store.Delete(ctx, "2026/01/a.png"))
	assert.Empty(t, fake.objects)

	fake.fail = errors.New("access denied")
	_, err = store.Put(ctx, "k", strings.NewReader(""), 0, "text/plain")
	assert.ErrorContains(t, err, "access denied")
}
