package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	for _, bad := range []string{"", "/etc/passwd", "../secret", "a/../../b", "..", "x\x00y"} {
		_, err := cleanKey(bad)
		assert.ErrorIs(t, err, ErrBadKey, bad)
	}
	k, err := cleanKey(`ads\a1/./img.jpg`)
	require.NoError(t, err)
	assert.Equal(t, "ads/a1/img.jpg", k)
}

func TestLocalPutAndDelete(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir)
	require.NoError(t, err)

	url, err := l.Put(context.Background(), "stores/s1/logo.png", "image/png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "/media/stores/s1/logo.png", url)

	b, err := os.ReadFile(filepath.Join(dir, "stores", "s1", "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(b))

	require.NoError(t, l.Delete(context.Background(), "stores/s1/logo.png"))
	require.NoError(t, l.Delete(context.Background(), "stores/s1/logo.png"))
	_, err = l.Put(context.Background(), "../escape.png", "image/png", []byte("x"))
	assert.ErrorIs(t, err, ErrBadKey)
}

type fakeS3 struct {
	s3iface.S3API
	put    *s3.PutObjectInput
	body   []byte
	delKey string
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.put = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.delKey = aws.StringValue(in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3PutUsesBucketAndPublicURL(t *testing.T) {
	fake := &fakeS3{}
	s := NewS3WithClient(fake, "media", "https://cdn.heavyequip.test/")

	url, err := s.Put(context.Background(), "ads/a1/1.webp", "image/webp", []byte("webp"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.heavyequip.test/ads/a1/1.webp", url)
	assert.Equal(t, "media", aws.StringValue(fake.put.Bucket))
	assert.Equal(t, "image/webp", aws.StringValue(fake.put.ContentType))
	assert.Equal(t, "public-read", aws.StringValue(fake.put.ACL))
	assert.Equal(t, "webp", string(fake.body))

	require.NoError(t, s.Delete(context.Background(), "ads/a1/1.webp"))
	assert.Equal(t, "ads/a1/1.webp", fake.delKey)
}
