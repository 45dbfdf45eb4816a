package media

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-account-service/internal/application"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestObjectPath(t *testing.T) {
	p := ObjectPath(application.MediaAvatar, "u-1", "Me.PNG")
	assert.True(t, strings.HasPrefix(p, "avatars/u-1/"))
	assert.True(t, strings.HasSuffix(p, ".png"))
	assert.NotEqual(t, p, ObjectPath(application.MediaAvatar, "u-1", "Me.PNG"))

	assert.True(t, strings.HasPrefix(ObjectPath(application.MediaCoverImage, "u-1", "c"), "covers/u-1/"))
}

func TestS3Uploader_Upload(t *testing.T) {
	api := &fakePutter{}
	u := newS3Uploader(api, S3Config{Bucket: "media", BaseEndpoint: "http://127.0.0.1:9000/"})

	url, err := u.Upload(context.Background(), "u-1", application.MediaAvatar, &application.Upload{
		Filename: "a.png", ContentType: "image/png", Body: strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)

	key := aws.ToString(api.in.Key)
	assert.Equal(t, "media", aws.ToString(api.in.Bucket))
	assert.True(t, strings.HasPrefix(key, "avatars/u-1/"))
	assert.Equal(t, "image/png", aws.ToString(api.in.ContentType))
	assert.Equal(t, int64(9), aws.ToInt64(api.in.ContentLength))
	assert.Equal(t, "png-bytes", api.body)
	assert.Equal(t, "http://127.0.0.1:9000/media/"+key, url)
}

func TestS3Uploader_UploadError(t *testing.T) {
	u := newS3Uploader(&fakePutter{err: errors.New("denied")}, S3Config{Bucket: "media", Region: "eu-west-1"})
	_, err := u.Upload(context.Background(), "u-1", application.MediaCoverImage, &application.Upload{
		Filename: "c.jpg", Body: strings.NewReader("x"),
	})
	assert.ErrorContains(t, err, "denied")
}

func TestS3PublicBase(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", s3PublicBase(S3Config{PublicURL: "https://cdn.example.com/"}))
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com", s3PublicBase(S3Config{Bucket: "media", Region: "eu-west-1"}))
}

func TestGCSPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/b/avatars/u/x.png", GCSPublicURL("b", "avatars/u/x.png"))
}
