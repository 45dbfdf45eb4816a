package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/oksasatya/go-account-service/internal/application"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// GCSUploader stores images in a GCS bucket that is publicly readable.
type GCSUploader struct {
	client *storage.Client
	bucket string
}

func NewGCSUploader(client *storage.Client, bucket string) *GCSUploader {
	return &GCSUploader{client: client, bucket: bucket}
}

func (g *GCSUploader) Upload(ctx context.Context, userID string, kind application.MediaKind, f *application.Upload) (string, error) {
	if g.client == nil || g.bucket == "" {
		return "", errors.New("gcs not configured")
	}
	objectPath := ObjectPath(kind, userID, f.Filename)
	wc := g.client.Bucket(g.bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentTypeOf(f)
	wc.ChunkSize = 0 // single request; uploads are size-capped at the handler
	if _, err := io.Copy(wc, f.Body); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("gcs write %s: %w", objectPath, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("gcs close %s: %w", objectPath, err)
	}
	return GCSPublicURL(g.bucket, objectPath), nil
}

func GCSPublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}

var _ application.MediaUploader = (*GCSUploader)(nil)
