package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/mossy-p/socio-relay/config"
	"github.com/mossy-p/socio-relay/internal/models"
)

// Uploader stores media blobs in an S3-compatible bucket.
type Uploader struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func newClient(cfg config.MediaConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return client, nil
}

// NewUploader connects to the bucket, creating it when missing.
func NewUploader(ctx context.Context, cfg config.MediaConfig) (*Uploader, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Uploader{client: client, bucket: cfg.Bucket, publicURL: cfg.PublicURL}, nil
}

// Upload stores r under a fresh object id and returns its URL and id.
func (u *Uploader) Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (models.UploadResponse, error) {
	name := objectName(filename)
	_, err := u.client.PutObject(ctx, u.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return models.UploadResponse{}, fmt.Errorf("failed to upload file: %w", err)
	}
	return models.UploadResponse{URL: u.objectURL(name), PublicID: name}, nil
}

func objectName(filename string) string {
	return "images/" + uuid.New().String() + strings.ToLower(filepath.Ext(filename))
}

func (u *Uploader) objectURL(name string) string {
	base := strings.TrimSuffix(u.publicURL, "/")
	if base == "" {
		endpoint := u.client.EndpointURL()
		base = fmt.Sprintf("%s://%s", endpoint.Scheme, endpoint.Host)
	}
	return fmt.Sprintf("%s/%s/%s", base, u.bucket, name)
}
