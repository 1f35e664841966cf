package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/codebuildervaibhav/asr-console/internal/types"
)

// MinioConfig locates the bucket that receives export mirrors
type MinioConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Prefix          string
}

// MinioStorage mirrors exported artifacts to an S3-compatible bucket
type MinioStorage struct {
	client     *minio.Client
	bucketName string
	prefix     string
}

// NewMinioStorage connects to MinIO and makes sure the bucket exists
func NewMinioStorage(ctx context.Context, cfg MinioConfig) (*MinioStorage, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse minio endpoint: %w", err)
	}

	secure := u.Scheme == "https"
	endpoint := u.Host
	if endpoint == "" {
		endpoint = "localhost:9000"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		log.Printf("Bucket %s does not exist, creating", cfg.BucketName)
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinioStorage{
		client:     client,
		bucketName: cfg.BucketName,
		prefix:     cfg.Prefix,
	}, nil
}

// Save uploads the artifact as <prefix>/<yyyy>/<mm>/<dd>/<name>
func (m *MinioStorage) Save(ctx context.Context, a *types.Artifact) (string, error) {
	objectName := m.objectName(a, time.Now())

	info, err := m.client.PutObject(ctx, m.bucketName, objectName, bytes.NewReader(a.Data), int64(len(a.Data)), minio.PutObjectOptions{
		ContentType: a.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}

	log.Printf("Mirrored %s to minio (%d bytes)", objectName, info.Size)
	return fmt.Sprintf("s3://%s/%s", m.bucketName, objectName), nil
}

func (m *MinioStorage) objectName(a *types.Artifact, t time.Time) string {
	return path.Join(m.prefix,
		fmt.Sprintf("%d", t.Year()),
		fmt.Sprintf("%02d", t.Month()),
		fmt.Sprintf("%02d", t.Day()),
		sanitizeFilename(a.Name))
}
