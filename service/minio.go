package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Tharun0024/gen-ai-25/config"
	"github.com/Tharun0024/gen-ai-25/model"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Archiver keeps a copy of every submitted document and returns where the
// copy lives.
type Archiver interface {
	Archive(ctx context.Context, sessionID string, doc model.Document) (string, error)
}

// MinioArchive stores uploaded documents in a MinIO bucket.
type MinioArchive struct {
	client *minio.Client
	bucket string
	config *config.ArchiveConfig
}

func NewMinioArchive(cfg *config.ArchiveConfig) (*MinioArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioArchive{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *MinioArchive) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.config.Region})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// Archive uploads the document under <session>/<uuid>/<name> and returns
// its object URL.
func (s *MinioArchive) Archive(ctx context.Context, sessionID string, doc model.Document) (string, error) {
	objectName := fmt.Sprintf("%s/%s/%s", sessionID, uuid.New().String(), doc.Name)

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(doc.Data), int64(len(doc.Data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive document: %w", err)
	}

	return s.ObjectURL(objectName), nil
}

// ObjectURL returns the direct URL of an archived object
func (s *MinioArchive) ObjectURL(objectName string) string {
	protocol := "http"
	if s.config.UseSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, s.config.Endpoint, s.bucket, objectName)
}
