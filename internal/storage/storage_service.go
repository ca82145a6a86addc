// Package storage handles S3/MinIO operations for catalog image storage.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/geovoyage/backend/internal/config"
)

// StorageService handles S3/MinIO operations for image storage.
// A nil *StorageService is valid and means storage is not configured;
// callers must check Enabled before use.
type StorageService struct {
	client             *s3.Client
	presignClient      *s3.PresignClient
	bucket             string
	presignedURLExpiry time.Duration
}

// NewStorageService creates a new storage service with an S3/MinIO client.
// Returns nil when no endpoint is configured.
func NewStorageService(cfg *config.StorageConfig) (*StorageService, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}

	// Endpoint may or may not include the protocol already
	var endpointURL string
	if strings.HasPrefix(cfg.Endpoint, "http://") || strings.HasPrefix(cfg.Endpoint, "https://") {
		endpointURL = cfg.Endpoint
	} else {
		protocol := "http"
		if cfg.UseSSL {
			protocol = "https"
		}
		endpointURL = protocol + "://" + cfg.Endpoint
	}

	client := s3.New(s3.Options{
		Region: cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		BaseEndpoint: aws.String(endpointURL),
		UsePathStyle: true, // Required for MinIO
	})

	presignedURLExpiry := cfg.PresignedURLExpiry
	if presignedURLExpiry == 0 {
		presignedURLExpiry = 15 * time.Minute
	}

	return &StorageService{
		client:             client,
		presignClient:      s3.NewPresignClient(client),
		bucket:             cfg.Bucket,
		presignedURLExpiry: presignedURLExpiry,
	}, nil
}

// Enabled reports whether the storage backend is configured
func (s *StorageService) Enabled() bool {
	return s != nil
}

// PresignUpload generates a pre-signed PUT URL for uploading an object.
// The client uploads directly to storage, the backend never proxies bytes.
func (s *StorageService) PresignUpload(ctx context.Context, key, contentType string) (string, time.Duration, error) {
	presignedReq, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.presignedURLExpiry))
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate pre-signed upload URL: %w", err)
	}

	return presignedReq.URL, s.presignedURLExpiry, nil
}

// PresignDownload generates a pre-signed GET URL for an object
func (s *StorageService) PresignDownload(ctx context.Context, key string) (string, time.Duration, error) {
	presignedReq, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignedURLExpiry))
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	return presignedReq.URL, s.presignedURLExpiry, nil
}

// DeleteObject deletes a single object from storage
func (s *StorageService) DeleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// Bucket returns the configured bucket name
func (s *StorageService) Bucket() string {
	return s.bucket
}

// PresignedURLExpiry returns the configured pre-signed URL lifetime
func (s *StorageService) PresignedURLExpiry() time.Duration {
	return s.presignedURLExpiry
}
