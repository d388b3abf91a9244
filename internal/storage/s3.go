// Package storage provides presigned S3 uploads for bet slip images.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"youbet/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const presignExpiry = time.Hour

// Presigner hands out presigned upload URLs so clients push slip images
// straight to S3 without the image bytes transiting the API.
type Presigner interface {
	PresignUpload(ctx context.Context, filename, contentType string) (*Upload, error)
}

// Upload is a presigned upload grant.
type Upload struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// S3Storage implements Presigner against a real bucket.
type S3Storage struct {
	presign *s3.PresignClient
	bucket  string
}

// NewS3Storage builds an S3-backed Presigner for the given bucket and region.
func NewS3Storage(ctx context.Context, bucket, region string) (*S3Storage, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3Storage{
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
	}, nil
}

// PresignUpload returns a presigned PUT for a slip object. Keys are
// namespaced under slips/ and prefixed with a UUID so uploads never collide.
func (s *S3Storage) PresignUpload(ctx context.Context, filename, contentType string) (*Upload, error) {
	filename = sanitizeFilename(filename)
	if filename == "" {
		return nil, models.NewInvalidRequestError("filename is required")
	}

	key := fmt.Sprintf("slips/%s-%s", uuid.New().String(), filename)
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &Upload{
		Key:       key,
		URL:       req.URL,
		ExpiresAt: time.Now().Add(presignExpiry),
	}, nil
}

// sanitizeFilename strips path separators so a client cannot steer the key
// outside the slips/ prefix.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
