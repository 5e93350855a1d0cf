// Package invoices hands out presigned object-storage URLs so invoice
// files move between the browser and the bucket without passing through
// the API.
package invoices

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Service struct {
	client     *minio.Client
	bucket     string
	presignTTL time.Duration
}

// New connects to the S3-compatible endpoint and ensures the bucket
// exists.
func New(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool, presignTTL time.Duration) (*Service, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("invoices: connect %s: %w", endpoint, err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("invoices: check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("invoices: create bucket %s: %w", bucket, err)
		}
	}

	return &Service{client: client, bucket: bucket, presignTTL: presignTTL}, nil
}

// PresignUpload returns a presigned PUT URL for a fresh object key. The
// key embeds a UUID so clients can never overwrite each other's files.
func (s *Service) PresignUpload(ctx context.Context, filename string) (map[string]any, error) {
	objectKey := objectKeyFor(filename)
	presigned, err := s.client.PresignedPutObject(ctx, s.bucket, objectKey, s.presignTTL)
	if err != nil {
		return nil, fmt.Errorf("invoices: presign upload: %w", err)
	}
	return map[string]any{
		"url":       presigned.String(),
		"objectKey": objectKey,
		"expiresIn": int(s.presignTTL.Seconds()),
	}, nil
}

// PresignDownload returns a presigned GET URL for an existing object.
func (s *Service) PresignDownload(ctx context.Context, objectKey string) (map[string]any, error) {
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, s.presignTTL, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("invoices: presign download: %w", err)
	}
	return map[string]any{
		"url":       presigned.String(),
		"objectKey": objectKey,
		"expiresIn": int(s.presignTTL.Seconds()),
	}, nil
}

// objectKeyFor builds a collision-free object key that keeps the
// original extension for content-type sniffing.
func objectKeyFor(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	return fmt.Sprintf("%s/%s%s", time.Now().UTC().Format("2006/01"), uuid.NewString(), ext)
}
