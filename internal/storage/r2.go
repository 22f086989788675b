// Package storage issues pre-signed write URLs for the media bucket.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/belovedzguard/beloved-api/pkg/config"
	"github.com/belovedzguard/beloved-api/pkg/errors"
)

// Presigner grants a time-boxed PUT for one object key and content type.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
}

// R2Presigner signs requests for an S3-compatible bucket such as
// Cloudflare R2.
type R2Presigner struct {
	client *s3.PresignClient
	bucket string
}

// New returns an R2Presigner for cfg, or an Unconfigured presigner naming
// the missing settings.
func New(cfg config.StorageConfig) Presigner {
	if missing := cfg.Missing(); len(missing) > 0 {
		return Unconfigured{Missing: missing}
	}
	return NewR2Presigner(cfg)
}

// NewR2Presigner creates a presigner. cfg must be complete.
func NewR2Presigner(cfg config.StorageConfig) *R2Presigner {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(strings.TrimRight(cfg.Endpoint, "/")),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	})

	return &R2Presigner{
		client: s3.NewPresignClient(client),
		bucket: cfg.Bucket,
	}
}

// PresignPut implements Presigner.
func (p *R2Presigner) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	req, err := p.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}
	return req.URL, nil
}

// Unconfigured is the presigner of a deployment without storage settings.
// Every call fails with a storage configuration error.
type Unconfigured struct {
	Missing []string
}

// PresignPut implements Presigner.
func (u Unconfigured) PresignPut(context.Context, string, string, time.Duration) (string, error) {
	return "", errors.ErrStorageConfiguration.WithDetails(map[string]interface{}{
		"missing": u.Missing,
	})
}
