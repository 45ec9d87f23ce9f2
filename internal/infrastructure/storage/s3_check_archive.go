// Package storage archives printed check layouts in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	appbillpay "github.com/Daniel159642/pos-sub005/internal/application/billpay"
	infraconfig "github.com/Daniel159642/pos-sub005/internal/infrastructure/config"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/telemetry"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

const checkContentType = "application/json"

// S3CheckArchive stores check layouts as JSON objects and hands back a
// presigned download link. Works with AWS S3 and S3-compatible servers
// such as MinIO.
type S3CheckArchive struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	keyPrefix     string
	presignExpiry time.Duration
	logger        *zap.Logger
}

// S3CheckArchiveOption is a functional option for configuring S3CheckArchive
type S3CheckArchiveOption func(*S3CheckArchive)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3CheckArchiveOption {
	return func(a *S3CheckArchive) {
		a.logger = logger
	}
}

// WithPresignExpiry overrides the lifetime of returned links
func WithPresignExpiry(d time.Duration) S3CheckArchiveOption {
	return func(a *S3CheckArchive) {
		a.presignExpiry = d
	}
}

// NewS3CheckArchive creates an archive from configuration. Without static
// credentials the default AWS credential chain is used.
func NewS3CheckArchive(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...S3CheckArchiveOption) (*S3CheckArchive, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == "") {
		return nil, errors.New("storage access key and secret key must be set together")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	var endpoint string
	if cfg.Endpoint != "" {
		endpoint = cfg.Endpoint
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	archive := &S3CheckArchive{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		keyPrefix:     cfg.KeyPrefix,
		presignExpiry: cfg.PresignExpiry,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(archive)
	}
	if archive.presignExpiry <= 0 {
		archive.presignExpiry = 15 * time.Minute
	}
	return archive, nil
}

// EnsureBucket creates the bucket if it does not exist
func (a *S3CheckArchive) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	a.logger.Info("Creating check archive bucket", zap.String("bucket", a.bucket))
	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Archive uploads body under the prefixed key and returns a presigned GET URL
func (a *S3CheckArchive) Archive(ctx context.Context, key string, body []byte) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	objectKey := a.ObjectKey(key)

	ctx, span := telemetry.StartSpan(ctx, "storage.archive_check",
		telemetry.WithAttribute("s3.bucket", a.bucket),
		telemetry.WithAttribute("s3.key", objectKey),
	)
	defer span.End()

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(checkContentType),
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return "", fmt.Errorf("failed to upload check: %w", err)
	}

	req, err := a.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(a.presignExpiry))
	if err != nil {
		telemetry.RecordError(span, err)
		return "", fmt.Errorf("failed to presign check URL: %w", err)
	}

	a.logger.Debug("check archived", zap.String("key", objectKey), zap.Int("bytes", len(body)))
	return req.URL, nil
}

// ObjectKey returns the full object key for an archive key
func (a *S3CheckArchive) ObjectKey(key string) string {
	if a.keyPrefix == "" {
		return key
	}
	return path.Join(a.keyPrefix, key)
}

// Bucket returns the bucket name
func (a *S3CheckArchive) Bucket() string {
	return a.bucket
}

var _ appbillpay.CheckArchive = (*S3CheckArchive)(nil)
