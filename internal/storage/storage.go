// Package storage uploads exported resumes to S3-compatible object storage and
// hands out presigned download links.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/jonathan/ats-resume-builder/internal/types"
)

// DefaultURLTTL is how long a presigned link stays valid.
const DefaultURLTTL = 15 * time.Minute

// KeyPrefix is prepended to every object key.
const KeyPrefix = "exports"

// Options configures the export bucket.
type Options struct {
	Bucket    string
	Region    string
	Endpoint  string // R2, MinIO and other S3-compatible services
	AccessKey string
	SecretKey string
	URLTTL    time.Duration
}

// Storage writes exports to a single bucket.
type Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
	now     func() time.Time
}

// New creates a Storage. Without static keys the default AWS credential
// chain is used.
func New(ctx context.Context, opts Options) (*Storage, error) {
	if opts.Bucket == "" {
		return nil, errors.New("bucket is required")
	}
	if opts.URLTTL <= 0 {
		opts.URLTTL = DefaultURLTTL
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(strings.TrimSuffix(opts.Endpoint, "/"))
			o.UsePathStyle = true
			// Several S3-compatible services reject default CRC32 trailers.
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
	})

	return &Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  opts.Bucket,
		ttl:     opts.URLTTL,
		now:     time.Now,
	}, nil
}

// NewKey returns a unique object key for an export with the given extension.
func NewKey(now time.Time, ext string) string {
	name := uuid.NewString()
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	return path.Join(KeyPrefix, now.UTC().Format("2006/01/02"), name)
}

// Put uploads body under key and returns a presigned GET link for it.
func (s *Storage) Put(ctx context.Context, key, contentType string, body []byte) (*types.StoredExport, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	link, err := s.URL(ctx, key)
	if err != nil {
		return nil, err
	}

	return &types.StoredExport{
		Key:       key,
		URL:       link,
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}, nil
}

// URL presigns a GET request for key.
func (s *Storage) URL(ctx context.Context, key string) (string, error) {
	request, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return request.URL, nil
}
