package export

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/colonyops/violations/internal/core/config"
)

// S3Sink uploads exports to a single bucket under an optional key prefix.
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3Option customizes the underlying S3 client.
type S3Option func(*s3.Options)

// WithHTTPClient replaces the HTTP client used for S3 requests.
func WithHTTPClient(c *http.Client) S3Option {
	return func(o *s3.Options) { o.HTTPClient = c }
}

// NewS3Sink builds a sink for dest (s3://bucket/prefix). Empty credentials
// fall back to the default AWS credential chain.
func NewS3Sink(ctx context.Context, dest string, cfg config.S3Config, opts ...S3Option) (*S3Sink, error) {
	bucket, prefix, err := config.ParseS3URL(dest)
	if err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		for _, opt := range opts {
			opt(o)
		}
	})

	return &S3Sink{client: client, bucket: bucket, prefix: prefix}, nil
}

// Key returns the object key an export named name is stored under.
func (s *S3Sink) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Put uploads data, replacing any previous export with the same name.
func (s *S3Sink) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := s.Key(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return "s3://" + s.bucket + "/" + key, nil
}

// NewSink returns an S3 sink for s3:// destinations and a directory sink otherwise.
func NewSink(ctx context.Context, cfg config.ExportConfig) (Sink, error) {
	if strings.HasPrefix(cfg.Dest, "s3://") {
		return NewS3Sink(ctx, cfg.Dest, cfg.S3)
	}
	dest := cfg.Dest
	if dest == "" {
		dest = "."
	}
	return DirSink{Dir: dest}, nil
}
