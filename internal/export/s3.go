package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"
)

// S3API is the subset of the S3 client used by S3Sink.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Sink uploads exported files to an S3 bucket under a key prefix.
type S3Sink struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Sink creates a sink with a client built from the default AWS
// configuration sources (environment, shared config and credentials files).
// An empty region leaves region resolution to those sources.
//
// The bucket is checked with HeadBucket so missing buckets and permission
// problems surface before any copy starts.
func NewS3Sink(ctx context.Context, bucket, prefix, region string) (*S3Sink, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	sink := NewS3SinkWithClient(s3.NewFromConfig(cfg), bucket, prefix)
	if err := sink.Check(ctx); err != nil {
		return nil, err
	}
	return sink, nil
}

// NewS3SinkWithClient creates a sink around an existing client.
func NewS3SinkWithClient(client S3API, bucket, prefix string) *S3Sink {
	return &S3Sink{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Check verifies that the bucket exists and is reachable.
func (s *S3Sink) Check(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("head bucket %s: %s: %w", s.bucket, apiErr.ErrorCode(), err)
		}
		return fmt.Errorf("head bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Location implements Sink.
func (s *S3Sink) Location() string {
	return "s3://" + path.Join(s.bucket, s.prefix)
}

// Key returns the object key for an exported file name.
func (s *S3Sink) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// Put implements Sink. The object's content type is detected from the file.
func (s *S3Sink) Put(ctx context.Context, name, src string) error {
	mt, err := mimetype.DetectFile(src)
	if err != nil {
		return fmt.Errorf("detect %s: %w", src, err)
	}

	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer f.Close()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.Key(name)),
		Body:        f,
		ContentType: aws.String(mt.String()),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", s.Key(name), err)
	}
	return nil
}
