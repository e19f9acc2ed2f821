package artist

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/onnwee/artistrank/internal/tracing"
)

// ObjectGetter is the subset of the S3 client used by S3Repository.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config holds configuration for an S3-compatible (S3, R2, MinIO) dataset object.
type S3Config struct {
	Bucket          string
	Key             string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Repository reads the dataset document from an object on every List call.
type S3Repository struct {
	client ObjectGetter
	bucket string
	key    string
	format Format
}

// NewS3Client builds an S3 client for an S3-compatible endpoint using static credentials.
func NewS3Client(cfg S3Config) (*s3.Client, error) {
	if cfg.AccessKeyID == "" {
		return nil, errors.New("access key ID is required")
	}
	if cfg.SecretAccessKey == "" {
		return nil, errors.New("secret access key is required")
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := s3.Options{
		Region: region,
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts), nil
}

// NewS3Repository creates a repository reading bucket/key through client.
func NewS3Repository(client ObjectGetter, bucket, key string) (*S3Repository, error) {
	if bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if key == "" {
		return nil, errors.New("object key is required")
	}
	return &S3Repository{
		client: client,
		bucket: bucket,
		key:    key,
		format: FormatFromPath(key),
	}, nil
}

// List downloads and decodes the dataset object.
func (r *S3Repository) List(ctx context.Context) (artists []Artist, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "artist.s3.list")
	defer func() { endSpan(err) }()

	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object s3://%s/%s: %w", r.bucket, r.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object s3://%s/%s: %w", r.bucket, r.key, err)
	}

	artists, err = Decode(data, r.format)
	if err != nil {
		return nil, fmt.Errorf("failed to load object s3://%s/%s: %w", r.bucket, r.key, err)
	}
	return artists, nil
}
