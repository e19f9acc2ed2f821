package health

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectHeader is the subset of the S3 client used by S3Checker.
type ObjectHeader interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Checker checks that the dataset object is reachable.
type S3Checker struct {
	client ObjectHeader
	bucket string
	key    string
}

// NewS3Checker creates a checker for s3://bucket/key.
func NewS3Checker(client ObjectHeader, bucket, key string) *S3Checker {
	return &S3Checker{client: client, bucket: bucket, key: key}
}

// HealthCheck issues HEAD on the dataset object.
func (c *S3Checker) HealthCheck(ctx context.Context) error {
	_, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.key),
	})
	if err != nil {
		return fmt.Errorf("head s3://%s/%s: %w", c.bucket, c.key, err)
	}
	return nil
}
