// Package aws defines functions used to interact with S3 compatible object storage
package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3 can delete at most 1000 objects in one batch request
const deleteBatch = 1000

type Options struct {
	// Provider is either "s3" or "r2"
	Provider        string
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// AccountID is only used by R2 to build the endpoint
	AccountID string
}

type S3Client struct {
	C      *s3.Client
	Bucket *string
}

// NewS3 creates the client and makes sure the bucket exists
func NewS3(ctx context.Context, o Options) (*S3Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			o.AccessKeyID,
			o.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(o.Bucket)

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		switch o.Provider {
		case "r2":
			so.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", o.AccountID))
			so.Region = "auto"
		default:
			so.Region = o.Region
		}
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", o.Bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3Client{
		C:      client,
		Bucket: bucket,
	}, nil
}

// PutSnapshot stores a JSON document under key
func (c *S3Client) PutSnapshot(ctx context.Context, key string, body []byte) error {
	_, err := c.C.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      c.Bucket,
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s, %w", key, err)
	}

	return nil
}

// DeletePrefix removes every object whose key starts with prefix
func (c *S3Client) DeletePrefix(ctx context.Context, prefix string) error {
	var keys []string

	p := s3.NewListObjectsV2Paginator(c.C, &s3.ListObjectsV2Input{
		Bucket: c.Bucket,
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to list objects under %s, %w", prefix, err)
		}

		for _, o := range page.Contents {
			keys = append(keys, aws.ToString(o.Key))
		}
	}

	for start := 0; start < len(keys); start += deleteBatch {
		end := min(start+deleteBatch, len(keys))

		objects := make([]types.ObjectIdentifier, end-start)
		for i, key := range keys[start:end] {
			objects[i] = types.ObjectIdentifier{Key: aws.String(key)}
		}

		if _, err := c.C.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: c.Bucket,
			Delete: &types.Delete{Objects: objects},
		}); err != nil {
			return fmt.Errorf("failed to delete objects under %s, %w", prefix, err)
		}
	}

	return nil
}
