package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// Creating Dependency
type S3Service struct {
	client *s3.Client
	logger zerolog.Logger
}

// Using Constructor Pattern to initalize our s3Service
func NewS3Service(client *s3.Client, logger zerolog.Logger) *S3Service {
	return &S3Service{client: client, logger: logger.With().Str("component", "s3").Logger()}
}

// PutObject writes body under key in one call. There is no retry here; the
// SDK's own retryer is the only one in play.
func (service *S3Service) PutObject(ctx context.Context, bucket string, key string, body []byte, contentType string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	input := &s3.PutObjectInput{
		Bucket:            aws.String(bucket),
		Key:               aws.String(key),
		Body:              bytes.NewReader(body),
		ContentLength:     aws.Int64(int64(len(body))),
		ContentType:       aws.String(contentType),
		ChecksumAlgorithm: types.ChecksumAlgorithmSha256,
	}
	if _, err := service.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	service.logger.Debug().Str("bucket", bucket).Str("key", key).Int("bytes", len(body)).Msg("object stored")
	return nil
}

func (service *S3Service) DeleteObject(ctx context.Context, bucket string, key string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	deleteInput := &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	if _, err := service.client.DeleteObject(ctx, deleteInput); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	service.logger.Debug().Str("bucket", bucket).Str("key", key).Msg("object deleted")
	return nil
}
