// Package upload stores collected recordings in S3-compatible object
// storage and derives their descriptive object names.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/tatlingua/speechbot/core/logger"
)

// ErrFileNotFound indicates the local file handed to Upload does not exist.
var ErrFileNotFound = errors.New("upload: local file does not exist")

// S3Client abstracts the S3 API operations used by [S3Store].
// The [s3.Client] type satisfies this interface.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads recordings to Amazon S3 or any S3-compatible object store
// (MinIO, R2, etc.). Object names are placed under an optional key prefix.
//
// The caller is responsible for configuring the [s3.Client] with appropriate
// credentials, region, and endpoint.
type S3Store struct {
	client S3Client
	bucket string
	prefix string
}

// NewS3 creates an S3-backed recording store.
// Prefix is prepended to all object keys; pass "" for no prefix.
func NewS3(client S3Client, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// key builds the full S3 object key for the given object name.
func (s *S3Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// Upload sends the local file to the bucket under objectName via PutObject.
// Returns an error wrapping [ErrFileNotFound] when the local file is absent.
func (s *S3Store) Upload(ctx context.Context, localPath, objectName string, binary bool) error {
	f, err := os.Open(localPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("upload %s: %w", localPath, ErrFileNotFound)
		}
		return fmt.Errorf("upload %s: %w", localPath, err)
	}
	defer f.Close()

	var size int64
	if info, statErr := f.Stat(); statErr == nil {
		size = info.Size()
	}

	contentType := "text/plain"
	if binary {
		contentType = "audio/mpeg"
	}

	start := time.Now()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(objectName)),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logger.Error(ctx, "storage.s3", "put.fail",
			slog.String("bucket", s.bucket),
			slog.String("object_key", s.key(objectName)),
			slog.String("err", err.Error()),
			slog.String("err_code", apiErrorCode(err)),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
		return fmt.Errorf("upload %s: %w", objectName, err)
	}

	logger.Info(ctx, "storage.s3", "put.success",
		slog.String("status", "ok"),
		slog.String("bucket", s.bucket),
		slog.String("object_key", s.key(objectName)),
		slog.Int64("size_bytes", size),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// apiErrorCode extracts the S3 API error code for logging, if any.
func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
