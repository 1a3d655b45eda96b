// Package s3 implements port.FileStorage over AWS S3 for practices that
// archive case files in a bucket instead of Dropbox. Storage paths map to
// object keys with the leading slash stripped.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"casedesk/internal/config"
	"casedesk/internal/domain"
	"casedesk/internal/port"
)

type s3Storage struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
}

// NewStorage creates an S3-backed FileStorage implementation.
func NewStorage(cfg *config.S3Config) (port.FileStorage, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return &s3Storage{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
	}, nil
}

func pathToKey(path string) string {
	return strings.TrimPrefix(path, "/")
}

func (s *s3Storage) Download(ctx context.Context, path string) (*port.DownloadResult, error) {
	key := pathToKey(path)
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("s3 download %s: %w", path, domain.ErrPathNotFound)
		}
		return nil, fmt.Errorf("s3 download %s: %w", path, err)
	}
	defer func() { _ = result.Body.Close() }()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 download read: %w", err)
	}

	// S3 keys are exact; the requested path is already canonical.
	return &port.DownloadResult{Content: data, ResolvedPath: path}, nil
}

func (s *s3Storage) Upload(ctx context.Context, path string, content io.Reader, contentType string) (*port.UploadResult, error) {
	key := pathToKey(path)
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        content,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload %s: %w", path, err)
	}
	return &port.UploadResult{Path: path}, nil
}
