package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/dvolkovs/filevault/internal/common"
)

// S3Config carries the settings for an S3-compatible backend (AWS or MinIO).
type S3Config struct {
	User         string
	Password     string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// S3Store keeps blobs as objects in one bucket, named by their storage key.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store builds a client with static credentials against the configured
// endpoint.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.User,
			cfg.Password,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3Store) put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("s3 put %q: %w", key, err)
	}
	return nil
}

func (s *S3Store) get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("s3 get %q: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read %q: %w", key, err)
	}
	return data, nil
}

// Write uploads data under a fresh key. An object put is already atomic on
// the S3 side.
func (s *S3Store) Write(ctx context.Context, data []byte) (string, error) {
	key := uuid.NewString()
	if err := s.put(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

// Read returns the original bytes stored under key.
func (s *S3Store) Read(ctx context.Context, key string) ([]byte, error) {
	if uuid.Validate(key) != nil {
		return nil, common.ErrNotFound
	}
	return s.get(ctx, key)
}

// WriteDerived uploads the width variant; overwriting is allowed.
func (s *S3Store) WriteDerived(ctx context.Context, key string, width int, data []byte) error {
	if uuid.Validate(key) != nil || width <= 0 {
		return common.ErrNotFound
	}
	return s.put(ctx, DerivedKey(key, width), data)
}

// ReadDerived returns the width variant of key.
func (s *S3Store) ReadDerived(ctx context.Context, key string, width int) ([]byte, error) {
	if uuid.Validate(key) != nil || width <= 0 {
		return nil, common.ErrNotFound
	}
	return s.get(ctx, DerivedKey(key, width))
}
