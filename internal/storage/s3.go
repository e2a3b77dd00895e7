package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config locates the photo bucket. Endpoint is set for MinIO or R2.
type S3Config struct {
	Bucket   string
	Region   string
	Key      string
	Secret   string
	Endpoint string
}

// s3API is the subset of *s3.Client the store uses
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps photos as objects named products/<id>
type S3Store struct {
	client s3API
	bucket string
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage/s3: S3_BUCKET is not configured")
	}
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.Region)}
	if cfg.Key != "" && cfg.Secret != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, ""),
		))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage/s3: load config: %w", err)
	}
	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	return &S3Store{client: s3.NewFromConfig(awsCfg, clientOpts...), bucket: cfg.Bucket}, nil
}

func objectKey(productID uint) string {
	return fmt.Sprintf("products/%d", productID)
}

func (s *S3Store) Put(ctx context.Context, productID uint, photo Photo) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey(productID)),
		Body:          bytes.NewReader(photo.Data),
		ContentType:   aws.String(photo.ContentType),
		ContentLength: aws.Int64(int64(len(photo.Data))),
	})
	if err != nil {
		return fmt.Errorf("storage/s3: put %s: %w", objectKey(productID), err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, productID uint) (*Photo, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(productID)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrPhotoNotFound
		}
		return nil, fmt.Errorf("storage/s3: get %s: %w", objectKey(productID), err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("storage/s3: read %s: %w", objectKey(productID), err)
	}
	return &Photo{Data: data, ContentType: aws.ToString(out.ContentType)}, nil
}

func (s *S3Store) Delete(ctx context.Context, productID uint) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(productID)),
	})
	if err != nil {
		return fmt.Errorf("storage/s3: delete %s: %w", objectKey(productID), err)
	}
	return nil
}
