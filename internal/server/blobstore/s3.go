// Package blobstore presigns object storage URLs for encrypted attachments.
package blobstore

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultExpiry is how long a presigned URL stays valid.
const DefaultExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	now = time.Now
)

// Options configures an S3-compatible backend (AWS or MinIO).
type Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	BaseEndpoint string
	Expiry       time.Duration
}

// S3Presigner signs PUT and GET requests against a single bucket.
type S3Presigner struct {
	client *s3.PresignClient
	bucket string
	expiry time.Duration
}

// NewS3Presigner loads the AWS config with static credentials and builds
// a presign client. No network call is made.
func NewS3Presigner(ctx context.Context, opts Options) (*S3Presigner, error) {
	if opts.Bucket == "" {
		return nil, errors.New("blobstore: bucket is required")
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			// MinIO serves buckets under the path, not a subdomain.
			o.UsePathStyle = true
		}
	})

	expiry := opts.Expiry
	if expiry <= 0 {
		expiry = DefaultExpiry
	}

	return &S3Presigner{
		client: newS3PresignClient(client),
		bucket: opts.Bucket,
		expiry: expiry,
	}, nil
}

func (p *S3Presigner) PresignPut(ctx context.Context, key string) (string, time.Time, error) {
	expiresAt := now().Add(p.expiry)
	req, err := presignPutObject(p.client, ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return "", time.Time{}, err
	}
	return req.URL, expiresAt, nil
}

func (p *S3Presigner) PresignGet(ctx context.Context, key string) (string, time.Time, error) {
	expiresAt := now().Add(p.expiry)
	req, err := presignGetObject(p.client, ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return "", time.Time{}, err
	}
	return req.URL, expiresAt, nil
}
