package blobstore

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{
		Region:       "us-east-1",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		Bucket:       "vaultguard",
		BaseEndpoint: "http://127.0.0.1:9000",
	}
}

func restoreSeams(t *testing.T) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := presignPutObject
	origGet := presignGetObject
	origNow := now
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		presignGetObject = origGet
		now = origNow
	})
}

func TestNewS3Presigner_AppliesOptions(t *testing.T) {
	restoreSeams(t)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, "minioadmin", creds.AccessKeyID)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		require.NotNil(t, c)
		return &s3.PresignClient{}
	}

	p, err := NewS3Presigner(context.Background(), testOptions())
	require.NoError(t, err)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, DefaultExpiry, p.expiry)
}

func TestNewS3Presigner_Errors(t *testing.T) {
	restoreSeams(t)

	opts := testOptions()
	opts.Bucket = ""
	_, err := NewS3Presigner(context.Background(), opts)
	assert.Error(t, err)

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = NewS3Presigner(context.Background(), testOptions())
	assert.EqualError(t, err, "load-fail")
}

func TestS3Presigner_PresignPutAndGet(t *testing.T) {
	restoreSeams(t)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }

	var gotPut, gotGet string
	presignPutObject = func(_ *s3.PresignClient, _ context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		gotPut = *in.Bucket + "/" + *in.Key
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		assert.Equal(t, 5*time.Minute, po.Expires)
		return &v4.PresignedHTTPRequest{URL: "https://put.example/" + *in.Key, Method: http.MethodPut}, nil
	}
	presignGetObject = func(_ *s3.PresignClient, _ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		gotGet = *in.Bucket + "/" + *in.Key
		return &v4.PresignedHTTPRequest{URL: "https://get.example/" + *in.Key, Method: http.MethodGet}, nil
	}

	p := &S3Presigner{client: &s3.PresignClient{}, bucket: "vaultguard", expiry: 5 * time.Minute}

	url, exp, err := p.PresignPut(context.Background(), "vaults/a/items/b")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://put.example/"))
	assert.Equal(t, fixed.Add(5*time.Minute), exp)
	assert.Equal(t, "vaultguard/vaults/a/items/b", gotPut)

	url, _, err = p.PresignGet(context.Background(), "vaults/a/items/b")
	require.NoError(t, err)
	assert.Equal(t, "https://get.example/vaults/a/items/b", url)
	assert.Equal(t, "vaultguard/vaults/a/items/b", gotGet)
}

func TestS3Presigner_PresignError(t *testing.T) {
	restoreSeams(t)
	presignPutObject = func(*s3.PresignClient, context.Context, *s3.PutObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("sign-fail")
	}

	p := &S3Presigner{client: &s3.PresignClient{}, bucket: "b", expiry: time.Minute}
	_, _, err := p.PresignPut(context.Background(), "k")
	assert.EqualError(t, err, "sign-fail")
}
