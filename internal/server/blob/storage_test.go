package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/photoglow/internal/server/config"
)

func newTestStorage() *Storage {
	return NewStorage(&sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "pictures",
	})
}

func stubAWSConfig(t *testing.T) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{}, nil
	}

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://127.0.0.1:9000" {
			t.Fatalf("BaseEndpoint not applied: %v", opts.BaseEndpoint)
		}
		if !opts.UsePathStyle {
			t.Fatalf("path style not enabled")
		}
		return &s3.Client{}
	}
}

func TestRandomKey(t *testing.T) {
	k1 := RandomKey()
	k2 := RandomKey()
	if !strings.HasPrefix(k1, "enhanced/") {
		t.Fatalf("unexpected key prefix: %q", k1)
	}
	if k1 == k2 {
		t.Fatalf("keys must be unique: %q", k1)
	}
}

func TestUpload(t *testing.T) {
	stubAWSConfig(t)
	origPut := putObject
	t.Cleanup(func() { putObject = origPut })

	var gotBucket, gotKey, gotContentType string
	var gotBody []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		gotBucket = *in.Bucket
		gotKey = *in.Key
		gotContentType = *in.ContentType
		b, err := io.ReadAll(in.Body)
		if err != nil {
			t.Fatalf("reading body: %v", err)
		}
		gotBody = b
		return &s3.PutObjectOutput{}, nil
	}

	key, err := newTestStorage().Upload(context.Background(), []byte("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("Upload err: %v", err)
	}
	if key != gotKey {
		t.Fatalf("returned key %q != stored key %q", key, gotKey)
	}
	if gotBucket != "pictures" {
		t.Fatalf("bucket mismatch: %q", gotBucket)
	}
	if gotContentType != "image/png" {
		t.Fatalf("content type mismatch: %q", gotContentType)
	}
	if string(gotBody) != "png-bytes" {
		t.Fatalf("body mismatch: %q", gotBody)
	}
}

func TestUpload_PutError(t *testing.T) {
	stubAWSConfig(t)
	origPut := putObject
	t.Cleanup(func() { putObject = origPut })

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("put-fail")
	}

	_, err := newTestStorage().Upload(context.Background(), []byte("x"), "image/png")
	if err == nil || err.Error() != "put-fail" {
		t.Fatalf("expected put-fail, got %v", err)
	}
}

func TestPresignGet(t *testing.T) {
	stubAWSConfig(t)
	origPresign := presignGetObject
	origNewPre := newS3PresignClient
	t.Cleanup(func() {
		presignGetObject = origPresign
		newS3PresignClient = origNewPre
	})

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if *in.Bucket != "pictures" || *in.Key != "enhanced/2026/1/1/abc" {
			t.Fatalf("unexpected input: %q %q", *in.Bucket, *in.Key)
		}
		return &v4.PresignedHTTPRequest{URL: "http://signed.example/abc"}, nil
	}

	url, err := newTestStorage().PresignGet(context.Background(), "enhanced/2026/1/1/abc")
	if err != nil {
		t.Fatalf("PresignGet err: %v", err)
	}
	if url != "http://signed.example/abc" {
		t.Fatalf("unexpected url: %q", url)
	}
}

func TestGetClient_LoadError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	if _, err := newTestStorage().Upload(context.Background(), []byte("x"), "image/png"); err == nil {
		t.Fatalf("expected error")
	}
}
