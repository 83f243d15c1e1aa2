package wellknown

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/deeplink/internal/errors"
)

// DefaultCacheControl is sent with every published file.
const DefaultCacheControl = "public, max-age=3600"

// PutObjectAPI is the part of the S3 client the Publisher needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads well-known files to an S3 bucket that serves the
// link domain.
type Publisher struct {
	client       PutObjectAPI
	bucket       string
	prefix       string
	cacheControl string
	logger       *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPrefix prepends prefix to every object key.
func WithPrefix(prefix string) PublisherOption {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

// WithCacheControl sets the Cache-Control header of published objects.
func WithCacheControl(v string) PublisherOption {
	return func(p *Publisher) {
		p.cacheControl = v
	}
}

// WithLogger sets the publisher's logger.
func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPublisher creates a publisher for bucket.
//
// Example usage:
//
//	client := wellknown.NewS3Client("us-east-1")
//	pub := wellknown.NewPublisher(client, "movieclub-web")
//	keys, err := pub.Publish(ctx, files)
func NewPublisher(client PutObjectAPI, bucket string, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		client:       client,
		bucket:       bucket,
		cacheControl: DefaultCacheControl,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key returns the object key for a file path.
func (p *Publisher) Key(filePath string) string {
	if p.prefix == "" {
		return filePath
	}
	return path.Join(p.prefix, filePath)
}

// Publish uploads files in order and returns the keys written. It stops at
// the first failure; keys uploaded before it are still returned.
func (p *Publisher) Publish(ctx context.Context, files []File) ([]string, error) {
	if p.bucket == "" {
		return nil, errors.New("DL303").WithDetail("publish.bucket is required")
	}

	keys := make([]string, 0, len(files))
	for _, f := range files {
		key := p.Key(f.Path)
		_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:       aws.String(p.bucket),
			Key:          aws.String(key),
			Body:         bytes.NewReader(f.Body),
			ContentType:  aws.String(f.ContentType),
			CacheControl: aws.String(p.cacheControl),
		})
		if err != nil {
			return keys, errors.New("DL501").WithDetailf("s3://%s/%s", p.bucket, key).Wrap(err)
		}
		p.logger.Info("published well-known file", "bucket", p.bucket, "key", key, "bytes", len(f.Body))
		keys = append(keys, key)
	}
	return keys, nil
}

// NewS3Client creates an S3 client for region using credentials from the
// standard AWS environment variables.
func NewS3Client(region string) *s3.Client {
	return s3.New(s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(EnvCredentials()),
	})
}

// EnvCredentials reads AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
// AWS_SESSION_TOKEN each time credentials are retrieved.
func EnvCredentials() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		id := os.Getenv("AWS_ACCESS_KEY_ID")
		secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
		if id == "" || secret == "" {
			return aws.Credentials{}, errors.New("DL501").
				WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are not set")
		}
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "EnvironmentVariables",
		}, nil
	})
}
