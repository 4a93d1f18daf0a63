// Package s3 implements storage.Storage on Amazon S3 with aws-sdk-go-v2.
package s3

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/kbukum/s3gate/logger"
	"github.com/kbukum/s3gate/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderS3, func(cfg storage.Config, providerCfg any, log *logger.Logger) (storage.Storage, error) {
		c := &Config{}
		if providerCfg != nil {
			pc, ok := providerCfg.(*Config)
			if !ok {
				return nil, fmt.Errorf("s3: expected *s3.Config, got %T", providerCfg)
			}
			c = pc
		}
		c.ApplyDefaults()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		s, err := NewStorage(context.Background(), cfg.Bucket, cfg.PageSize, c)
		if err != nil {
			return nil, err
		}
		log.Debug("s3 client ready", logger.Fields("region", c.Region, "endpoint", c.Endpoint, "max_attempts", c.MaxAttempts))
		return s, nil
	})
}

// API is the subset of the S3 client the backend calls.
type API interface {
	awss3.ListObjectsV2APIClient
	HeadObject(ctx context.Context, in *awss3.HeadObjectInput, optFns ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

// Presigner signs GetObject requests.
type Presigner interface {
	PresignGetObject(ctx context.Context, in *awss3.GetObjectInput, optFns ...func(*awss3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Storage implements storage.Storage on Amazon S3 or an S3-compatible service.
type Storage struct {
	api       API
	presigner Presigner
	creds     aws.CredentialsProvider
	bucket    string
	pageSize  int32
}

var _ storage.Storage = (*Storage)(nil)

// NewStorage builds a client from the default AWS configuration chain.
func NewStorage(ctx context.Context, bucket string, pageSize int, cfg *Config) (*Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithRetryMaxAttempts(cfg.MaxAttempts),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})
	return NewWithClient(client, awss3.NewPresignClient(client), awsCfg.Credentials, bucket, pageSize), nil
}

// NewWithClient assembles a backend from explicit collaborators.
func NewWithClient(api API, presigner Presigner, creds aws.CredentialsProvider, bucket string, pageSize int) *Storage {
	if pageSize <= 0 || pageSize > storage.MaxPageSize {
		pageSize = storage.DefaultPageSize
	}
	return &Storage{
		api:       api,
		presigner: presigner,
		creds:     creds,
		bucket:    bucket,
		pageSize:  int32(pageSize),
	}
}

// Bucket returns the bucket name.
func (s *Storage) Bucket() string { return s.bucket }

// checkCredentials resolves credentials before a request so a missing
// credential chain is reported as such instead of as a signing failure.
func (s *Storage) checkCredentials(ctx context.Context, op, key string) error {
	if s.creds == nil {
		return storage.CredentialsError(op, s.bucket, key, "", nil)
	}
	if _, err := s.creds.Retrieve(ctx); err != nil {
		return storage.CredentialsError(op, s.bucket, key, "", err)
	}
	return nil
}

// List returns a pager backed by ListObjectsV2 continuation tokens.
func (s *Storage) List(_ context.Context, prefix string) storage.Pager {
	in := &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}
	return &pager{
		storage: s,
		prefix:  prefix,
		inner: awss3.NewListObjectsV2Paginator(s.api, in, func(o *awss3.ListObjectsV2PaginatorOptions) {
			o.Limit = s.pageSize
		}),
	}
}

// Head returns object metadata.
func (s *Storage) Head(ctx context.Context, key string) (*storage.ObjectInfo, error) {
	if err := s.checkCredentials(ctx, "head", key); err != nil {
		return nil, err
	}
	out, err := s.api.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classify("head", s.bucket, key, err)
	}
	return &storage.ObjectInfo{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		LastModified: aws.ToTime(out.LastModified),
		ContentType:  aws.ToString(out.ContentType),
		ETag:         aws.ToString(out.ETag),
	}, nil
}

// Open returns the object body.
func (s *Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := s.checkCredentials(ctx, "open", key); err != nil {
		return nil, err
	}
	out, err := s.api.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classify("open", s.bucket, key, err)
	}
	return out.Body, nil
}

// Presign returns a SigV4 presigned GET URL.
func (s *Storage) Presign(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if err := s.checkCredentials(ctx, "presign", key); err != nil {
		return "", err
	}
	req, err := s.presigner.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(expiry))
	if err != nil {
		return "", classify("presign", s.bucket, key, err)
	}
	return req.URL, nil
}

type pager struct {
	storage *Storage
	prefix  string
	inner   *awss3.ListObjectsV2Paginator
	checked bool
}

func (p *pager) HasMorePages() bool { return p.inner.HasMorePages() }

func (p *pager) NextPage(ctx context.Context) ([]storage.ObjectInfo, error) {
	if !p.checked {
		if err := p.storage.checkCredentials(ctx, "list", p.prefix); err != nil {
			return nil, err
		}
		p.checked = true
	}
	out, err := p.inner.NextPage(ctx)
	if err != nil {
		return nil, classify("list", p.storage.bucket, p.prefix, err)
	}
	page := make([]storage.ObjectInfo, 0, len(out.Contents))
	for _, obj := range out.Contents {
		page = append(page, storage.ObjectInfo{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         aws.ToString(obj.ETag),
		})
	}
	return page, nil
}
