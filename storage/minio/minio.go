// Package minio implements storage.Storage on MinIO and other S3-compatible
// services through minio-go.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kbukum/s3gate/logger"
	"github.com/kbukum/s3gate/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderMinio, func(cfg storage.Config, providerCfg any, log *logger.Logger) (storage.Storage, error) {
		c, ok := providerCfg.(*Config)
		if !ok || c == nil {
			return nil, fmt.Errorf("minio: expected *minio.Config, got %T", providerCfg)
		}
		c.ApplyDefaults()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		s, err := NewStorage(cfg.Bucket, cfg.PageSize, c)
		if err != nil {
			return nil, err
		}
		log.Debug("minio client ready", logger.Fields("endpoint", c.Endpoint, "ssl", c.UseSSL))
		return s, nil
	})
}

// API is the subset of minio-go the backend calls.
type API interface {
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	OpenObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	PresignedGetObject(ctx context.Context, bucket, key string, expiry time.Duration, params url.Values) (*url.URL, error)
}

type client struct {
	*minio.Client
}

// OpenObject forces the lazy GetObject request with Stat so a missing key
// fails here rather than on first Read.
func (c client) OpenObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := c.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, err
	}
	return obj, nil
}

// Storage implements storage.Storage on MinIO.
type Storage struct {
	api      API
	bucket   string
	pageSize int
}

var _ storage.Storage = (*Storage)(nil)

// NewStorage connects a minio-go client.
func NewStorage(bucket string, pageSize int, cfg *Config) (*Storage, error) {
	creds := credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvMinio{},
		&credentials.EnvAWS{},
	})
	if cfg.AccessKey != "" {
		creds = credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: create client: %w", err)
	}
	return NewWithClient(client{mc}, bucket, pageSize), nil
}

// NewWithClient assembles a backend from an explicit API.
func NewWithClient(api API, bucket string, pageSize int) *Storage {
	if pageSize <= 0 || pageSize > storage.MaxPageSize {
		pageSize = storage.DefaultPageSize
	}
	return &Storage{api: api, bucket: bucket, pageSize: pageSize}
}

// Bucket returns the bucket name.
func (s *Storage) Bucket() string { return s.bucket }

// List returns a pager that chunks the minio listing channel into pages.
func (s *Storage) List(ctx context.Context, prefix string) storage.Pager {
	return &pager{storage: s, prefix: prefix, parent: ctx}
}

// Head returns object metadata.
func (s *Storage) Head(ctx context.Context, key string) (*storage.ObjectInfo, error) {
	info, err := s.api.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, classify("head", s.bucket, key, err)
	}
	oi := toObjectInfo(info)
	oi.Key = key
	return &oi, nil
}

// Open returns the object body.
func (s *Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.api.OpenObject(ctx, s.bucket, key)
	if err != nil {
		return nil, classify("open", s.bucket, key, err)
	}
	return rc, nil
}

// Presign returns a presigned GET URL. MinIO rejects expiries above seven days.
func (s *Storage) Presign(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.api.PresignedGetObject(ctx, s.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", classify("presign", s.bucket, key, err)
	}
	return u.String(), nil
}

func toObjectInfo(o minio.ObjectInfo) storage.ObjectInfo {
	return storage.ObjectInfo{
		Key:          o.Key,
		Size:         o.Size,
		LastModified: o.LastModified,
		ContentType:  o.ContentType,
		ETag:         o.ETag,
	}
}

var credentialCodes = map[string]bool{
	"InvalidAccessKeyId":    true,
	"SignatureDoesNotMatch": true,
	"ExpiredToken":          true,
	"InvalidToken":          true,
}

func classify(op, bucket, key string, err error) error {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.Code == "NotFound":
		return storage.NotFoundError(op, bucket, key, resp.Code, err)
	case resp.Code == "" && resp.StatusCode == http.StatusNotFound:
		return storage.NotFoundError(op, bucket, key, "404", err)
	case credentialCodes[resp.Code]:
		return storage.CredentialsError(op, bucket, key, resp.Code, err)
	}
	return storage.NewError(op, bucket, key, resp.Code, err)
}

// pager starts the listing on the first NextPage and reads one object ahead
// to learn whether another page follows.
type pager struct {
	storage *Storage
	prefix  string
	parent  context.Context

	ch      <-chan minio.ObjectInfo
	cancel  context.CancelFunc
	pending *minio.ObjectInfo
	done    bool
}

func (p *pager) HasMorePages() bool { return !p.done }

func (p *pager) NextPage(ctx context.Context) ([]storage.ObjectInfo, error) {
	if p.done {
		return nil, nil
	}
	if p.ch == nil {
		listCtx, cancel := context.WithCancel(p.parent)
		p.cancel = cancel
		p.ch = p.storage.api.ListObjects(listCtx, p.storage.bucket, minio.ListObjectsOptions{
			Prefix:    p.prefix,
			Recursive: true,
			MaxKeys:   p.storage.pageSize,
		})
	}

	page := make([]storage.ObjectInfo, 0, p.storage.pageSize)
	if p.pending != nil {
		page = append(page, toObjectInfo(*p.pending))
		p.pending = nil
	}
	for {
		obj, ok, err := p.receive(ctx)
		if err != nil {
			p.finish()
			return nil, err
		}
		if !ok {
			p.finish()
			return page, nil
		}
		if len(page) == p.storage.pageSize {
			p.pending = &obj
			return page, nil
		}
		page = append(page, toObjectInfo(obj))
	}
}

func (p *pager) receive(ctx context.Context) (minio.ObjectInfo, bool, error) {
	select {
	case <-ctx.Done():
		return minio.ObjectInfo{}, false, ctx.Err()
	case obj, ok := <-p.ch:
		if !ok {
			return minio.ObjectInfo{}, false, nil
		}
		if obj.Err != nil {
			return minio.ObjectInfo{}, false, classify("list", p.storage.bucket, p.prefix, obj.Err)
		}
		return obj, true, nil
	}
}

func (p *pager) finish() {
	p.done = true
	if p.cancel != nil {
		p.cancel()
	}
}
