package storage

import (
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/s3gate/observability"
)

// WithTracing wraps s so every provider call runs inside an OpenTelemetry
// span named storage.<op>. Not-found lookups are not marked as errors.
func WithTracing(s Storage, provider string) Storage {
	if _, ok := s.(*tracingStorage); ok {
		return s
	}
	return &tracingStorage{inner: s, provider: provider}
}

type tracingStorage struct {
	inner    Storage
	provider string
}

func (t *tracingStorage) start(ctx context.Context, name, key string) (context.Context, trace.Span) {
	return observability.StartSpan(ctx, name, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(observability.AttrStorageProvider, t.provider),
			attribute.String(observability.AttrStorageBucket, t.inner.Bucket()),
			attribute.String(observability.AttrStorageKey, key),
		))
}

func finish(ctx context.Context, span trace.Span, err error) {
	if err != nil && !IsNotFound(err) {
		observability.SetSpanError(ctx, err)
	}
	span.End()
}

func (t *tracingStorage) Bucket() string { return t.inner.Bucket() }

func (t *tracingStorage) List(ctx context.Context, prefix string) Pager {
	return &tracingPager{inner: t.inner.List(ctx, prefix), storage: t, prefix: prefix}
}

func (t *tracingStorage) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	ctx, span := t.start(ctx, observability.SpanStorageHead, key)
	info, err := t.inner.Head(ctx, key)
	finish(ctx, span, err)
	return info, err
}

func (t *tracingStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	ctx, span := t.start(ctx, observability.SpanStorageOpen, key)
	rc, err := t.inner.Open(ctx, key)
	finish(ctx, span, err)
	return rc, err
}

func (t *tracingStorage) Presign(ctx context.Context, key string, expiry time.Duration) (string, error) {
	ctx, span := t.start(ctx, observability.SpanStoragePresign, key)
	span.SetAttributes(attribute.Int64("storage.expiry_seconds", int64(expiry/time.Second)))
	u, err := t.inner.Presign(ctx, key, expiry)
	finish(ctx, span, err)
	return u, err
}

type tracingPager struct {
	inner   Pager
	storage *tracingStorage
	prefix  string
}

func (p *tracingPager) HasMorePages() bool { return p.inner.HasMorePages() }

func (p *tracingPager) NextPage(ctx context.Context) ([]ObjectInfo, error) {
	ctx, span := p.storage.start(ctx, observability.SpanStorageList, "")
	span.SetAttributes(attribute.String(observability.AttrStoragePrefix, p.prefix))
	page, err := p.inner.NextPage(ctx)
	span.SetAttributes(attribute.Int(observability.AttrObjectCount, len(page)))
	finish(ctx, span, err)
	return page, err
}
