package storage_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/s3gate/component"
	"github.com/kbukum/s3gate/logger"
	"github.com/kbukum/s3gate/storage"
	"github.com/kbukum/s3gate/storage/memory"
)

func TestConfigValidate(t *testing.T) {
	cfg := storage.Config{Bucket: "b"}
	cfg.ApplyDefaults()
	assert.Equal(t, storage.ProviderS3, cfg.Provider)
	assert.Equal(t, storage.DefaultPageSize, cfg.PageSize)
	assert.NoError(t, cfg.Validate())

	bad := storage.Config{Provider: "gcs", PageSize: 5000}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")
	assert.Contains(t, err.Error(), "bucket is required")
	assert.Contains(t, err.Error(), "page_size")
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := storage.New(storage.Config{Provider: storage.ProviderMinio, Bucket: "b"}, nil, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
	assert.Contains(t, storage.Providers(), storage.ProviderMemory)
}

func TestErrorClassification(t *testing.T) {
	cause := errors.New("NoSuchKey: the key does not exist")
	err := storage.NotFoundError("head", "bucket", "HDX/a", "NoSuchKey", cause)

	assert.True(t, storage.IsNotFound(err))
	assert.False(t, storage.IsCredentials(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage.head bucket/HDX/a: NoSuchKey: storage: object not found: NoSuchKey: the key does not exist", err.Error())

	cred := storage.CredentialsError("list", "bucket", "", "", nil)
	assert.True(t, storage.IsCredentials(fmt.Errorf("wrapped: %w", cred)))
	assert.Equal(t, "storage.list bucket: storage: credentials unavailable", cred.Error())

	var se *storage.Error
	require.ErrorAs(t, fmt.Errorf("x: %w", cred), &se)
	assert.Equal(t, "list", se.Op)
}

func TestCollect(t *testing.T) {
	s := memory.New("b", 2)
	for _, k := range []string{"p/1", "p/2", "p/3"} {
		s.Put(k, []byte(k), "", time.Now())
	}
	all, err := storage.Collect(context.Background(), s.List(context.Background(), "p/"))
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestComponentLifecycle(t *testing.T) {
	c := storage.NewComponent(storage.Config{Provider: storage.ProviderMemory, Bucket: "b", Enabled: true}, nil, logger.Nop())
	assert.Equal(t, component.StatusUnhealthy, c.Health(context.Background()).Status)

	require.NoError(t, c.Start(context.Background()))
	require.NotNil(t, c.Storage())
	assert.Equal(t, component.StatusHealthy, c.Health(context.Background()).Status)
	assert.Contains(t, c.Describe().Details, "provider=memory bucket=b")

	require.NoError(t, c.Stop(context.Background()))
	assert.Nil(t, c.Storage())
}

func TestComponentHealthClassifiesProbe(t *testing.T) {
	s := memory.New("b", 0)
	c := storage.NewComponentWithStorage(storage.Config{Provider: storage.ProviderMemory, Bucket: "b"}, s, logger.Nop())

	s.FailWith(memory.OpHead, storage.ErrCredentials)
	h := c.Health(context.Background())
	assert.Equal(t, component.StatusUnhealthy, h.Status)
	assert.Equal(t, "credentials unavailable", h.Message)

	s.FailWith(memory.OpHead, errors.New("SlowDown"))
	assert.Equal(t, component.StatusDegraded, c.Health(context.Background()).Status)
}

func TestComponentDisabled(t *testing.T) {
	c := storage.NewComponent(storage.Config{Provider: storage.ProviderMemory, Bucket: "b"}, nil, logger.Nop())
	require.NoError(t, c.Start(context.Background()))
	assert.Nil(t, c.Storage())
	assert.Equal(t, "disabled", c.Health(context.Background()).Message)
}

func TestWithTracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	s := memory.New("b", 1)
	s.Put("HDX/a", []byte("a"), "", time.Now())
	traced := storage.WithTracing(s, storage.ProviderMemory)
	assert.Same(t, traced, storage.WithTracing(traced, storage.ProviderMemory))

	ctx := context.Background()
	_, err := traced.Head(ctx, "HDX/a")
	require.NoError(t, err)
	_, err = traced.Head(ctx, "HDX/missing")
	require.True(t, storage.IsNotFound(err))
	s.FailWith(memory.OpPresign, errors.New("boom"))
	_, err = traced.Presign(ctx, "HDX/a", time.Hour)
	require.Error(t, err)
	_, err = storage.Collect(ctx, traced.List(ctx, "HDX/"))
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 4)
	assert.Equal(t, "storage.head", spans[0].Name)
	assert.Equal(t, codes.Unset, spans[1].Status.Code, "not found is not a span error")
	assert.Equal(t, codes.Error, spans[2].Status.Code)
	assert.Equal(t, "storage.list_page", spans[3].Name)
	assert.Equal(t, "b", traced.Bucket())
}
