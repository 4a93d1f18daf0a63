package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/s3gate/bootstrap"
	"github.com/kbukum/s3gate/listing"
	"github.com/kbukum/s3gate/logger"
	"github.com/kbukum/s3gate/storage"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func memoryConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{}
	cfg.Environment = "production"
	cfg.Storage.Provider = storage.ProviderMemory
	cfg.Storage.Bucket = "hdx-data"
	cfg.Storage.PageSize = 1
	cfg.Memory.SeedDir = "testdata/seed"
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)
	cfg.Gateway.RateLimitPerMin = -1
	return cfg
}

func testOptions() []bootstrap.Option {
	return []bootstrap.Option{
		bootstrap.WithLogger(logger.Nop()),
		bootstrap.WithSummaryWriter(io.Discard),
		bootstrap.WithGracefulTimeout(5 * time.Second),
	}
}

func TestNewAppServesAPI(t *testing.T) {
	cfg := memoryConfig(t)
	app, err := NewApp(cfg, testOptions()...)
	require.NoError(t, err)

	for _, name := range []string{"observability", "storage", "http-server"} {
		assert.NotNil(t, app.Components.Get(name), name)
	}

	base := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	err = app.RunTask(context.Background(), func(ctx context.Context) error {
		resp, err := client.Get(base + "/s3/files/")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var records []listing.Record
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
		keys := make([]string, len(records))
		for i, r := range records {
			keys[i] = r.Key
		}
		assert.Equal(t, []string{"HDX/2024/data.csv", "HDX/meta.json"}, keys)

		meta, err := client.Get(base + "/v1/s3/get/HDX/meta.json")
		require.NoError(t, err)
		defer meta.Body.Close()
		body, err := io.ReadAll(meta.Body)
		require.NoError(t, err)
		want, err := os.ReadFile("testdata/seed/HDX/meta.json")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, meta.StatusCode)
		assert.Equal(t, want, body)

		redirect, err := client.Get(base + "/s3/get/HDX/2024/data.csv?expiry=7200")
		require.NoError(t, err)
		redirect.Body.Close()
		assert.Equal(t, http.StatusTemporaryRedirect, redirect.StatusCode)
		assert.Contains(t, redirect.Header.Get("Location"), "memory://hdx-data/HDX/2024/data.csv")

		head, err := client.Head(base + "/s3/get/HDX/missing.csv")
		require.NoError(t, err)
		head.Body.Close()
		assert.Equal(t, http.StatusNotFound, head.StatusCode)

		health, err := client.Get(base + "/health")
		require.NoError(t, err)
		health.Body.Close()
		assert.Equal(t, http.StatusOK, health.StatusCode)
		return nil
	})
	require.NoError(t, err)
}

func TestNewAppRejectsInvalidConfig(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Storage.Bucket = ""
	_, err := NewApp(cfg, testOptions()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket")
}

func TestNewAppSeedFailure(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Memory.SeedDir = "testdata/does-not-exist"
	_, err := NewApp(cfg, testOptions()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed")
}

func TestCheck(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Storage.PageSize = 10
	app, store, err := NewCheckApp(cfg, testOptions()...)
	require.NoError(t, err)
	assert.Nil(t, app.Components.Get("http-server"))

	err = app.RunTask(context.Background(), func(ctx context.Context) error {
		var buf bytes.Buffer
		require.NoError(t, Check(ctx, store, "/HDX/meta.json", &buf))
		assert.Contains(t, buf.String(), "s3://hdx-data/HDX/meta.json")
		assert.Contains(t, buf.String(), "content-type:  application/json")

		buf.Reset()
		require.NoError(t, Check(ctx, store, "HDX/", &buf))
		assert.Contains(t, buf.String(), "s3://hdx-data/HDX/: 2 objects in first page\n")
		assert.Contains(t, buf.String(), "HDX/2024/data.csv")
		assert.NotContains(t, buf.String(), "more available")

		err := Check(ctx, store, "HDX/nope.csv", io.Discard)
		require.Error(t, err)
		assert.Equal(t, 2, ExitCode(err))
		return nil
	})
	require.NoError(t, err)
}

func TestCheckReportsMorePages(t *testing.T) {
	store := seeded(1, "HDX/a.csv", "HDX/b.csv")
	var buf bytes.Buffer
	require.NoError(t, Check(context.Background(), store, "", &buf))
	assert.Contains(t, buf.String(), "1 objects in first page (more available)")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("boom")))
	assert.Equal(t, 1, ExitCode(toAppError(storage.CredentialsError("head", "b", "k", "NoCredentialProviders", fmt.Errorf("no creds")), "k")))
}
