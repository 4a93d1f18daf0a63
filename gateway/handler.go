package gateway

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/kbukum/s3gate/errors"
	"github.com/kbukum/s3gate/listing"
	"github.com/kbukum/s3gate/logger"
	"github.com/kbukum/s3gate/observability"
	"github.com/kbukum/s3gate/server"
	"github.com/kbukum/s3gate/storage"
)

// Handler serves the S3 proxy endpoints against one bucket.
type Handler struct {
	storage  storage.Storage
	settings Settings
	streamer *listing.Streamer
	metrics  *observability.Metrics
	log      *logger.Logger
}

// NewHandler creates a Handler. metrics may be nil.
func NewHandler(s storage.Storage, settings Settings, metrics *observability.Metrics, log *logger.Logger) *Handler {
	settings.ApplyDefaults()
	return &Handler{
		storage:  s,
		settings: settings,
		streamer: listing.NewStreamer(),
		metrics:  metrics,
		log:      log.WithComponent("gateway"),
	}
}

// ListFiles streams every object under the folder prefix as a JSON array.
func (h *Handler) ListFiles(c *gin.Context) {
	q, err := parseListQuery(c, h.settings)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	ctx := c.Request.Context()
	prefix := q.Prefix()

	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	n, err := h.streamer.Stream(ctx, c.Writer, h.storage.List(ctx, prefix), q.Prettify)
	h.metrics.RecordListed(ctx, n)
	if err == nil {
		h.log.WithContext(ctx).Debug("listing streamed", logger.Fields(logger.FieldPrefix, prefix, logger.FieldCount, n))
		return
	}
	if !stderrors.Is(err, listing.ErrStreamAborted) {
		h.fail(c, err, prefix)
		return
	}

	// The status line is gone; drop the connection so the client sees a
	// truncated body instead of a valid array.
	h.metrics.RecordError(ctx, string(errors.ErrCodeProviderError))
	h.log.WithContext(ctx).Error("listing aborted mid-stream", logger.MergeWithError(
		logger.Fields(logger.FieldPrefix, prefix, logger.FieldCount, n), err))
	panic(http.ErrAbortHandler)
}

// HeadFile answers with the object's size and modification time. A missing
// object is a bodiless 404.
func (h *Handler) HeadFile(c *gin.Context) {
	key, err := objectKey(c)
	if err != nil {
		h.fail(c, err, key)
		return
	}
	info, err := h.storage.Head(c.Request.Context(), key)
	if err != nil {
		h.fail(c, err, key)
		return
	}

	c.Header("Last-Modified", info.LastModified.UTC().Format(http.TimeFormat))
	c.Header("Content-Length", strconv.FormatInt(info.Size, 10))
	if info.ContentType != "" {
		c.Header("Content-Type", info.ContentType)
	}
	if info.ETag != "" {
		c.Header("ETag", info.ETag)
	}
	c.Status(http.StatusOK)
}

// GetFile returns a JSON object inline when read_meta is set, otherwise it
// redirects to a presigned URL.
func (h *Handler) GetFile(c *gin.Context) {
	key, err := objectKey(c)
	if err != nil {
		h.fail(c, err, key)
		return
	}
	q, err := parseGetQuery(c, h.settings)
	if err != nil {
		h.fail(c, err, key)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.storage.Head(ctx, key); err != nil {
		h.fail(c, err, key)
		return
	}

	if q.ReadMeta && strings.HasSuffix(strings.ToLower(key), ".json") {
		data, err := h.readJSON(c, key)
		if err != nil {
			h.fail(c, err, key)
			return
		}
		h.metrics.RecordInline(ctx)
		c.Data(http.StatusOK, "application/json", data)
		return
	}

	url, err := h.storage.Presign(ctx, key, time.Duration(q.Expiry)*time.Second)
	if err != nil {
		h.fail(c, err, key)
		return
	}
	h.metrics.RecordPresigned(ctx)
	h.log.WithContext(ctx).Debug("redirecting to presigned url", logger.Fields(logger.FieldKey, key, "expiry", q.Expiry))
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// readJSON returns the stored bytes unchanged once they parse as JSON.
func (h *Handler) readJSON(c *gin.Context, key string) ([]byte, error) {
	rc, err := h.storage.Open(c.Request.Context(), key)
	if err != nil {
		if storage.IsNotFound(err) || storage.IsCredentials(err) {
			return nil, err
		}
		return nil, errors.MetaParseError(err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, h.settings.MaxMetaBytes+1))
	if err != nil {
		return nil, errors.MetaParseError(err)
	}
	if int64(len(data)) > h.settings.MaxMetaBytes {
		return nil, errors.MetaParseError(fmt.Errorf("object exceeds %d bytes", h.settings.MaxMetaBytes))
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.MetaParseError(err)
	}
	return data, nil
}

func (h *Handler) fail(c *gin.Context, err error, path string) {
	appErr := toAppError(err, path)
	h.metrics.RecordError(c.Request.Context(), string(appErr.Code))
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		h.log.WithContext(c.Request.Context()).Error("request failed", logger.MergeWithError(
			logger.Fields("code", appErr.Code, logger.FieldKey, path), err))
	}
	server.RespondWithError(c, appErr)
}

// objectKey returns the path parameter without surrounding slashes. Gin has
// already unescaped it.
func objectKey(c *gin.Context) (string, error) {
	key := strings.Trim(c.Param("file_path"), "/")
	if key == "" {
		return "", errors.InvalidInput("file_path", "file path must not be empty")
	}
	return key, nil
}
