package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/kbukum/s3gate/errors"
	"github.com/kbukum/s3gate/listing"
	"github.com/kbukum/s3gate/storage"
)

// Check probes the bucket once and writes a short report to w. A target
// ending in "/" (or empty) lists the first page under that prefix; any
// other target is looked up as an object key.
func Check(ctx context.Context, s storage.Storage, target string, w io.Writer) error {
	if target == "" || strings.HasSuffix(target, "/") {
		return checkPrefix(ctx, s, strings.TrimLeft(target, "/"), w)
	}
	return checkObject(ctx, s, strings.Trim(target, "/"), w)
}

func checkObject(ctx context.Context, s storage.Storage, key string, w io.Writer) error {
	info, err := s.Head(ctx, key)
	if err != nil {
		return toAppError(err, key)
	}
	fmt.Fprintf(w, "s3://%s/%s\n", s.Bucket(), info.Key)
	fmt.Fprintf(w, "  size:          %d (%s)\n", info.Size, humanize.Bytes(uint64(max(info.Size, 0))))
	fmt.Fprintf(w, "  last-modified: %s\n", info.LastModified.UTC().Format(http.TimeFormat))
	if info.ContentType != "" {
		fmt.Fprintf(w, "  content-type:  %s\n", info.ContentType)
	}
	if info.ETag != "" {
		fmt.Fprintf(w, "  etag:          %s\n", info.ETag)
	}
	return nil
}

func checkPrefix(ctx context.Context, s storage.Storage, prefix string, w io.Writer) error {
	p := s.List(ctx, prefix)
	page, err := p.NextPage(ctx)
	if err != nil {
		return toAppError(err, prefix)
	}

	fmt.Fprintf(w, "s3://%s/%s: %d objects in first page", s.Bucket(), prefix, len(page))
	if p.HasMorePages() {
		fmt.Fprint(w, " (more available)")
	}
	fmt.Fprintln(w)
	for _, obj := range page {
		fmt.Fprintf(w, "  %s  %10s  %s\n",
			obj.LastModified.UTC().Format(listing.RawTimeFormat),
			humanize.Bytes(uint64(max(obj.Size, 0))),
			obj.Key)
	}
	return nil
}

// ExitCode maps a check failure to a process exit code: 2 for a missing
// object, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if appErr, ok := errors.AsAppError(err); ok && appErr.HTTPStatus == http.StatusNotFound {
		return 2
	}
	return 1
}
