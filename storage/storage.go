package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
	ETag         string
}

// Pager iterates over a listing one provider page at a time.
// A Pager is not safe for concurrent use.
type Pager interface {
	// HasMorePages reports whether NextPage may return more objects.
	HasMorePages() bool

	// NextPage fetches the next page. The first call performs the first
	// provider request, so credential failures surface here.
	NextPage(ctx context.Context) ([]ObjectInfo, error)
}

// Storage defines the read and presign operations the gateway needs.
type Storage interface {
	// Bucket returns the bucket every key is resolved against.
	Bucket() string

	// List returns a pager over objects whose key starts with prefix, in
	// provider order. No request is made until the first NextPage.
	List(ctx context.Context, prefix string) Pager

	// Head returns object metadata, or ErrNotFound.
	Head(ctx context.Context, key string) (*ObjectInfo, error)

	// Open returns the object body. The caller must close it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Presign returns a GET URL for key valid for expiry.
	Presign(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Collect drains a pager into a single slice. Use it only for bounded
// listings such as tests and CLI probes.
func Collect(ctx context.Context, p Pager) ([]ObjectInfo, error) {
	var all []ObjectInfo
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return all, err
		}
		all = append(all, page...)
	}
	return all, nil
}
