// Package memory provides an in-process storage backend. It serves tests
// and local development (provider: memory) with S3-like paging semantics:
// keys are listed in lexical order, one page of at most PageSize objects per
// request.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kbukum/s3gate/logger"
	"github.com/kbukum/s3gate/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderMemory, func(cfg storage.Config, providerCfg any, log *logger.Logger) (storage.Storage, error) {
		mc, _ := providerCfg.(*Config)
		if mc == nil {
			mc = &Config{}
		}
		s := New(cfg.Bucket, cfg.PageSize)
		if mc.SeedDir != "" {
			n, err := s.LoadDir(mc.SeedDir)
			if err != nil {
				return nil, fmt.Errorf("memory storage: seed %s: %w", mc.SeedDir, err)
			}
			log.Info("memory storage seeded", logger.Fields("dir", mc.SeedDir, logger.FieldCount, n))
		}
		return s, nil
	})
}

// Config holds memory backend settings.
type Config struct {
	// SeedDir, when set, is copied into the store at startup. Paths relative
	// to the directory become keys.
	SeedDir string `mapstructure:"seed_dir" json:"seed_dir"`
}

type object struct {
	data        []byte
	contentType string
	modTime     time.Time
}

// Op names accepted by FailWith.
const (
	OpList    = "list"
	OpHead    = "head"
	OpOpen    = "open"
	OpPresign = "presign"
)

// Store is a concurrency-safe in-memory bucket.
type Store struct {
	bucket   string
	pageSize int

	mu       sync.RWMutex
	objects  map[string]*object
	failures map[string]error
	calls    map[string]int
}

var _ storage.Storage = (*Store)(nil)

// New creates an empty store. pageSize <= 0 selects storage.DefaultPageSize.
func New(bucket string, pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = storage.DefaultPageSize
	}
	return &Store{
		bucket:   bucket,
		pageSize: pageSize,
		objects:  make(map[string]*object),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
}

// Put stores data under key with the given modification time.
func (s *Store) Put(key string, data []byte, contentType string, modTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = &object{
		data:        append([]byte(nil), data...),
		contentType: contentType,
		modTime:     modTime.UTC().Truncate(time.Second),
	}
}

// Delete removes key. Missing keys are ignored.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
}

// FailWith makes every later call of op return err. A nil err clears it.
func (s *Store) FailWith(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// Calls returns how many provider requests op has served.
func (s *Store) Calls(op string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[op]
}

// LoadDir copies every regular file below dir into the store.
func (s *Store) LoadDir(dir string) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		s.Put(filepath.ToSlash(rel), data, mime.TypeByExtension(path.Ext(p)), info.ModTime())
		n++
		return nil
	})
	return n, err
}

func (s *Store) begin(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	return s.failures[op]
}

// Bucket returns the bucket name.
func (s *Store) Bucket() string { return s.bucket }

// List returns a pager over keys starting with prefix.
func (s *Store) List(_ context.Context, prefix string) storage.Pager {
	return &pager{store: s, prefix: prefix, more: true}
}

// Head returns metadata for key.
func (s *Store) Head(_ context.Context, key string) (*storage.ObjectInfo, error) {
	if err := s.begin(OpHead); err != nil {
		return nil, storage.NewError(OpHead, s.bucket, key, "", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key]
	if !ok {
		return nil, storage.NotFoundError(OpHead, s.bucket, key, "NotFound", nil)
	}
	info := o.info(key)
	return &info, nil
}

// Open returns a reader over a copy of the object.
func (s *Store) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if err := s.begin(OpOpen); err != nil {
		return nil, storage.NewError(OpOpen, s.bucket, key, "", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key]
	if !ok {
		return nil, storage.NotFoundError(OpOpen, s.bucket, key, "NoSuchKey", nil)
	}
	return io.NopCloser(bytes.NewReader(append([]byte(nil), o.data...))), nil
}

// Presign returns a memory:// URL carrying the expiry. It does not check
// that key exists, like the real providers.
func (s *Store) Presign(_ context.Context, key string, expiry time.Duration) (string, error) {
	if err := s.begin(OpPresign); err != nil {
		return "", storage.NewError(OpPresign, s.bucket, key, "", err)
	}
	u := url.URL{
		Scheme:   "memory",
		Host:     s.bucket,
		Path:     "/" + key,
		RawQuery: url.Values{"X-Expires": {fmt.Sprint(int64(expiry / time.Second))}}.Encode(),
	}
	return u.String(), nil
}

func (o *object) info(key string) storage.ObjectInfo {
	return storage.ObjectInfo{
		Key:          key,
		Size:         int64(len(o.data)),
		LastModified: o.modTime,
		ContentType:  o.contentType,
	}
}

// pager walks keys in lexical order using the last returned key as the
// continuation marker, so objects added behind the marker are not revisited.
type pager struct {
	store  *Store
	prefix string
	after  string
	more   bool
}

func (p *pager) HasMorePages() bool { return p.more }

func (p *pager) NextPage(ctx context.Context) ([]storage.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !p.more {
		return nil, nil
	}
	s := p.store
	if err := s.begin(OpList); err != nil {
		return nil, storage.NewError(OpList, s.bucket, p.prefix, "", err)
	}

	s.mu.RLock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		if strings.HasPrefix(k, p.prefix) && k > p.after {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	n := min(len(keys), s.pageSize)
	page := make([]storage.ObjectInfo, 0, n)
	for _, k := range keys[:n] {
		page = append(page, s.objects[k].info(k))
	}
	s.mu.RUnlock()

	p.more = len(keys) > n
	if n > 0 {
		p.after = keys[n-1]
	}
	return page, nil
}
