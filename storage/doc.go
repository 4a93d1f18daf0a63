// Package storage defines the provider-neutral object store used by the
// gateway: paged listing, metadata lookup, content reads and presigned
// download URLs.
//
// # Backends
//
//   - storage/s3: Amazon S3 through aws-sdk-go-v2
//   - storage/minio: MinIO and other S3-compatible stores through minio-go
//   - storage/memory: in-process store for tests and local development
//
// Backends register a factory from an init function and are selected by
// Config.Provider:
//
//	storage:
//	  provider: "s3"
//	  bucket: "my-bucket"
//	  page_size: 1000
//
// Backends translate native errors onto ErrNotFound and ErrCredentials so
// callers classify failures with errors.Is.
package storage
