// Package gateway serves the S3 proxy API: streamed listings, metadata
// lookups, and object retrieval either inline (JSON) or by redirect to a
// presigned URL.
//
// Routes, mounted under every configured prefix:
//
//	GET  /s3/files/?folder=&prettify=
//	HEAD /s3/get/*file_path
//	GET  /s3/get/*file_path?expiry=&read_meta=
package gateway
