// Package version reports build information for the s3gate binary.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/s3gate/version.Version=1.0.0"
//
// Missing values fall back to the VCS stamps in runtime/debug build info.
package version
