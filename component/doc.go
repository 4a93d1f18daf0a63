// Package component defines lifecycle-managed pieces of the gateway (the
// storage backend and the HTTP server) and a registry that starts them in
// order and stops them in reverse.
package component
