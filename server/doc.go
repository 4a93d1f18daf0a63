// Package server hosts the gin engine on a net/http server with h2c
// support and provides the shared middleware and system endpoints.
//
// Middleware (server/middleware): Recovery, RequestID, Tracing, CORS,
// RequestLogger and RateLimit.
//
// Endpoints (server/endpoint): /health, /ready, /live, /info and /version.
package server
