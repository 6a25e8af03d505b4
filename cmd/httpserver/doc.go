// Package main (cmd/httpserver) implements the stowage storage server.
//
// The server exposes the file API over a single storage backend selected
// through the --storage-uri flag. Local filesystem backends use file://
// URIs and S3-compatible object stores use s3:// URIs; the backend is
// resolved once at startup and every request goes through it.
//
// Configuration is handled through command-line flags, with separate
// settings for the API listener, the Prometheus metrics listener, logging,
// and drain behavior for load balancer integration.
//
// The server implements graceful shutdown on receiving termination signals
// (SIGINT/SIGTERM) and supports health checks, metrics collection, and
// optional profiling endpoints.
//
// Example usage with a local backend:
//
//	stowage-server --storage-uri=file:///var/lib/stowage/ \
//	    --listen-addr=0.0.0.0:8080 \
//	    --metrics-addr=127.0.0.1:8090
//
// Example usage with an S3 bucket:
//
//	stowage-server --storage-uri='s3://my-bucket/?region=us-west-2' \
//	    --listen-addr=0.0.0.0:8080 \
//	    --log-json
package main
