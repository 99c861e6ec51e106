// Package main (cmd/httpserver) implements the Quillpress installation server.
//
// The server exposes the one-time installation API for a Quillpress
// deployment root. A single POST to /api/install validates the owner
// account details, probes the configured database, provisions the
// directory layout, commits the connection configuration, initializes
// the schema, seeds baseline content, and signs the owner in. Once the
// deployment is installed the endpoint refuses all further requests.
//
// Configuration is handled through command-line flags, with separate
// settings for HTTP endpoints, the deployment root, logging, and
// performance tuning.
//
// The server implements graceful shutdown on receiving termination
// signals (SIGINT/SIGTERM) and supports health checks, metrics
// collection, and optional profiling endpoints.
//
// Example usage:
//
//	quillpress-installer --listen-addr=0.0.0.0:8080 \
//	    --root=/srv/quillpress \
//	    --log-json
package main
