// Package metrics exposes Prometheus instrumentation for the installer
// service and a small HTTP server to scrape it from. The metrics server
// runs next to the API server on its own listen address.
package metrics
