// Package api provides an HTTP server exposing operational endpoints for
// the index alongside the MCP endpoint.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string
}
