package api

import (
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds a single handler.
const DefaultRequestTimeout = 10 * time.Second

// writeGrace keeps the connection writable after the handler deadline so the
// timeout middleware's 504 reaches the client.
const writeGrace = 5 * time.Second

// NewServer returns the HTTP server for handler. requestTimeout must match
// the value given to NewRouter.
func NewServer(addr string, handler http.Handler, requestTimeout time.Duration) *http.Server {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: requestTimeout + writeGrace,
		IdleTimeout:  120 * time.Second,
	}
}
