package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server tuned for this workload: query processing holds
// the connection open while the retrieval and extraction backends respond,
// so the write timeout must exceed the collaborator timeout with headroom.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       time.Minute,
	}
}
