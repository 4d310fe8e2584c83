// Package app wires the HTTP router and server.
package app

import (
	"log"
	"net/http"
	"time"
)

// Server wraps the HTTP server with its configuration
type Server struct {
	httpServer *http.Server
}

// NewServer creates a new configured HTTP server instance
func NewServer(addr string, handler http.Handler) *Server {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return &Server{httpServer: srv}
}

// Start begins listening and serving HTTP requests
func (s *Server) Start() error {
	log.Printf("Keywarden server starting on http://localhost%s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil {
		return err
	}
	return nil
}
