package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fakturo/invoice-mailer/internal/config"
)

// Server is the HTTP API server.
type Server struct {
	server *http.Server
}

// NewServer creates a new API server.
func NewServer(cfg config.ServerConfig, domains *DomainHandlers, invoices *InvoiceHandlers) *Server {
	router := SetupRoutes(domains, invoices)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}
