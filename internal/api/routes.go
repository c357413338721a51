package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the HTTP surface. Everything under /api requires an
// authenticated caller forwarded by the upstream gateway.
func SetupRoutes(domains *DomainHandlers, invoices *InvoiceHandlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://app.fakturo.io", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (no auth required)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(RequireCallerMiddleware)

		r.Route("/domains", func(r chi.Router) {
			r.Get("/", domains.GetSettings)
			r.Post("/", domains.RegisterDomain)
			r.Delete("/", domains.DeleteDomain)
			r.Patch("/settings", domains.UpdateSettings)
			r.Post("/verify", domains.VerifyDomain)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Post("/{id}/send", invoices.SendInvoice)
			r.Post("/{id}/status", invoices.UpdateStatus)
		})
	})

	return r
}
