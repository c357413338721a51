package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fakturo/invoice-mailer/internal/dispatch"
	"github.com/fakturo/invoice-mailer/internal/invoice"
)

// InvoiceHandlers exposes invoice sending and manual status changes.
type InvoiceHandlers struct {
	dispatcher *dispatch.Dispatcher
	invoices   *invoice.Store
}

// NewInvoiceHandlers creates a new InvoiceHandlers instance.
func NewInvoiceHandlers(dispatcher *dispatch.Dispatcher, invoices *invoice.Store) *InvoiceHandlers {
	return &InvoiceHandlers{dispatcher: dispatcher, invoices: invoices}
}

// SendInvoiceRequest is the body of POST /api/invoices/{id}/send.
type SendInvoiceRequest struct {
	RecipientEmail string `json:"recipient_email"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}

// SendInvoice handles POST /api/invoices/{id}/send.
func (h *InvoiceHandlers) SendInvoice(w http.ResponseWriter, r *http.Request) {
	caller := GetCallerFromContext(r.Context())

	invoiceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, "invalid invoice ID", http.StatusBadRequest)
		return
	}

	var req SendInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	err = h.dispatcher.SendInvoice(r.Context(), dispatch.SendRequest{
		InvoiceID:      invoiceID,
		OrgID:          caller.OrgID,
		OrgDisplayName: caller.OrgName,
		RecipientEmail: req.RecipientEmail,
		Subject:        req.Subject,
		Body:           req.Body,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// UpdateStatusRequest is the body of POST /api/invoices/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles POST /api/invoices/{id}/status.
// Caller-initiated transitions (reminded, paid, cancelled, reopening to
// sent), gated by organization membership and the lifecycle table.
func (h *InvoiceHandlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller := GetCallerFromContext(r.Context())

	invoiceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, "invalid invoice ID", http.StatusBadRequest)
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		writeJSONError(w, "status is required", http.StatusBadRequest)
		return
	}

	inv, err := h.invoices.Get(r.Context(), invoiceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if inv.OrgID != caller.OrgID {
		writeJSONError(w, "invoice not found", http.StatusNotFound)
		return
	}

	// created is set by document finalization and sent by the dispatch
	// pipeline. The only sent transition allowed here is reopening a paid
	// invoice.
	next := invoice.Status(req.Status)
	if next == invoice.StatusCreated {
		writeJSONError(w, "status created is set when the invoice is finalized", http.StatusBadRequest)
		return
	}
	if next == invoice.StatusSent && inv.Status != invoice.StatusPaid {
		writeJSONError(w, "status sent is set by sending the invoice", http.StatusBadRequest)
		return
	}

	updated, err := h.invoices.UpdateStatus(r.Context(), invoiceID, next)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  updated.Status,
	})
}
