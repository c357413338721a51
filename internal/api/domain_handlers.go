package api

import (
	"encoding/json"
	"net/http"

	"github.com/fakturo/invoice-mailer/internal/sender"
)

// DomainHandlers exposes the sender-domain verification workflow.
type DomainHandlers struct {
	service *sender.Service
	store   *sender.Store
}

// NewDomainHandlers creates a new DomainHandlers instance.
func NewDomainHandlers(service *sender.Service, store *sender.Store) *DomainHandlers {
	return &DomainHandlers{service: service, store: store}
}

// RegisterDomainRequest is the body of POST /api/domains.
type RegisterDomainRequest struct {
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
}

// RegisterDomain handles POST /api/domains.
// Registers the domain part of from_email as a custom sending domain.
// Owner role required.
func (h *DomainHandlers) RegisterDomain(w http.ResponseWriter, r *http.Request) {
	caller := GetCallerFromContext(r.Context())
	if !caller.IsOwner() {
		writeJSONError(w, "owner role required to change the sending domain", http.StatusForbidden)
		return
	}

	var req RegisterDomainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	identity, err := h.service.RegisterDomain(r.Context(), caller.OrgID, req.FromEmail, req.FromName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"domain":      identity.CustomDomain,
		"dns_records": identity.DNSRecords,
	})
}

// GetSettings handles GET /api/domains.
// Returns the organization's current sender-identity settings.
func (h *DomainHandlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	caller := GetCallerFromContext(r.Context())

	identity, err := h.store.Get(r.Context(), caller.OrgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, identity)
}

// VerifyDomain handles POST /api/domains/verify.
// Triggers a provider-side re-check of the DNS proof records.
// Owner role required.
func (h *DomainHandlers) VerifyDomain(w http.ResponseWriter, r *http.Request) {
	caller := GetCallerFromContext(r.Context())
	if !caller.IsOwner() {
		writeJSONError(w, "owner role required to verify the sending domain", http.StatusForbidden)
		return
	}

	result, err := h.service.VerifyDomain(r.Context(), caller.OrgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// DeleteDomain handles DELETE /api/domains.
// Removes the custom domain and reverts the identity to the platform default.
// Owner role required.
func (h *DomainHandlers) DeleteDomain(w http.ResponseWriter, r *http.Request) {
	caller := GetCallerFromContext(r.Context())
	if !caller.IsOwner() {
		writeJSONError(w, "owner role required to remove the sending domain", http.StatusForbidden)
		return
	}

	if _, err := h.service.RemoveDomain(r.Context(), caller.OrgID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// UpdateSettings handles PATCH /api/domains/settings.
// Updates reply-to and template fields; organization membership suffices.
func (h *DomainHandlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	caller := GetCallerFromContext(r.Context())

	var patch sender.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	identity, err := h.service.UpdateSettings(r.Context(), caller.OrgID, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"settings": identity,
	})
}
