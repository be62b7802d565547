package http

import (
	"encoding/json"
	"net/http"

	"github.com/vncsmyrnk/evote/internal/core/ports"
)

type EnrollmentHandler struct {
	service ports.EnrollmentService
}

func NewEnrollmentHandler(service ports.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
	}
}

type credentialRequest struct {
	ExtractedFields map[string]string `json:"extracted_fields"`
}

// IssueCredential matches the fields extracted from the user's document
// against the tenant's enrollment records and mints a voting credential.
func (h *EnrollmentHandler) IssueCredential(w http.ResponseWriter, r *http.Request) {
	userID, tenantID, ok := tenantFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing tenant context", http.StatusUnauthorized)
		return
	}

	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.ExtractedFields) == 0 {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	credential, err := h.service.EnrollFromDocument(r.Context(), ports.EnrollDocumentInput{
		UserID:          userID,
		TenantID:        tenantID,
		ExtractedFields: req.ExtractedFields,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, credential)
}
