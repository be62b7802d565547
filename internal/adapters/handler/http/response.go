package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vncsmyrnk/evote/internal/core/domain"
)

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors to HTTP status codes. Anything unknown is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCredentialInvalid), errors.Is(err, domain.ErrCredentialExpired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotTenantMember):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrEnrollmentNotFound), errors.Is(err, domain.ErrNoMatchFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyVoted),
		errors.Is(err, domain.ErrLedgerRejected),
		errors.Is(err, domain.ErrElectionAlreadyEnded),
		errors.Is(err, domain.ErrCredentialAlreadyIssued):
		return http.StatusConflict
	case errors.Is(err, domain.ErrElectionNotConfigured):
		return http.StatusPreconditionFailed
	case errors.Is(err, domain.ErrInvalidVoteRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSubmissionUncertain):
		return http.StatusAccepted
	case errors.Is(err, domain.ErrLedgerUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody(err))
}

func errorBody(err error) errorResponse {
	msg := err.Error()
	if statusFor(err) == http.StatusInternalServerError {
		msg = "internal error"
	}
	return errorResponse{Error: msg, Reason: domain.RejectionReason(err)}
}
