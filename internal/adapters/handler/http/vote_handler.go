package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vncsmyrnk/evote/internal/core/domain"
	"github.com/vncsmyrnk/evote/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
}

func NewVoteHandler(service ports.VoteService) *VoteHandler {
	return &VoteHandler{
		service: service,
	}
}

type voteRequest struct {
	CandidateID *int64 `json:"candidate_id"`
}

type voteResponse struct {
	Accepted        bool                `json:"accepted"`
	Uncertain       bool                `json:"uncertain,omitempty"`
	Receipt         *domain.VoteReceipt `json:"receipt,omitempty"`
	RejectionReason string              `json:"rejection_reason,omitempty"`
}

type hasVotedResponse struct {
	HasVoted bool `json:"has_voted"`
}

func (h *VoteHandler) Vote(w http.ResponseWriter, r *http.Request) {
	credential := r.Header.Get(VotingCredentialHeader)
	if credential == "" {
		http.Error(w, "Unauthorized: missing voting credential", http.StatusUnauthorized)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CandidateID == nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	receipt, err := h.service.Vote(r.Context(), ports.VoteInput{
		Credential:  credential,
		CandidateID: *req.CandidateID,
	})

	switch domain.OutcomeOf(err) {
	case domain.OutcomeAccepted:
		writeJSON(w, http.StatusCreated, voteResponse{Accepted: true, Receipt: receipt})
	case domain.OutcomeUncertain:
		// The ledger may still include the vote; clients poll has-voted.
		writeJSON(w, http.StatusAccepted, voteResponse{Uncertain: true})
	case domain.OutcomeRejected:
		writeJSON(w, statusFor(err), voteResponse{RejectionReason: domain.RejectionReason(err)})
	default:
		if errors.Is(err, domain.ErrLedgerUnavailable) {
			writeError(w, err)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *VoteHandler) HasVoted(w http.ResponseWriter, r *http.Request) {
	credential := r.Header.Get(VotingCredentialHeader)
	if credential == "" {
		http.Error(w, "Unauthorized: missing voting credential", http.StatusUnauthorized)
		return
	}

	voted, err := h.service.HasVoted(r.Context(), credential)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hasVotedResponse{HasVoted: voted})
}
