package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/evote/internal/core/domain"
	"github.com/vncsmyrnk/evote/internal/core/ports"
)

const DefaultStreamInterval = 5 * time.Second

// ElectionHandler serves the tenant admin views over the ledger.
type ElectionHandler struct {
	tally          ports.TallyService
	votes          ports.VoteService
	streamInterval time.Duration
}

func NewElectionHandler(tally ports.TallyService, votes ports.VoteService) *ElectionHandler {
	return &ElectionHandler{
		tally:          tally,
		votes:          votes,
		streamInterval: DefaultStreamInterval,
	}
}

// WithStreamInterval sets how often StreamStatistics pushes a fresh snapshot.
func (h *ElectionHandler) WithStreamInterval(d time.Duration) *ElectionHandler {
	if d > 0 {
		h.streamInterval = d
	}
	return h
}

type totalVotesResponse struct {
	TotalVotes int64 `json:"total_votes"`
}

func (h *ElectionHandler) TotalVotes(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	total, err := h.tally.TotalVotes(r.Context(), tenantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totalVotesResponse{TotalVotes: total})
}

func (h *ElectionHandler) VotesByCandidate(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	candidateID, ok := candidateParam(w, r)
	if !ok {
		return
	}

	tally, err := h.tally.VotesByCandidate(r.Context(), tenantID, candidateID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tally)
}

func (h *ElectionHandler) VoteAudit(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	candidateID, ok := candidateParam(w, r)
	if !ok {
		return
	}

	audit, err := h.tally.VoteAudit(r.Context(), tenantID, candidateID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, audit)
}

func (h *ElectionHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	stats, err := h.tally.Statistics(r.Context(), tenantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// StreamStatistics pushes a statistics snapshot as a server-sent event right
// away and then on every interval until the client goes away. Failures before
// the first snapshot get a regular error response; later ones are sent as
// error events and the stream keeps going.
func (h *ElectionHandler) StreamStatistics(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	stats, err := h.tally.Statistics(ctx, tenantID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	for {
		if err != nil {
			err = writeEvent(w, "error", errorBody(err))
		} else {
			err = writeEvent(w, "statistics", stats)
		}
		if err != nil {
			return
		}
		flusher.Flush()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		stats, err = h.tally.Statistics(ctx, tenantID)
		if ctx.Err() != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

func (h *ElectionHandler) EndElection(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}

	if err := h.votes.EndElection(r.Context(), tenantID); err != nil {
		if errors.Is(err, domain.ErrSubmissionUncertain) {
			writeJSON(w, http.StatusAccepted, map[string]bool{"uncertain": true})
			return
		}
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func requireTenant(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	_, tenantID, ok := tenantFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing tenant context", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	return tenantID, true
}

func candidateParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "candidateId"), 10, 64)
	if err != nil || id < 0 {
		http.Error(w, "invalid candidate id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
