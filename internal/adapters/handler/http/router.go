package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Vote       *VoteHandler
	Election   *ElectionHandler
	Enrollment *EnrollmentHandler
	TenantAuth *TenantAuth
}

func NewHandler(log logrus.FieldLogger, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log, NoColor: true}))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("welcome"))
		})

		r.Route("/election", func(r chi.Router) {
			r.Post("/vote", h.Vote.Vote)
			r.Get("/has-voted", h.Vote.HasVoted)

			r.Group(func(r chi.Router) {
				r.Use(h.TenantAuth.Middleware)
				r.Use(RequireAdmin)

				r.Get("/total-votes", h.Election.TotalVotes)
				r.Get("/votes-by-candidate/{candidateId}", h.Election.VotesByCandidate)
				r.Get("/vote-audit/{candidateId}", h.Election.VoteAudit)
				r.Get("/statistics", h.Election.Statistics)
				r.Get("/statistics/stream", h.Election.StreamStatistics)
				r.Post("/end", h.Election.EndElection)
			})
		})

		r.Route("/enrollments", func(r chi.Router) {
			r.Use(h.TenantAuth.Middleware)
			r.Post("/credential", h.Enrollment.IssueCredential)
		})
	})

	return r
}
