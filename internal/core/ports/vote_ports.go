package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/evote/internal/core/domain"
)

type VoteInput struct {
	Credential  string
	CandidateID int64
}

type VoteService interface {
	Vote(ctx context.Context, input VoteInput) (*domain.VoteReceipt, error)
	HasVoted(ctx context.Context, credential string) (bool, error)
	HasUserVoted(ctx context.Context, ref domain.ElectionReference, voterPseudonym string) (bool, error)
	EndElection(ctx context.Context, tenantID uuid.UUID) error
}
