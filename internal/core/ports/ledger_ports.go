package ports

import (
	"context"

	"github.com/vncsmyrnk/evote/internal/core/domain"
)

// Ledger is the contract-call surface of the external append-only ledger.
// Every call is addressed by the election contract address.
//
// Implementations report the ledger's refusals as *domain.LedgerRejectedError
// and transport failures wrapped around domain.ErrLedgerUnavailable.
type Ledger interface {
	Vote(ctx context.Context, contract string, candidateID int64, voterPseudonym string) (txHash string, err error)
	HasVoted(ctx context.Context, contract string, voterPseudonym string) (bool, error)
	EndElection(ctx context.Context, contract string) error
	TotalVotes(ctx context.Context, contract string) (int64, error)
	VotesByCandidate(ctx context.Context, contract string, candidateID int64) (int64, error)
	VoteAudit(ctx context.Context, contract string, candidateID int64) ([]domain.VoteRecord, error)
	Candidates(ctx context.Context, contract string) ([]domain.Candidate, error)
}

type LedgerGateway interface {
	SubmitVote(ctx context.Context, ref domain.ElectionReference, candidateID int64, voterPseudonym string) (*domain.VoteReceipt, error)
	HasVoted(ctx context.Context, ref domain.ElectionReference, voterPseudonym string) (bool, error)
	EndElection(ctx context.Context, ref domain.ElectionReference) error
	TotalVotes(ctx context.Context, ref domain.ElectionReference) (int64, error)
	VotesByCandidate(ctx context.Context, ref domain.ElectionReference, candidateID int64) (int64, error)
	VoteAudit(ctx context.Context, ref domain.ElectionReference, candidateID int64) ([]domain.VoteRecord, error)
	Candidates(ctx context.Context, ref domain.ElectionReference) ([]domain.Candidate, error)
}
