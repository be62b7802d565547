package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/evote/internal/core/domain"
)

type TallyService interface {
	TotalVotes(ctx context.Context, tenantID uuid.UUID) (int64, error)
	VotesByCandidate(ctx context.Context, tenantID uuid.UUID, candidateID int64) (*domain.CandidateTally, error)
	VoteAudit(ctx context.Context, tenantID uuid.UUID, candidateID int64) (*domain.VoteAudit, error)
	Statistics(ctx context.Context, tenantID uuid.UUID) (*domain.ElectionStatistics, error)
}
