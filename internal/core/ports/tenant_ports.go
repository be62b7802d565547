package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/evote/internal/core/domain"
)

type TenantRepository interface {
	// GetElectionReference returns nil when the tenant has no deployed election.
	GetElectionReference(ctx context.Context, tenantID uuid.UUID) (*domain.ElectionReference, error)
	IsMember(ctx context.Context, userID, tenantID uuid.UUID) (bool, error)
}
