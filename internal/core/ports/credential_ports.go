package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/evote/internal/core/domain"
)

type CredentialRepository interface {
	// ReserveIssuance stores the issuance unless an unexpired one exists for the
	// same enrollment and contract, in which case it returns
	// domain.ErrCredentialAlreadyIssued.
	ReserveIssuance(ctx context.Context, issuance *domain.CredentialIssuance) error
}

type CredentialService interface {
	IssueCredential(ctx context.Context, tenantID, enrollmentID uuid.UUID) (*domain.VotingCredential, error)
	ValidateCredential(token string) (*domain.CredentialClaims, error)
}
