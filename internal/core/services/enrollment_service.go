package services

import (
	"context"
	"fmt"

	"github.com/vncsmyrnk/evote/internal/core/domain"
	"github.com/vncsmyrnk/evote/internal/core/ports"
)

type enrollmentService struct {
	tenantRepo  ports.TenantRepository
	matcher     ports.MatcherService
	credentials ports.CredentialService
}

func NewEnrollmentService(tenantRepo ports.TenantRepository, matcher ports.MatcherService, credentials ports.CredentialService) ports.EnrollmentService {
	return &enrollmentService{
		tenantRepo:  tenantRepo,
		matcher:     matcher,
		credentials: credentials,
	}
}

func (s *enrollmentService) EnrollFromDocument(ctx context.Context, input ports.EnrollDocumentInput) (*domain.VotingCredential, error) {
	member, err := s.tenantRepo.IsMember(ctx, input.UserID, input.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to check tenant membership: %w", err)
	}
	if !member {
		return nil, domain.ErrNotTenantMember
	}

	match, err := s.matcher.MatchEnrollment(ctx, input.ExtractedFields, input.UserID, input.TenantID)
	if err != nil {
		return nil, err
	}

	return s.credentials.IssueCredential(ctx, input.TenantID, match.EnrollmentID)
}
