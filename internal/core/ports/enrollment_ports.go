package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/evote/internal/core/domain"
)

type EnrollmentRepository interface {
	// GetEnrollmentRecord returns nil when the record does not exist in the tenant.
	GetEnrollmentRecord(ctx context.Context, enrollmentID, tenantID uuid.UUID) (*domain.EnrollmentRecord, error)
	// ListEnrollmentRecords returns records ordered by creation time, then id.
	ListEnrollmentRecords(ctx context.Context, tenantID, userID uuid.UUID) ([]*domain.EnrollmentRecord, error)
}

type MatcherService interface {
	MatchEnrollment(ctx context.Context, extractedFields map[string]string, userID, tenantID uuid.UUID) (*domain.MatchResult, error)
}

type EnrollDocumentInput struct {
	UserID          uuid.UUID
	TenantID        uuid.UUID
	ExtractedFields map[string]string
}

type EnrollmentService interface {
	EnrollFromDocument(ctx context.Context, input EnrollDocumentInput) (*domain.VotingCredential, error)
}
