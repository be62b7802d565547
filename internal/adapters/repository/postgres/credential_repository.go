package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/vncsmyrnk/evote/internal/core/domain"
	"github.com/vncsmyrnk/evote/internal/core/ports"
)

const uniqueViolation = pq.ErrorCode("23505")

type CredentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) ports.CredentialRepository {
	return &CredentialRepository{db: db}
}

// ReserveIssuance inserts the issuance or replaces an expired one in a single
// statement, so two concurrent issuances for the same enrollment cannot both
// succeed.
func (r *CredentialRepository) ReserveIssuance(ctx context.Context, issuance *domain.CredentialIssuance) error {
	query := `
		INSERT INTO credential_issuances (id, enrollment_id, tenant_id, contract_address, credential_id, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (enrollment_id, contract_address) DO UPDATE
		SET id = EXCLUDED.id,
		    tenant_id = EXCLUDED.tenant_id,
		    credential_id = EXCLUDED.credential_id,
		    issued_at = EXCLUDED.issued_at,
		    expires_at = EXCLUDED.expires_at
		WHERE credential_issuances.expires_at <= EXCLUDED.issued_at
		RETURNING id
	`
	var id string
	err := r.db.QueryRowContext(ctx, query,
		issuance.ID,
		issuance.EnrollmentID,
		issuance.TenantID,
		strings.ToLower(issuance.ContractAddress),
		issuance.CredentialID,
		issuance.IssuedAt,
		issuance.ExpiresAt,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrCredentialAlreadyIssued
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrCredentialAlreadyIssued
		}
		return fmt.Errorf("failed to reserve credential issuance: %w", err)
	}
	return nil
}
