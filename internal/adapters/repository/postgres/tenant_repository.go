package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/evote/internal/core/domain"
	"github.com/vncsmyrnk/evote/internal/core/ports"
)

type TenantRepository struct {
	db *sql.DB
}

func NewTenantRepository(db *sql.DB) ports.TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) GetElectionReference(ctx context.Context, tenantID uuid.UUID) (*domain.ElectionReference, error) {
	query := `SELECT contract_address FROM tenants WHERE id = $1 AND deleted_at IS NULL`
	var address string
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(&address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tenant election: %w", err)
	}

	ref := &domain.ElectionReference{TenantID: tenantID, ContractAddress: address}
	if !ref.Configured() {
		return nil, nil
	}
	return ref, nil
}

func (r *TenantRepository) IsMember(ctx context.Context, userID, tenantID uuid.UUID) (bool, error) {
	query := `SELECT 1 FROM tenant_members WHERE tenant_id = $1 AND user_id = $2 AND deleted_at IS NULL LIMIT 1`
	var exists int
	err := r.db.QueryRowContext(ctx, query, tenantID, userID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check tenant membership: %w", err)
	}
	return true, nil
}
