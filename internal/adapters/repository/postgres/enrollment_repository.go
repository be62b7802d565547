package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/evote/internal/core/domain"
	"github.com/vncsmyrnk/evote/internal/core/ports"
)

type EnrollmentRepository struct {
	db *sql.DB
}

func NewEnrollmentRepository(db *sql.DB) ports.EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) GetEnrollmentRecord(ctx context.Context, enrollmentID, tenantID uuid.UUID) (*domain.EnrollmentRecord, error) {
	query := `
		SELECT id, tenant_id, user_id, fields, created_at
		FROM enrollment_records
		WHERE id = $1 AND tenant_id = $2
	`
	record, err := scanEnrollment(r.db.QueryRowContext(ctx, query, enrollmentID, tenantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get enrollment record: %w", err)
	}
	return record, nil
}

func (r *EnrollmentRepository) ListEnrollmentRecords(ctx context.Context, tenantID, userID uuid.UUID) ([]*domain.EnrollmentRecord, error) {
	query := `
		SELECT id, tenant_id, user_id, fields, created_at
		FROM enrollment_records
		WHERE tenant_id = $1 AND user_id = $2
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollment records: %w", err)
	}
	defer rows.Close()

	var records []*domain.EnrollmentRecord
	for rows.Next() {
		record, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollment records: %w", err)
	}
	return records, nil
}

// Save inserts a record. Enrollment ingestion itself lives outside this
// service; a zero CreatedAt defaults to the database clock.
func (r *EnrollmentRepository) Save(ctx context.Context, record *domain.EnrollmentRecord) error {
	fields, err := json.Marshal(record.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode enrollment fields: %w", err)
	}

	var createdAt any
	if !record.CreatedAt.IsZero() {
		createdAt = record.CreatedAt
	}

	query := `
		INSERT INTO enrollment_records (tenant_id, user_id, fields, created_at)
		VALUES ($1, $2, $3, COALESCE($4::timestamptz, NOW()))
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query, record.TenantID, record.UserID, fields, createdAt).Scan(&record.ID, &record.CreatedAt)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnrollment(row rowScanner) (*domain.EnrollmentRecord, error) {
	var (
		record domain.EnrollmentRecord
		fields []byte
	)
	if err := row.Scan(&record.ID, &record.TenantID, &record.UserID, &fields, &record.CreatedAt); err != nil {
		return nil, err
	}

	record.Fields = map[string]string{}
	if err := json.Unmarshal(fields, &record.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode enrollment fields: %w", err)
	}
	return &record, nil
}
