package domain

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentRecord is a tenant-defined registrant document. Fields has no fixed
// schema; consumers validate only the keys they need.
type EnrollmentRecord struct {
	ID        uuid.UUID         `json:"id"`
	TenantID  uuid.UUID         `json:"tenant_id"`
	UserID    uuid.UUID         `json:"user_id"`
	Fields    map[string]string `json:"fields"`
	CreatedAt time.Time         `json:"created_at"`
}

type MatchResult struct {
	EnrollmentID  uuid.UUID         `json:"enrollment_id"`
	MatchedFields map[string]string `json:"matched_fields"`
}
