package domain

import (
	"time"

	"github.com/google/uuid"
)

// VotingCredential is handed to the voter once per enrollment. Token is the
// signed form; the other fields are its decoded claims.
type VotingCredential struct {
	Token          string            `json:"token"`
	VoterPseudonym string            `json:"voter_pseudonym"`
	Election       ElectionReference `json:"election"`
	IssuedAt       time.Time         `json:"issued_at"`
	ExpiresAt      time.Time         `json:"expires_at"`
}

type CredentialClaims struct {
	ID             uuid.UUID
	VoterPseudonym string
	Election       ElectionReference
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

// CredentialIssuance records that a credential exists for an enrollment in a
// given election, without storing the token itself.
type CredentialIssuance struct {
	ID              uuid.UUID
	EnrollmentID    uuid.UUID
	TenantID        uuid.UUID
	ContractAddress string
	CredentialID    uuid.UUID
	IssuedAt        time.Time
	ExpiresAt       time.Time
}
