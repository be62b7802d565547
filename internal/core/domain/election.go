package domain

import (
	"github.com/google/uuid"
)

// ElectionReference identifies a tenant's deployed election contract.
type ElectionReference struct {
	TenantID        uuid.UUID `json:"tenant_id"`
	ContractAddress string    `json:"contract_address"`
}

func (r ElectionReference) Configured() bool {
	return r.ContractAddress != ""
}

type Candidate struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CandidateTally is always derived from the ledger, never stored.
type CandidateTally struct {
	CandidateID int64 `json:"candidate_id"`
	VoteCount   int64 `json:"vote_count"`
}

type VoteAudit struct {
	CandidateID int64        `json:"candidate_id"`
	Records     []VoteRecord `json:"records"`
	MerkleRoot  string       `json:"merkle_root,omitempty"`
}

type CandidateStatistics struct {
	Candidate
	VoteCount  int64   `json:"vote_count"`
	Percentage float64 `json:"percentage"`
}

type ElectionStatistics struct {
	Election   ElectionReference     `json:"election"`
	TotalVotes int64                 `json:"total_votes"`
	Candidates []CandidateStatistics `json:"candidates"`
}
