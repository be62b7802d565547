package domain

import (
	"errors"
	"time"
)

// VoteRecord is a ledger-resident vote. It is written once and never changes.
type VoteRecord struct {
	VoterPseudonym string    `json:"voter_pseudonym"`
	CandidateID    int64     `json:"candidate_id"`
	Timestamp      time.Time `json:"timestamp"`
	VoteHash       string    `json:"vote_hash"`
}

type VoteReceipt struct {
	Election       ElectionReference `json:"election"`
	CandidateID    int64             `json:"candidate_id"`
	VoterPseudonym string            `json:"voter_pseudonym"`
	TxHash         string            `json:"tx_hash"`
	SubmittedAt    time.Time         `json:"submitted_at"`
}

type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeRejected  Outcome = "rejected"
	OutcomeUncertain Outcome = "uncertain"
	OutcomeFailed    Outcome = "failed"
)

// OutcomeOf maps the result of a vote submission to its terminal state.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeAccepted
	case errors.Is(err, ErrSubmissionUncertain):
		return OutcomeUncertain
	case errors.Is(err, ErrCredentialInvalid),
		errors.Is(err, ErrCredentialExpired),
		errors.Is(err, ErrAlreadyVoted),
		errors.Is(err, ErrLedgerRejected),
		errors.Is(err, ErrElectionNotConfigured),
		errors.Is(err, ErrInvalidVoteRequest):
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}

// RejectionReason is the short machine-readable reason reported to clients.
func RejectionReason(err error) string {
	var rej *LedgerRejectedError
	switch {
	case errors.As(err, &rej):
		return rej.Code.String()
	case errors.Is(err, ErrAlreadyVoted):
		return "already_voted"
	case errors.Is(err, ErrCredentialExpired):
		return "credential_expired"
	case errors.Is(err, ErrCredentialInvalid):
		return "credential_invalid"
	case errors.Is(err, ErrElectionNotConfigured):
		return "election_not_configured"
	case errors.Is(err, ErrInvalidVoteRequest):
		return "invalid_request"
	default:
		return ""
	}
}
