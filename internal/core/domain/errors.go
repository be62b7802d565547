package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCredentialInvalid       = errors.New("voting credential is invalid")
	ErrCredentialExpired       = errors.New("voting credential has expired")
	ErrCredentialAlreadyIssued = errors.New("an unexpired voting credential was already issued for this enrollment")
	ErrAlreadyVoted            = errors.New("voter has already voted")
	ErrElectionNotConfigured   = errors.New("election is not configured for this tenant")
	ErrElectionAlreadyEnded    = errors.New("election has already ended")
	ErrLedgerRejected          = errors.New("ledger rejected the call")
	ErrSubmissionUncertain     = errors.New("vote submission outcome is unknown")
	ErrLedgerUnavailable       = errors.New("ledger is unavailable")
	ErrLedgerReadOnly          = errors.New("ledger has no signing key configured")
	ErrInvalidVoteRequest      = errors.New("invalid vote request")
	ErrEnrollmentNotFound      = errors.New("enrollment record not found")
	ErrNotTenantMember         = errors.New("user is not a member of this tenant")
	ErrNoMatchFound            = errors.New("no enrollment record matches the document")
	ErrInternal                = errors.New("internal server error")
)

type RejectionCode int

const (
	RejectOther RejectionCode = iota
	RejectAlreadyVoted
	RejectElectionEnded
	RejectUnknownCandidate
)

func (c RejectionCode) String() string {
	switch c {
	case RejectAlreadyVoted:
		return "already_voted"
	case RejectElectionEnded:
		return "election_ended"
	case RejectUnknownCandidate:
		return "unknown_candidate"
	default:
		return "rejected"
	}
}

// LedgerRejectedError is the ledger's own refusal of a call. Reason carries the
// ledger's message verbatim.
type LedgerRejectedError struct {
	Code   RejectionCode
	Reason string
}

func (e *LedgerRejectedError) Error() string {
	return fmt.Sprintf("ledger rejected: %s", e.Reason)
}

func (e *LedgerRejectedError) Is(target error) bool {
	return target == ErrLedgerRejected
}

// IsAlreadyVoted reports whether err is a double vote caught either by the
// pre-check or by the ledger itself.
func IsAlreadyVoted(err error) bool {
	if errors.Is(err, ErrAlreadyVoted) {
		return true
	}
	var rej *LedgerRejectedError
	return errors.As(err, &rej) && rej.Code == RejectAlreadyVoted
}
