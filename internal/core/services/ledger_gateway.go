package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/evote/internal/core/domain"
	"github.com/vncsmyrnk/evote/internal/core/ports"
)

const (
	DefaultLedgerTimeout    = 15 * time.Second
	DefaultLedgerRetryDelay = 200 * time.Millisecond
)

type LedgerGatewayConfig struct {
	Timeout    time.Duration
	RetryDelay time.Duration
	Now        func() time.Time
}

type ledgerGateway struct {
	ledger     ports.Ledger
	timeout    time.Duration
	retryDelay time.Duration
	now        func() time.Time
	log        logrus.FieldLogger
}

func NewLedgerGateway(ledger ports.Ledger, cfg LedgerGatewayConfig, log logrus.FieldLogger) ports.LedgerGateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultLedgerTimeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultLedgerRetryDelay
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &ledgerGateway{
		ledger:     ledger,
		timeout:    cfg.Timeout,
		retryDelay: cfg.RetryDelay,
		now:        cfg.Now,
		log:        log.WithField("component", "ledger_gateway"),
	}
}

// SubmitVote is never retried: once the call is dispatched, any failure other
// than an explicit ledger rejection leaves the outcome unknown.
func (g *ledgerGateway) SubmitVote(ctx context.Context, ref domain.ElectionReference, candidateID int64, voterPseudonym string) (*domain.VoteReceipt, error) {
	if !ref.Configured() {
		return nil, domain.ErrElectionNotConfigured
	}
	if candidateID < 0 {
		return nil, fmt.Errorf("%w: negative candidate id", domain.ErrInvalidVoteRequest)
	}
	if !ValidPseudonym(voterPseudonym) {
		return nil, fmt.Errorf("%w: malformed voter pseudonym", domain.ErrInvalidVoteRequest)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	txHash, err := g.ledger.Vote(callCtx, ref.ContractAddress, candidateID, voterPseudonym)
	if err != nil {
		var rej *domain.LedgerRejectedError
		if errors.As(err, &rej) || notDispatched(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrSubmissionUncertain, err)
	}

	return &domain.VoteReceipt{
		Election:       ref,
		CandidateID:    candidateID,
		VoterPseudonym: voterPseudonym,
		TxHash:         txHash,
		SubmittedAt:    g.now(),
	}, nil
}

func (g *ledgerGateway) EndElection(ctx context.Context, ref domain.ElectionReference) error {
	if !ref.Configured() {
		return domain.ErrElectionNotConfigured
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	err := g.ledger.EndElection(callCtx, ref.ContractAddress)
	if err == nil {
		return nil
	}

	if notDispatched(err) {
		return err
	}
	var rej *domain.LedgerRejectedError
	if errors.As(err, &rej) {
		if rej.Code == domain.RejectElectionEnded {
			return fmt.Errorf("%w: %w", domain.ErrElectionAlreadyEnded, err)
		}
		return err
	}
	return fmt.Errorf("%w: end election: %w", domain.ErrSubmissionUncertain, err)
}

func (g *ledgerGateway) HasVoted(ctx context.Context, ref domain.ElectionReference, voterPseudonym string) (bool, error) {
	if !ref.Configured() {
		return false, domain.ErrElectionNotConfigured
	}
	if !ValidPseudonym(voterPseudonym) {
		return false, fmt.Errorf("%w: malformed voter pseudonym", domain.ErrInvalidVoteRequest)
	}

	return readWithRetry(ctx, g, "has_voted", func(ctx context.Context) (bool, error) {
		return g.ledger.HasVoted(ctx, ref.ContractAddress, voterPseudonym)
	})
}

func (g *ledgerGateway) TotalVotes(ctx context.Context, ref domain.ElectionReference) (int64, error) {
	if !ref.Configured() {
		return 0, domain.ErrElectionNotConfigured
	}

	return readWithRetry(ctx, g, "total_votes", func(ctx context.Context) (int64, error) {
		return g.ledger.TotalVotes(ctx, ref.ContractAddress)
	})
}

func (g *ledgerGateway) VotesByCandidate(ctx context.Context, ref domain.ElectionReference, candidateID int64) (int64, error) {
	if !ref.Configured() {
		return 0, domain.ErrElectionNotConfigured
	}
	if candidateID < 0 {
		return 0, fmt.Errorf("%w: negative candidate id", domain.ErrInvalidVoteRequest)
	}

	return readWithRetry(ctx, g, "votes_by_candidate", func(ctx context.Context) (int64, error) {
		return g.ledger.VotesByCandidate(ctx, ref.ContractAddress, candidateID)
	})
}

// VoteAudit returns the candidate's records ordered by timestamp. Records with
// equal timestamps keep the ledger's order.
func (g *ledgerGateway) VoteAudit(ctx context.Context, ref domain.ElectionReference, candidateID int64) ([]domain.VoteRecord, error) {
	if !ref.Configured() {
		return nil, domain.ErrElectionNotConfigured
	}
	if candidateID < 0 {
		return nil, fmt.Errorf("%w: negative candidate id", domain.ErrInvalidVoteRequest)
	}

	records, err := readWithRetry(ctx, g, "vote_audit", func(ctx context.Context) ([]domain.VoteRecord, error) {
		return g.ledger.VoteAudit(ctx, ref.ContractAddress, candidateID)
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(records, func(a, b domain.VoteRecord) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return records, nil
}

func (g *ledgerGateway) Candidates(ctx context.Context, ref domain.ElectionReference) ([]domain.Candidate, error) {
	if !ref.Configured() {
		return nil, domain.ErrElectionNotConfigured
	}

	return readWithRetry(ctx, g, "candidates", func(ctx context.Context) ([]domain.Candidate, error) {
		return g.ledger.Candidates(ctx, ref.ContractAddress)
	})
}

// notDispatched reports errors raised before the write reached the ledger.
func notDispatched(err error) bool {
	return errors.Is(err, domain.ErrElectionNotConfigured) ||
		errors.Is(err, domain.ErrInvalidVoteRequest) ||
		errors.Is(err, domain.ErrLedgerReadOnly)
}

// readWithRetry runs a read-only ledger call under the gateway timeout and
// retries it once after a fixed delay when the ledger was unreachable.
func readWithRetry[T any](ctx context.Context, g *ledgerGateway, op string, call func(context.Context) (T, error)) (T, error) {
	v, err := readOnce(ctx, g.timeout, call)
	if err == nil || !errors.Is(err, domain.ErrLedgerUnavailable) || ctx.Err() != nil {
		return v, err
	}

	g.log.WithError(err).WithField("op", op).Warn("ledger read failed, retrying once")

	timer := time.NewTimer(g.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-timer.C:
	}

	return readOnce(ctx, g.timeout, call)
}

func readOnce[T any](ctx context.Context, timeout time.Duration, call func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := call(callCtx)
	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, domain.ErrLedgerUnavailable) {
		err = fmt.Errorf("%w: call timed out after %s: %w", domain.ErrLedgerUnavailable, timeout, err)
	}
	return v, err
}
