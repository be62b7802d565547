// Package memory is an in-process election ledger. It applies the same rules
// as the deployed contract and serializes all writes, so it is the arbiter of
// double votes exactly like the real ledger.
package memory

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/vncsmyrnk/evote/internal/core/domain"
	"github.com/vncsmyrnk/evote/internal/core/ports"
)

type election struct {
	candidates []domain.Candidate
	ended      bool
	voters     map[string]struct{}
	votes      []domain.VoteRecord
}

type Ledger struct {
	mu        sync.Mutex
	elections map[string]*election
	seq       uint64
	now       func() time.Time
	// beforeVote runs outside the lock when a vote call arrives, letting tests
	// line up concurrent submissions before any of them commits.
	beforeVote func(ctx context.Context, contract, voterPseudonym string)
	// ballot, when set, is deployed at any address seen for the first time.
	ballot []domain.Candidate
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithBeforeVote(hook func(ctx context.Context, contract, voterPseudonym string)) Option {
	return func(l *Ledger) { l.beforeVote = hook }
}

// WithBallot deploys an election with the given candidates at every unknown
// contract address on first use. Local runs rely on it since no contract is
// ever deployed explicitly.
func WithBallot(candidates ...domain.Candidate) Option {
	return func(l *Ledger) { l.ballot = append([]domain.Candidate(nil), candidates...) }
}

var _ ports.Ledger = (*Ledger)(nil)

func New(opts ...Option) *Ledger {
	l := &Ledger{
		elections: make(map[string]*election),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Deploy registers an election contract with its candidates.
func (l *Ledger) Deploy(contract string, candidates ...domain.Candidate) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.elections[key(contract)] = &election{
		candidates: append([]domain.Candidate(nil), candidates...),
		voters:     make(map[string]struct{}),
	}
}

func (l *Ledger) Vote(ctx context.Context, contract string, candidateID int64, voterPseudonym string) (string, error) {
	if l.beforeVote != nil {
		l.beforeVote(ctx, contract, voterPseudonym)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrLedgerUnavailable, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := l.election(contract)
	if err != nil {
		return "", err
	}
	if e.ended {
		return "", &domain.LedgerRejectedError{Code: domain.RejectElectionEnded, Reason: "Election has ended"}
	}
	if !e.hasCandidate(candidateID) {
		return "", &domain.LedgerRejectedError{Code: domain.RejectUnknownCandidate, Reason: "Invalid candidate"}
	}
	voter := strings.ToLower(voterPseudonym)
	if _, ok := e.voters[voter]; ok {
		return "", &domain.LedgerRejectedError{Code: domain.RejectAlreadyVoted, Reason: "Voter has already voted"}
	}

	ts := l.now()
	voteHash := crypto.Keccak256Hash(
		common.FromHex(voterPseudonym),
		common.BigToHash(big.NewInt(candidateID)).Bytes(),
		common.BigToHash(big.NewInt(ts.UnixNano())).Bytes(),
	)
	e.voters[voter] = struct{}{}
	e.votes = append(e.votes, domain.VoteRecord{
		VoterPseudonym: voterPseudonym,
		CandidateID:    candidateID,
		Timestamp:      ts,
		VoteHash:       voteHash.Hex(),
	})

	l.seq++
	tx := crypto.Keccak256Hash(voteHash.Bytes(), common.BigToHash(new(big.Int).SetUint64(l.seq)).Bytes())
	return tx.Hex(), nil
}

func (l *Ledger) HasVoted(ctx context.Context, contract string, voterPseudonym string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := l.election(contract)
	if err != nil {
		return false, err
	}
	_, ok := e.voters[strings.ToLower(voterPseudonym)]
	return ok, nil
}

func (l *Ledger) EndElection(ctx context.Context, contract string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := l.election(contract)
	if err != nil {
		return err
	}
	if e.ended {
		return &domain.LedgerRejectedError{Code: domain.RejectElectionEnded, Reason: "Election has already ended"}
	}
	e.ended = true
	return nil
}

func (l *Ledger) TotalVotes(ctx context.Context, contract string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := l.election(contract)
	if err != nil {
		return 0, err
	}
	return int64(len(e.votes)), nil
}

func (l *Ledger) VotesByCandidate(ctx context.Context, contract string, candidateID int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := l.election(contract)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, v := range e.votes {
		if v.CandidateID == candidateID {
			n++
		}
	}
	return n, nil
}

func (l *Ledger) VoteAudit(ctx context.Context, contract string, candidateID int64) ([]domain.VoteRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := l.election(contract)
	if err != nil {
		return nil, err
	}
	records := make([]domain.VoteRecord, 0)
	for _, v := range e.votes {
		if v.CandidateID == candidateID {
			records = append(records, v)
		}
	}
	return records, nil
}

func (l *Ledger) Candidates(ctx context.Context, contract string) ([]domain.Candidate, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := l.election(contract)
	if err != nil {
		return nil, err
	}
	return append([]domain.Candidate(nil), e.candidates...), nil
}

func (l *Ledger) election(contract string) (*election, error) {
	e, ok := l.elections[key(contract)]
	if !ok && l.ballot != nil {
		e = &election{
			candidates: append([]domain.Candidate(nil), l.ballot...),
			voters:     make(map[string]struct{}),
		}
		l.elections[key(contract)] = e
		return e, nil
	}
	if !ok {
		return nil, &domain.LedgerRejectedError{Code: domain.RejectOther, Reason: "no election deployed at " + contract}
	}
	return e, nil
}

func (e *election) hasCandidate(id int64) bool {
	for _, c := range e.candidates {
		if c.ID == id {
			return true
		}
	}
	return false
}

func key(contract string) string {
	return strings.ToLower(contract)
}
