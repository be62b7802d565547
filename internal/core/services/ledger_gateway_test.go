package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/evote/internal/adapters/ledger/memory"
	"github.com/vncsmyrnk/evote/internal/core/domain"
)

func testReference() domain.ElectionReference {
	return domain.ElectionReference{TenantID: uuid.New(), ContractAddress: testContract}
}

func testPseudonym(seed string) string {
	return DeriveVoterPseudonym(seed, "tenant", []byte("secret"))
}

func newTestGateway(ledger *mockLedger) *ledgerGateway {
	return NewLedgerGateway(ledger, LedgerGatewayConfig{
		Timeout:    50 * time.Millisecond,
		RetryDelay: time.Millisecond,
	}, quietLogger()).(*ledgerGateway)
}

func TestSubmitVoteAccepted(t *testing.T) {
	ledger := &mockLedger{}
	ref := testReference()
	voter := testPseudonym("a")
	ledger.On("Vote", mock.Anything, ref.ContractAddress, int64(1), voter).Return("0xabc", nil).Once()

	receipt, err := newTestGateway(ledger).SubmitVote(context.Background(), ref, 1, voter)
	require.NoError(t, err)

	assert.Equal(t, "0xabc", receipt.TxHash)
	assert.Equal(t, ref, receipt.Election)
	assert.Equal(t, int64(1), receipt.CandidateID)
	assert.Equal(t, voter, receipt.VoterPseudonym)
	ledger.AssertExpectations(t)
}

func TestSubmitVoteRejectionPassesThrough(t *testing.T) {
	ledger := &mockLedger{}
	ref := testReference()
	voter := testPseudonym("a")
	rejection := &domain.LedgerRejectedError{Code: domain.RejectAlreadyVoted, Reason: "Voter has already voted"}
	ledger.On("Vote", mock.Anything, ref.ContractAddress, int64(0), voter).Return("", rejection).Once()

	_, err := newTestGateway(ledger).SubmitVote(context.Background(), ref, 0, voter)

	require.ErrorIs(t, err, domain.ErrLedgerRejected)
	assert.True(t, domain.IsAlreadyVoted(err))
	assert.NotErrorIs(t, err, domain.ErrSubmissionUncertain)
}

func TestSubmitVoteIsNeverRetried(t *testing.T) {
	ledger := &mockLedger{}
	ref := testReference()
	voter := testPseudonym("a")
	ledger.On("Vote", mock.Anything, ref.ContractAddress, int64(0), voter).
		Return("", errors.New("connection reset by peer")).Once()

	_, err := newTestGateway(ledger).SubmitVote(context.Background(), ref, 0, voter)

	require.ErrorIs(t, err, domain.ErrSubmissionUncertain)
	assert.Equal(t, domain.OutcomeUncertain, domain.OutcomeOf(err))
	ledger.AssertNumberOfCalls(t, "Vote", 1)
}

func TestSubmitVoteTimeoutIsUncertain(t *testing.T) {
	ref := testReference()
	ledger := memory.New(memory.WithBeforeVote(func(ctx context.Context, contract, voter string) {
		<-ctx.Done()
	}))
	ledger.Deploy(ref.ContractAddress, domain.Candidate{ID: 0, Name: "A"})

	gateway := NewLedgerGateway(ledger, LedgerGatewayConfig{Timeout: 20 * time.Millisecond}, quietLogger())
	_, err := gateway.SubmitVote(context.Background(), ref, 0, testPseudonym("a"))

	require.ErrorIs(t, err, domain.ErrSubmissionUncertain)
}

func TestWritesWithoutSignerAreNotUncertain(t *testing.T) {
	ledger := &mockLedger{}
	ref := testReference()
	voter := testPseudonym("a")
	readOnly := fmt.Errorf("%w: cannot send vote", domain.ErrLedgerReadOnly)
	ledger.On("Vote", mock.Anything, ref.ContractAddress, int64(0), voter).Return("", readOnly)
	ledger.On("EndElection", mock.Anything, ref.ContractAddress).Return(readOnly)
	gateway := newTestGateway(ledger)

	_, err := gateway.SubmitVote(context.Background(), ref, 0, voter)
	require.ErrorIs(t, err, domain.ErrLedgerReadOnly)
	assert.NotErrorIs(t, err, domain.ErrSubmissionUncertain)

	err = gateway.EndElection(context.Background(), ref)
	require.ErrorIs(t, err, domain.ErrLedgerReadOnly)
	assert.NotErrorIs(t, err, domain.ErrSubmissionUncertain)
}

func TestSubmitVoteValidation(t *testing.T) {
	ledger := &mockLedger{}
	gateway := newTestGateway(ledger)
	ctx := context.Background()

	_, err := gateway.SubmitVote(ctx, domain.ElectionReference{TenantID: uuid.New()}, 0, testPseudonym("a"))
	require.ErrorIs(t, err, domain.ErrElectionNotConfigured)

	_, err = gateway.SubmitVote(ctx, testReference(), -1, testPseudonym("a"))
	require.ErrorIs(t, err, domain.ErrInvalidVoteRequest)

	_, err = gateway.SubmitVote(ctx, testReference(), 0, "0xdead")
	require.ErrorIs(t, err, domain.ErrInvalidVoteRequest)

	ledger.AssertNotCalled(t, "Vote", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadsRetryOnceWhenLedgerUnavailable(t *testing.T) {
	ledger := &mockLedger{}
	ref := testReference()
	ledger.On("TotalVotes", mock.Anything, ref.ContractAddress).Return(int64(0), domain.ErrLedgerUnavailable).Once()
	ledger.On("TotalVotes", mock.Anything, ref.ContractAddress).Return(int64(7), nil).Once()

	total, err := newTestGateway(ledger).TotalVotes(context.Background(), ref)
	require.NoError(t, err)

	assert.Equal(t, int64(7), total)
	ledger.AssertNumberOfCalls(t, "TotalVotes", 2)
}

func TestReadsGiveUpAfterOneRetry(t *testing.T) {
	ledger := &mockLedger{}
	ref := testReference()
	ledger.On("HasVoted", mock.Anything, ref.ContractAddress, mock.Anything).Return(false, domain.ErrLedgerUnavailable)

	_, err := newTestGateway(ledger).HasVoted(context.Background(), ref, testPseudonym("a"))

	require.ErrorIs(t, err, domain.ErrLedgerUnavailable)
	ledger.AssertNumberOfCalls(t, "HasVoted", 2)
}

func TestReadsDoNotRetryRejections(t *testing.T) {
	ledger := &mockLedger{}
	ref := testReference()
	ledger.On("Candidates", mock.Anything, ref.ContractAddress).
		Return(nil, &domain.LedgerRejectedError{Reason: "no election"})

	_, err := newTestGateway(ledger).Candidates(context.Background(), ref)

	require.ErrorIs(t, err, domain.ErrLedgerRejected)
	ledger.AssertNumberOfCalls(t, "Candidates", 1)
}

func TestReadTimeoutIsUnavailable(t *testing.T) {
	ledger := &mockLedger{}
	ref := testReference()
	ledger.On("VotesByCandidate", mock.Anything, ref.ContractAddress, int64(0)).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(int64(0), context.DeadlineExceeded)

	_, err := newTestGateway(ledger).VotesByCandidate(context.Background(), ref, 0)

	require.ErrorIs(t, err, domain.ErrLedgerUnavailable)
	ledger.AssertNumberOfCalls(t, "VotesByCandidate", 2)
}

func TestEndElectionTwice(t *testing.T) {
	ref := testReference()
	ledger := memory.New()
	ledger.Deploy(ref.ContractAddress, domain.Candidate{ID: 0, Name: "A"})
	gateway := NewLedgerGateway(ledger, LedgerGatewayConfig{}, quietLogger())
	ctx := context.Background()

	require.NoError(t, gateway.EndElection(ctx, ref))

	err := gateway.EndElection(ctx, ref)
	require.ErrorIs(t, err, domain.ErrElectionAlreadyEnded)

	_, err = gateway.SubmitVote(ctx, ref, 0, testPseudonym("late"))
	var rej *domain.LedgerRejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, domain.RejectElectionEnded, rej.Code)
}

func TestVoteAuditIsStableSortedByTimestamp(t *testing.T) {
	ledger := &mockLedger{}
	ref := testReference()
	base := time.Unix(1_700_000_000, 0).UTC()
	records := []domain.VoteRecord{
		{VoterPseudonym: "c", Timestamp: base.Add(2 * time.Second)},
		{VoterPseudonym: "a1", Timestamp: base},
		{VoterPseudonym: "b", Timestamp: base.Add(time.Second)},
		{VoterPseudonym: "a2", Timestamp: base},
	}
	ledger.On("VoteAudit", mock.Anything, ref.ContractAddress, int64(0)).Return(records, nil)

	got, err := newTestGateway(ledger).VoteAudit(context.Background(), ref, 0)
	require.NoError(t, err)

	var order []string
	for _, r := range got {
		order = append(order, r.VoterPseudonym)
	}
	assert.Equal(t, []string{"a1", "a2", "b", "c"}, order)
}
