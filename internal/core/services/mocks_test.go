package services

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/vncsmyrnk/evote/internal/core/domain"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type mockTenantRepo struct {
	mock.Mock
}

func (m *mockTenantRepo) GetElectionReference(ctx context.Context, tenantID uuid.UUID) (*domain.ElectionReference, error) {
	args := m.Called(ctx, tenantID)
	ref, _ := args.Get(0).(*domain.ElectionReference)
	return ref, args.Error(1)
}

func (m *mockTenantRepo) IsMember(ctx context.Context, userID, tenantID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, tenantID)
	return args.Bool(0), args.Error(1)
}

type mockEnrollmentRepo struct {
	mock.Mock
}

func (m *mockEnrollmentRepo) GetEnrollmentRecord(ctx context.Context, enrollmentID, tenantID uuid.UUID) (*domain.EnrollmentRecord, error) {
	args := m.Called(ctx, enrollmentID, tenantID)
	record, _ := args.Get(0).(*domain.EnrollmentRecord)
	return record, args.Error(1)
}

func (m *mockEnrollmentRepo) ListEnrollmentRecords(ctx context.Context, tenantID, userID uuid.UUID) ([]*domain.EnrollmentRecord, error) {
	args := m.Called(ctx, tenantID, userID)
	records, _ := args.Get(0).([]*domain.EnrollmentRecord)
	return records, args.Error(1)
}

// issuanceStore keeps the one-outstanding-credential rule in memory.
type issuanceStore struct {
	mu   sync.Mutex
	rows map[string]domain.CredentialIssuance
}

func newIssuanceStore() *issuanceStore {
	return &issuanceStore{rows: make(map[string]domain.CredentialIssuance)}
}

func (s *issuanceStore) ReserveIssuance(ctx context.Context, issuance *domain.CredentialIssuance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := issuance.EnrollmentID.String() + "|" + strings.ToLower(issuance.ContractAddress)
	if existing, ok := s.rows[key]; ok && existing.ExpiresAt.After(issuance.IssuedAt) {
		return domain.ErrCredentialAlreadyIssued
	}
	s.rows[key] = *issuance
	return nil
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) Vote(ctx context.Context, contract string, candidateID int64, voterPseudonym string) (string, error) {
	args := m.Called(ctx, contract, candidateID, voterPseudonym)
	return args.String(0), args.Error(1)
}

func (m *mockLedger) HasVoted(ctx context.Context, contract string, voterPseudonym string) (bool, error) {
	args := m.Called(ctx, contract, voterPseudonym)
	return args.Bool(0), args.Error(1)
}

func (m *mockLedger) EndElection(ctx context.Context, contract string) error {
	return m.Called(ctx, contract).Error(0)
}

func (m *mockLedger) TotalVotes(ctx context.Context, contract string) (int64, error) {
	args := m.Called(ctx, contract)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLedger) VotesByCandidate(ctx context.Context, contract string, candidateID int64) (int64, error) {
	args := m.Called(ctx, contract, candidateID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLedger) VoteAudit(ctx context.Context, contract string, candidateID int64) ([]domain.VoteRecord, error) {
	args := m.Called(ctx, contract, candidateID)
	records, _ := args.Get(0).([]domain.VoteRecord)
	return records, args.Error(1)
}

func (m *mockLedger) Candidates(ctx context.Context, contract string) ([]domain.Candidate, error) {
	args := m.Called(ctx, contract)
	candidates, _ := args.Get(0).([]domain.Candidate)
	return candidates, args.Error(1)
}

type enrollmentStore struct {
	mu      sync.Mutex
	records []*domain.EnrollmentRecord
}

func (s *enrollmentStore) add(tenantID, userID uuid.UUID, fields map[string]string) *domain.EnrollmentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := &domain.EnrollmentRecord{ID: uuid.New(), TenantID: tenantID, UserID: userID, Fields: fields}
	s.records = append(s.records, r)
	return r
}

func (s *enrollmentStore) GetEnrollmentRecord(ctx context.Context, enrollmentID, tenantID uuid.UUID) (*domain.EnrollmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.ID == enrollmentID && r.TenantID == tenantID {
			return r, nil
		}
	}
	return nil, nil
}

func (s *enrollmentStore) ListEnrollmentRecords(ctx context.Context, tenantID, userID uuid.UUID) ([]*domain.EnrollmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.EnrollmentRecord
	for _, r := range s.records {
		if r.TenantID == tenantID && r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}
