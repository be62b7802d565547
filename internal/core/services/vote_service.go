package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/evote/internal/core/domain"
	"github.com/vncsmyrnk/evote/internal/core/ports"
)

type voteService struct {
	credentials ports.CredentialService
	tenantRepo  ports.TenantRepository
	gateway     ports.LedgerGateway
	log         logrus.FieldLogger
}

func NewVoteService(credentials ports.CredentialService, tenantRepo ports.TenantRepository, gateway ports.LedgerGateway, log logrus.FieldLogger) ports.VoteService {
	return &voteService{
		credentials: credentials,
		tenantRepo:  tenantRepo,
		gateway:     gateway,
		log:         log.WithField("component", "vote_service"),
	}
}

// Vote validates the credential, short-circuits voters the ledger already
// knows about, and submits. The HasVoted check only saves a transaction; two
// concurrent submissions can both pass it and the ledger rejects the second.
func (s *voteService) Vote(ctx context.Context, input ports.VoteInput) (*domain.VoteReceipt, error) {
	log := s.log.WithField("candidate_id", input.CandidateID)

	claims, err := s.credentials.ValidateCredential(input.Credential)
	if err != nil {
		log.WithField("outcome", domain.OutcomeRejected).WithField("reason", domain.RejectionReason(err)).Info("vote rejected")
		return nil, err
	}
	log = log.WithFields(logrus.Fields{
		"tenant_id": claims.Election.TenantID,
		"voter":     shortPseudonym(claims.VoterPseudonym),
	})

	receipt, err := s.submit(ctx, claims, input.CandidateID)
	s.logOutcome(log, receipt, err)
	return receipt, err
}

func (s *voteService) submit(ctx context.Context, claims *domain.CredentialClaims, candidateID int64) (*domain.VoteReceipt, error) {
	ref, err := s.currentElection(ctx, claims)
	if err != nil {
		return nil, err
	}

	voted, err := s.gateway.HasVoted(ctx, ref, claims.VoterPseudonym)
	if err != nil {
		return nil, fmt.Errorf("failed to check eligibility: %w", err)
	}
	if voted {
		return nil, domain.ErrAlreadyVoted
	}

	return s.gateway.SubmitVote(ctx, ref, candidateID, claims.VoterPseudonym)
}

func (s *voteService) HasVoted(ctx context.Context, credential string) (bool, error) {
	claims, err := s.credentials.ValidateCredential(credential)
	if err != nil {
		return false, err
	}

	ref, err := s.currentElection(ctx, claims)
	if err != nil {
		return false, err
	}

	return s.gateway.HasVoted(ctx, ref, claims.VoterPseudonym)
}

func (s *voteService) HasUserVoted(ctx context.Context, ref domain.ElectionReference, voterPseudonym string) (bool, error) {
	return s.gateway.HasVoted(ctx, ref, voterPseudonym)
}

func (s *voteService) EndElection(ctx context.Context, tenantID uuid.UUID) error {
	ref, err := resolveElection(ctx, s.tenantRepo, tenantID)
	if err != nil {
		return err
	}

	if err := s.gateway.EndElection(ctx, ref); err != nil {
		s.log.WithError(err).WithField("tenant_id", tenantID).Warn("end election failed")
		return err
	}

	s.log.WithField("tenant_id", tenantID).WithField("contract", ref.ContractAddress).Info("election ended")
	return nil
}

// currentElection reads the tenant's election on every call. A credential
// minted for a previous deployment is not valid for the current one.
func (s *voteService) currentElection(ctx context.Context, claims *domain.CredentialClaims) (domain.ElectionReference, error) {
	ref, err := resolveElection(ctx, s.tenantRepo, claims.Election.TenantID)
	if err != nil {
		return domain.ElectionReference{}, err
	}
	if !strings.EqualFold(ref.ContractAddress, claims.Election.ContractAddress) {
		return domain.ElectionReference{}, fmt.Errorf("%w: credential belongs to another election", domain.ErrCredentialInvalid)
	}
	return ref, nil
}

func (s *voteService) logOutcome(log logrus.FieldLogger, receipt *domain.VoteReceipt, err error) {
	outcome := domain.OutcomeOf(err)
	log = log.WithField("outcome", outcome)

	switch outcome {
	case domain.OutcomeAccepted:
		log.WithField("tx_hash", receipt.TxHash).Info("vote accepted")
	case domain.OutcomeRejected:
		log.WithField("reason", domain.RejectionReason(err)).Info("vote rejected")
	case domain.OutcomeUncertain:
		log.WithError(err).Error("vote submission outcome unknown")
	default:
		log.WithError(err).Error("vote failed")
	}
}

func resolveElection(ctx context.Context, tenantRepo ports.TenantRepository, tenantID uuid.UUID) (domain.ElectionReference, error) {
	ref, err := tenantRepo.GetElectionReference(ctx, tenantID)
	if err != nil {
		return domain.ElectionReference{}, fmt.Errorf("failed to get election reference: %w", err)
	}
	if ref == nil || !ref.Configured() {
		return domain.ElectionReference{}, domain.ErrElectionNotConfigured
	}
	return *ref, nil
}
