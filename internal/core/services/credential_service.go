package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/evote/internal/core/domain"
	"github.com/vncsmyrnk/evote/internal/core/ports"
)

const DefaultCredentialTTL = 10 * 24 * time.Hour

type CredentialConfig struct {
	PseudonymSecret []byte
	SigningKey      []byte
	TTL             time.Duration
	Now             func() time.Time
}

type credentialService struct {
	tenantRepo      ports.TenantRepository
	enrollmentRepo  ports.EnrollmentRepository
	credentialRepo  ports.CredentialRepository
	pseudonymSecret []byte
	signingKey      []byte
	ttl             time.Duration
	now             func() time.Time
}

type credentialClaims struct {
	TenantID string `json:"tid"`
	Election string `json:"ele"`
	jwt.RegisteredClaims
}

func NewCredentialService(tenantRepo ports.TenantRepository, enrollmentRepo ports.EnrollmentRepository, credentialRepo ports.CredentialRepository, cfg CredentialConfig) ports.CredentialService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultCredentialTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &credentialService{
		tenantRepo:      tenantRepo,
		enrollmentRepo:  enrollmentRepo,
		credentialRepo:  credentialRepo,
		pseudonymSecret: cfg.PseudonymSecret,
		signingKey:      cfg.SigningKey,
		ttl:             ttl,
		now:             now,
	}
}

func (s *credentialService) IssueCredential(ctx context.Context, tenantID, enrollmentID uuid.UUID) (*domain.VotingCredential, error) {
	record, err := s.enrollmentRepo.GetEnrollmentRecord(ctx, enrollmentID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment record: %w", err)
	}
	if record == nil {
		return nil, domain.ErrEnrollmentNotFound
	}

	ref, err := s.tenantRepo.GetElectionReference(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get election reference: %w", err)
	}
	if ref == nil || !ref.Configured() {
		return nil, domain.ErrElectionNotConfigured
	}

	// JWT dates have second precision; keep the stored issuance in step.
	now := s.now().Truncate(time.Second)
	pseudonym := DeriveVoterPseudonym(record.ID.String(), tenantID.String(), s.pseudonymSecret)
	issuance := &domain.CredentialIssuance{
		ID:              uuid.New(),
		EnrollmentID:    record.ID,
		TenantID:        tenantID,
		ContractAddress: ref.ContractAddress,
		CredentialID:    uuid.New(),
		IssuedAt:        now,
		ExpiresAt:       now.Add(s.ttl),
	}

	token, err := s.sign(pseudonym, *ref, issuance)
	if err != nil {
		return nil, fmt.Errorf("failed to sign credential: %w", err)
	}

	if err := s.credentialRepo.ReserveIssuance(ctx, issuance); err != nil {
		return nil, err
	}

	return &domain.VotingCredential{
		Token:          token,
		VoterPseudonym: pseudonym,
		Election:       *ref,
		IssuedAt:       issuance.IssuedAt,
		ExpiresAt:      issuance.ExpiresAt,
	}, nil
}

func (s *credentialService) ValidateCredential(token string) (*domain.CredentialClaims, error) {
	claims := &credentialClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrCredentialExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCredentialInvalid, err)
	}

	if !ValidPseudonym(claims.Subject) || claims.Election == "" || claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: incomplete claims", domain.ErrCredentialInvalid)
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tenant", domain.ErrCredentialInvalid)
	}
	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid credential id", domain.ErrCredentialInvalid)
	}

	return &domain.CredentialClaims{
		ID:             id,
		VoterPseudonym: claims.Subject,
		Election: domain.ElectionReference{
			TenantID:        tenantID,
			ContractAddress: claims.Election,
		},
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *credentialService) sign(pseudonym string, ref domain.ElectionReference, issuance *domain.CredentialIssuance) (string, error) {
	claims := credentialClaims{
		TenantID: ref.TenantID.String(),
		Election: ref.ContractAddress,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   pseudonym,
			ID:        issuance.CredentialID.String(),
			IssuedAt:  jwt.NewNumericDate(issuance.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(issuance.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}
