package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/evote/internal/core/domain"
	"github.com/vncsmyrnk/evote/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

const statisticsConcurrency = 8

// tallyService reads straight from the ledger on every call; nothing is cached.
type tallyService struct {
	tenantRepo ports.TenantRepository
	gateway    ports.LedgerGateway
}

func NewTallyService(tenantRepo ports.TenantRepository, gateway ports.LedgerGateway) ports.TallyService {
	return &tallyService{
		tenantRepo: tenantRepo,
		gateway:    gateway,
	}
}

func (s *tallyService) TotalVotes(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	ref, err := resolveElection(ctx, s.tenantRepo, tenantID)
	if err != nil {
		return 0, err
	}
	return s.gateway.TotalVotes(ctx, ref)
}

func (s *tallyService) VotesByCandidate(ctx context.Context, tenantID uuid.UUID, candidateID int64) (*domain.CandidateTally, error) {
	ref, err := resolveElection(ctx, s.tenantRepo, tenantID)
	if err != nil {
		return nil, err
	}

	count, err := s.gateway.VotesByCandidate(ctx, ref, candidateID)
	if err != nil {
		return nil, err
	}
	return &domain.CandidateTally{CandidateID: candidateID, VoteCount: count}, nil
}

func (s *tallyService) VoteAudit(ctx context.Context, tenantID uuid.UUID, candidateID int64) (*domain.VoteAudit, error) {
	ref, err := resolveElection(ctx, s.tenantRepo, tenantID)
	if err != nil {
		return nil, err
	}

	records, err := s.gateway.VoteAudit(ctx, ref, candidateID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.VoteRecord{}
	}

	root, err := AuditMerkleRoot(records)
	if err != nil {
		return nil, err
	}

	return &domain.VoteAudit{
		CandidateID: candidateID,
		Records:     records,
		MerkleRoot:  root,
	}, nil
}

func (s *tallyService) Statistics(ctx context.Context, tenantID uuid.UUID) (*domain.ElectionStatistics, error) {
	ref, err := resolveElection(ctx, s.tenantRepo, tenantID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.gateway.Candidates(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	stats := make([]domain.CandidateStatistics, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statisticsConcurrency)
	for i, c := range candidates {
		g.Go(func() error {
			count, err := s.gateway.VotesByCandidate(gctx, ref, c.ID)
			if err != nil {
				return fmt.Errorf("failed to count votes for candidate %d: %w", c.ID, err)
			}
			stats[i] = domain.CandidateStatistics{Candidate: c, VoteCount: count}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int64
	for _, st := range stats {
		total += st.VoteCount
	}
	for i := range stats {
		if total > 0 {
			stats[i].Percentage = (float64(stats[i].VoteCount) / float64(total)) * 100
		}
	}

	return &domain.ElectionStatistics{
		Election:   ref,
		TotalVotes: total,
		Candidates: stats,
	}, nil
}
