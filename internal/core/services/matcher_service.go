package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/evote/internal/core/domain"
	"github.com/vncsmyrnk/evote/internal/core/ports"
	"github.com/vncsmyrnk/evote/internal/worker"
)

type matcherService struct {
	enrollmentRepo ports.EnrollmentRepository
	pool           *worker.Pool
	primaryField   string
	log            logrus.FieldLogger
}

func NewMatcherService(enrollmentRepo ports.EnrollmentRepository, pool *worker.Pool, primaryField string, log logrus.FieldLogger) ports.MatcherService {
	if primaryField == "" {
		primaryField = DefaultPrimaryField
	}

	return &matcherService{
		enrollmentRepo: enrollmentRepo,
		pool:           pool,
		primaryField:   primaryField,
		log:            log.WithField("component", "matcher"),
	}
}

// MatchEnrollment runs the enrollment scan on the worker pool so a slow store
// never holds a request goroutine beyond its context.
func (s *matcherService) MatchEnrollment(ctx context.Context, extractedFields map[string]string, userID, tenantID uuid.UUID) (*domain.MatchResult, error) {
	fields := normalizeFields(extractedFields)
	if len(fields) == 0 {
		return nil, domain.ErrNoMatchFound
	}

	repo, primaryField := s.enrollmentRepo, s.primaryField
	job := func(ctx context.Context) (any, error) {
		records, err := repo.ListEnrollmentRecords(ctx, tenantID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list enrollment records: %w", err)
		}
		return matchRecords(records, fields, primaryField)
	}

	log := s.log.WithFields(logrus.Fields{"tenant_id": tenantID, "user_id": userID})

	done, err := s.pool.Submit(ctx, job)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		log.WithError(err).Error("failed to dispatch matcher job")
		return nil, fmt.Errorf("%w: %w", domain.ErrInternal, err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		switch {
		case res.Err == nil:
			match := res.Value.(*domain.MatchResult)
			log.WithField("enrollment_id", match.EnrollmentID).Info("enrollment matched")
			return match, nil
		case errors.Is(res.Err, domain.ErrNoMatchFound):
			log.Info("no enrollment matched")
			return nil, res.Err
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			log.WithError(res.Err).Error("matcher job failed")
			return nil, fmt.Errorf("%w: %w", domain.ErrInternal, res.Err)
		}
	}
}
