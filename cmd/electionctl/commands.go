package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/evote/internal/bootstrap"
	"github.com/vncsmyrnk/evote/internal/config"
	"github.com/vncsmyrnk/evote/internal/core/domain"
	"github.com/vncsmyrnk/evote/internal/logging"
	cli "gopkg.in/urfave/cli.v1"
)

type session struct {
	ctx    context.Context
	app    *bootstrap.App
	tenant uuid.UUID
	close  func()
}

func open(c *cli.Context) (*session, error) {
	if err := requireFlag(c, tenantFlag.Name); err != nil {
		return nil, err
	}
	tenant, err := uuid.Parse(c.GlobalString(tenantFlag.Name))
	if err != nil {
		return nil, fmt.Errorf("invalid tenant id: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if rpc := c.GlobalString(rpcFlag.Name); rpc != "" {
		cfg.Ledger.RPCURL = rpc
	}
	if d := c.GlobalDuration(timeoutFlag.Name); d > 0 {
		cfg.Ledger.Timeout = d
	}

	log, err := logging.New(logging.Options{Level: c.GlobalString(logLevelFlag.Name), SentryDSN: cfg.SentryDSN, Text: true})
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		stop()
		return nil, err
	}

	return &session{
		ctx:    ctx,
		app:    app,
		tenant: tenant,
		close: func() {
			app.Close()
			stop()
		},
	}, nil
}

func output(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runTally(c *cli.Context) error {
	s, err := open(c)
	if err != nil {
		return err
	}
	defer s.close()

	if candidate := c.Int64(candidateFlag.Name); candidate >= 0 {
		tally, err := s.app.Tally.VotesByCandidate(s.ctx, s.tenant, candidate)
		if err != nil {
			return err
		}
		return output(c, tally)
	}

	total, err := s.app.Tally.TotalVotes(s.ctx, s.tenant)
	if err != nil {
		return err
	}
	return output(c, map[string]int64{"total_votes": total})
}

func runAudit(c *cli.Context) error {
	if err := requireFlag(c, candidateFlag.Name); err != nil {
		return err
	}

	s, err := open(c)
	if err != nil {
		return err
	}
	defer s.close()

	audit, err := s.app.Tally.VoteAudit(s.ctx, s.tenant, c.Int64(candidateFlag.Name))
	if err != nil {
		return err
	}
	return output(c, audit)
}

func runStatistics(c *cli.Context) error {
	s, err := open(c)
	if err != nil {
		return err
	}
	defer s.close()

	stats, err := s.app.Tally.Statistics(s.ctx, s.tenant)
	if err != nil {
		return err
	}
	return output(c, stats)
}

func runEnd(c *cli.Context) error {
	s, err := open(c)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.app.Votes.EndElection(s.ctx, s.tenant); err != nil {
		return err
	}
	return output(c, map[string]bool{"ended": true})
}

func runHasVoted(c *cli.Context) error {
	if err := requireFlag(c, pseudonymFlag.Name); err != nil {
		return err
	}

	s, err := open(c)
	if err != nil {
		return err
	}
	defer s.close()

	ref, err := s.app.TenantRepo.GetElectionReference(s.ctx, s.tenant)
	if err != nil {
		return err
	}
	if ref == nil {
		return domain.ErrElectionNotConfigured
	}

	voted, err := s.app.Votes.HasUserVoted(s.ctx, *ref, c.String(pseudonymFlag.Name))
	if err != nil {
		return err
	}
	return output(c, map[string]bool{"has_voted": voted})
}
