// Package bootstrap builds the service graph shared by the API server and the
// admin CLI from a loaded configuration.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/evote/internal/adapters/ledger/ethereum"
	"github.com/vncsmyrnk/evote/internal/adapters/ledger/memory"
	"github.com/vncsmyrnk/evote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/evote/internal/config"
	"github.com/vncsmyrnk/evote/internal/core/domain"
	"github.com/vncsmyrnk/evote/internal/core/ports"
	"github.com/vncsmyrnk/evote/internal/core/services"
	"github.com/vncsmyrnk/evote/internal/worker"
)

type App struct {
	TenantRepo  ports.TenantRepository
	Gateway     ports.LedgerGateway
	Credentials ports.CredentialService
	Votes       ports.VoteService
	Tally       ports.TallyService
	Enrollment  ports.EnrollmentService

	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func New(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	app := &App{}

	db, err := sql.Open("postgres", cfg.Postgres.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.closers = append(app.closers, func() { db.Close() })

	if err := db.PingContext(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	ledger, err := app.openLedger(ctx, cfg.Ledger, log)
	if err != nil {
		app.Close()
		return nil, err
	}

	pool := worker.NewPool(cfg.Matcher.Workers, cfg.Matcher.QueueSize, log)
	app.closers = append(app.closers, pool.Stop)

	tenantRepo := postgres.NewTenantRepository(db)
	enrollmentRepo := postgres.NewEnrollmentRepository(db)
	credentialRepo := postgres.NewCredentialRepository(db)

	gateway := services.NewLedgerGateway(ledger, services.LedgerGatewayConfig{
		Timeout:    cfg.Ledger.Timeout,
		RetryDelay: cfg.Ledger.RetryDelay,
	}, log)

	credentials := services.NewCredentialService(tenantRepo, enrollmentRepo, credentialRepo, services.CredentialConfig{
		PseudonymSecret: []byte(cfg.PseudonymSecret),
		SigningKey:      []byte(cfg.CredentialSecret),
		TTL:             cfg.CredentialTTL,
	})
	matcher := services.NewMatcherService(enrollmentRepo, pool, cfg.Matcher.PrimaryField, log)

	app.TenantRepo = tenantRepo
	app.Gateway = gateway
	app.Credentials = credentials
	app.Votes = services.NewVoteService(credentials, tenantRepo, gateway, log)
	app.Tally = services.NewTallyService(tenantRepo, gateway)
	app.Enrollment = services.NewEnrollmentService(tenantRepo, matcher, credentials)

	return app, nil
}

// openLedger connects the configured ledger. The Ethereum ledger is read-only
// when no wallet key is configured.
func (a *App) openLedger(ctx context.Context, cfg config.Ledger, log logrus.FieldLogger) (ports.Ledger, error) {
	if cfg.Backend == config.LedgerMemory {
		ballot := make([]domain.Candidate, 0, len(cfg.Ballot))
		for i, name := range cfg.Ballot {
			ballot = append(ballot, domain.Candidate{ID: int64(i), Name: name})
		}
		log.WithField("candidates", len(ballot)).Warn("using in-memory ledger, votes are lost on exit")
		return memory.New(memory.WithBallot(ballot...)), nil
	}

	if cfg.RPCURL == "" {
		return nil, errors.New("LEDGER_RPC_URL is required")
	}
	ledger, client, err := ethereum.Dial(ctx, ethereum.Config{
		RPCURL:     cfg.RPCURL,
		PrivateKey: cfg.PrivateKey,
		ChainID:    cfg.ChainID,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	if cfg.PrivateKey == "" {
		log.Info("ledger opened read-only")
	}
	return ledger, nil
}
