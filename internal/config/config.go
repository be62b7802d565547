package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
}

func (p Postgres) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", p.User, p.Password, p.Host, p.Port, p.DB)
}

const (
	LedgerEthereum = "ethereum"
	LedgerMemory   = "memory"
)

// Ledger selects the vote ledger. Backend is LedgerEthereum or LedgerMemory;
// Ballot names the candidates of every memory election, in id order.
type Ledger struct {
	Backend    string
	Ballot     []string
	RPCURL     string
	PrivateKey string
	ChainID    int64
	Timeout    time.Duration
	RetryDelay time.Duration
}

// RequireSigner fails when writes cannot be signed. Read-only tools skip it.
func (l Ledger) RequireSigner() error {
	if l.Backend == LedgerEthereum && l.PrivateKey == "" {
		return errors.New("LEDGER_PRIVATE_KEY is required")
	}
	return nil
}

type Matcher struct {
	Workers      int
	QueueSize    int
	PrimaryField string
}

type Config struct {
	Postgres          Postgres
	HTTPAddr          string
	PseudonymSecret   string
	CredentialSecret  string
	TenantTokenSecret string
	CredentialTTL     time.Duration
	Ledger            Ledger
	Matcher           Matcher
	LogLevel          string
	SentryDSN         string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*Config, error) {
	p := parser{getenv: getenv}

	cfg := &Config{
		Postgres: Postgres{
			Host:     p.str("POSTGRES_HOST", "localhost"),
			Port:     p.str("POSTGRES_PORT", "5432"),
			User:     p.str("POSTGRES_USER", ""),
			Password: p.str("POSTGRES_PASSWORD", ""),
			DB:       p.str("POSTGRES_DB", ""),
		},
		HTTPAddr:          p.str("HTTP_ADDR", "0.0.0.0:8080"),
		PseudonymSecret:   p.str("PSEUDONYM_SECRET", ""),
		CredentialSecret:  p.str("CREDENTIAL_SECRET", ""),
		TenantTokenSecret: p.str("TENANT_TOKEN_SECRET", ""),
		CredentialTTL:     p.duration("CREDENTIAL_TTL", 10*24*time.Hour),
		Ledger: Ledger{
			Backend:    strings.ToLower(p.str("LEDGER_BACKEND", LedgerEthereum)),
			Ballot:     p.list("LEDGER_BALLOT"),
			RPCURL:     p.str("LEDGER_RPC_URL", ""),
			PrivateKey: p.str("LEDGER_PRIVATE_KEY", ""),
			ChainID:    int64(p.integer("LEDGER_CHAIN_ID", 0)),
			Timeout:    p.duration("LEDGER_TIMEOUT", 15*time.Second),
			RetryDelay: p.duration("LEDGER_RETRY_DELAY", 200*time.Millisecond),
		},
		Matcher: Matcher{
			Workers:      p.integer("MATCHER_WORKERS", 4),
			QueueSize:    p.integer("MATCHER_QUEUE", 64),
			PrimaryField: p.str("MATCHER_PRIMARY_FIELD", "dni"),
		},
		LogLevel:  p.str("LOG_LEVEL", "info"),
		SentryDSN: p.str("SENTRY_DSN", ""),
	}

	if p.err != nil {
		return nil, p.err
	}
	if cfg.PseudonymSecret == "" {
		return nil, errors.New("PSEUDONYM_SECRET is required")
	}
	if cfg.CredentialSecret == "" {
		return nil, errors.New("CREDENTIAL_SECRET is required")
	}
	if cfg.TenantTokenSecret == "" {
		return nil, errors.New("TENANT_TOKEN_SECRET is required")
	}
	if cfg.TenantTokenSecret == cfg.CredentialSecret {
		return nil, errors.New("TENANT_TOKEN_SECRET must differ from CREDENTIAL_SECRET")
	}

	switch cfg.Ledger.Backend {
	case LedgerEthereum:
	case LedgerMemory:
		if len(cfg.Ledger.Ballot) == 0 {
			return nil, errors.New("LEDGER_BALLOT is required for the memory ledger")
		}
	default:
		return nil, fmt.Errorf("unknown LEDGER_BACKEND %q", cfg.Ledger.Backend)
	}
	return cfg, nil
}

type parser struct {
	getenv func(string) string
	err    error
}

func (p *parser) str(key, def string) string {
	if v := p.getenv(key); v != "" {
		return v
	}
	return def
}

// list splits a comma separated value, dropping blank items.
func (p *parser) list(key string) []string {
	var out []string
	for _, item := range strings.Split(p.getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := p.getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return d
}

func (p *parser) integer(key string, def int) int {
	v := p.getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return n
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}
