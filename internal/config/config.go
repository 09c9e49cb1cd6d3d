// Package config loads service configuration from compiled defaults, an optional
// YAML file, a local .env file and OCEN_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable that points at the YAML config file.
const FileEnv = "OCEN_CONFIG"

// ServiceConfig is the listen surface of one service.
type ServiceConfig struct {
	Addr     string `yaml:"addr"`
	GRPCAddr string `yaml:"grpc_addr,omitempty"`
}

// UpstreamConfig tells the LSP where its collaborators live.
type UpstreamConfig struct {
	AABaseURL     string        `yaml:"aa_base_url"`
	LenderBaseURL string        `yaml:"lender_base_url"`
	Timeout       time.Duration `yaml:"timeout"`
}

// ConsentConfig holds the lifecycle timings of the account aggregator.
type ConsentConfig struct {
	DecisionDelay time.Duration `yaml:"decision_delay"`
	ExpiryWindow  time.Duration `yaml:"expiry_window"`
}

// LoanConfig holds the lender's amount thresholds (inclusive).
type LoanConfig struct {
	MinAmount float64 `yaml:"min_amount"`
	MaxAmount float64 `yaml:"max_amount"`
}

// AuthConfig enables service-to-service bearer tokens when Secret is set.
type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int    `yaml:"max_conns"`
}

type RateLimitConfig struct {
	Burst     int `yaml:"burst"`
	PerSecond int `yaml:"per_second"`
}

// Config is shared by the aa, lender and lsp binaries; each reads its own part.
type Config struct {
	AA        ServiceConfig   `yaml:"aa"`
	Lender    ServiceConfig   `yaml:"lender"`
	LSP       ServiceConfig   `yaml:"lsp"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Consent   ConsentConfig   `yaml:"consent"`
	Loan      LoanConfig      `yaml:"loan"`
	Auth      AuthConfig      `yaml:"auth"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	LogLevel  string          `yaml:"log_level"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		AA:     ServiceConfig{Addr: ":7000"},
		Lender: ServiceConfig{Addr: ":9000"},
		LSP:    ServiceConfig{Addr: ":8000"},
		Upstream: UpstreamConfig{
			AABaseURL:     "http://127.0.0.1:7000",
			LenderBaseURL: "http://localhost:9000",
			Timeout:       10 * time.Second,
		},
		Consent: ConsentConfig{
			DecisionDelay: 5 * time.Second,
			ExpiryWindow:  1800 * time.Second,
		},
		Loan: LoanConfig{
			MinAmount: 50_000,
			MaxAmount: 1_000_000,
		},
		Auth: AuthConfig{
			TokenTTL: 5 * time.Minute,
		},
		Postgres: PostgresConfig{
			MaxConns: 10,
		},
		RateLimit: RateLimitConfig{
			Burst:     50,
			PerSecond: 25,
		},
		LogLevel: "info",
	}
}

// Load builds the configuration. path may be empty; OCEN_CONFIG is consulted then.
func Load(path string) (*Config, error) {
	// .env is optional, for local development
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv(FileEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.AA.Addr = getEnv("OCEN_AA_ADDR", cfg.AA.Addr)
	cfg.AA.GRPCAddr = getEnv("OCEN_AA_GRPC_ADDR", cfg.AA.GRPCAddr)
	cfg.Lender.Addr = getEnv("OCEN_LENDER_ADDR", cfg.Lender.Addr)
	cfg.Lender.GRPCAddr = getEnv("OCEN_LENDER_GRPC_ADDR", cfg.Lender.GRPCAddr)
	cfg.LSP.Addr = getEnv("OCEN_LSP_ADDR", cfg.LSP.Addr)
	cfg.LSP.GRPCAddr = getEnv("OCEN_LSP_GRPC_ADDR", cfg.LSP.GRPCAddr)

	cfg.Upstream.AABaseURL = getEnv("OCEN_AA_BASE_URL", cfg.Upstream.AABaseURL)
	cfg.Upstream.LenderBaseURL = getEnv("OCEN_LENDER_BASE_URL", cfg.Upstream.LenderBaseURL)
	cfg.Upstream.Timeout = getEnvAsDuration("OCEN_UPSTREAM_TIMEOUT", cfg.Upstream.Timeout)

	cfg.Consent.DecisionDelay = getEnvAsDuration("OCEN_CONSENT_DECISION_DELAY", cfg.Consent.DecisionDelay)
	cfg.Consent.ExpiryWindow = getEnvAsDuration("OCEN_CONSENT_EXPIRY_WINDOW", cfg.Consent.ExpiryWindow)

	cfg.Loan.MinAmount = getEnvAsFloat("OCEN_LOAN_MIN_AMOUNT", cfg.Loan.MinAmount)
	cfg.Loan.MaxAmount = getEnvAsFloat("OCEN_LOAN_MAX_AMOUNT", cfg.Loan.MaxAmount)

	cfg.Auth.Secret = getEnv("OCEN_AUTH_SECRET", cfg.Auth.Secret)
	cfg.Auth.TokenTTL = getEnvAsDuration("OCEN_AUTH_TOKEN_TTL", cfg.Auth.TokenTTL)

	cfg.Postgres.DSN = getEnv("OCEN_PG_DSN", cfg.Postgres.DSN)
	cfg.Postgres.MaxConns = getEnvAsInt("OCEN_PG_MAX_CONNS", cfg.Postgres.MaxConns)

	cfg.RateLimit.Burst = getEnvAsInt("OCEN_RATE_BURST", cfg.RateLimit.Burst)
	cfg.RateLimit.PerSecond = getEnvAsInt("OCEN_RATE_PER_SECOND", cfg.RateLimit.PerSecond)

	cfg.LogLevel = strings.ToLower(getEnv("OCEN_LOG_LEVEL", cfg.LogLevel))
}

// Validate rejects configurations the services cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Consent.DecisionDelay < 0 {
		errs = append(errs, errors.New("consent.decision_delay must be >= 0"))
	}
	if c.Consent.ExpiryWindow <= c.Consent.DecisionDelay {
		errs = append(errs, errors.New("consent.expiry_window must exceed consent.decision_delay"))
	}
	if c.Loan.MinAmount <= 0 || c.Loan.MaxAmount < c.Loan.MinAmount {
		errs = append(errs, errors.New("loan thresholds must satisfy 0 < min_amount <= max_amount"))
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, errors.New("upstream.timeout must be > 0"))
	}
	if c.RateLimit.Burst <= 0 || c.RateLimit.PerSecond <= 0 {
		errs = append(errs, errors.New("rate_limit values must be > 0"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
