package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the curation service.
// Environment variables are automatically parsed from the CURIO_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage. DBDriver "auto" resolves to sqlite unless a Postgres DSN is set.
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/curio.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Bootstrap principals
	Owner    string `envconfig:"OWNER" default:""`
	Treasury string `envconfig:"TREASURY" default:""`

	// Gating collaborator. Mode is one of: static, merkle, signature.
	GatingMode    string `envconfig:"GATING_MODE" default:"static"`
	MerkleRoot    string `envconfig:"MERKLE_ROOT" default:""`
	AttestorAddr  string `envconfig:"ATTESTOR_ADDR" default:""`
	DefaultWeight uint64 `envconfig:"DEFAULT_WEIGHT" default:"1"`

	// Optional curation collaborator webhook; hooks are skipped when empty.
	WebhookURL string `envconfig:"WEBHOOK_URL" default:""`

	// Operating defaults applied at boot (deferred setters adjust them later).
	PeriodDuration         uint64 `envconfig:"PERIOD_DURATION" default:"86400"` // seconds
	ReactionsPerWeightUnit uint64 `envconfig:"REACTIONS_PER_WEIGHT_UNIT" default:"10"`
	MessagesPerWeightUnit  uint64 `envconfig:"MESSAGES_PER_WEIGHT_UNIT" default:"10"`
	EditionPrice           uint64 `envconfig:"EDITION_PRICE" default:"1000"`
	CreatorEditions        uint64 `envconfig:"CREATOR_EDITIONS" default:"1"`
	CuratorEditions        uint64 `envconfig:"CURATOR_EDITIONS" default:"3"`
	PublicEditions         uint64 `envconfig:"PUBLIC_EDITIONS" default:"10"`
	MaxSessionsPerPeriod   uint64 `envconfig:"MAX_SESSIONS_PER_PERIOD" default:"100"`
	SelectionMode          string `envconfig:"SELECTION_MODE" default:"round"`
	TieBreak               string `envconfig:"TIE_BREAK" default:"lowest-id"`
	NoWinnerPolicy         string `envconfig:"NO_WINNER_POLICY" default:"skip"`
}

// ResolveDefaults derives DBDriver when set to "auto" or empty and validates
// the resolved driver choice.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}

	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("DB_DRIVER=postgres requires POSTGRES_DSN")
	}

	switch c.GatingMode {
	case "static", "merkle", "signature":
	default:
		return fmt.Errorf("unsupported GATING_MODE: %s", c.GatingMode)
	}
	if c.GatingMode == "merkle" && c.MerkleRoot == "" {
		return fmt.Errorf("GATING_MODE=merkle requires MERKLE_ROOT")
	}
	if c.GatingMode == "signature" && c.AttestorAddr == "" {
		return fmt.Errorf("GATING_MODE=signature requires ATTESTOR_ADDR")
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables are prefixed with CURIO_,
// e.g. CURIO_HTTP_PORT, CURIO_POSTGRES_DSN.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("CURIO", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("db_driver", cfg.DBDriver).
		Str("gating_mode", cfg.GatingMode).
		Str("postgres_dsn_present", func() string {
			if cfg.PostgresDSN != "" {
				return "true"
			}
			return "false"
		}()).
		Uint64("period_duration", cfg.PeriodDuration).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	cfg := &Config{
		Environment:            EnvTesting,
		HTTPPort:               8080,
		DBDriver:               "sqlite",
		SQLitePath:             ":memory:",
		GatingMode:             "static",
		DefaultWeight:          1,
		PeriodDuration:         86400,
		ReactionsPerWeightUnit: 10,
		MessagesPerWeightUnit:  10,
		EditionPrice:           1000,
		CreatorEditions:        1,
		CuratorEditions:        3,
		PublicEditions:         10,
		MaxSessionsPerPeriod:   100,
		SelectionMode:          "round",
		TieBreak:               "lowest-id",
		NoWinnerPolicy:         "skip",
	}
	return cfg
}
