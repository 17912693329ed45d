package infra

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5435"`
	PGUser      string `env:"PGUSER" envDefault:"shadowbook"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"shadowbook"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"shadowbook"`

	// Odds feed
	OddsAPIKey            string `env:"ODDS_API_KEY"`
	RequestTimeoutSeconds int    `env:"REQUEST_TIMEOUT" envDefault:"15"`
	CacheTTLSeconds       int    `env:"CACHE_TTL_SECONDS" envDefault:"60"`
	TeamMappingPath       string `env:"TEAM_MAPPING_PATH" envDefault:"data/team_mapping.json"`
	FuzzyMatchThreshold   int    `env:"FUZZY_MATCH_THRESHOLD" envDefault:"85"`

	// Risk thresholds
	MaxGlobalLiability float64 `env:"MAX_GLOBAL_LIABILITY" envDefault:"30000"`
	MinHouseEdge       float64 `env:"MIN_HOUSE_EDGE" envDefault:"-0.05"`
	HedgeRounding      float64 `env:"HEDGE_ROUNDING" envDefault:"50"`

	// Arb scanner
	ArbCapital float64 `env:"ARB_CAPITAL" envDefault:"1000"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3100"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot safely run with.
func (c *Config) Validate() error {
	if c.MaxGlobalLiability <= 0 {
		return fmt.Errorf("MAX_GLOBAL_LIABILITY must be positive, got %v", c.MaxGlobalLiability)
	}
	if c.HedgeRounding <= 0 {
		return fmt.Errorf("HEDGE_ROUNDING must be positive, got %v", c.HedgeRounding)
	}
	if c.FuzzyMatchThreshold < 0 || c.FuzzyMatchThreshold > 100 {
		return fmt.Errorf("FUZZY_MATCH_THRESHOLD must be in [0,100], got %d", c.FuzzyMatchThreshold)
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
