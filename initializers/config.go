package initializers

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

var storeDrivers = []string{StoreDriverFile, StoreDriverPostgres, StoreDriverSQLite, StoreDriverMemory}

type Config struct {
	DBURL                      string        `envconfig:"DB_URL"`
	Secret                     string        `envconfig:"SECRET"`
	FirebaseServiceAccountPath string        `envconfig:"FIREBASE_SERVICE_ACCOUNT_PATH"`
	DisablePush                bool          `envconfig:"DISABLE_PUSH" default:"false"`
	ResendAPIKey               string        `envconfig:"RESEND_API_KEY"`
	EmailFrom                  string        `envconfig:"EMAIL_FROM" default:"OraComigo <ola@oracomigo.com>"`
	StoreDriver                string        `envconfig:"STORE_DRIVER" default:"file"`
	SQLitePath                 string        `envconfig:"SQLITE_PATH" default:"oracomigo.db"`
	SnapshotPath               string        `envconfig:"SNAPSHOT_PATH" default:"data/oracomigo.json"`
	SnapshotKey                string        `envconfig:"SNAPSHOT_KEY" default:"oracomigo"`
	GracesPerPrayer            int           `envconfig:"GRACES_PER_PRAYER" default:"5"`
	EditorEmails               []string      `envconfig:"EDITOR_EMAILS"`
	TokenTTL                   time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	LogLevel                   string        `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig parses the environment. Variables are read without a prefix so
// existing deployments keep their names.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("store_driver", cfg.StoreDriver).
		Int("graces_per_prayer", cfg.GracesPerPrayer).
		Int("editor_emails", len(cfg.EditorEmails)).
		Dur("token_ttl", cfg.TokenTTL).
		Bool("email_enabled", cfg.ResendAPIKey != "").
		Bool("push_enabled", !cfg.DisablePush).
		Msg("Configuration loaded")

	return &cfg, nil
}

func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	if !slices.Contains(storeDrivers, c.StoreDriver) {
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}
	if c.StoreDriver == StoreDriverPostgres && c.DBURL == "" {
		return fmt.Errorf("DB_URL is required for the postgres store driver")
	}
	if c.Secret == "" {
		return fmt.Errorf("SECRET is required")
	}
	if c.GracesPerPrayer <= 0 {
		return fmt.Errorf("GRACES_PER_PRAYER must be positive, got %d", c.GracesPerPrayer)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}
