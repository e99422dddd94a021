package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Tokens   TokenConfig    `env:",prefix=TOKEN_"`
	Security SecurityConfig `env:",prefix="`
	Email    EmailConfig    `env:",prefix=EMAIL_"`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Sweep    SweepConfig    `env:",prefix=SWEEP_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host            string   `env:"HOST,default=localhost"`
	Port            string   `env:"PORT,default=5432"`
	User            string   `env:"USER,default=siteauth"`
	Password        string   `env:"PASSWORD,default=siteauth_password"`
	DBName          string   `env:"DB,default=siteauth_db"`
	SSLMode         string   `env:"SSLMODE,default=disable"`
	MaxOpenConns    int      `env:"MAX_OPEN_CONNS,default=10"`
	MaxIdleConns    int      `env:"MAX_IDLE_CONNS,default=2"`
	ConnMaxLifetime Duration `env:"CONN_MAX_LIFETIME,default=30m"`
}

// TokenConfig holds the per-kind token lifetimes.
type TokenConfig struct {
	AuthTTL              Duration `env:"AUTH_TTL,default=1h"`
	EmailVerificationTTL Duration `env:"EMAIL_VERIFICATION_TTL,default=24h"`
	PasswordResetTTL     Duration `env:"PASSWORD_RESET_TTL,default=1h"`
	EmailChangeTTL       Duration `env:"EMAIL_CHANGE_TTL,default=1h"`
}

type SecurityConfig struct {
	// MasterAPIKey is the static operator secret guarding tenant-management
	// and global admin endpoints.
	MasterAPIKey string `env:"MASTER_API_KEY,required"`
	BCryptCost   int    `env:"BCRYPT_COST,default=12"`
}

type EmailConfig struct {
	// Provider selects the outbound sender: "sendgrid" or "log".
	Provider       string `env:"PROVIDER,default=log"`
	SendGridAPIKey string `env:"SENDGRID_API_KEY,default="`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=*"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization,X-API-Key"`
}

type SweepConfig struct {
	// Enabled controls the in-process sweep loop. Disable it when expired
	// tokens are swept externally via cmd/sweeper.
	Enabled  bool     `env:"ENABLED,default=true"`
	Interval Duration `env:"INTERVAL,default=1h"`
}

// DSN returns the PostgreSQL connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Load loads configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(config.Security.MasterAPIKey) < 16 {
		return nil, fmt.Errorf("MASTER_API_KEY must be at least 16 characters long")
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context.
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}
