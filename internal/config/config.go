package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `env:", prefix=SERVER_"`
	Database  DatabaseConfig  `env:", prefix=DB_"`
	Provider  ProviderConfig  `env:", prefix=PROVIDER_"`
	Portfolio PortfolioConfig `env:", prefix=PORTFOLIO_"`
	Logging   LoggingConfig   `env:", prefix=LOG_"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `env:"HOST, default=0.0.0.0"`
	Port            int           `env:"PORT, default=8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT, default=15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT, default=30s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT, default=120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`
	CORSOrigins     []string      `env:"CORS_ORIGINS, default=*"`

	// APIToken, when set, is required in the Authorization header of every
	// request except the health check
	APIToken string `env:"API_TOKEN"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `env:"HOST, default=localhost"`
	Port     int    `env:"PORT, default=5432"`
	User     string `env:"USER, default=finsight"`
	Password string `env:"PASSWORD, default=finsight"`
	Name     string `env:"NAME, default=finsight"`
	SSLMode  string `env:"SSL_MODE, default=disable"`
}

// ProviderConfig holds market data provider configuration
type ProviderConfig struct {
	BaseURL string        `env:"BASE_URL, default=https://yahoo-finance15.p.rapidapi.com"`
	APIKey  string        `env:"API_KEY"`
	APIHost string        `env:"API_HOST, default=yahoo-finance15.p.rapidapi.com"`
	Timeout time.Duration `env:"TIMEOUT, default=15s"`
}

// PortfolioConfig holds portfolio engine configuration
type PortfolioConfig struct {
	// FallbackBaseline is used as the gain/loss baseline when no
	// history has been recorded yet.
	FallbackBaseline  float64       `env:"FALLBACK_BASELINE, default=12310"`
	PreloadPrices     bool          `env:"PRELOAD_PRICES, default=true"`
	RecommendationTTL time.Duration `env:"RECOMMENDATION_TTL, default=24h"`
	MarketListTTL     time.Duration `env:"MARKET_LIST_TTL, default=24h"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `env:"LEVEL, default=info"`
	Format string `env:"FORMAT, default=text"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider base URL is required")
	}
	return nil
}

// ConnString returns the PostgreSQL connection string
func (c *DatabaseConfig) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// GetServerAddr returns the HTTP listen address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
