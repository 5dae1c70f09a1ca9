package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// API-Football provider
	APIFootballKey     string        `envconfig:"API_FOOTBALL_KEY" required:"true"`
	APIFootballBaseURL string        `envconfig:"API_FOOTBALL_BASE_URL" default:"https://v3.football.api-sports.io"`
	APIFootballTimeout time.Duration `envconfig:"API_FOOTBALL_TIMEOUT" default:"15s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"matchsync"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"matchsync_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (used when CACHE_BACKEND=redis)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Response cache
	CacheBackend string `envconfig:"CACHE_BACKEND" default:"memory"`

	// Call budgets (rolling 24h windows)
	OutboundDailyCeiling int `envconfig:"OUTBOUND_DAILY_CEILING" default:"7500"`
	InboundDailyCeiling  int `envconfig:"INBOUND_DAILY_CEILING" default:"10000"`

	// Cache TTLs per endpoint class
	TTLLive      time.Duration `envconfig:"TTL_LIVE" default:"30s"`
	TTLFixtures  time.Duration `envconfig:"TTL_FIXTURES" default:"1h"`
	TTLStandings time.Duration `envconfig:"TTL_STANDINGS" default:"6h"`
	TTLTeams     time.Duration `envconfig:"TTL_TEAMS" default:"24h"`
	TTLPlayers   time.Duration `envconfig:"TTL_PLAYERS" default:"24h"`

	// Refresh cadence
	LiveFixturesInterval     time.Duration `envconfig:"LIVE_FIXTURES_INTERVAL" default:"60s"`
	LiveStatsInterval        time.Duration `envconfig:"LIVE_STATS_INTERVAL" default:"90s"`
	UpcomingFixturesInterval time.Duration `envconfig:"UPCOMING_FIXTURES_INTERVAL" default:"1h"`
	TeamSeasonsCron          string        `envconfig:"TEAM_SEASONS_CRON" default:"0 3 * * *"`
	StandingsCron            string        `envconfig:"STANDINGS_CRON" default:"30 3 * * *"`

	// Sync behavior
	UpsertBatchSize   int     `envconfig:"UPSERT_BATCH_SIZE" default:"100"`
	TrackedLeagues    []int64 `envconfig:"TRACKED_LEAGUES" default:"39,140,135,78,61"`
	SeasonYear        int     `envconfig:"SEASON_YEAR" default:"2026"`
	UpcomingPerLeague int     `envconfig:"UPCOMING_PER_LEAGUE" default:"20"`

	// Scheduler
	EnableScheduler    bool `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialSyncEnabled bool `envconfig:"INITIAL_SYNC_ENABLED" default:"true"`

	// Status / monitoring surfaces
	StatusPort    int  `envconfig:"STATUS_PORT" default:"8080"`
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.APIFootballKey == "" {
		return fmt.Errorf("API_FOOTBALL_KEY is required")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.OutboundDailyCeiling <= 0 {
		return fmt.Errorf("OUTBOUND_DAILY_CEILING must be positive")
	}

	if c.CacheBackend != "memory" && c.CacheBackend != "redis" {
		return fmt.Errorf("CACHE_BACKEND must be memory or redis, got %q", c.CacheBackend)
	}

	if len(c.TrackedLeagues) == 0 {
		return fmt.Errorf("TRACKED_LEAGUES must name at least one league")
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
