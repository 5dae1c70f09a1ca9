package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"matchsync/ingestion/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned by Get methods when no row matches
var ErrNotFound = errors.New("not found")

// Database holds the connection pool and provides access to repositories
type Database struct {
	Pool *pgxpool.Pool

	// Repositories
	Leagues    *LeagueRepository
	Teams      *TeamRepository
	Fixtures   *FixtureRepository
	Players    *PlayerRepository
	Standings  *StandingRepository
	Statistics *StatisticRepository
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewDatabase creates a new connection pool and initializes repositories
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Successfully connected to database")

	db := &Database{
		Pool: pool,
	}

	db.Leagues = &LeagueRepository{db: db}
	db.Teams = &TeamRepository{db: db}
	db.Fixtures = &FixtureRepository{db: db}
	db.Players = &PlayerRepository{db: db}
	db.Standings = &StandingRepository{db: db}
	db.Statistics = &StatisticRepository{db: db}

	return db, nil
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("Database connection pool closed")
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// The methods below flatten the per-entity repositories into a single
// write surface for the sync layer.

// UpsertLeague writes one league row
func (db *Database) UpsertLeague(ctx context.Context, league *models.League) error {
	return db.Leagues.Upsert(ctx, league)
}

// UpsertTeam writes one team row
func (db *Database) UpsertTeam(ctx context.Context, team *models.Team) error {
	return db.Teams.Upsert(ctx, team)
}

// UpsertFixtures writes fixture rows, skipping failures
func (db *Database) UpsertFixtures(ctx context.Context, fixtures []*models.Fixture) (int, error) {
	return db.Fixtures.UpsertBatch(ctx, fixtures)
}

// UpsertPlayer writes one player season row
func (db *Database) UpsertPlayer(ctx context.Context, player *models.Player) error {
	return db.Players.Upsert(ctx, player)
}

// UpsertStanding writes one standings row
func (db *Database) UpsertStanding(ctx context.Context, standing *models.Standing) error {
	return db.Standings.Upsert(ctx, standing)
}

// UpsertStatistics writes fixture statistic rows, skipping failures
func (db *Database) UpsertStatistics(ctx context.Context, stats []*models.FixtureStatistic) (int, error) {
	return db.Statistics.UpsertAll(ctx, stats)
}

// PoolStats returns database pool statistics
func (db *Database) PoolStats() map[string]interface{} {
	stat := db.Pool.Stat()
	return map[string]interface{}{
		"total_conns":    stat.TotalConns(),
		"acquired_conns": stat.AcquiredConns(),
		"idle_conns":     stat.IdleConns(),
		"max_conns":      stat.MaxConns(),
	}
}
