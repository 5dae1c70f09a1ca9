package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"matchsync/ingestion/internal/cache"
	"matchsync/ingestion/internal/client"
	"matchsync/ingestion/internal/config"
	"matchsync/ingestion/internal/metrics"
	"matchsync/ingestion/internal/quota"
	"matchsync/ingestion/internal/repository"
	"matchsync/ingestion/internal/scheduler"
	syncer "matchsync/ingestion/internal/sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting matchsync ingestion worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Int("outbound_ceiling", cfg.OutboundDailyCeiling).
		Ints64("leagues", cfg.TrackedLeagues).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize database connection
	dbConfig := repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	}

	db, err := repository.NewDatabase(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	// Select the response cache backend. Redis when the worker runs as
	// multiple processes, in-process memory otherwise.
	responseCache := buildCache(cfg)

	// Outbound governor and inbound limiter are independent counters
	governor := quota.NewCounter("outbound", cfg.OutboundDailyCeiling)
	inbound := quota.NewCounter("inbound", cfg.InboundDailyCeiling)

	apiClient := client.NewClient(
		cfg.APIFootballBaseURL,
		cfg.APIFootballKey,
		cfg.APIFootballTimeout,
		governor,
		responseCache,
		client.TTLConfig{
			Live:      cfg.TTLLive,
			Fixtures:  cfg.TTLFixtures,
			Standings: cfg.TTLStandings,
			Teams:     cfg.TTLTeams,
			Players:   cfg.TTLPlayers,
		},
	)
	log.Info().Str("base_url", cfg.APIFootballBaseURL).Msg("Provider client initialized")

	sync := syncer.NewSyncer(db, cfg.UpsertBatchSize)

	sched := scheduler.NewScheduler(scheduler.BuildTasks(cfg, apiClient, sync, governor))

	// Status and metrics HTTP surfaces
	statusSrv := newStatusServer(ctx, cfg, governor, inbound, apiClient, sched, db)
	go statusSrv.listen()
	if cfg.EnableMetrics {
		go startMetricsServer(strconv.Itoa(cfg.MetricsPort))
	}

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
				for _, u := range []quota.Usage{governor.Usage(), inbound.Usage()} {
					metrics.RecordQuotaUsage(u.Name, u.Count, u.Remaining)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Run initial warm sync before the scheduler starts ticking so the
	// store has a schedule to serve from minute one
	if cfg.InitialSyncEnabled {
		log.Info().Msg("Running initial data sync...")
		if err := runInitialSync(ctx, cfg, apiClient, sync); err != nil {
			log.Error().Err(err).Msg("Initial sync failed, continuing anyway...")
		} else {
			log.Info().Msg("Initial sync completed successfully")
		}
	}

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()
	statusSrv.shutdown()

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// buildCache selects the configured response cache backend, falling
// back to in-process memory when Redis is unreachable
func buildCache(cfg *config.Config) cache.Cache {
	if cfg.CacheBackend == "redis" {
		redisCache, err := cache.NewRedisCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     strconv.Itoa(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis, falling back to memory cache")
			return cache.NewMemoryCache()
		}
		log.Info().Str("addr", cfg.RedisAddr()).Msg("Redis response cache connected")
		return redisCache
	}

	log.Info().Msg("Using in-process response cache")
	return cache.NewMemoryCache()
}

// runInitialSync seeds the store with the schedule and standings for
// every tracked league. Errors on one league do not stop the others.
func runInitialSync(ctx context.Context, cfg *config.Config, c *client.Client, s *syncer.Syncer) error {
	for _, leagueID := range cfg.TrackedLeagues {
		fixtures, err := c.FetchUpcomingFixtures(ctx, leagueID, cfg.SeasonYear, cfg.UpcomingPerLeague)
		if err != nil {
			log.Warn().Err(err).Int64("league_id", leagueID).Msg("Initial fixtures fetch failed")
			continue
		}

		written, err := s.SyncFixtures(ctx, fixtures)
		if err != nil {
			log.Warn().Err(err).Int64("league_id", leagueID).Msg("Initial fixtures sync failed")
			continue
		}
		log.Info().Int64("league_id", leagueID).Int("fixtures", written).Msg("Initial fixtures synced")

		standings, err := c.FetchStandings(ctx, leagueID, cfg.SeasonYear)
		if err != nil {
			log.Warn().Err(err).Int64("league_id", leagueID).Msg("Initial standings fetch failed")
			continue
		}

		if _, err := s.SyncStandings(ctx, standings); err != nil {
			log.Warn().Err(err).Int64("league_id", leagueID).Msg("Initial standings sync failed")
		}
	}

	return ctx.Err()
}
