package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"matchsync/ingestion/internal/client"
	"matchsync/ingestion/internal/config"
	"matchsync/ingestion/internal/metrics"
	"matchsync/ingestion/internal/quota"
	"matchsync/ingestion/internal/repository"
	"matchsync/ingestion/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// statusServer exposes the worker's operational state: quota windows,
// per-task scheduler counters, provider-reported budget, store health.
// Its endpoints sit behind the inbound limiter.
type statusServer struct {
	cfg      *config.Config
	governor *quota.Counter
	inbound  *quota.Counter
	client   *client.Client
	sched    *scheduler.Scheduler
	db       *repository.Database
	rootCtx  context.Context
	srv      *http.Server
}

func newStatusServer(ctx context.Context, cfg *config.Config, governor, inbound *quota.Counter, c *client.Client, sched *scheduler.Scheduler, db *repository.Database) *statusServer {
	s := &statusServer{
		cfg:      cfg,
		governor: governor,
		inbound:  inbound,
		client:   c,
		sched:    sched,
		db:       db,
		rootCtx:  ctx,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.limit(s.handleStatus))
	mux.HandleFunc("/quota", s.limit(s.handleQuota))
	mux.HandleFunc("/scheduler/start", s.limit(s.handleSchedulerStart))
	mux.HandleFunc("/scheduler/stop", s.limit(s.handleSchedulerStop))
	mux.HandleFunc("/healthz", s.handleHealth)

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.StatusPort),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

func (s *statusServer) listen() {
	log.Info().Int("port", s.cfg.StatusPort).Msg("Starting status server")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("Status server failed")
	}
}

func (s *statusServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Status server shutdown failed")
	}
}

// limit gates a handler behind the inbound daily counter. A denied
// request costs no budget and returns 429 with the window reset time.
func (s *statusServer) limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.inbound.Admit() {
			usage := s.inbound.Usage()
			metrics.InboundRequestsTotal.WithLabelValues(r.URL.Path, "denied").Inc()
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", usage.ResetAt.UTC().Format(http.TimeFormat))
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":     "daily request budget exhausted",
				"resetTime": usage.ResetAt,
			})
			return
		}
		s.inbound.RecordCall()
		metrics.InboundRequestsTotal.WithLabelValues(r.URL.Path, "served").Inc()
		next(w, r)
	}
}

func (s *statusServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	providerLimit, providerRemaining := s.client.ProviderQuota()

	out := map[string]interface{}{
		"outbound": s.governor.Usage(),
		"inbound":  s.inbound.Usage(),
		"provider": map[string]int{
			"limit":     providerLimit,
			"remaining": providerRemaining,
		},
		"schedulerRunning": s.sched.Running(),
		"tasks":            s.sched.Stats(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Warn().Err(err).Msg("Failed to encode status response")
	}
}

// handleQuota serves just the counter snapshots, cheap enough to poll
func (s *statusServer) handleQuota(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]quota.Usage{
		"outbound": s.governor.Usage(),
		"inbound":  s.inbound.Usage(),
	})
}

// handleSchedulerStart starts a stopped scheduler. Tasks keep their
// cumulative counters across restarts.
func (s *statusServer) handleSchedulerStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := s.sched.Start(s.rootCtx); err != nil {
		log.Error().Err(err).Msg("Scheduler start via control endpoint failed")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"scheduler":"error"}`))
		return
	}

	log.Info().Msg("Scheduler started via control endpoint")
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"scheduler":"running"}`))
}

// handleSchedulerStop stops the scheduler, waiting for in-flight runs
func (s *statusServer) handleSchedulerStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.sched.Stop()
	log.Info().Msg("Scheduler stopped via control endpoint")
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"scheduler":"stopped"}`))
}

// handleHealth is for liveness probes and is never rate limited
func (s *statusServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.Health(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"degraded","database":"unreachable"}`))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
