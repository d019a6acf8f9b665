// Package server defines the core Server struct that composes the app's main dependencies.
//
// It contains the initialization logic to spin up the HTTP server
// and handles graceful shutdowns.
//
// It owns the lifecycle of:
//   - the database pool
//   - the optional Redis client
//   - the optional background job worker server (asynq)
//   - the health checker and its background monitor
//   - the http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/deppfellow/articles-api/internal/config"
	"github.com/deppfellow/articles-api/internal/database"
	"github.com/deppfellow/articles-api/internal/lib/healthcheck"
	"github.com/deppfellow/articles-api/internal/lib/job"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/articles-api/internal/logger"
)

// redisPingTimeout bounds the startup Redis ping.
const redisPingTimeout = 5 * time.Second

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself; the *http.Server is configured in
// SetupHTTPServer and started in Start.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService
	DB            *database.Database

	// Redis is nil when no Redis address is configured.
	Redis *redis.Client

	// Job is nil when Redis is not configured.
	Job *job.JobService

	Health *healthcheck.Checker

	monitor    *healthcheck.Monitor
	httpServer *http.Server
}

// New constructs a Server and initializes core dependencies.
//
// The database must be reachable. Redis is optional: without an address
// the service runs with no job queue, and an unreachable Redis at startup
// is logged but not fatal.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
	}

	if cfg.Redis.Enabled() {
		server.Redis = newRedisClient(cfg, logger, loggerService)

		jobService := job.NewJobService(logger, cfg)
		jobService.InitHandlers(cfg, logger)

		if err := jobService.Start(); err != nil {
			_ = server.Redis.Close()
			_ = db.Close()
			return nil, fmt.Errorf("failed to start job server: %w", err)
		}
		server.Job = jobService
	} else {
		logger.Warn().Msg("redis address not configured, background jobs disabled")
	}

	server.Health = newHealthChecker(cfg, logger, nrApplication(loggerService), db, server.Redis)

	healthCfg := cfg.Observability.HealthChecks
	if healthCfg.Enabled {
		monitor, err := healthcheck.NewMonitor(server.Health, healthCfg.Interval, logger)
		if err != nil {
			return nil, err
		}
		monitor.Start()
		server.monitor = monitor
	}

	return server, nil
}

func nrApplication(loggerService *loggerPkg.LoggerService) *newrelic.Application {
	if loggerService == nil {
		return nil
	}
	return loggerService.GetApplication()
}

// newRedisClient creates the Redis client and pings it once.
func newRedisClient(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) *redis.Client {
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})

	if nrApplication(loggerService) != nil {
		redisClient.AddHook(nrredis.NewHook(redisClient.Options()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Msg("failed to connect to Redis, continuing without it")
	}

	return redisClient
}

// newHealthChecker registers the configured checks. The database is
// critical; Redis only backs notifications so its failure is reported
// without marking the service unhealthy.
func newHealthChecker(cfg *config.Config, logger *zerolog.Logger, nrApp *newrelic.Application, db *database.Database, redisClient *redis.Client) *healthcheck.Checker {
	healthCfg := cfg.Observability.HealthChecks
	checker := healthcheck.NewChecker(cfg.Primary.Env, healthCfg.Timeout, logger, nrApp)

	if slices.Contains(healthCfg.Checks, config.CheckDatabase) && db != nil {
		checker.Register(config.CheckDatabase, db.Pool.Ping, true)
	}

	if slices.Contains(healthCfg.Checks, config.CheckRedis) && redisClient != nil {
		checker.Register(config.CheckRedis, func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}, false)
	}

	return checker
}

// SetupHTTPServer configures the internal net/http server around handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server and blocks until it stops.
//
// It requires SetupHTTPServer to be called first.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx
// expires, then releases every dependency in reverse order of creation.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
		}
	}

	if s.monitor != nil {
		s.monitor.Stop(ctx)
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}

	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		}
	}

	return errors.Join(errs...)
}
