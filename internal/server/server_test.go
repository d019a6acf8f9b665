package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/articles-api/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Primary: config.Primary{Env: "test"},
		Server: config.ServerConfig{
			Port:         "3000",
			ReadTimeout:  30,
			WriteTimeout: 31,
			IdleTimeout:  60,
		},
		Observability: config.DefaultObservabilityConfig(),
	}
}

func TestSetupHTTPServer(t *testing.T) {
	s := &Server{Config: testConfig()}
	s.SetupHTTPServer(http.NotFoundHandler())

	require.NotNil(t, s.httpServer)
	assert.Equal(t, ":3000", s.httpServer.Addr)
	assert.Equal(t, 30*time.Second, s.httpServer.ReadTimeout)
	assert.Equal(t, 31*time.Second, s.httpServer.WriteTimeout)
	assert.Equal(t, 60*time.Second, s.httpServer.IdleTimeout)
}

func TestStart_RequiresSetup(t *testing.T) {
	logger := zerolog.Nop()
	s := &Server{Config: testConfig(), Logger: &logger}

	assert.EqualError(t, s.Start(), "HTTP server not initialized")
}

func TestShutdown_WithNothingStarted(t *testing.T) {
	s := &Server{Config: testConfig()}

	assert.NoError(t, s.Shutdown(context.Background()))
}

func TestNewHealthChecker_RedisIsNotCritical(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := zerolog.Nop()
	checker := newHealthChecker(testConfig(), &logger, nil, nil, client)

	assert.Equal(t, []string{config.CheckRedis}, checker.Names())
	require.True(t, checker.Check(context.Background()).Healthy())

	mr.Close()
	report := checker.Check(context.Background())
	assert.True(t, report.Healthy())
	assert.Equal(t, "unhealthy", report.Checks[config.CheckRedis].Status)
}

func TestNewHealthChecker_HonorsConfiguredChecks(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testConfig()
	cfg.Observability.HealthChecks.Checks = []string{config.CheckDatabase}

	logger := zerolog.Nop()
	checker := newHealthChecker(cfg, &logger, nil, nil, client)

	assert.Empty(t, checker.Names())
}
