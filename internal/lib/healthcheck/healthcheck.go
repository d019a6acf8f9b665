// Package healthcheck probes the service's dependencies.
//
// A Checker runs named probes (database, redis) with a per-probe timeout
// and produces a Report. The /status endpoint serves a Report on demand and
// the Monitor produces one on a cron schedule so failures show up in logs
// and New Relic even when nobody is polling.
package healthcheck

import (
	"context"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Probe returns nil when the dependency is reachable.
type Probe func(ctx context.Context) error

// Result is the outcome of one probe.
type Result struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// Report is the combined outcome of every registered probe.
type Report struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Environment string            `json:"environment"`
	Checks      map[string]Result `json:"checks"`
}

// Healthy reports whether every critical probe passed.
func (r Report) Healthy() bool {
	return r.Status == StatusHealthy
}

type check struct {
	name     string
	probe    Probe
	critical bool
}

// Checker runs the registered probes in registration order.
type Checker struct {
	checks      []check
	timeout     time.Duration
	environment string
	logger      *zerolog.Logger
	nrApp       *newrelic.Application
	now         func() time.Time
}

// NewChecker creates a Checker. nrApp may be nil.
func NewChecker(environment string, timeout time.Duration, logger *zerolog.Logger, nrApp *newrelic.Application) *Checker {
	return &Checker{
		timeout:     timeout,
		environment: environment,
		logger:      logger,
		nrApp:       nrApp,
		now:         time.Now,
	}
}

// Register adds a probe. A failing critical probe makes the whole report
// unhealthy; a failing non-critical one is only reported.
func (c *Checker) Register(name string, probe Probe, critical bool) {
	c.checks = append(c.checks, check{name: name, probe: probe, critical: critical})
}

// Names lists the registered probes.
func (c *Checker) Names() []string {
	names := make([]string, 0, len(c.checks))
	for _, ch := range c.checks {
		names = append(names, ch.name)
	}
	return names
}

// Check runs every probe and returns the combined report.
func (c *Checker) Check(ctx context.Context) Report {
	report := Report{
		Status:      StatusHealthy,
		Timestamp:   c.now().UTC(),
		Environment: c.environment,
		Checks:      make(map[string]Result, len(c.checks)),
	}

	for _, ch := range c.checks {
		result := c.run(ctx, ch)
		report.Checks[ch.name] = result

		if result.Status != StatusHealthy && ch.critical {
			report.Status = StatusUnhealthy
		}
	}

	return report
}

func (c *Checker) run(ctx context.Context, ch check) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := c.now()
	err := ch.probe(ctx)
	elapsed := c.now().Sub(start)

	if err != nil {
		c.logger.Error().
			Err(err).
			Str("check", ch.name).
			Dur("response_time", elapsed).
			Msg("health check failed")

		if c.nrApp != nil {
			c.nrApp.RecordCustomEvent("HealthCheckError", map[string]interface{}{
				"check_type":       ch.name,
				"operation":        "health_check",
				"error_type":       ch.name + "_unhealthy",
				"response_time_ms": elapsed.Milliseconds(),
				"error_message":    err.Error(),
			})
		}

		return Result{
			Status:       StatusUnhealthy,
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	c.logger.Debug().
		Str("check", ch.name).
		Dur("response_time", elapsed).
		Msg("health check passed")

	return Result{
		Status:       StatusHealthy,
		ResponseTime: elapsed.String(),
	}
}
