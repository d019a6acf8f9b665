package healthcheck

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Monitor runs a Checker on a fixed interval in the background.
type Monitor struct {
	checker *Checker
	cron    *cron.Cron
	logger  *zerolog.Logger
}

// NewMonitor schedules checker every interval. Runs never overlap: a run
// still in progress when the next one is due causes that one to be skipped.
func NewMonitor(checker *Checker, interval time.Duration, logger *zerolog.Logger) (*Monitor, error) {
	m := &Monitor{
		checker: checker,
		logger:  logger,
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
	}

	if _, err := m.cron.AddFunc(fmt.Sprintf("@every %s", interval), m.runOnce); err != nil {
		return nil, fmt.Errorf("scheduling health monitor: %w", err)
	}

	return m, nil
}

func (m *Monitor) runOnce() {
	report := m.checker.Check(context.Background())

	if !report.Healthy() {
		m.logger.Warn().
			Interface("checks", report.Checks).
			Msg("health monitor: service unhealthy")
		return
	}

	m.logger.Debug().Msg("health monitor: service healthy")
}

// Start launches the scheduler in its own goroutine.
func (m *Monitor) Start() {
	m.logger.Info().
		Strs("checks", m.checker.Names()).
		Msg("starting health monitor")
	m.cron.Start()
}

// Stop stops scheduling and waits for a running check to finish or ctx to
// expire, whichever comes first.
func (m *Monitor) Stop(ctx context.Context) {
	done := m.cron.Stop()

	select {
	case <-done.Done():
	case <-ctx.Done():
	}

	m.logger.Info().Msg("health monitor stopped")
}
