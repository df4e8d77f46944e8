package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-triage/internal/domain"
	"github.com/spec-kit/ticket-triage/internal/observability"
)

const refreshTimeout = 30 * time.Second

// StatsComputer produces an aggregate report.
type StatsComputer interface {
	ComputeStats(ctx context.Context) (*domain.StatsReport, error)
}

// StatsRefresher periodically publishes ticket gauges from a fresh report.
type StatsRefresher struct {
	stats   StatsComputer
	metrics *observability.Metrics
	logger  *zap.Logger
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
}

// ParseSchedule accepts five-field cron expressions and descriptors such
// as "@every 1m".
func ParseSchedule(spec string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid stats refresh schedule %q: %w", spec, err)
	}
	return schedule, nil
}

// NewStatsRefresher validates the schedule and prepares the job. Runs that
// overlap a still-running refresh are skipped.
func NewStatsRefresher(stats StatsComputer, metrics *observability.Metrics, logger *zap.Logger, spec string) (*StatsRefresher, error) {
	schedule, err := ParseSchedule(spec)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &StatsRefresher{
		stats:   stats,
		metrics: metrics,
		logger:  logger,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ctx:    ctx,
		cancel: cancel,
	}
	r.cron.Schedule(schedule, cron.FuncJob(func() {
		_ = r.RefreshOnce(r.ctx)
	}))
	return r, nil
}

// RefreshOnce computes a report and publishes the gauges.
func (r *StatsRefresher) RefreshOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	report, err := r.stats.ComputeStats(ctx)
	if err != nil {
		r.logger.Warn("stats refresh failed", zap.Error(err))
		return err
	}
	r.metrics.SetTicketGauges(report.TotalTickets, report.OpenTickets, report.AvgTicketsPerDay)
	r.logger.Debug("stats refreshed",
		zap.Int64("total_tickets", report.TotalTickets),
		zap.Int64("open_tickets", report.OpenTickets),
		zap.Float64("avg_tickets_per_day", report.AvgTicketsPerDay))
	return nil
}

// Start refreshes once and then runs on schedule.
func (r *StatsRefresher) Start() {
	_ = r.RefreshOnce(r.ctx)
	r.cron.Start()
}

// Stop cancels an in-flight refresh and waits for it to return or ctx to end.
func (r *StatsRefresher) Stop(ctx context.Context) {
	r.cancel()
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
