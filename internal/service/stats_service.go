package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/ticket-triage/internal/domain"
	"github.com/spec-kit/ticket-triage/internal/repository"
)

// StatsService computes aggregate ticket statistics.
type StatsService struct {
	reader repository.TicketStatsReader
	now    func() time.Time
}

// StatsDependencies bundles collaborators for the stats service. Now
// defaults to time.Now.
type StatsDependencies struct {
	Reader repository.TicketStatsReader
	Now    func() time.Time
}

// NewStatsService constructs the service.
func NewStatsService(deps StatsDependencies) *StatsService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &StatsService{reader: deps.Reader, now: now}
}

// ComputeStats runs the five aggregate reads concurrently and assembles a
// report. The reads are independent, so the report is a best-effort
// snapshot: a ticket written meanwhile may be counted by some reads only.
// Any store error fails the whole computation.
func (s *StatsService) ComputeStats(ctx context.Context) (*domain.StatsReport, error) {
	var (
		total, open int64
		earliest    *time.Time
		byCategory  []domain.GroupCount
		byPriority  []domain.GroupCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = s.reader.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		open, err = s.reader.CountByStatus(gctx, domain.TicketStatusOpen)
		return err
	})
	g.Go(func() (err error) {
		earliest, err = s.reader.EarliestCreatedAt(gctx)
		return err
	})
	g.Go(func() (err error) {
		byCategory, err = s.reader.CountByCategory(gctx)
		return err
	})
	g.Go(func() (err error) {
		byPriority, err = s.reader.CountByPriority(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.StatsReport{
		TotalTickets:      total,
		OpenTickets:       open,
		AvgTicketsPerDay:  domain.RoundOneDecimal(domain.AveragePerDay(total, earliest, s.now())),
		PriorityBreakdown: domain.PriorityBreakdown(byPriority),
		CategoryBreakdown: domain.CategoryBreakdown(byCategory),
	}, nil
}
