package domain

import (
	"math"
	"time"
)

// StatsReport summarises the ticket collection. Breakdown maps always carry
// every enum member, zero-valued when no ticket matches.
type StatsReport struct {
	TotalTickets      int64
	OpenTickets       int64
	AvgTicketsPerDay  float64
	PriorityBreakdown map[TicketPriority]int64
	CategoryBreakdown map[TicketCategory]int64
}

// GroupCount is one row of a grouped count query.
type GroupCount struct {
	Key   string
	Count int64
}

const day = 24 * time.Hour

// ElapsedDays returns the whole days between earliest and now, never less than 1.
// Negative spans (clock skew) clamp to 1 as well.
func ElapsedDays(earliest, now time.Time) int64 {
	days := int64(math.Floor(float64(now.Sub(earliest)) / float64(day)))
	if days < 1 {
		return 1
	}
	return days
}

// AveragePerDay computes tickets per elapsed day anchored at the oldest
// ticket. An empty store, or one with no anchor, yields 0.
func AveragePerDay(total int64, earliest *time.Time, now time.Time) float64 {
	if total <= 0 || earliest == nil {
		return 0
	}
	return float64(total) / float64(ElapsedDays(*earliest, now))
}

// RoundOneDecimal rounds half away from zero to one decimal place.
func RoundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

// CategoryBreakdown zero-fills every category then overlays grouped counts.
func CategoryBreakdown(counts []GroupCount) map[TicketCategory]int64 {
	return fillBreakdown(Categories, counts)
}

// PriorityBreakdown zero-fills every priority then overlays grouped counts.
func PriorityBreakdown(counts []GroupCount) map[TicketPriority]int64 {
	return fillBreakdown(Priorities, counts)
}

// fillBreakdown keys outside members are dropped so the result stays a closed map.
func fillBreakdown[K ~string](members []K, counts []GroupCount) map[K]int64 {
	out := make(map[K]int64, len(members))
	for _, m := range members {
		out[m] = 0
	}
	for _, row := range counts {
		key := K(row.Key)
		if _, ok := out[key]; !ok {
			continue
		}
		out[key] += row.Count
	}
	return out
}
