package dto

import "github.com/spec-kit/ticket-triage/internal/domain"

// ClassifyRequest payload.
type ClassifyRequest struct {
	Description string `json:"description"`
}

// ClassifyResponse carries a suggestion; absent values serialize as null.
type ClassifyResponse struct {
	SuggestedCategory *domain.TicketCategory `json:"suggested_category"`
	SuggestedPriority *domain.TicketPriority `json:"suggested_priority"`
}

// StatsResponse is the aggregate statistics document.
type StatsResponse struct {
	TotalTickets      int64                           `json:"total_tickets"`
	OpenTickets       int64                           `json:"open_tickets"`
	AvgTicketsPerDay  float64                         `json:"avg_tickets_per_day"`
	PriorityBreakdown map[domain.TicketPriority]int64 `json:"priority_breakdown"`
	CategoryBreakdown map[domain.TicketCategory]int64 `json:"category_breakdown"`
}

// NewStatsResponse maps a report.
func NewStatsResponse(report *domain.StatsReport) StatsResponse {
	return StatsResponse{
		TotalTickets:      report.TotalTickets,
		OpenTickets:       report.OpenTickets,
		AvgTicketsPerDay:  report.AvgTicketsPerDay,
		PriorityBreakdown: report.PriorityBreakdown,
		CategoryBreakdown: report.CategoryBreakdown,
	}
}
