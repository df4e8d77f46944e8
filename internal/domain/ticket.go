package domain

import "time"

// TicketCategory enumerates the closed set of ticket categories.
type TicketCategory string

const (
	TicketCategoryBilling   TicketCategory = "billing"
	TicketCategoryTechnical TicketCategory = "technical"
	TicketCategoryAccount   TicketCategory = "account"
	TicketCategoryGeneral   TicketCategory = "general"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Categories lists every category in display order.
var Categories = []TicketCategory{
	TicketCategoryBilling,
	TicketCategoryTechnical,
	TicketCategoryAccount,
	TicketCategoryGeneral,
}

// Priorities lists every priority from least to most urgent.
var Priorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityCritical,
}

// Statuses lists every status.
var Statuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Ticket is a support request record.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Category    TicketCategory
	Priority    TicketPriority
	Status      TicketStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsValid reports membership in the closed category set.
func (c TicketCategory) IsValid() bool {
	return contains(Categories, c)
}

// IsValid reports membership in the closed priority set.
func (p TicketPriority) IsValid() bool {
	return contains(Priorities, p)
}

// IsValid reports membership in the closed status set.
func (s TicketStatus) IsValid() bool {
	return contains(Statuses, s)
}

// ParseCategory returns the category for an exact member value.
func ParseCategory(val string) (TicketCategory, bool) {
	c := TicketCategory(val)
	return c, c.IsValid()
}

// ParsePriority returns the priority for an exact member value.
func ParsePriority(val string) (TicketPriority, bool) {
	p := TicketPriority(val)
	return p, p.IsValid()
}

// ParseStatus returns the status for an exact member value.
func ParseStatus(val string) (TicketStatus, bool) {
	s := TicketStatus(val)
	return s, s.IsValid()
}

func contains[T comparable](set []T, v T) bool {
	for _, member := range set {
		if member == v {
			return true
		}
	}
	return false
}
