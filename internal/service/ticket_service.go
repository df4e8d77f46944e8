package service

import (
	"context"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-triage/internal/domain"
	"github.com/spec-kit/ticket-triage/internal/events"
	"github.com/spec-kit/ticket-triage/internal/repository"
	"github.com/spec-kit/ticket-triage/pkg/util/errorutil"
)

// MaxTitleLength bounds ticket titles, in characters.
const MaxTitleLength = 200

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	sanitizer  *bluemonday.Policy
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketCreateInput describes ticket creation payload. Enum fields are raw
// strings and validated here.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
	Status      string
}

// TicketUpdateInput describes a partial update. Nil fields are untouched.
type TicketUpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *string
	Status      *string
}

// TicketListFilter describes list query parameters. Empty strings are ignored.
type TicketListFilter struct {
	Category string
	Priority string
	Status   string
	Search   string
	Limit    int
	Offset   int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

// CreateTicket validates and stores a new ticket.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	details := map[string]any{}

	title := s.clean(input.Title)
	description := s.clean(input.Description)
	validateTitle(title, details)
	if description == "" {
		details["description"] = "required"
	}

	category, ok := domain.ParseCategory(input.Category)
	if !ok {
		details["category"] = enumMessage(input.Category, domain.Categories)
	}
	priority, ok := domain.ParsePriority(input.Priority)
	if !ok {
		details["priority"] = enumMessage(input.Priority, domain.Priorities)
	}
	status := domain.TicketStatusOpen
	if input.Status != "" {
		if status, ok = domain.ParseStatus(input.Status); !ok {
			details["status"] = enumMessage(input.Status, domain.Statuses)
		}
	}
	if len(details) > 0 {
		return nil, errorutil.NewValidationError("invalid ticket", details)
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Category:    category,
		Priority:    priority,
		Status:      status,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.NewEvent(events.EventTicketCreated, ticket.ID, events.TicketCreatedPayload{
		Title:    ticket.Title,
		Category: ticket.Category,
		Priority: ticket.Priority,
		Status:   ticket.Status,
	}))
	return ticket, nil
}

// GetTicket fetches one ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errorutil.NewNotFound("ticket", map[string]any{"id": id})
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errorutil.IsNoRows(err) {
			return nil, errorutil.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, err
	}
	return ticket, nil
}

// ListTickets returns tickets newest first. Unknown enum values in the
// filter are a validation error rather than an empty result.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	details := map[string]any{}
	repoFilter := repository.TicketFilter{Limit: filter.Limit, Offset: filter.Offset}

	if filter.Category != "" {
		c, ok := domain.ParseCategory(filter.Category)
		if !ok {
			details["category"] = enumMessage(filter.Category, domain.Categories)
		}
		repoFilter.Category = &c
	}
	if filter.Priority != "" {
		p, ok := domain.ParsePriority(filter.Priority)
		if !ok {
			details["priority"] = enumMessage(filter.Priority, domain.Priorities)
		}
		repoFilter.Priority = &p
	}
	if filter.Status != "" {
		st, ok := domain.ParseStatus(filter.Status)
		if !ok {
			details["status"] = enumMessage(filter.Status, domain.Statuses)
		}
		repoFilter.Status = &st
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		details["page"] = "limit and offset must not be negative"
	}
	if len(details) > 0 {
		return nil, errorutil.NewValidationError("invalid ticket filter", details)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		repoFilter.SearchTerm = &search
	}
	return s.tickets.ListWithFilter(ctx, repoFilter)
}

// UpdateTicket applies a partial update in a single statement.
func (s *TicketService) UpdateTicket(ctx context.Context, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	current, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	details := map[string]any{}
	patch := repository.TicketPatch{}
	fields := []string{}

	if input.Title != nil {
		title := s.clean(*input.Title)
		validateTitle(title, details)
		patch.Title = &title
		fields = append(fields, "title")
	}
	if input.Description != nil {
		description := s.clean(*input.Description)
		if description == "" {
			details["description"] = "required"
		}
		patch.Description = &description
		fields = append(fields, "description")
	}
	if input.Category != nil {
		c, ok := domain.ParseCategory(*input.Category)
		if !ok {
			details["category"] = enumMessage(*input.Category, domain.Categories)
		}
		patch.Category = &c
		fields = append(fields, "category")
	}
	if input.Priority != nil {
		p, ok := domain.ParsePriority(*input.Priority)
		if !ok {
			details["priority"] = enumMessage(*input.Priority, domain.Priorities)
		}
		patch.Priority = &p
		fields = append(fields, "priority")
	}
	if input.Status != nil {
		st, ok := domain.ParseStatus(*input.Status)
		if !ok {
			details["status"] = enumMessage(*input.Status, domain.Statuses)
		}
		patch.Status = &st
		fields = append(fields, "status")
	}
	if len(details) > 0 {
		return nil, errorutil.NewValidationError("invalid ticket update", details)
	}
	if patch.Empty() {
		return nil, errorutil.NewValidationError("no fields to update", nil)
	}

	updated, err := s.tickets.Update(ctx, id, patch)
	if err != nil {
		if errorutil.IsNoRows(err) {
			return nil, errorutil.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, err
	}

	payload := events.TicketUpdatedPayload{Fields: fields}
	if updated.Status != current.Status {
		payload.OldStatus, payload.NewStatus = current.Status, updated.Status
	}
	if updated.Priority != current.Priority {
		payload.OldPriority, payload.NewPriority = current.Priority, updated.Priority
	}
	s.publishEvent(ctx, events.NewEvent(events.EventTicketUpdated, updated.ID, payload))
	return updated, nil
}

// maxSanitizePasses bounds how many layers of entity encoding are peeled.
const maxSanitizePasses = 4

// clean strips markup and surrounding whitespace and stores plain text.
// Decoding and stripping repeat until the text is stable, so markup hidden
// behind entities ("&lt;script&gt;") is stripped too. Text that is still
// unstable after the last pass is kept in its escaped form.
func (s *TicketService) clean(v string) string {
	current := v
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(s.sanitizer.Sanitize(current))
		if next == current {
			return strings.TrimSpace(current)
		}
		current = next
	}
	return strings.TrimSpace(s.sanitizer.Sanitize(current))
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func validateTitle(title string, details map[string]any) {
	switch {
	case title == "":
		details["title"] = "required"
	case utf8.RuneCountInString(title) > MaxTitleLength:
		details["title"] = "must be at most 200 characters"
	}
}

func enumMessage[T ~string](got string, allowed []T) string {
	parts := make([]string, len(allowed))
	for i, v := range allowed {
		parts[i] = string(v)
	}
	if got == "" {
		return "required; one of " + strings.Join(parts, ", ")
	}
	return "must be one of " + strings.Join(parts, ", ")
}
