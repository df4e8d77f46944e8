package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-triage/internal/events"
)

// NotificationService turns domain events into structured log records.
type NotificationService struct {
	logger *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger}
}

// EventTypes lists the events Handle understands.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTicketCreated,
		events.EventTicketUpdated,
		events.EventTicketClassified,
	}
}

// Handle records one event. Unknown types are ignored.
func (n *NotificationService) Handle(_ context.Context, event events.Event) error {
	switch event.Type {
	case events.EventTicketCreated:
		n.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	case events.EventTicketUpdated:
		n.logger.Info("TicketUpdated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	case events.EventTicketClassified:
		n.logger.Debug("TicketClassified", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	}
	return nil
}
