package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-triage/internal/domain"
	"github.com/spec-kit/ticket-triage/internal/events"
	"github.com/spec-kit/ticket-triage/pkg/util/errorutil"
)

// Classifier suggests a category and priority for a description. It never
// fails; a degraded suggestion has nil fields.
type Classifier interface {
	Classify(ctx context.Context, description string) domain.ClassificationResult
}

// TriageService answers suggestion requests. It never writes tickets.
type TriageService struct {
	classifier Classifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TriageDependencies bundles collaborators for the triage service.
type TriageDependencies struct {
	Classifier Classifier
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTriageService constructs the service.
func NewTriageService(deps TriageDependencies) *TriageService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TriageService{
		classifier: deps.Classifier,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Suggest rejects a blank description before any external call, otherwise
// returns the classifier's result as is. An all-nil result is a success.
func (s *TriageService) Suggest(ctx context.Context, description string) (domain.ClassificationResult, error) {
	if strings.TrimSpace(description) == "" {
		return domain.ClassificationResult{}, errorutil.NewValidationError("description required", map[string]any{
			"description": "required",
		})
	}

	result := s.classifier.Classify(ctx, description)

	if s.dispatcher != nil {
		event := events.NewEvent(events.EventTicketClassified, "", events.TicketClassifiedPayload{
			DescriptionLength: utf8.RuneCountInString(description),
			Category:          result.Category,
			Priority:          result.Priority,
		})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("publish event failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
	return result, nil
}
