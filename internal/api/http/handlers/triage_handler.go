package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-triage/internal/api/dto"
	"github.com/spec-kit/ticket-triage/internal/service"
	apperrors "github.com/spec-kit/ticket-triage/pkg/util/errorutil"
)

// TriageHandler serves classification suggestions and statistics.
type TriageHandler struct {
	triage *service.TriageService
	stats  *service.StatsService
}

// NewTriageHandler constructs handler.
func NewTriageHandler(triage *service.TriageService, stats *service.StatsService) *TriageHandler {
	return &TriageHandler{triage: triage, stats: stats}
}

// Classify POST /tickets/classify. A missing body is treated like a
// missing description.
func (h *TriageHandler) Classify(c *fiber.Ctx) error {
	var req dto.ClassifyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	result, err := h.triage.Suggest(c.UserContext(), req.Description)
	if err != nil {
		return err
	}
	return c.JSON(dto.ClassifyResponse{
		SuggestedCategory: result.Category,
		SuggestedPriority: result.Priority,
	})
}

// Stats GET /tickets/stats. Counts come from independent reads and may
// disagree slightly under concurrent writes.
func (h *TriageHandler) Stats(c *fiber.Ctx) error {
	report, err := h.stats.ComputeStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewStatsResponse(report))
}
