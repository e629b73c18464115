package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/repository"
	"github.com/maheshrc27/postflow/internal/service"
	"github.com/maheshrc27/postflow/internal/transfer"
)

const maxDrafts = 50

type EngagementHandler struct {
	ps service.PredictionService
	ts service.OptimizerService
	ss service.SimulationService
	hr repository.HistoricalPostRepository
}

func NewEngagementHandler(ps service.PredictionService, ts service.OptimizerService, ss service.SimulationService, hr repository.HistoricalPostRepository) *EngagementHandler {
	return &EngagementHandler{ps: ps, ts: ts, ss: ss, hr: hr}
}

func (h *EngagementHandler) Predict(c *fiber.Ctx) error {
	var in transfer.PredictionInput
	if err := c.BodyParser(&in); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	p, err := models.ParsePlatform(in.Platform)
	if err != nil {
		return errorResponse(c, err)
	}

	history := resolveHistory(c.UserContext(), h.hr, GetUserID(c), p, in.History, in.UseStoredHistory)

	prediction, err := h.ps.PredictEngagement(c.UserContext(), service.PredictionRequest{
		Platform:  p,
		Content:   in.Content,
		History:   history,
		PostTime:  in.PostTime,
		MediaURLs: in.MediaURLs,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(prediction)
}

func (h *EngagementHandler) OptimalTimes(c *fiber.Ctx) error {
	var in transfer.OptimalTimesInput
	if err := c.BodyParser(&in); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	p, err := models.ParsePlatform(in.Platform)
	if err != nil {
		return errorResponse(c, err)
	}

	history := resolveHistory(c.UserContext(), h.hr, GetUserID(c), p, in.History, in.UseStoredHistory)

	windows, err := h.ts.OptimalPostingTimes(c.UserContext(), p, in.ContentType, history, in.Count)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(windows)
}

func (h *EngagementHandler) Simulate(c *fiber.Ctx) error {
	var in transfer.SimulationInput
	if err := c.BodyParser(&in); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if len(in.Drafts) == 0 || len(in.Drafts) > maxDrafts {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Between 1 and 50 drafts are required",
		})
	}

	p, err := models.ParsePlatform(in.Platform)
	if err != nil {
		return errorResponse(c, err)
	}

	history := resolveHistory(c.UserContext(), h.hr, GetUserID(c), p, in.History, in.UseStoredHistory)

	results, err := h.ss.SimulateContentPerformance(c.UserContext(), p, in.Drafts, history, in.MediaURLs)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(results)
}
