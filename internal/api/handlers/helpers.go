package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postflow/internal/models"
	"github.com/maheshrc27/postflow/internal/repository"
	"github.com/maheshrc27/postflow/internal/service"
)

const historyWindow = 90 * 24 * time.Hour

func GetUserID(c *fiber.Ctx) int64 {
	value, _ := c.Locals("user_id").(string)
	userID, _ := strconv.ParseInt(value, 10, 64)
	return userID
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrUnknownPlatform), errors.Is(err, service.ErrInvalidRule):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrRuleNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(errorStatus(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// resolveHistory prefers history sent with the request and otherwise loads the
// user's stored posts when asked to. A failed load scores against the baseline.
func resolveHistory(ctx context.Context, repo repository.HistoricalPostRepository, userID int64, p models.Platform, inline []models.HistoricalPost, useStored bool) []models.HistoricalPost {
	if len(inline) > 0 || !useStored || repo == nil || userID == 0 {
		return inline
	}

	posts, err := repo.ListByPlatform(ctx, userID, p, time.Now().Add(-historyWindow))
	if err != nil {
		slog.Warn("stored history unavailable, using baseline", "user_id", userID, "platform", p, "error", err)
		return nil
	}

	history := make([]models.HistoricalPost, 0, len(posts))
	for _, post := range posts {
		if post != nil {
			history = append(history, *post)
		}
	}
	return history
}
