package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postflow/internal/service"
	"github.com/maheshrc27/postflow/internal/transfer"
)

type ScheduleHandler struct {
	s service.CalendarService
}

func NewScheduleHandler(s service.CalendarService) *ScheduleHandler {
	return &ScheduleHandler{s: s}
}

func (h *ScheduleHandler) GenerateSchedule(c *fiber.Ctx) error {
	in, err := parseScheduleInput(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	slots, err := h.s.Generate(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(slots)
}

func (h *ScheduleHandler) CommitSchedule(c *fiber.Ctx) error {
	in, err := parseScheduleInput(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	posts, err := h.s.Commit(c.UserContext(), GetUserID(c), in.Timezone)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Schedule committed successfully",
		"slots":   posts,
	})
}

func (h *ScheduleHandler) ExportSchedule(c *fiber.Ctx) error {
	in, err := parseScheduleInput(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	export, err := h.s.Export(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(export)
}

// parseScheduleInput accepts an empty body as "use stored rules".
func parseScheduleInput(c *fiber.Ctx) (*transfer.ScheduleInput, error) {
	in := &transfer.ScheduleInput{}
	if len(c.Body()) == 0 {
		return in, nil
	}
	if err := c.BodyParser(in); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return in, nil
}
