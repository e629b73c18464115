package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postflow/internal/service"
	"github.com/maheshrc27/postflow/internal/transfer"
)

type RuleHandler struct {
	s service.RuleService
}

func NewRuleHandler(s service.RuleService) *RuleHandler {
	return &RuleHandler{s: s}
}

func (h *RuleHandler) ListRules(c *fiber.Ctx) error {
	rules, err := h.s.List(c.UserContext(), GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list rules",
		})
	}

	return c.Status(fiber.StatusOK).JSON(rules)
}

func (h *RuleHandler) CreateRule(c *fiber.Ctx) error {
	var in transfer.RuleCreation
	if err := c.BodyParser(&in); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	rule, err := h.s.Create(c.UserContext(), GetUserID(c), &in)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rule)
}

func (h *RuleHandler) ToggleRule(c *fiber.Ctx) error {
	var in transfer.RuleToggle
	if err := c.BodyParser(&in); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if err := h.s.Toggle(c.UserContext(), GetUserID(c), in.ID, in.Active); err != nil {
		return errorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *RuleHandler) RemoveRule(c *fiber.Ctx) error {
	if err := h.s.Remove(c.UserContext(), GetUserID(c), c.Query("id")); err != nil {
		return errorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
