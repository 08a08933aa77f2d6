package handlers

import (
	"strings"

	"platita/internal/dto"
	"platita/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AdvisorHandler struct {
	advisorService *service.AdvisorService
	logger         *zap.Logger
}

func NewAdvisorHandler(advisorService *service.AdvisorService, logger *zap.Logger) *AdvisorHandler {
	return &AdvisorHandler{
		advisorService: advisorService,
		logger:         logger,
	}
}

func (h *AdvisorHandler) Ask(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req dto.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question is required",
		})
	}

	answer := h.advisorService.Ask(c.Context(), userID, req.Question)

	return c.JSON(dto.AskResponse{Answer: answer})
}
