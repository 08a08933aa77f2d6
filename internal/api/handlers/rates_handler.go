package handlers

import (
	"strings"

	"platita/internal/dto"
	"platita/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type RatesHandler struct {
	ratesService *service.RatesService
	logger       *zap.Logger
}

func NewRatesHandler(ratesService *service.RatesService, logger *zap.Logger) *RatesHandler {
	return &RatesHandler{
		ratesService: ratesService,
		logger:       logger,
	}
}

// Convert converts an amount between currencies, e.g.
// GET /rates/convert?amount=100&from=USD&to=UYU
func (h *RatesHandler) Convert(c *fiber.Ctx) error {
	amount := c.QueryFloat("amount", 0)
	from := strings.ToUpper(strings.TrimSpace(c.Query("from")))
	to := strings.ToUpper(strings.TrimSpace(c.Query("to")))

	if amount <= 0 || from == "" || to == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "amount, from and to query parameters are required",
		})
	}

	converted, rate, err := h.ratesService.Convert(c.Context(), amount, from, to)
	if err != nil {
		h.logger.Warn("Currency conversion failed",
			zap.String("from", from),
			zap.String("to", to),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Could not convert between the requested currencies",
		})
	}

	return c.JSON(dto.ConvertResponse{
		Amount:    amount,
		From:      from,
		To:        to,
		Rate:      rate,
		Converted: converted,
	})
}
