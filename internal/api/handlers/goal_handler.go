package handlers

import (
	"time"

	"platita/internal/dto"
	"platita/internal/models"
	"platita/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type GoalHandler struct {
	goalRepo *repository.GoalRepository
	logger   *zap.Logger
}

func NewGoalHandler(goalRepo *repository.GoalRepository, logger *zap.Logger) *GoalHandler {
	return &GoalHandler{
		goalRepo: goalRepo,
		logger:   logger,
	}
}

func (h *GoalHandler) Create(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req dto.CreateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Name == "" || req.TargetAmount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and a positive target_amount are required",
		})
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "due_date must be YYYY-MM-DD",
			})
		}
		dueDate = &parsed
	}

	now := time.Now()
	goal := &models.Goal{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Currency:      req.Currency,
		DueDate:       dueDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.goalRepo.Create(c.Context(), goal); err != nil {
		h.logger.Error("Failed to create goal", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create goal",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(toGoalResponse(goal))
}

func (h *GoalHandler) List(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	goals, err := h.goalRepo.ListByUser(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list goals", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list goals",
		})
	}

	responses := make([]dto.GoalResponse, len(goals))
	for i, goal := range goals {
		responses[i] = toGoalResponse(goal)
	}

	return c.JSON(responses)
}

func (h *GoalHandler) UpdateAmount(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
	}

	var req dto.UpdateGoalAmountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.CurrentAmount < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "current_amount must be non-negative",
		})
	}

	if err := h.goalRepo.UpdateCurrentAmount(c.Context(), userID, id, req.CurrentAmount); err != nil {
		h.logger.Error("Failed to update goal", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update goal",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GoalHandler) Delete(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
	}

	if err := h.goalRepo.Delete(c.Context(), userID, id); err != nil {
		h.logger.Error("Failed to delete goal", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete goal",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func toGoalResponse(goal *models.Goal) dto.GoalResponse {
	resp := dto.GoalResponse{
		ID:            goal.ID.String(),
		Name:          goal.Name,
		TargetAmount:  goal.TargetAmount,
		CurrentAmount: goal.CurrentAmount,
		Currency:      goal.Currency,
		Progress:      goalProgress(goal),
		CreatedAt:     goal.CreatedAt.Format(time.RFC3339),
	}
	if goal.DueDate != nil {
		resp.DueDate = goal.DueDate.Format("2006-01-02")
	}
	return resp
}

func goalProgress(goal *models.Goal) float64 {
	if goal.TargetAmount <= 0 {
		return 0
	}
	progress := goal.CurrentAmount / goal.TargetAmount
	if progress > 1 {
		return 1
	}
	return progress
}
