package handlers

import (
	"strings"
	"time"

	"platita/internal/dto"
	"platita/internal/models"
	"platita/internal/repository"
	"platita/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	catalogService *service.CatalogService
	categoryRepo   *repository.CategoryRepository
	logger         *zap.Logger
}

func NewCategoryHandler(catalogService *service.CatalogService, categoryRepo *repository.CategoryRepository, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		catalogService: catalogService,
		categoryRepo:   categoryRepo,
		logger:         logger,
	}
}

// List returns the full taxonomy for the caller: system defaults plus the
// user's custom categories. Anonymous callers get the defaults only.
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	userID := optionalUserID(c)

	taxonomy := h.catalogService.ExpenseCategories(c.Context(), userID)

	responses := make([]dto.CategoryResponse, len(taxonomy))
	for i, cat := range taxonomy {
		responses[i] = dto.CategoryResponse{
			Name:        cat.Name,
			Description: cat.Description,
			Source:      string(cat.Source),
		}
	}

	return c.JSON(responses)
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req dto.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	for _, existing := range service.DefaultCategories() {
		if strings.EqualFold(existing.Name, name) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Category name collides with a default category",
			})
		}
	}

	now := time.Now()
	cat := &models.Category{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.categoryRepo.Create(c.Context(), cat); err != nil {
		h.logger.Error("Failed to create category", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create category",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.CategoryResponse{
		ID:          cat.ID.String(),
		Name:        cat.Name,
		Description: cat.Description,
		Source:      string(models.CategorySourceCustom),
	})
}

func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid category ID",
		})
	}

	if err := h.categoryRepo.Delete(c.Context(), userID, id); err != nil {
		h.logger.Error("Failed to delete category", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete category",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
