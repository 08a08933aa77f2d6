package handlers

import (
	"platita/internal/dto"
	"platita/internal/models"
	"platita/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AnalysisHandler struct {
	analysisService  *service.AnalysisService
	statementService *service.StatementService
	logger           *zap.Logger
}

func NewAnalysisHandler(analysisService *service.AnalysisService, statementService *service.StatementService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService:  analysisService,
		statementService: statementService,
		logger:           logger,
	}
}

// AnalyzeText runs the expense analysis pipeline over raw statement text.
// Anonymous requests are allowed; they get the defaults-only taxonomy and
// cannot persist results.
func (h *AnalysisHandler) AnalyzeText(c *fiber.Ctx) error {
	var req dto.AnalyzeTextRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Text is required",
		})
	}

	userID := optionalUserID(c)
	result := h.analysisService.RunExpenseAnalysis(c.Context(), req.Text, userID)

	response := toAnalysisResponse(result)

	if req.Persist && userID != nil && len(result.Expenses) > 0 {
		saved, err := h.analysisService.SaveExpenses(c.Context(), *userID, result.Expenses)
		if err != nil {
			h.logger.Warn("Failed to persist analyzed expenses", zap.Error(err))
		} else {
			response.SavedTransactions = len(saved)
		}
	}

	return c.JSON(response)
}

// AnalyzeUpload accepts a multipart statement file (PDF or text), extracts
// its text and runs the analysis pipeline over it.
func (h *AnalysisHandler) AnalyzeUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	text, err := h.statementService.ExtractTextFromReader(c.Context(), src, file.Filename)
	if err != nil {
		h.logger.Warn("Statement text extraction failed",
			zap.String("file", file.Filename),
			zap.Error(err),
		)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Could not extract text from file",
		})
	}

	userID := optionalUserID(c)
	result := h.analysisService.RunExpenseAnalysis(c.Context(), text, userID)

	response := toAnalysisResponse(result)

	if c.FormValue("persist") == "true" && userID != nil && len(result.Expenses) > 0 {
		saved, err := h.analysisService.SaveExpenses(c.Context(), *userID, result.Expenses)
		if err != nil {
			h.logger.Warn("Failed to persist analyzed expenses", zap.Error(err))
		} else {
			response.SavedTransactions = len(saved)
		}
	}

	return c.JSON(response)
}

func toAnalysisResponse(result *models.AnalysisResult) dto.AnalysisResponse {
	expenses := make([]dto.ExpenseItemResponse, len(result.Expenses))
	for i, item := range result.Expenses {
		expenses[i] = dto.ExpenseItemResponse{
			Description: item.Description,
			Amount:      item.Amount,
			Currency:    item.Currency,
			Category:    item.Category,
			Date:        item.Date,
			Confidence:  item.Confidence,
		}
	}

	return dto.AnalysisResponse{
		Expenses:     expenses,
		Confidence:   result.Confidence,
		AnalysisType: string(result.AnalysisType),
	}
}
