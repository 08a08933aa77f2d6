package api

import (
	"platita/internal/api/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	analysisHandler *handlers.AnalysisHandler,
	transactionHandler *handlers.TransactionHandler,
	goalHandler *handlers.GoalHandler,
	categoryHandler *handlers.CategoryHandler,
	ratesHandler *handlers.RatesHandler,
	advisorHandler *handlers.AdvisorHandler,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-User-ID",
	}))
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API routes
	v1 := app.Group("/api/v1")

	analysis := v1.Group("/analysis")
	analysis.Post("/text", analysisHandler.AnalyzeText)
	analysis.Post("/upload", analysisHandler.AnalyzeUpload)

	transactions := v1.Group("/transactions")
	transactions.Post("", transactionHandler.Create)
	transactions.Get("", transactionHandler.List)
	transactions.Delete("/:id", transactionHandler.Delete)

	goals := v1.Group("/goals")
	goals.Post("", goalHandler.Create)
	goals.Get("", goalHandler.List)
	goals.Put("/:id/amount", goalHandler.UpdateAmount)
	goals.Delete("/:id", goalHandler.Delete)

	categories := v1.Group("/categories")
	categories.Get("", categoryHandler.List)
	categories.Post("", categoryHandler.Create)
	categories.Delete("/:id", categoryHandler.Delete)

	rates := v1.Group("/rates")
	rates.Get("/convert", ratesHandler.Convert)

	advisor := v1.Group("/advisor")
	advisor.Post("/ask", advisorHandler.Ask)

	return app
}
