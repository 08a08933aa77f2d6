package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"platita/internal/api"
	"platita/internal/api/handlers"
	"platita/internal/repository"
	"platita/internal/service"
	"platita/pkg/config"
	"platita/pkg/logger"
	"platita/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting platita service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)
	goalRepo := repository.NewGoalRepository(db, appLogger)

	// Initialize services. A missing GigaChat credential must not prevent
	// startup: classification fails per call and the pipeline degrades to the
	// heuristic extractor.
	llmService := service.NewLLMService(&cfg.GigaChat, &cfg.Analysis, appLogger)
	defer llmService.Close()

	catalogService := service.NewCatalogService(categoryRepo, appLogger)
	statementService := service.NewStatementService(appLogger)
	analysisService := service.NewAnalysisService(catalogService, llmService, txRepo, &cfg.Analysis, appLogger)
	ratesService := service.NewRatesService(service.NewHTTPRateSource(), &cfg.Rates, appLogger)
	advisorService := service.NewAdvisorService(llmService, txRepo, goalRepo, appLogger)

	// Initialize handlers
	analysisHandler := handlers.NewAnalysisHandler(analysisService, statementService, appLogger)
	transactionHandler := handlers.NewTransactionHandler(txRepo, appLogger)
	goalHandler := handlers.NewGoalHandler(goalRepo, appLogger)
	categoryHandler := handlers.NewCategoryHandler(catalogService, categoryRepo, appLogger)
	ratesHandler := handlers.NewRatesHandler(ratesService, appLogger)
	advisorHandler := handlers.NewAdvisorHandler(advisorService, appLogger)

	// Setup router
	app := api.SetupRouter(
		analysisHandler,
		transactionHandler,
		goalHandler,
		categoryHandler,
		ratesHandler,
		advisorHandler,
		appLogger,
	)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
