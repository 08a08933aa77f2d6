package main

import (
	"context"
	"log"
	"time"

	"platita/internal/models"
	"platita/internal/repository"
	"platita/pkg/config"
	"platita/pkg/logger"
	"platita/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Seeds a demo user with sample movements, a custom category and a savings
// goal so the API has data to play with right after a fresh migration.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db, appLogger)
	categoryRepo := repository.NewCategoryRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)
	goalRepo := repository.NewGoalRepository(db, appLogger)

	appLogger.Info("Starting database seeding...")

	now := time.Now()

	demoUser := &models.User{
		ID:        uuid.New(),
		Username:  "demo",
		Email:     "demo@platita.uy",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := userRepo.Create(ctx, demoUser); err != nil {
		appLogger.Fatal("Failed to create demo user", zap.Error(err))
	}
	appLogger.Info("Created demo user", zap.String("user_id", demoUser.ID.String()))

	mascotas := &models.Category{
		ID:          uuid.New(),
		UserID:      demoUser.ID,
		Name:        "Mascotas",
		Description: "Veterinaria, alimento y accesorios para mascotas",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := categoryRepo.Create(ctx, mascotas); err != nil {
		appLogger.Fatal("Failed to create custom category", zap.Error(err))
	}

	transactions := []*models.Transaction{
		{
			ID:          uuid.New(),
			UserID:      demoUser.ID,
			Type:        models.TransactionExpense,
			Amount:      1250,
			Currency:    "UYU",
			Description: "COMPRA TIENDA INGLESA",
			Category:    "Alimentación",
			Date:        now.AddDate(0, 0, -5),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.New(),
			UserID:      demoUser.ID,
			Type:        models.TransactionExpense,
			Amount:      890,
			Currency:    "UYU",
			Description: "PAGO UTE",
			Category:    "Servicios",
			Date:        now.AddDate(0, 0, -3),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.New(),
			UserID:      demoUser.ID,
			Type:        models.TransactionExpense,
			Amount:      15.99,
			Currency:    "USD",
			Description: "NETFLIX.COM",
			Category:    "Entretenimiento",
			Date:        now.AddDate(0, 0, -2),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.New(),
			UserID:      demoUser.ID,
			Type:        models.TransactionIncome,
			Amount:      65000,
			Currency:    "UYU",
			Description: "Sueldo",
			Category:    "Otros Gastos",
			Date:        now.AddDate(0, 0, -1),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	if err := txRepo.CreateBatch(ctx, transactions); err != nil {
		appLogger.Fatal("Failed to create sample transactions", zap.Error(err))
	}
	appLogger.Info("Created sample transactions", zap.Int("count", len(transactions)))

	dueDate := now.AddDate(1, 0, 0)
	goal := &models.Goal{
		ID:            uuid.New(),
		UserID:        demoUser.ID,
		Name:          "Fondo de emergencia",
		TargetAmount:  100000,
		CurrentAmount: 15000,
		Currency:      "UYU",
		DueDate:       &dueDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := goalRepo.Create(ctx, goal); err != nil {
		appLogger.Fatal("Failed to create sample goal", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!",
		zap.String("demo_user_id", demoUser.ID.String()),
	)
}
