package service

import (
	"context"
	"strings"

	"platita/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// defaultCategories is the fixed system taxonomy. "Otros Gastos" must remain
// last: it is the catch-all that every unclassifiable expense lands in.
var defaultCategories = []models.ExpenseCategory{
	{Name: "Alimentación", Description: "Supermercados, almacenes, restaurantes, cafés, delivery y todo gasto en comida y bebida", Source: models.CategorySourceDefault},
	{Name: "Transporte", Description: "Boletos, taxis, aplicaciones de transporte, combustible, peajes y estacionamiento", Source: models.CategorySourceDefault},
	{Name: "Servicios", Description: "UTE, OSE, Antel, internet, telefonía, gas y demás servicios del hogar", Source: models.CategorySourceDefault},
	{Name: "Entretenimiento", Description: "Cine, streaming, salidas, espectáculos, juegos y suscripciones de ocio", Source: models.CategorySourceDefault},
	{Name: "Salud", Description: "Mutualista, emergencia móvil, farmacias, consultas médicas y estudios", Source: models.CategorySourceDefault},
	{Name: "Educación", Description: "Cuotas de enseñanza, cursos, libros y materiales de estudio", Source: models.CategorySourceDefault},
	{Name: "Vestimenta", Description: "Ropa, calzado y accesorios", Source: models.CategorySourceDefault},
	{Name: "Otros Gastos", Description: "Cualquier gasto que no encaje en las categorías anteriores", Source: models.CategorySourceDefault},
}

type customCategoryStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Category, error)
}

// CatalogService supplies the expense category taxonomy used to constrain
// classification: the system defaults plus the user's custom categories.
type CatalogService struct {
	store  customCategoryStore
	logger *zap.Logger
}

func NewCatalogService(store customCategoryStore, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: logger,
	}
}

// DefaultCategories returns a copy of the system default taxonomy.
func DefaultCategories() []models.ExpenseCategory {
	out := make([]models.ExpenseCategory, len(defaultCategories))
	copy(out, defaultCategories)
	return out
}

// ExpenseCategories returns the taxonomy for a user: defaults first, then the
// user's custom categories in their stored order. Custom entries whose name
// collides with an existing entry are dropped rather than shadowing it. A
// store failure degrades to defaults-only; this never fails.
func (s *CatalogService) ExpenseCategories(ctx context.Context, userID *uuid.UUID) []models.ExpenseCategory {
	taxonomy := DefaultCategories()
	if userID == nil {
		return taxonomy
	}

	customs, err := s.store.ListByUser(ctx, *userID)
	if err != nil {
		s.logger.Warn("Failed to load custom categories, using defaults only",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return taxonomy
	}

	seen := make(map[string]bool, len(taxonomy))
	for _, cat := range taxonomy {
		seen[strings.ToLower(cat.Name)] = true
	}

	for _, custom := range customs {
		key := strings.ToLower(strings.TrimSpace(custom.Name))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		taxonomy = append(taxonomy, models.ExpenseCategory{
			Name:        strings.TrimSpace(custom.Name),
			Description: custom.Description,
			Source:      models.CategorySourceCustom,
		})
	}

	return taxonomy
}
