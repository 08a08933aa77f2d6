package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"platita/internal/models"
	"platita/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type taxonomyProvider interface {
	ExpenseCategories(ctx context.Context, userID *uuid.UUID) []models.ExpenseCategory
}

type chunkClassifier interface {
	ClassifyChunk(ctx context.Context, chunk string, taxonomy []models.ExpenseCategory) (string, error)
}

type transactionStore interface {
	CreateBatch(ctx context.Context, transactions []*models.Transaction) error
}

// AnalysisService is the statement analysis pipeline entry point: taxonomy ->
// chunking -> per-chunk classification -> parsing -> aggregation, with a
// whole-request heuristic fallback when the model call path fails. It always
// produces a result; no error ever reaches the caller.
type AnalysisService struct {
	catalog    taxonomyProvider
	classifier chunkClassifier
	txStore    transactionStore
	parser     *responseParser
	heuristic  *heuristicExtractor
	cfg        *config.AnalysisConfig
	logger     *zap.Logger
}

func NewAnalysisService(
	catalog taxonomyProvider,
	classifier chunkClassifier,
	txStore transactionStore,
	cfg *config.AnalysisConfig,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		catalog:    catalog,
		classifier: classifier,
		txStore:    txStore,
		parser:     newResponseParser(cfg.CatchAllCategory, cfg.HomeCurrency),
		heuristic:  newHeuristicExtractor(cfg.CatchAllCategory, cfg.HomeCurrency, cfg.CurrencyThreshold, cfg.FallbackConfidence),
		cfg:        cfg,
		logger:     logger,
	}
}

// RunExpenseAnalysis analyzes raw statement text for the given user (nil for
// anonymous: defaults-only taxonomy). Chunks are processed sequentially; the
// aggregate confidence and dedup assume stable chunk ordering, and the
// upstream API rate-limits concurrent calls. A classification failure on any
// chunk abandons the chunked flow and runs the heuristic extractor over the
// original full text.
func (s *AnalysisService) RunExpenseAnalysis(ctx context.Context, text string, userID *uuid.UUID) *models.AnalysisResult {
	if len(strings.TrimSpace(text)) < 10 {
		s.logger.Warn("Statement text is too short, skipping analysis", zap.Int("length", len(text)))
		return &models.AnalysisResult{
			Expenses:     []models.ExpenseItem{},
			Confidence:   0,
			AnalysisType: models.AnalysisDirect,
		}
	}

	taxonomy := s.catalog.ExpenseCategories(ctx, userID)
	chunks := chunkText(text, s.cfg.ChunkSize)

	results := make([]models.AnalysisResult, 0, len(chunks))
	for i, chunk := range chunks {
		completion, err := s.classifier.ClassifyChunk(ctx, chunk, taxonomy)
		if err != nil {
			var classErr *ClassificationError
			if !errors.As(err, &classErr) {
				classErr = &ClassificationError{Err: err}
			}
			s.logger.Warn("Classification failed, falling back to heuristic extraction",
				zap.Int("chunk", i),
				zap.Int("chunks_total", len(chunks)),
				zap.Error(classErr),
			)
			return s.fallback(text)
		}
		results = append(results, s.parser.Parse(completion, taxonomy, s.cfg.FallbackConfidence))
	}

	aggregated := aggregateResults(results)

	s.logger.Info("Statement analysis completed",
		zap.Int("chunks", len(chunks)),
		zap.Int("expenses", len(aggregated.Expenses)),
		zap.Float64("confidence", aggregated.Confidence),
		zap.String("analysis_type", string(aggregated.AnalysisType)),
	)

	return &aggregated
}

func (s *AnalysisService) fallback(text string) *models.AnalysisResult {
	expenses := s.heuristic.Extract(text)
	s.logger.Info("Heuristic extraction completed", zap.Int("expenses", len(expenses)))

	return &models.AnalysisResult{
		Expenses:     expenses,
		Confidence:   s.cfg.FallbackConfidence,
		AnalysisType: models.AnalysisHeuristicFallback,
	}
}

// SaveExpenses persists analyzed expenses as expense transactions for a user.
func (s *AnalysisService) SaveExpenses(ctx context.Context, userID uuid.UUID, expenses []models.ExpenseItem) ([]*models.Transaction, error) {
	if len(expenses) == 0 {
		return nil, nil
	}

	now := time.Now()
	transactions := make([]*models.Transaction, 0, len(expenses))
	for _, expense := range expenses {
		date, err := time.Parse("2006-01-02", expense.Date)
		if err != nil {
			date = now
		}
		transactions = append(transactions, &models.Transaction{
			ID:          uuid.New(),
			UserID:      userID,
			Type:        models.TransactionExpense,
			Amount:      expense.Amount,
			Currency:    expense.Currency,
			Description: sanitizeUTF8(expense.Description),
			Category:    expense.Category,
			Date:        date,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := s.txStore.CreateBatch(ctx, transactions); err != nil {
		return nil, err
	}

	return transactions, nil
}
