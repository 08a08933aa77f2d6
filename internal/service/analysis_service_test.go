package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"platita/internal/models"
	"platita/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type stubCatalog struct {
	taxonomy []models.ExpenseCategory
}

func (s *stubCatalog) ExpenseCategories(ctx context.Context, userID *uuid.UUID) []models.ExpenseCategory {
	return s.taxonomy
}

type stubClassifier struct {
	responses []string
	err       error
	calls     int
}

func (s *stubClassifier) ClassifyChunk(ctx context.Context, chunk string, taxonomy []models.ExpenseCategory) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return `{"expenses": [], "confidence": 0.9}`, nil
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

type stubTxStore struct {
	saved []*models.Transaction
	err   error
}

func (s *stubTxStore) CreateBatch(ctx context.Context, transactions []*models.Transaction) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, transactions...)
	return nil
}

func testAnalysisConfig() *config.AnalysisConfig {
	return &config.AnalysisConfig{
		ChunkSize:          80000,
		MaxTokens:          4096,
		CurrencyThreshold:  500,
		FallbackConfidence: 0.3,
		CatchAllCategory:   "Otros Gastos",
		HomeCurrency:       "UYU",
	}
}

func newTestAnalysisService(classifier chunkClassifier, txStore transactionStore, cfg *config.AnalysisConfig) *AnalysisService {
	catalog := &stubCatalog{taxonomy: DefaultCategories()}
	return NewAnalysisService(catalog, classifier, txStore, cfg, zap.NewNop())
}

func TestRunExpenseAnalysisDirect(t *testing.T) {
	classifier := &stubClassifier{responses: []string{
		`{"expenses": [{"description": "COMPRA DISCO", "amount": 1250, "currency": "UYU", "category": "Alimentación", "date": "2024-01-15", "confidence": 0.95}], "confidence": 0.9}`,
	}}
	svc := newTestAnalysisService(classifier, &stubTxStore{}, testAnalysisConfig())

	result := svc.RunExpenseAnalysis(context.Background(), "15/01/2024 COMPRA DISCO 1250.00", nil)

	if classifier.calls != 1 {
		t.Errorf("classifier called %d times, want 1", classifier.calls)
	}
	if result.AnalysisType != models.AnalysisDirect {
		t.Errorf("analysisType = %q, want direct", result.AnalysisType)
	}
	if len(result.Expenses) != 1 {
		t.Fatalf("got %d expenses, want 1", len(result.Expenses))
	}
	if result.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", result.Confidence)
	}
}

func TestRunExpenseAnalysisChunked(t *testing.T) {
	cfg := testAnalysisConfig()
	cfg.ChunkSize = 40

	classifier := &stubClassifier{responses: []string{
		`{"expenses": [{"description": "COMPRA DISCO", "amount": 1250, "currency": "UYU", "category": "Alimentación", "date": "2024-01-15"}], "confidence": 0.8}`,
		`{"expenses": [{"description": "PAGO UTE", "amount": 890, "currency": "UYU", "category": "Servicios", "date": "2024-01-20"}], "confidence": 0.6}`,
	}}
	svc := newTestAnalysisService(classifier, &stubTxStore{}, cfg)

	text := strings.Repeat("movimientos de la cuenta ", 3) // 75 chars, two chunks
	result := svc.RunExpenseAnalysis(context.Background(), text, nil)

	if classifier.calls != 2 {
		t.Fatalf("classifier called %d times, want 2", classifier.calls)
	}
	if result.AnalysisType != models.AnalysisChunked {
		t.Errorf("analysisType = %q, want chunked", result.AnalysisType)
	}
	if len(result.Expenses) != 2 {
		t.Errorf("got %d expenses, want 2", len(result.Expenses))
	}
	if result.Confidence != 0.7 {
		t.Errorf("confidence = %v, want mean 0.7", result.Confidence)
	}
}

func TestRunExpenseAnalysisFallsBackOnClassifierError(t *testing.T) {
	classifier := &stubClassifier{err: classificationErrorf("model unavailable")}
	svc := newTestAnalysisService(classifier, &stubTxStore{}, testAnalysisConfig())

	text := "15/01/2024 COMPRA SUPERMERCADO DISCO 1250.00\n20/01/2024 PAGO UTE 890,00"
	result := svc.RunExpenseAnalysis(context.Background(), text, nil)

	if result.AnalysisType != models.AnalysisHeuristicFallback {
		t.Fatalf("analysisType = %q, want heuristic fallback", result.AnalysisType)
	}
	if result.Confidence != 0.3 {
		t.Errorf("confidence = %v, want configured fallback 0.3", result.Confidence)
	}
	if len(result.Expenses) != 2 {
		t.Errorf("got %d expenses, want 2 from heuristic extraction", len(result.Expenses))
	}
	for _, item := range result.Expenses {
		if item.Category != "Otros Gastos" {
			t.Errorf("category = %q, want catch-all", item.Category)
		}
	}
}

func TestRunExpenseAnalysisFallbackOnPlainError(t *testing.T) {
	// Errors that are not already ClassificationError still trigger the fallback.
	classifier := &stubClassifier{err: errors.New("connection refused")}
	svc := newTestAnalysisService(classifier, &stubTxStore{}, testAnalysisConfig())

	result := svc.RunExpenseAnalysis(context.Background(), "15/01/2024 COMPRA DISCO 1250.00", nil)

	if result.AnalysisType != models.AnalysisHeuristicFallback {
		t.Errorf("analysisType = %q, want heuristic fallback", result.AnalysisType)
	}
}

func TestRunExpenseAnalysisMidChunkFailureUsesFullText(t *testing.T) {
	cfg := testAnalysisConfig()
	cfg.ChunkSize = 45

	// First chunk succeeds, second fails: the heuristic must still see the
	// expense contained in the first chunk.
	classifier := &failSecondClassifier{}
	svc := newTestAnalysisService(classifier, &stubTxStore{}, cfg)

	text := "15/01/2024 COMPRA SUPERMERCADO DISCO 1250.00\n20/01/2024 PAGO UTE 890,00"
	result := svc.RunExpenseAnalysis(context.Background(), text, nil)

	if result.AnalysisType != models.AnalysisHeuristicFallback {
		t.Fatalf("analysisType = %q, want heuristic fallback", result.AnalysisType)
	}
	found := false
	for _, item := range result.Expenses {
		if strings.Contains(item.Description, "DISCO") {
			found = true
		}
	}
	if !found {
		t.Error("fallback did not recover the expense from the first chunk")
	}
}

type failSecondClassifier struct {
	calls int
}

func (c *failSecondClassifier) ClassifyChunk(ctx context.Context, chunk string, taxonomy []models.ExpenseCategory) (string, error) {
	c.calls++
	if c.calls >= 2 {
		return "", classificationErrorf("timeout on chunk %d", c.calls)
	}
	return `{"expenses": [], "confidence": 0.9}`, nil
}

func TestRunExpenseAnalysisShortTextSkipped(t *testing.T) {
	classifier := &stubClassifier{}
	svc := newTestAnalysisService(classifier, &stubTxStore{}, testAnalysisConfig())

	result := svc.RunExpenseAnalysis(context.Background(), "   abc   ", nil)

	if classifier.calls != 0 {
		t.Errorf("classifier called %d times, want 0 for short text", classifier.calls)
	}
	if len(result.Expenses) != 0 || result.Confidence != 0 {
		t.Errorf("got %+v, want empty zero-confidence result", result)
	}
}

func TestSaveExpenses(t *testing.T) {
	store := &stubTxStore{}
	svc := newTestAnalysisService(&stubClassifier{}, store, testAnalysisConfig())
	userID := uuid.New()

	expenses := []models.ExpenseItem{
		{Description: "COMPRA DISCO", Amount: 1250, Currency: "UYU", Category: "Alimentación", Date: "2024-01-15", Confidence: 0.9},
		{Description: "NETFLIX.COM", Amount: 15.99, Currency: "USD", Category: "Entretenimiento", Date: "no-es-fecha", Confidence: 0.8},
	}

	saved, err := svc.SaveExpenses(context.Background(), userID, expenses)
	if err != nil {
		t.Fatalf("SaveExpenses returned error: %v", err)
	}
	if len(saved) != 2 || len(store.saved) != 2 {
		t.Fatalf("saved %d/%d transactions, want 2", len(saved), len(store.saved))
	}
	if saved[0].Type != models.TransactionExpense {
		t.Errorf("type = %q, want expense", saved[0].Type)
	}
	if saved[0].UserID != userID {
		t.Errorf("userID = %v, want %v", saved[0].UserID, userID)
	}
	if saved[0].Date.Format("2006-01-02") != "2024-01-15" {
		t.Errorf("date = %v, want parsed 2024-01-15", saved[0].Date)
	}
	// An unparseable date falls back to the current time.
	if saved[1].Date.IsZero() {
		t.Error("unparseable date must default to now, not zero")
	}
}

func TestSaveExpensesEmptyNoop(t *testing.T) {
	store := &stubTxStore{err: fmt.Errorf("store must not be called")}
	svc := newTestAnalysisService(&stubClassifier{}, store, testAnalysisConfig())

	saved, err := svc.SaveExpenses(context.Background(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("SaveExpenses returned error: %v", err)
	}
	if saved != nil {
		t.Errorf("saved = %v, want nil", saved)
	}
}
