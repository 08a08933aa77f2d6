package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"platita/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type stubGenerator struct {
	answer     string
	err        error
	lastPrompt string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	return s.answer, s.err
}

type stubRecentTxStore struct {
	transactions []*models.Transaction
	err          error
}

func (s *stubRecentTxStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Transaction, error) {
	return s.transactions, s.err
}

type stubGoalStore struct {
	goals []*models.Goal
	err   error
}

func (s *stubGoalStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Goal, error) {
	return s.goals, s.err
}

func TestAskGroundsPromptInUserData(t *testing.T) {
	generator := &stubGenerator{answer: "Gastás mucho en delivery."}
	txStore := &stubRecentTxStore{transactions: []*models.Transaction{
		{
			Type:        models.TransactionExpense,
			Amount:      1250,
			Currency:    "UYU",
			Description: "COMPRA PEDIDOSYA",
			Category:    "Alimentación",
			Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
	}}
	goals := &stubGoalStore{goals: []*models.Goal{
		{Name: "Fondo de emergencia", CurrentAmount: 15000, TargetAmount: 100000, Currency: "UYU"},
	}}

	svc := NewAdvisorService(generator, txStore, goals, zap.NewNop())
	answer := svc.Ask(context.Background(), uuid.New(), "¿En qué estoy gastando de más?")

	if answer != "Gastás mucho en delivery." {
		t.Errorf("answer = %q", answer)
	}
	for _, fragment := range []string{"COMPRA PEDIDOSYA", "Fondo de emergencia", "¿En qué estoy gastando de más?"} {
		if !strings.Contains(generator.lastPrompt, fragment) {
			t.Errorf("prompt missing %q:\n%s", fragment, generator.lastPrompt)
		}
	}
}

func TestAskNeverFails(t *testing.T) {
	generator := &stubGenerator{err: errors.New("model unavailable")}
	txStore := &stubRecentTxStore{err: errors.New("db down")}
	goals := &stubGoalStore{err: errors.New("db down")}

	svc := NewAdvisorService(generator, txStore, goals, zap.NewNop())
	answer := svc.Ask(context.Background(), uuid.New(), "¿Cómo vengo este mes?")

	if answer != advisorUnavailableReply {
		t.Errorf("answer = %q, want the fixed unavailable reply", answer)
	}
}

func TestAskWithEmptyHistory(t *testing.T) {
	generator := &stubGenerator{answer: "Todavía no tengo datos tuyos."}
	svc := NewAdvisorService(generator, &stubRecentTxStore{}, &stubGoalStore{}, zap.NewNop())

	svc.Ask(context.Background(), uuid.New(), "hola")

	if !strings.Contains(generator.lastPrompt, "Sin movimientos registrados") {
		t.Errorf("prompt should state the empty history:\n%s", generator.lastPrompt)
	}
}
