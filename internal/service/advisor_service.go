package service

import (
	"context"
	"fmt"
	"strings"

	"platita/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const advisorUnavailableReply = "En este momento no puedo responder consultas. Intentá de nuevo más tarde."

type completionGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type recentTransactionStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Transaction, error)
}

type goalStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Goal, error)
}

// AdvisorService answers free-form finance questions, grounding the prompt in
// the user's recent transactions and savings goals.
type AdvisorService struct {
	llm      completionGenerator
	txStore  recentTransactionStore
	goals    goalStore
	logger   *zap.Logger
	maxItems int
}

func NewAdvisorService(llm completionGenerator, txStore recentTransactionStore, goals goalStore, logger *zap.Logger) *AdvisorService {
	return &AdvisorService{
		llm:      llm,
		txStore:  txStore,
		goals:    goals,
		logger:   logger,
		maxItems: 50,
	}
}

// Ask answers a user's question. It never fails: store errors shrink the
// grounding context and an LLM failure yields a fixed unavailable reply.
func (s *AdvisorService) Ask(ctx context.Context, userID uuid.UUID, question string) string {
	prompt := s.buildPrompt(ctx, userID, question)

	answer, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("Advisor generation failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return advisorUnavailableReply
	}

	return answer
}

func (s *AdvisorService) buildPrompt(ctx context.Context, userID uuid.UUID, question string) string {
	var b strings.Builder

	b.WriteString("Contexto del usuario:\n")

	transactions, err := s.txStore.ListByUser(ctx, userID, s.maxItems, 0)
	if err != nil {
		s.logger.Warn("Failed to load transactions for advisor context", zap.Error(err))
	}
	if len(transactions) == 0 {
		b.WriteString("Sin movimientos registrados.\n")
	} else {
		b.WriteString("Movimientos recientes:\n")
		for _, tx := range transactions {
			fmt.Fprintf(&b, "- %s | %s | %.2f %s | %s | %s\n",
				tx.Date.Format("2006-01-02"), tx.Type, tx.Amount, tx.Currency, tx.Category, tx.Description)
		}
	}

	goals, err := s.goals.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to load goals for advisor context", zap.Error(err))
	}
	if len(goals) > 0 {
		b.WriteString("Metas de ahorro:\n")
		for _, goal := range goals {
			fmt.Fprintf(&b, "- %s: %.2f de %.2f %s\n", goal.Name, goal.CurrentAmount, goal.TargetAmount, goal.Currency)
		}
	}

	b.WriteString("\nPregunta del usuario:\n")
	b.WriteString(question)

	return b.String()
}
