package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"platita/internal/models"
	"platita/pkg/config"

	"github.com/Role1776/gigago"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LLMService talks to the GigaChat completion endpoint. Classification uses
// the raw chat/completions API so the per-call token budget and temperature
// are under our control; the advisor path uses the gigago generative model.
//
// A missing credential is tolerated at construction time: every call then
// fails with ClassificationError and the orchestrator's fallback engages.
type LLMService struct {
	gigaCfg     *config.GigaChatConfig
	analysisCfg *config.AnalysisConfig
	logger      *zap.Logger
	httpClient  *http.Client
	baseURL     string
	oauthURL    string

	client *gigago.Client
	model  *gigago.GenerativeModel

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewLLMService(gigaCfg *config.GigaChatConfig, analysisCfg *config.AnalysisConfig, logger *zap.Logger) *LLMService {
	httpClient := &http.Client{}
	if gigaCfg.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	s := &LLMService{
		gigaCfg:     gigaCfg,
		analysisCfg: analysisCfg,
		logger:      logger,
		httpClient:  httpClient,
		// GigaChat REST API
		// Documentation: https://developers.sber.ru/docs/ru/gigachat/api/main
		baseURL:  "https://gigachat.devices.sberbank.ru/api/v1",
		oauthURL: "https://ngw.devices.sberbank.ru:9443/api/v2/oauth",
	}

	if gigaCfg.APIKey == "" {
		logger.Warn("GIGACHAT_API_KEY is not configured, statement analysis will use the heuristic fallback")
		return s
	}

	opts := []gigago.Option{
		gigago.WithCustomScope(gigaCfg.Scope),
	}
	if gigaCfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
	}

	client, err := gigago.NewClient(context.Background(), gigaCfg.APIKey, opts...)
	if err != nil {
		logger.Warn("Failed to create GigaChat client, advisor replies will degrade", zap.Error(err))
		return s
	}

	model := client.GenerativeModel(gigaCfg.Model)
	model.SystemInstruction = advisorSystemInstruction
	model.Temperature = 0.3

	s.client = client
	s.model = model
	return s
}

const advisorSystemInstruction = `Sos un asesor financiero personal para usuarios de Uruguay. Respondés en español rioplatense, con consejos concretos y accionables sobre gastos, ahorro y metas. Basá tus respuestas en los datos del usuario cuando estén disponibles y aclaralo cuando no lo estén. No inventes movimientos ni montos.`

// buildClassificationPrompt creates the system instruction for expense
// extraction, embedding the caller's category taxonomy.
func (s *LLMService) buildClassificationPrompt(taxonomy []models.ExpenseCategory) string {
	var b strings.Builder

	b.WriteString("Sos un analista financiero experto en extraer gastos de estados de cuenta bancarios uruguayos.\n\n")
	b.WriteString("REGLAS DE EXTRACCIÓN:\n")
	b.WriteString("1. Extraé ÚNICAMENTE débitos y gastos. Ignorá créditos, depósitos, intereses ganados y transferencias recibidas.\n")
	fmt.Fprintf(&b, "2. Moneda: si el texto indica la moneda (USD, U$S, dólares, UYU, $U, pesos) usá esa. Sin indicación explícita: montos menores a %.0f se asumen USD, iguales o mayores se asumen %s.\n",
		s.analysisCfg.CurrencyThreshold, s.analysisCfg.HomeCurrency)
	fmt.Fprintf(&b, "3. Categoría: usá exactamente uno de los nombres del catálogo de abajo. Nunca inventes categorías nuevas y nunca uses \"Other\" ni \"Otros\" a secas; si ninguna encaja usá \"%s\".\n\n",
		s.analysisCfg.CatchAllCategory)

	b.WriteString("CATÁLOGO DE CATEGORÍAS:\n")
	for _, cat := range taxonomy {
		fmt.Fprintf(&b, "- %s: %s\n", cat.Name, cat.Description)
	}

	b.WriteString("\nFORMATO DE RESPUESTA:\n")
	b.WriteString("Respondé ÚNICAMENTE con un objeto JSON válido, sin comentarios ni markdown:\n")
	b.WriteString(`{
  "expenses": [
    {
      "description": "comercio u operación, lo más específico posible",
      "amount": 1234.56,
      "currency": "UYU|USD",
      "category": "un nombre del catálogo",
      "date": "YYYY-MM-DD",
      "confidence": 0.9
    }
  ],
  "confidence": 0.9
}
`)
	b.WriteString("\nSi el texto no contiene gastos, devolvé {\"expenses\": [], \"confidence\": 0.9}.")

	return b.String()
}

func buildChunkPrompt(chunk string) string {
	var b strings.Builder

	b.WriteString("Texto del estado de cuenta:\n\n")
	b.WriteString(chunk)
	b.WriteString("\n\nRECORDATORIOS:\n")
	b.WriteString("- Normalizá todas las fechas al formato YYYY-MM-DD.\n")
	b.WriteString("- Incluí TODOS los gastos, no cortes la lista aunque sea larga.\n")
	b.WriteString("- Mantené los nombres de comercios tal como aparecen, sin genéricos.\n")

	return b.String()
}

// ClassifyChunk sends one statement chunk to the completion endpoint and
// returns the raw completion text. Fails with ClassificationError when the
// credential is absent or the upstream call errors.
func (s *LLMService) ClassifyChunk(ctx context.Context, chunk string, taxonomy []models.ExpenseCategory) (string, error) {
	if s.gigaCfg.APIKey == "" {
		return "", classificationErrorf("GIGACHAT_API_KEY is not configured")
	}

	token, err := s.token(ctx)
	if err != nil {
		return "", &ClassificationError{Err: err}
	}

	requestBody := map[string]any{
		"model": s.gigaCfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": s.buildClassificationPrompt(taxonomy)},
			{"role": "user", "content": buildChunkPrompt(chunk)},
		},
		// Near-deterministic sampling, generous completion budget so long
		// expense lists are not truncated.
		"temperature": 0.1,
		"max_tokens":  s.analysisCfg.MaxTokens,
		"stream":      false,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", classificationErrorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", classificationErrorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", classificationErrorf("failed to call completion endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", classificationErrorf("completion endpoint returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var completionResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completionResp); err != nil {
		return "", classificationErrorf("failed to decode completion response: %w", err)
	}
	if len(completionResp.Choices) == 0 {
		return "", classificationErrorf("no choices in completion response")
	}

	content := strings.TrimSpace(completionResp.Choices[0].Message.Content)
	s.logger.Debug("Chunk classified",
		zap.Int("chunk_length", len(chunk)),
		zap.Int("completion_length", len(content)),
	)

	return content, nil
}

// Generate produces a free-form completion for the advisor path.
func (s *LLMService) Generate(ctx context.Context, prompt string) (string, error) {
	if s.model == nil {
		return "", fmt.Errorf("GigaChat client is not configured")
	}

	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// token returns a cached OAuth access token, refreshing it when expired.
// According to GigaChat API docs, the API key is already Base64-encoded.
func (s *LLMService) token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		return s.accessToken, nil
	}

	formData := url.Values{}
	formData.Set("scope", s.gigaCfg.Scope)

	req, err := http.NewRequestWithContext(ctx, "POST", s.oauthURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create OAuth request: %w", err)
	}

	rqUID := uuid.New().String()
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", rqUID)
	req.Header.Set("Authorization", "Basic "+s.gigaCfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		s.logger.Error("OAuth request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(bodyBytes)),
			zap.String("rq_uid", rqUID),
		)
		return "", fmt.Errorf("OAuth failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var oauthResp struct {
		AccessToken string `json:"access_token"`
		ExpiresAt   int64  `json:"expires_at"` // unix milliseconds
	}
	if err := json.NewDecoder(resp.Body).Decode(&oauthResp); err != nil {
		return "", fmt.Errorf("failed to decode OAuth response: %w", err)
	}
	if oauthResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in OAuth response")
	}

	s.accessToken = oauthResp.AccessToken
	if oauthResp.ExpiresAt > 0 {
		// Renew a minute early to avoid racing the expiry.
		s.tokenExpiry = time.UnixMilli(oauthResp.ExpiresAt).Add(-time.Minute)
	} else {
		s.tokenExpiry = time.Now().Add(25 * time.Minute)
	}

	return s.accessToken, nil
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
