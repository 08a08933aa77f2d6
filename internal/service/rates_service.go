package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"platita/pkg/config"

	"go.uber.org/zap"
)

// RateSource fetches a current exchange rate for a currency pair.
type RateSource interface {
	FetchRate(ctx context.Context, base, quote string) (float64, error)
}

type httpRateSource struct {
	httpClient *http.Client
	baseURL    string
}

// NewHTTPRateSource returns a RateSource backed by the open.er-api.com
// public endpoint.
func NewHTTPRateSource() RateSource {
	return &httpRateSource{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://open.er-api.com/v6/latest",
	}
}

func (s *httpRateSource) FetchRate(ctx context.Context, base, quote string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/"+base, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("rate endpoint returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var rateResp struct {
		Result string             `json:"result"`
		Rates  map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rateResp); err != nil {
		return 0, fmt.Errorf("failed to decode rate response: %w", err)
	}
	if rateResp.Result != "success" {
		return 0, fmt.Errorf("rate endpoint result: %s", rateResp.Result)
	}

	rate, ok := rateResp.Rates[quote]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("no rate for %s/%s", base, quote)
	}

	return rate, nil
}

type cachedRate struct {
	value     float64
	expiresAt time.Time
}

// RatesService is a memoized exchange-rate lookup. The cache is owned by the
// service instance with an explicit TTL, never a process-global map; a fetch
// failure degrades to the configured fallback constant for the USD/UYU pair.
type RatesService struct {
	source RateSource
	cfg    *config.RatesConfig
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]cachedRate
}

func NewRatesService(source RateSource, cfg *config.RatesConfig, logger *zap.Logger) *RatesService {
	return &RatesService{
		source: source,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		cache:  make(map[string]cachedRate),
	}
}

// Rate returns the base->quote exchange rate, serving cached values until
// they expire.
func (s *RatesService) Rate(ctx context.Context, base, quote string) (float64, error) {
	if base == quote {
		return 1, nil
	}

	key := base + "/" + quote

	s.mu.Lock()
	cached, ok := s.cache[key]
	s.mu.Unlock()
	if ok && s.now().Before(cached.expiresAt) {
		return cached.value, nil
	}

	rate, err := s.source.FetchRate(ctx, base, quote)
	if err != nil {
		s.logger.Warn("Rate fetch failed, using fallback",
			zap.String("pair", key),
			zap.Error(err),
		)
		return s.fallbackRate(base, quote, cached, ok)
	}

	s.mu.Lock()
	s.cache[key] = cachedRate{value: rate, expiresAt: s.now().Add(s.cfg.TTL)}
	s.mu.Unlock()

	return rate, nil
}

// Convert converts amount from one currency to another, returning the
// converted amount and the rate used.
func (s *RatesService) Convert(ctx context.Context, amount float64, from, to string) (float64, float64, error) {
	rate, err := s.Rate(ctx, from, to)
	if err != nil {
		return 0, 0, err
	}
	return amount * rate, rate, nil
}

func (s *RatesService) fallbackRate(base, quote string, stale cachedRate, hasStale bool) (float64, error) {
	// A stale cached value beats the constant.
	if hasStale {
		return stale.value, nil
	}

	switch base + "/" + quote {
	case "USD/UYU":
		return s.cfg.FallbackUSDUYU, nil
	case "UYU/USD":
		return 1 / s.cfg.FallbackUSDUYU, nil
	}

	return 0, fmt.Errorf("no rate available for %s/%s", base, quote)
}
