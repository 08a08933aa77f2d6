package service

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"time"

	"platita/internal/models"
)

const missingDescription = "Gasto sin descripción"

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// knownCurrencies is the fixed set accepted on expense items; anything else
// normalizes to the configured home currency.
var knownCurrencies = map[string]bool{
	"UYU": true,
	"USD": true,
}

// disallowedCategories are generic labels the model must not use; they map to
// the catch-all instead.
var disallowedCategories = map[string]bool{
	"other":  true,
	"others": true,
	"otro":   true,
	"otros":  true,
}

// responseParser turns raw completion text into a valid AnalysisResult. It is
// the single choke point enforcing that every ExpenseItem field is populated;
// it never fails, degrading to an empty result instead.
type responseParser struct {
	catchAll     string
	homeCurrency string
	now          func() time.Time
}

func newResponseParser(catchAll, homeCurrency string) *responseParser {
	return &responseParser{
		catchAll:     catchAll,
		homeCurrency: homeCurrency,
		now:          time.Now,
	}
}

type rawExpense struct {
	Description string `json:"description"`
	Amount      any    `json:"amount"`
	Currency    string `json:"currency"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Confidence  any    `json:"confidence"`
}

type rawAnalysisResponse struct {
	Expenses   *[]rawExpense `json:"expenses"`
	Confidence any           `json:"confidence"`
}

// Parse extracts the first JSON object embedded in the completion text
// (tolerating surrounding prose and markdown fences) and normalizes it. Items
// missing a confidence inherit the chunk confidence; a response missing one
// gets fallbackConfidence.
func (p *responseParser) Parse(raw string, taxonomy []models.ExpenseCategory, fallbackConfidence float64) models.AnalysisResult {
	empty := models.AnalysisResult{
		Expenses:     []models.ExpenseItem{},
		Confidence:   0,
		AnalysisType: models.AnalysisDirect,
	}

	span, ok := extractJSONObject(raw)
	if !ok {
		return empty
	}

	var decoded rawAnalysisResponse
	if err := json.Unmarshal([]byte(span), &decoded); err != nil {
		return empty
	}
	if decoded.Expenses == nil {
		return empty
	}

	chunkConfidence, ok := coerceConfidence(decoded.Confidence)
	if !ok {
		chunkConfidence = clampConfidence(fallbackConfidence)
	}

	expenses := make([]models.ExpenseItem, 0, len(*decoded.Expenses))
	for _, entry := range *decoded.Expenses {
		expenses = append(expenses, p.normalizeExpense(entry, taxonomy, chunkConfidence))
	}

	return models.AnalysisResult{
		Expenses:     expenses,
		Confidence:   chunkConfidence,
		AnalysisType: models.AnalysisDirect,
	}
}

func (p *responseParser) normalizeExpense(entry rawExpense, taxonomy []models.ExpenseCategory, chunkConfidence float64) models.ExpenseItem {
	item := models.ExpenseItem{
		Description: strings.TrimSpace(entry.Description),
		Amount:      coerceAmount(entry.Amount),
		Currency:    strings.ToUpper(strings.TrimSpace(entry.Currency)),
		Category:    p.resolveCategory(entry.Category, taxonomy),
		Date:        strings.TrimSpace(entry.Date),
	}

	if item.Description == "" {
		item.Description = missingDescription
	}
	if !knownCurrencies[item.Currency] {
		item.Currency = p.homeCurrency
	}
	if !validISODate(item.Date) {
		item.Date = p.now().Format("2006-01-02")
	}
	if conf, ok := coerceConfidence(entry.Confidence); ok {
		item.Confidence = conf
	} else {
		item.Confidence = chunkConfidence
	}

	return item
}

// resolveCategory maps the model's label onto the taxonomy: exact names win,
// case-insensitive matches are canonicalized, everything else (including the
// disallowed generic "Other"/"Otros") becomes the catch-all.
func (p *responseParser) resolveCategory(label string, taxonomy []models.ExpenseCategory) string {
	label = strings.TrimSpace(label)
	if label == "" || disallowedCategories[strings.ToLower(label)] {
		return p.catchAll
	}

	for _, cat := range taxonomy {
		if strings.EqualFold(cat.Name, label) {
			return cat.Name
		}
	}

	return p.catchAll
}

// extractJSONObject returns the first balanced {...} span in s, stripping
// markdown fences first. Quoted braces are ignored while balancing.
func extractJSONObject(s string) (string, bool) {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")

	start := strings.Index(s, "{")
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}

	return "", false
}

// coerceAmount accepts whatever numeric-like value the model returned. Invalid
// values normalize to 0; negative amounts (debit sign conventions) are folded
// to their absolute value.
func coerceAmount(v any) float64 {
	switch value := v.(type) {
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return 0
		}
		return math.Abs(value)
	case string:
		if parsed, ok := parseStatementAmount(value); ok {
			return math.Abs(parsed)
		}
	}
	return 0
}

func coerceConfidence(v any) (float64, bool) {
	value, isFloat := v.(float64)
	if !isFloat || math.IsNaN(value) {
		return 0, false
	}
	return clampConfidence(value), true
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func validISODate(s string) bool {
	if !isoDatePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
