package service

import (
	"strings"
	"time"

	"regexp"

	"platita/internal/models"
)

// Pattern families tuned for common Uruguayan statement phrasings. The
// extractor is an availability net for upstream outages, not a recall match
// for the model path.
var (
	// "15/01/2024 COMPRA SUPERMERCADO 1250.00"
	keywordAmountPattern = regexp.MustCompile(`(?i)\b(COMPRA|PAGO|EXTRACCI[OÓ]N|RETIRO|D[EÉ]B(?:ITO)?\.?\s*AUTOM[AÁ]TICO)\b[\s:.-]*(.*?)\s*\$?\s*(\d[\d.,]*)\s*$`)
	// "1250.00 PAGO UTE"
	amountKeywordPattern = regexp.MustCompile(`(?i)^\s*\$?\s*(\d[\d.,]*)\s+(COMPRA|PAGO|EXTRACCI[OÓ]N|RETIRO|D[EÉ]B(?:ITO)?\.?\s*AUTOM[AÁ]TICO)\b[\s:.-]*(.*?)\s*$`)
	// bare "FARMACIA SAN ROQUE   342,50" table rows
	tableRowPattern = regexp.MustCompile(`^\s*([A-ZÁÉÍÓÚÜÑ][A-ZÁÉÍÓÚÜÑ0-9 .*'/-]{2,}?)\s+\$?\s*(\d[\d.,]*)\s*$`)

	lineDatePattern = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`)
)

// heuristicExtractor is the regex-based fallback used when the model call
// path fails. It never fails itself; worst case it finds nothing.
type heuristicExtractor struct {
	catchAll           string
	homeCurrency       string
	currencyThreshold  float64
	fallbackConfidence float64
	now                func() time.Time
}

func newHeuristicExtractor(catchAll, homeCurrency string, currencyThreshold, fallbackConfidence float64) *heuristicExtractor {
	return &heuristicExtractor{
		catchAll:           catchAll,
		homeCurrency:       homeCurrency,
		currencyThreshold:  currencyThreshold,
		fallbackConfidence: fallbackConfidence,
		now:                time.Now,
	}
}

// Extract scans text line by line for expense-looking rows. Every match with
// a strictly positive amount becomes an ExpenseItem in the catch-all category
// with the fixed low fallback confidence.
func (h *heuristicExtractor) Extract(text string) []models.ExpenseItem {
	expenses := make([]models.ExpenseItem, 0)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		description, rawAmount, matched := matchExpenseLine(line)
		if !matched {
			continue
		}

		amount, ok := parseStatementAmount(rawAmount)
		if !ok || amount <= 0 {
			continue
		}

		if description == "" {
			description = h.catchAll
		}

		expenses = append(expenses, models.ExpenseItem{
			Description: description,
			Amount:      amount,
			Currency:    h.currencyForAmount(amount),
			Category:    h.catchAll,
			Date:        h.lineDate(line),
			Confidence:  h.fallbackConfidence,
		})
	}

	return expenses
}

func matchExpenseLine(line string) (description, rawAmount string, matched bool) {
	if m := keywordAmountPattern.FindStringSubmatch(line); m != nil {
		description = strings.TrimSpace(strings.Join([]string{strings.ToUpper(m[1]), m[2]}, " "))
		return description, m[3], true
	}
	if m := amountKeywordPattern.FindStringSubmatch(line); m != nil {
		description = strings.TrimSpace(strings.Join([]string{strings.ToUpper(m[2]), m[3]}, " "))
		return description, m[1], true
	}
	if m := tableRowPattern.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), m[2], true
	}
	return "", "", false
}

// currencyForAmount infers currency purely from magnitude at this tier: small
// amounts read as dollars, large ones as pesos.
func (h *heuristicExtractor) currencyForAmount(amount float64) string {
	if amount < h.currencyThreshold {
		return "USD"
	}
	return h.homeCurrency
}

func (h *heuristicExtractor) lineDate(line string) string {
	if m := lineDatePattern.FindStringSubmatch(line); m != nil {
		if parsed, err := time.Parse("2/1/2006", m[1]); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return h.now().Format("2006-01-02")
}
