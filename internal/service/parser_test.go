package service

import (
	"testing"
	"time"

	"platita/internal/models"
)

func testTaxonomy() []models.ExpenseCategory {
	return DefaultCategories()
}

func newTestParser() *responseParser {
	p := newResponseParser("Otros Gastos", "UYU")
	p.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	return p
}

func TestParseWellFormedResponse(t *testing.T) {
	p := newTestParser()
	raw := `{
		"expenses": [
			{"description": "COMPRA TIENDA INGLESA", "amount": 1250.00, "currency": "UYU", "category": "Alimentación", "date": "2024-01-15", "confidence": 0.95}
		],
		"confidence": 0.9
	}`

	result := p.Parse(raw, testTaxonomy(), 0.3)

	if len(result.Expenses) != 1 {
		t.Fatalf("got %d expenses, want 1", len(result.Expenses))
	}
	item := result.Expenses[0]
	if item.Description != "COMPRA TIENDA INGLESA" {
		t.Errorf("description = %q", item.Description)
	}
	if item.Amount != 1250 {
		t.Errorf("amount = %v, want 1250", item.Amount)
	}
	if item.Category != "Alimentación" {
		t.Errorf("category = %q", item.Category)
	}
	if item.Confidence != 0.95 {
		t.Errorf("item confidence = %v, want 0.95", item.Confidence)
	}
	if result.Confidence != 0.9 {
		t.Errorf("result confidence = %v, want 0.9", result.Confidence)
	}
	if result.AnalysisType != models.AnalysisDirect {
		t.Errorf("analysisType = %q", result.AnalysisType)
	}
}

func TestParseEmptyExpensesKeepsConfidence(t *testing.T) {
	p := newTestParser()
	raw := `El estado de cuenta no contiene gastos. {"expenses": [], "confidence": 0.9} Espero que sirva.`

	result := p.Parse(raw, testTaxonomy(), 0.3)

	if len(result.Expenses) != 0 {
		t.Fatalf("got %d expenses, want 0", len(result.Expenses))
	}
	if result.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", result.Confidence)
	}
}

func TestParseMarkdownFencedResponse(t *testing.T) {
	p := newTestParser()
	raw := "```json\n{\"expenses\": [{\"description\": \"PAGO UTE\", \"amount\": 890, \"currency\": \"UYU\", \"category\": \"Servicios\", \"date\": \"2024-01-20\"}], \"confidence\": 0.85}\n```"

	result := p.Parse(raw, testTaxonomy(), 0.3)

	if len(result.Expenses) != 1 {
		t.Fatalf("got %d expenses, want 1", len(result.Expenses))
	}
	// The item has no own confidence and inherits the chunk's.
	if result.Expenses[0].Confidence != 0.85 {
		t.Errorf("item confidence = %v, want inherited 0.85", result.Expenses[0].Confidence)
	}
}

func TestParseDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no JSON at all", "No pude procesar el documento."},
		{"unbalanced braces", `{"expenses": [`},
		{"missing expenses key", `{"confidence": 0.8}`},
		{"null expenses", `{"expenses": null, "confidence": 0.8}`},
		{"empty string", ""},
	}

	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.Parse(tt.raw, testTaxonomy(), 0.3)
			if result.Expenses == nil {
				t.Fatal("expenses slice must not be nil")
			}
			if len(result.Expenses) != 0 {
				t.Errorf("got %d expenses, want 0", len(result.Expenses))
			}
			if result.Confidence != 0 {
				t.Errorf("confidence = %v, want 0", result.Confidence)
			}
		})
	}
}

func TestNormalizeExpenseDefaults(t *testing.T) {
	p := newTestParser()
	raw := `{"expenses": [{"description": "", "amount": "abc", "currency": "EUR", "category": "Criptomonedas", "date": "15/01/2024"}], "confidence": 0.6}`

	result := p.Parse(raw, testTaxonomy(), 0.3)

	if len(result.Expenses) != 1 {
		t.Fatalf("got %d expenses, want 1", len(result.Expenses))
	}
	item := result.Expenses[0]
	if item.Description != "Gasto sin descripción" {
		t.Errorf("description = %q", item.Description)
	}
	if item.Amount != 0 {
		t.Errorf("amount = %v, want 0", item.Amount)
	}
	if item.Currency != "UYU" {
		t.Errorf("currency = %q, want home currency UYU", item.Currency)
	}
	if item.Category != "Otros Gastos" {
		t.Errorf("category = %q, want catch-all", item.Category)
	}
	if item.Date != "2024-03-15" {
		t.Errorf("date = %q, want fixed now", item.Date)
	}
	if item.Confidence != 0.6 {
		t.Errorf("confidence = %v, want inherited 0.6", item.Confidence)
	}
}

func TestResolveCategoryRejectsGenericLabels(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Alimentación", "Alimentación"},
		{"alimentación", "Alimentación"},
		{"TRANSPORTE", "Transporte"},
		{"Other", "Otros Gastos"},
		{"otros", "Otros Gastos"},
		{"Otro", "Otros Gastos"},
		{"Inversiones", "Otros Gastos"},
		{"", "Otros Gastos"},
	}

	p := newTestParser()
	taxonomy := testTaxonomy()
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := p.resolveCategory(tt.label, taxonomy); got != tt.want {
				t.Errorf("resolveCategory(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestCoerceAmount(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
	}{
		{"float", 1250.5, 1250.5},
		{"negative folds to absolute", -890.0, 890},
		{"string amount", "1.250,50", 1250.5},
		{"negative string", "-500", 500},
		{"unparseable string", "mucho", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coerceAmount(tt.input); got != tt.want {
				t.Errorf("coerceAmount(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCoerceConfidenceClamps(t *testing.T) {
	if got, ok := coerceConfidence(1.5); !ok || got != 1 {
		t.Errorf("coerceConfidence(1.5) = %v, %v; want 1, true", got, ok)
	}
	if got, ok := coerceConfidence(-0.2); !ok || got != 0 {
		t.Errorf("coerceConfidence(-0.2) = %v, %v; want 0, true", got, ok)
	}
	if _, ok := coerceConfidence("high"); ok {
		t.Error("coerceConfidence should reject non-numeric values")
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`, true},
		{"prose around object", `aquí va: {"a": 1} listo`, `{"a": 1}`, true},
		{"nested objects", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`, true},
		{"brace inside string", `{"a": "}"}`, `{"a": "}"}`, true},
		{"escaped quote inside string", `{"a": "\"}"}`, `{"a": "\"}"}`, true},
		{"no object", "sin datos", "", false},
		{"unbalanced", `{"a": 1`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONObject(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
