package models

type AnalysisType string

const (
	AnalysisDirect            AnalysisType = "direct"
	AnalysisChunked           AnalysisType = "chunked"
	AnalysisHeuristicFallback AnalysisType = "heuristic-fallback"
)

// ExpenseItem is a single expense produced by statement analysis. Every field
// is always populated: the parser fills defaults for anything the model omitted.
type ExpenseItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	Date        string  `json:"date"` // YYYY-MM-DD
	Confidence  float64 `json:"confidence"`
}

// AnalysisResult is the outcome of one pipeline run. Expenses keep discovery
// order; Confidence is the aggregate over chunks; AnalysisType records
// provenance (direct, chunked or heuristic-fallback).
type AnalysisResult struct {
	Expenses     []ExpenseItem `json:"expenses"`
	Confidence   float64       `json:"confidence"`
	AnalysisType AnalysisType  `json:"analysisType"`
}
