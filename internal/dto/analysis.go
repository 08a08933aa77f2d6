package dto

type AnalyzeTextRequest struct {
	Text    string `json:"text"`
	Persist bool   `json:"persist"`
}

type ExpenseItemResponse struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	Confidence  float64 `json:"confidence"`
}

type AnalysisResponse struct {
	Expenses          []ExpenseItemResponse `json:"expenses"`
	Confidence        float64               `json:"confidence"`
	AnalysisType      string                `json:"analysisType"`
	SavedTransactions int                   `json:"saved_transactions,omitempty"`
}
