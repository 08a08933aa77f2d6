package service

import "platita/internal/models"

type expenseKey struct {
	description string
	amount      float64
	date        string
}

// aggregateResults merges per-chunk results in chunk order. A single result
// passes through unchanged (its analysisType included); multiple results are
// concatenated, deduplicated on (description, amount, date) keeping the first
// occurrence, and tagged chunked with the mean of the chunk confidences.
func aggregateResults(results []models.AnalysisResult) models.AnalysisResult {
	if len(results) == 1 {
		return results[0]
	}
	if len(results) == 0 {
		return models.AnalysisResult{
			Expenses:     []models.ExpenseItem{},
			Confidence:   0,
			AnalysisType: models.AnalysisDirect,
		}
	}

	seen := make(map[expenseKey]bool)
	merged := make([]models.ExpenseItem, 0)
	var confidenceSum float64

	for _, result := range results {
		confidenceSum += result.Confidence
		for _, item := range result.Expenses {
			key := expenseKey{
				description: item.Description,
				amount:      item.Amount,
				date:        item.Date,
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, item)
		}
	}

	return models.AnalysisResult{
		Expenses:     merged,
		Confidence:   confidenceSum / float64(len(results)),
		AnalysisType: models.AnalysisChunked,
	}
}
