package dto

type CreateGoalRequest struct {
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	Currency      string  `json:"currency"`
	DueDate       string  `json:"due_date"` // YYYY-MM-DD, optional
}

type UpdateGoalAmountRequest struct {
	CurrentAmount float64 `json:"current_amount"`
}

type GoalResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	Currency      string  `json:"currency"`
	DueDate       string  `json:"due_date,omitempty"`
	Progress      float64 `json:"progress"` // fraction of target reached, capped at 1
	CreatedAt     string  `json:"created_at"`
}
