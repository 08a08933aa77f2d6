package models

import (
	"time"

	"github.com/google/uuid"
)

type Goal struct {
	ID            uuid.UUID  `db:"id"`
	UserID        uuid.UUID  `db:"user_id"`
	Name          string     `db:"name"`
	TargetAmount  float64    `db:"target_amount"`
	CurrentAmount float64    `db:"current_amount"`
	Currency      string     `db:"currency"`
	DueDate       *time.Time `db:"due_date"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}
