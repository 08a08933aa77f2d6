package models

import (
	"time"

	"github.com/google/uuid"
)

type CategorySource string

const (
	CategorySourceDefault CategorySource = "system-default"
	CategorySourceCustom  CategorySource = "user-custom"
)

// ExpenseCategory is one entry of the taxonomy handed to the classifier.
// Name is unique within a taxonomy; Description is injected into the prompt.
type ExpenseCategory struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Source      CategorySource `json:"source"`
}

// Category is a user-defined expense category stored in Postgres.
type Category struct {
	ID          uuid.UUID `db:"id"`
	UserID      uuid.UUID `db:"user_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
