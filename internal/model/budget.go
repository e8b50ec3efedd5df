package model

import "time"

// Budget represents a monthly spending budget owned by a user.
type Budget struct {
	ID          int64
	UserID      int64
	Name        string
	AmountCents int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BudgetRequest represents a budget create or update submission.
type BudgetRequest struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
}

// BudgetResponse represents a budget in API responses.
type BudgetResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	AmountCents int64     `json:"amount_cents"`
	UpdatedAt   time.Time `json:"updated_at"`
}
