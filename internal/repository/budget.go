package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/centsible/centsible-go/internal/model"
)

var ErrBudgetNotFound = errors.New("budget not found")

// BudgetRepository handles budget persistence operations.
type BudgetRepository struct {
	db *sql.DB
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(db *sql.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Create inserts a new budget and sets the generated ID on the struct.
func (r *BudgetRepository) Create(ctx context.Context, budget *model.Budget) error {
	query := `INSERT INTO budgets (user_id, name, amount_cents) VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, budget.UserID, budget.Name, budget.AmountCents)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	budget.ID = id
	return nil
}

// ListByUser retrieves all budgets for a user, most recently updated first.
func (r *BudgetRepository) ListByUser(ctx context.Context, userID int64) ([]model.Budget, error) {
	query := `SELECT id, user_id, name, amount_cents, created_at, updated_at
		FROM budgets WHERE user_id = ? ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []model.Budget
	for rows.Next() {
		var b model.Budget
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.Name, &b.AmountCents, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}

	return budgets, rows.Err()
}

// GetForUser retrieves a budget by id, scoped to its owner.
func (r *BudgetRepository) GetForUser(ctx context.Context, userID, id int64) (*model.Budget, error) {
	query := `SELECT id, user_id, name, amount_cents, created_at, updated_at
		FROM budgets WHERE user_id = ? AND id = ?`

	budget := &model.Budget{}
	err := r.db.QueryRowContext(ctx, query, userID, id).Scan(
		&budget.ID, &budget.UserID, &budget.Name, &budget.AmountCents,
		&budget.CreatedAt, &budget.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBudgetNotFound
		}
		return nil, err
	}

	return budget, nil
}

// Update rewrites a budget's name and amount, scoped to its owner.
func (r *BudgetRepository) Update(ctx context.Context, budget *model.Budget) error {
	query := `UPDATE budgets SET name = ?, amount_cents = ? WHERE user_id = ? AND id = ?`

	result, err := r.db.ExecContext(ctx, query,
		budget.Name, budget.AmountCents, budget.UserID, budget.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBudgetNotFound
	}

	return nil
}

// Delete removes a budget, scoped to its owner.
func (r *BudgetRepository) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBudgetNotFound
	}

	return nil
}
