package service

import (
	"context"
	"errors"

	"github.com/centsible/centsible-go/internal/model"
	"github.com/centsible/centsible-go/internal/repository"
)

var (
	ErrBudgetNameRequired = errors.New("name is required")
	ErrBudgetAmountRange  = errors.New("amount_cents must be non-negative")
	ErrBudgetNotFound     = errors.New("budget not found")
)

// BudgetStore is the persistence contract for budgets.
type BudgetStore interface {
	Create(ctx context.Context, budget *model.Budget) error
	ListByUser(ctx context.Context, userID int64) ([]model.Budget, error)
	GetForUser(ctx context.Context, userID, id int64) (*model.Budget, error)
	Update(ctx context.Context, budget *model.Budget) error
	Delete(ctx context.Context, userID, id int64) error
}

// BudgetService handles budget business logic.
type BudgetService struct {
	budgets BudgetStore
}

// NewBudgetService creates a new BudgetService.
func NewBudgetService(budgets BudgetStore) *BudgetService {
	return &BudgetService{budgets: budgets}
}

// Create creates a new budget for a user.
func (s *BudgetService) Create(ctx context.Context, userID int64, req model.BudgetRequest) (model.BudgetResponse, error) {
	if err := validateBudget(req); err != nil {
		return model.BudgetResponse{}, err
	}

	budget := &model.Budget{
		UserID:      userID,
		Name:        req.Name,
		AmountCents: req.AmountCents,
	}
	if err := s.budgets.Create(ctx, budget); err != nil {
		return model.BudgetResponse{}, err
	}

	return budgetResponse(budget), nil
}

// List returns all of a user's budgets.
func (s *BudgetService) List(ctx context.Context, userID int64) ([]model.BudgetResponse, error) {
	budgets, err := s.budgets.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]model.BudgetResponse, 0, len(budgets))
	for i := range budgets {
		responses = append(responses, budgetResponse(&budgets[i]))
	}
	return responses, nil
}

// Update rewrites an existing budget owned by the user.
func (s *BudgetService) Update(ctx context.Context, userID, id int64, req model.BudgetRequest) (model.BudgetResponse, error) {
	if err := validateBudget(req); err != nil {
		return model.BudgetResponse{}, err
	}

	budget, err := s.budgets.GetForUser(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrBudgetNotFound) {
			return model.BudgetResponse{}, ErrBudgetNotFound
		}
		return model.BudgetResponse{}, err
	}

	budget.Name = req.Name
	budget.AmountCents = req.AmountCents
	if err := s.budgets.Update(ctx, budget); err != nil {
		return model.BudgetResponse{}, err
	}

	return budgetResponse(budget), nil
}

// Delete removes a budget owned by the user.
func (s *BudgetService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.budgets.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrBudgetNotFound) {
			return ErrBudgetNotFound
		}
		return err
	}
	return nil
}

func validateBudget(req model.BudgetRequest) error {
	if req.Name == "" {
		return ErrBudgetNameRequired
	}
	if req.AmountCents < 0 {
		return ErrBudgetAmountRange
	}
	return nil
}

func budgetResponse(b *model.Budget) model.BudgetResponse {
	return model.BudgetResponse{
		ID:          b.ID,
		Name:        b.Name,
		AmountCents: b.AmountCents,
		UpdatedAt:   b.UpdatedAt,
	}
}
