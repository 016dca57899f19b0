package services

import (
	"context"

	"tally/internal/core"
	"tally/internal/store"
)

// BudgetService fronts the singleton budget record. Get never reports
// absence: the default record self-heals on first read. Set performs no
// bound checks; the client enforces non-negativity before sending.
type BudgetService struct {
	store store.BudgetStore
}

func NewBudgetService(st store.BudgetStore) *BudgetService {
	return &BudgetService{store: st}
}

func (s *BudgetService) Get(ctx context.Context) (core.Budget, error) {
	return s.store.GetBudget(ctx)
}

func (s *BudgetService) Set(ctx context.Context, amount core.Money) (core.Budget, error) {
	return s.store.SetBudget(ctx, amount)
}
