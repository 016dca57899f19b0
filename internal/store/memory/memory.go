// Package memory implements the store ports in process memory. It backs
// the "memory" data backend and the HTTP handler tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"tally/internal/core"
	"tally/internal/store"
)

type Store struct {
	mu       sync.RWMutex
	expenses map[string]core.Expense
	seq      map[string]int // creation order, tie-break for equal dates
	nextSeq  int
	budget   *core.Budget
}

func New() *Store {
	return &Store{
		expenses: make(map[string]core.Expense),
		seq:      make(map[string]int),
	}
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = uuid.NewString()
	s.expenses[e.ID] = e
	s.seq[e.ID] = s.nextSeq
	s.nextSeq++
	return e, nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return s.seq[out[i].ID] > s.seq[out[j].ID]
	})
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, id string) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, store.ErrNotFound
	}
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, id string, upd core.ExpenseUpdate) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, store.ErrNotFound
	}
	e.Description = upd.Description
	e.Amount = upd.Amount
	e.Category = upd.Category
	s.expenses[id] = e
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.expenses, id)
	delete(s.seq, id)
	return nil
}

func (s *Store) GetBudget(_ context.Context) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.budget == nil {
		s.budget = &core.Budget{Identifier: core.BudgetIdentifier}
	}
	return *s.budget, nil
}

func (s *Store) SetBudget(_ context.Context, amount core.Money) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.budget = &core.Budget{Identifier: core.BudgetIdentifier, Amount: amount}
	return *s.budget, nil
}

// Len reports the number of stored expenses. Test helper.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expenses)
}
