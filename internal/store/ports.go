// Package store declares the persistence ports the services depend on.
package store

import (
	"context"
	"errors"

	"tally/internal/core"
)

var (
	// ErrNotFound signals that an identifier does not resolve to an
	// existing record.
	ErrNotFound = errors.New("record not found")

	// ErrUnavailable signals that the underlying persistence is
	// unreachable. No degraded-storage mode exists; the request fails.
	ErrUnavailable = errors.New("storage unavailable")
)

type (
	// ExpenseStore persists expense records. Implementations assign the
	// identifier on creation; identifiers are unique and never reused.
	ExpenseStore interface {
		// CreateExpense persists the expense and returns it with its
		// store-assigned identifier.
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)

		// ListExpenses returns every expense ordered by date descending.
		ListExpenses(ctx context.Context) ([]core.Expense, error)

		// GetExpense returns one expense or ErrNotFound.
		GetExpense(ctx context.Context, id string) (core.Expense, error)

		// UpdateExpense overwrites the mutable fields of an existing
		// expense, leaving the date untouched, or returns ErrNotFound.
		UpdateExpense(ctx context.Context, id string, upd core.ExpenseUpdate) (core.Expense, error)

		// DeleteExpense removes the expense permanently or returns
		// ErrNotFound. There is no soft delete.
		DeleteExpense(ctx context.Context, id string) error
	}

	// BudgetStore persists the singleton budget record.
	BudgetStore interface {
		// GetBudget returns the budget, creating it with amount 0 when
		// absent. It never returns ErrNotFound.
		GetBudget(ctx context.Context) (core.Budget, error)

		// SetBudget upserts the singleton with the given amount and
		// returns the resulting record. Last write wins.
		SetBudget(ctx context.Context, amount core.Money) (core.Budget, error)
	}
)
