package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Utilities     Category = "Utilities"
	Entertainment Category = "Entertainment"
	Healthcare    Category = "Healthcare"
	Shopping      Category = "Shopping"
	Other         Category = "Other"
)

// BudgetIdentifier keys the single budget record for the whole system.
const BudgetIdentifier = "main_budget"

type (
	Category string

	Money struct {
		Cents int64
	}

	Expense struct {
		ID          string
		Description string
		Amount      Money
		Category    Category
		Date        time.Time
	}

	// ExpenseUpdate carries the mutable fields of an expense.
	// The date is immutable after creation.
	ExpenseUpdate struct {
		Description string
		Amount      Money
		Category    Category
	}

	Budget struct {
		Identifier string
		Amount     Money
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrZeroDate         = errors.New("date cannot be zero")
)

// Categories returns the fixed set of expense categories in display order.
func Categories() []Category {
	return []Category{Food, Transport, Utilities, Entertainment, Healthcare, Shopping, Other}
}

func (c Category) Valid() bool {
	switch c {
	case Food, Transport, Utilities, Entertainment, Healthcare, Shopping, Other:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}
