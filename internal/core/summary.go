package core

import "time"

// CategoryAmount is an amount aggregated under one category.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// AlertLevel classifies the budget alert derived from a summary.
type AlertLevel string

const (
	AlertExceeded AlertLevel = "exceeded"
	AlertNear     AlertLevel = "near"
)

// Alert is the derived budget warning. It is never persisted; it is
// recomputed from (expenses, budget, month) on every evaluation.
type Alert struct {
	Level   AlertLevel
	Overage Money // absolute overage, set only for AlertExceeded
}

// Summary is the full set of aggregates for an expense list, a budget
// amount and a selected calendar month.
type Summary struct {
	Year  int
	Month time.Month

	Total   Money
	Count   int
	Average Money

	MonthlyTotal Money
	MonthlyCount int

	// CategoryTotals covers only the selected month, in
	// first-encountered order of the input list.
	CategoryTotals []CategoryAmount
	TopCategory    *CategoryAmount

	Budget     Money
	Remaining  Money
	Percentage float64
}

// Summarize computes every aggregate in one pass over the list. It is a
// pure function: same inputs, same outputs, no hidden state.
func Summarize(expenses []Expense, budget Money, year int, month time.Month) Summary {
	s := Summary{
		Year:   year,
		Month:  month,
		Count:  len(expenses),
		Budget: budget,
	}

	index := make(map[Category]int)
	for _, e := range expenses {
		s.Total.Cents += e.Amount.Cents
		if !InMonth(e, year, month) {
			continue
		}
		s.MonthlyTotal.Cents += e.Amount.Cents
		s.MonthlyCount++
		i, ok := index[e.Category]
		if !ok {
			i = len(s.CategoryTotals)
			index[e.Category] = i
			s.CategoryTotals = append(s.CategoryTotals, CategoryAmount{Category: e.Category})
		}
		s.CategoryTotals[i].Amount.Cents += e.Amount.Cents
	}

	if s.Count > 0 {
		// Half-up division: amounts are positive, so the cent totals are
		// non-negative and the bias term is safe.
		n := int64(s.Count)
		s.Average = Money{Cents: (s.Total.Cents + n/2) / n}
	}

	// Ties keep the first-encountered category: later entries must be
	// strictly greater to take over.
	for i := range s.CategoryTotals {
		if s.TopCategory == nil || s.CategoryTotals[i].Amount.Cents > s.TopCategory.Amount.Cents {
			top := s.CategoryTotals[i]
			s.TopCategory = &top
		}
	}

	s.Remaining = Money{Cents: budget.Cents - s.MonthlyTotal.Cents}
	s.Percentage = Percentage(budget, s.MonthlyTotal)

	return s
}

// InMonth reports whether the expense falls in the given calendar year
// and month. Year and month are matched independently, not as a range.
func InMonth(e Expense, year int, month time.Month) bool {
	d := e.Date.UTC()
	return d.Year() == year && d.Month() == month
}

// Percentage returns how much of the budget the monthly total consumes,
// capped at 100 for display. A zero budget yields 0; the signed overage
// is carried by Remaining instead.
func Percentage(budget, monthlyTotal Money) float64 {
	if budget.Cents <= 0 {
		return 0
	}
	p := float64(monthlyTotal.Cents) / float64(budget.Cents) * 100
	if p > 100 {
		return 100
	}
	return p
}

// BudgetAlert derives the alert for a summary: exceeded when spending
// passed the budget, a caution at 75% or more, otherwise nil.
func (s Summary) BudgetAlert() *Alert {
	if s.Remaining.Cents < 0 {
		return &Alert{Level: AlertExceeded, Overage: Money{Cents: -s.Remaining.Cents}}
	}
	if s.Budget.Cents > 0 && s.Percentage >= 75 {
		return &Alert{Level: AlertNear}
	}
	return nil
}
