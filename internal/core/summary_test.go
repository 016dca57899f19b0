package core

import (
	"testing"
	"time"
)

func expense(desc string, cents int64, cat Category, date time.Time) Expense {
	return Expense{Description: desc, Amount: Money{Cents: cents}, Category: cat, Date: date}
}

func TestSummarizeOverBudget(t *testing.T) {
	// list = [{Food, 50}, {Food, 30}, {Transport, 40}], budget = 100
	date := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	expenses := []Expense{
		expense("groceries", 5000, Food, date),
		expense("snacks", 3000, Food, date.Add(time.Hour)),
		expense("bus pass", 4000, Transport, date.Add(2*time.Hour)),
	}

	s := Summarize(expenses, Money{Cents: 10000}, 2026, time.March)

	if s.MonthlyTotal.Cents != 12000 {
		t.Fatalf("monthly total: got %d, want 12000", s.MonthlyTotal.Cents)
	}
	if s.Remaining.Cents != -2000 {
		t.Fatalf("remaining: got %d, want -2000", s.Remaining.Cents)
	}
	if s.Percentage != 100 {
		t.Fatalf("percentage: got %v, want 100 (capped)", s.Percentage)
	}
	if s.TopCategory == nil || s.TopCategory.Category != Food || s.TopCategory.Amount.Cents != 8000 {
		t.Fatalf("top category: got %+v, want Food 8000", s.TopCategory)
	}

	alert := s.BudgetAlert()
	if alert == nil || alert.Level != AlertExceeded {
		t.Fatalf("expected exceeded alert, got %+v", alert)
	}
	if alert.Overage.Cents != 2000 {
		t.Fatalf("overage: got %d, want 2000", alert.Overage.Cents)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, Money{}, 2026, time.January)

	if s.Total.Cents != 0 || s.Count != 0 {
		t.Fatalf("totals: got %+v, want zero", s)
	}
	if s.Average.Cents != 0 {
		t.Fatalf("average of empty list must be 0, got %d", s.Average.Cents)
	}
	if s.Percentage != 0 {
		t.Fatalf("percentage with zero budget must be 0, got %v", s.Percentage)
	}
	if s.TopCategory != nil {
		t.Fatalf("top category must be undefined for empty month, got %+v", s.TopCategory)
	}
	if s.BudgetAlert() != nil {
		t.Fatalf("no alert expected, got %+v", s.BudgetAlert())
	}
}

func TestSummarizeOtherMonthExcluded(t *testing.T) {
	march := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	april := time.Date(2026, time.April, 5, 0, 0, 0, 0, time.UTC)
	lastMarch := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	expenses := []Expense{
		expense("in month", 1000, Food, march),
		expense("next month", 2000, Transport, april),
		expense("same month last year", 4000, Shopping, lastMarch),
	}

	s := Summarize(expenses, Money{Cents: 5000}, 2026, time.March)

	if s.Total.Cents != 7000 {
		t.Fatalf("total must include every expense: got %d, want 7000", s.Total.Cents)
	}
	if s.MonthlyTotal.Cents != 1000 || s.MonthlyCount != 1 {
		t.Fatalf("monthly subset: got %d/%d, want 1000/1", s.MonthlyTotal.Cents, s.MonthlyCount)
	}
	if len(s.CategoryTotals) != 1 || s.CategoryTotals[0].Category != Food {
		t.Fatalf("category totals must cover only the month: %+v", s.CategoryTotals)
	}
}

func TestSummarizeAverage(t *testing.T) {
	date := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	expenses := []Expense{
		expense("a", 1000, Food, date),
		expense("b", 3000, Food, date),
	}
	s := Summarize(expenses, Money{}, 2026, time.June)
	if s.Average.Cents != 2000 {
		t.Fatalf("average: got %d, want 2000", s.Average.Cents)
	}
	if s.Total.Cents != 4000 {
		t.Fatalf("total: got %d, want 4000", s.Total.Cents)
	}
}

func TestSummarizeAverageRoundsHalfUp(t *testing.T) {
	date := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		cents []int64
		want  int64
	}{
		{"3 cents over 2", []int64{1, 2}, 2},
		{"5 cents over 2", []int64{2, 3}, 3},
		{"4 cents over 3 rounds down", []int64{1, 1, 2}, 1},
		{"5 cents over 3 rounds up", []int64{1, 2, 2}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var expenses []Expense
			for _, c := range tc.cents {
				expenses = append(expenses, expense("e", c, Food, date))
			}
			s := Summarize(expenses, Money{}, 2026, time.June)
			if s.Average.Cents != tc.want {
				t.Fatalf("average: got %d, want %d", s.Average.Cents, tc.want)
			}
		})
	}
}

func TestSummarizeTotalIsOrderIndependent(t *testing.T) {
	date := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	a := []Expense{
		expense("a", 100, Food, date),
		expense("b", 250, Transport, date),
		expense("c", 999, Other, date),
	}
	b := []Expense{a[2], a[0], a[1]}

	sa := Summarize(a, Money{Cents: 1000}, 2026, time.June)
	sb := Summarize(b, Money{Cents: 1000}, 2026, time.June)
	if sa.Total != sb.Total || sa.MonthlyTotal != sb.MonthlyTotal || sa.Remaining != sb.Remaining {
		t.Fatalf("totals must not depend on list order: %+v vs %+v", sa, sb)
	}
}

func TestTopCategoryTieBreak(t *testing.T) {
	date := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	expenses := []Expense{
		expense("a", 500, Transport, date),
		expense("b", 500, Food, date),
	}
	s := Summarize(expenses, Money{}, 2026, time.June)
	if s.TopCategory == nil || s.TopCategory.Category != Transport {
		t.Fatalf("tie must keep the first-encountered category, got %+v", s.TopCategory)
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		budget, monthly int64
		want            float64
	}{
		{0, 5000, 0},
		{0, 0, 0},
		{10000, 0, 0},
		{10000, 5000, 50},
		{10000, 10000, 100},
		{10000, 12000, 100}, // capped
		{10000, 7500, 75},
	}
	for _, tc := range cases {
		got := Percentage(Money{Cents: tc.budget}, Money{Cents: tc.monthly})
		if got != tc.want {
			t.Fatalf("percentage(%d, %d): got %v, want %v", tc.budget, tc.monthly, got, tc.want)
		}
	}
}

func TestBudgetAlertNear(t *testing.T) {
	date := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	s := Summarize([]Expense{expense("a", 7500, Food, date)}, Money{Cents: 10000}, 2026, time.June)
	alert := s.BudgetAlert()
	if alert == nil || alert.Level != AlertNear {
		t.Fatalf("expected near-budget alert at 75%%, got %+v", alert)
	}

	s = Summarize([]Expense{expense("a", 7400, Food, date)}, Money{Cents: 10000}, 2026, time.June)
	if s.BudgetAlert() != nil {
		t.Fatalf("no alert expected below 75%%, got %+v", s.BudgetAlert())
	}
}
