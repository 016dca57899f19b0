package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tally/internal/core"
	applog "tally/internal/log"
	"tally/internal/services"
	"tally/internal/store"
	"tally/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	st := memory.New()
	logger := applog.New(applog.Config{
		Handler: slog.NewTextHandler(io.Discard, nil),
	})
	s := NewServer("127.0.0.1:0",
		services.NewExpenseService(st, nil),
		services.NewBudgetService(st),
		nil, "*", logger)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return v
}

func createExpense(t *testing.T, s *Server, body string) expenseResponse {
	t.Helper()

	rec := doRequest(t, s, http.MethodPost, "/api/expenses", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/expenses = %d, body %s", rec.Code, rec.Body.String())
	}
	return decodeBody[expenseResponse](t, rec)
}

func TestCreateExpense(t *testing.T) {
	s := newTestServer(t)

	created := createExpense(t, s, `{"description":"Groceries","amount":50,"category":"Food"}`)

	if created.ID == "" {
		t.Error("expected an assigned id")
	}
	if created.Description != "Groceries" {
		t.Errorf("description = %q", created.Description)
	}
	if created.Amount != 50 {
		t.Errorf("amount = %v, want 50", created.Amount)
	}
	if created.Category != "Food" {
		t.Errorf("category = %q", created.Category)
	}
	if created.Date.IsZero() {
		t.Error("expected date to default to now")
	}
}

func TestCreateExpenseAmountAsString(t *testing.T) {
	s := newTestServer(t)

	created := createExpense(t, s, `{"description":"Coffee","amount":"2.50","category":"Food"}`)
	if created.Amount != 2.5 {
		t.Errorf("amount = %v, want 2.5", created.Amount)
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing description", `{"amount":10,"category":"Food"}`},
		{"missing amount", `{"description":"x","category":"Food"}`},
		{"negative amount", `{"description":"x","amount":-5,"category":"Food"}`},
		{"zero amount", `{"description":"x","amount":0,"category":"Food"}`},
		{"unknown category", `{"description":"x","amount":10,"category":"Snacks"}`},
		{"malformed amount", `{"description":"x","amount":"abc","category":"Food"}`},
		{"malformed json", `{"description":`},
		{"bad date", `{"description":"x","amount":10,"category":"Food","date":"yesterday"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/api/expenses", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
			body := decodeBody[errorBody](t, rec)
			if body.Message == "" {
				t.Error("expected a message in the error body")
			}
		})
	}
}

func TestListExpensesSortedByDateDesc(t *testing.T) {
	s := newTestServer(t)

	createExpense(t, s, `{"description":"old","amount":1,"category":"Other","date":"2025-01-05"}`)
	createExpense(t, s, `{"description":"new","amount":1,"category":"Other","date":"2025-03-05"}`)
	createExpense(t, s, `{"description":"mid","amount":1,"category":"Other","date":"2025-02-05"}`)

	rec := doRequest(t, s, http.MethodGet, "/api/expenses", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/expenses = %d", rec.Code)
	}
	list := decodeBody[[]expenseResponse](t, rec)
	if len(list) != 3 {
		t.Fatalf("got %d expenses, want 3", len(list))
	}
	wantOrder := []string{"new", "mid", "old"}
	for i, want := range wantOrder {
		if list[i].Description != want {
			t.Errorf("list[%d] = %q, want %q", i, list[i].Description, want)
		}
	}
}

func TestUpdateExpense(t *testing.T) {
	s := newTestServer(t)

	created := createExpense(t, s, `{"description":"Lunch","amount":12,"category":"Food","date":"2025-03-10"}`)

	rec := doRequest(t, s, http.MethodPut, "/api/expenses/"+created.ID,
		`{"description":"Team lunch","amount":24.5,"category":"Entertainment"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[expenseResponse](t, rec)

	if updated.Description != "Team lunch" || updated.Amount != 24.5 || updated.Category != "Entertainment" {
		t.Errorf("unexpected update result: %+v", updated)
	}
	if !updated.Date.Equal(created.Date) {
		t.Errorf("date changed on update: %v -> %v", created.Date, updated.Date)
	}
}

func TestUpdateExpenseUnknownID(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/api/expenses/nope",
		`{"description":"x","amount":1,"category":"Food"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteExpense(t *testing.T) {
	s := newTestServer(t)

	created := createExpense(t, s, `{"description":"x","amount":1,"category":"Food"}`)

	rec := doRequest(t, s, http.MethodDelete, "/api/expenses/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("DELETE = %d", rec.Code)
	}
	body := decodeBody[map[string]string](t, rec)
	if body["id"] != created.ID || body["message"] == "" {
		t.Errorf("unexpected delete body: %v", body)
	}

	// Deleting again is a 404.
	rec = doRequest(t, s, http.MethodDelete, "/api/expenses/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second DELETE = %d, want 404", rec.Code)
	}
}

func TestBudgetDefaultsToZero(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/budget", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/budget = %d", rec.Code)
	}
	budget := decodeBody[budgetResponse](t, rec)
	if budget.Identifier != "main_budget" || budget.Amount != 0 {
		t.Errorf("default budget = %+v", budget)
	}
}

func TestSetBudget(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/budget", `{"amount":1500.5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/budget = %d, body %s", rec.Code, rec.Body.String())
	}
	budget := decodeBody[budgetResponse](t, rec)
	if budget.Amount != 1500.5 {
		t.Errorf("amount = %v, want 1500.5", budget.Amount)
	}

	// Missing amount is rejected.
	rec = doRequest(t, s, http.MethodPost, "/api/budget", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("POST without amount = %d, want 400", rec.Code)
	}
}

func TestSummary(t *testing.T) {
	s := newTestServer(t)

	createExpense(t, s, `{"description":"a","amount":50,"category":"Food","date":"2025-03-01"}`)
	createExpense(t, s, `{"description":"b","amount":30,"category":"Food","date":"2025-03-15"}`)
	createExpense(t, s, `{"description":"c","amount":40,"category":"Transport","date":"2025-03-20"}`)
	createExpense(t, s, `{"description":"other month","amount":99,"category":"Other","date":"2025-04-01"}`)
	doRequest(t, s, http.MethodPost, "/api/budget", `{"amount":100}`)

	rec := doRequest(t, s, http.MethodGet, "/api/summary?year=2025&month=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/summary = %d, body %s", rec.Code, rec.Body.String())
	}
	sum := decodeBody[summaryResponse](t, rec)

	if sum.MonthlyTotal != 120 {
		t.Errorf("monthlyTotal = %v, want 120", sum.MonthlyTotal)
	}
	if sum.MonthlyCount != 3 {
		t.Errorf("monthlyCount = %d, want 3", sum.MonthlyCount)
	}
	if sum.Remaining != -20 {
		t.Errorf("remaining = %v, want -20", sum.Remaining)
	}
	if sum.Percentage != 100 {
		t.Errorf("percentage = %v, want capped 100", sum.Percentage)
	}
	if sum.TopCategory == nil || sum.TopCategory.Category != "Food" || sum.TopCategory.Amount != 80 {
		t.Errorf("topCategory = %+v, want Food 80", sum.TopCategory)
	}
	if sum.Alert == nil || sum.Alert.Level != "exceeded" || sum.Alert.Overage != 20 {
		t.Errorf("alert = %+v, want exceeded with overage 20", sum.Alert)
	}
}

func TestSummaryInvalidMonth(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/summary?year=2025&month=13", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSummaryCachePurgedOnMutation(t *testing.T) {
	s := newTestServer(t)

	createExpense(t, s, `{"description":"a","amount":10,"category":"Food","date":"2025-03-01"}`)

	rec := doRequest(t, s, http.MethodGet, "/api/summary?year=2025&month=3", "")
	first := decodeBody[summaryResponse](t, rec)
	if first.MonthlyTotal != 10 {
		t.Fatalf("monthlyTotal = %v, want 10", first.MonthlyTotal)
	}

	// A new expense must not be hidden by a stale cached summary.
	createExpense(t, s, `{"description":"b","amount":5,"category":"Food","date":"2025-03-02"}`)

	rec = doRequest(t, s, http.MethodGet, "/api/summary?year=2025&month=3", "")
	second := decodeBody[summaryResponse](t, rec)
	if second.MonthlyTotal != 15 {
		t.Errorf("monthlyTotal after mutation = %v, want 15", second.MonthlyTotal)
	}
}

func TestExportExpensesCSV(t *testing.T) {
	s := newTestServer(t)

	createExpense(t, s, `{"description":"Groceries","amount":50,"category":"Food","date":"2025-03-10"}`)

	rec := doRequest(t, s, http.MethodGet, "/api/expenses/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET export = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "Date,Description,Amount,Category") {
		t.Errorf("missing header row: %q", body)
	}
	if !strings.Contains(body, "2025-03-10,Groceries,50.00,Food") {
		t.Errorf("missing expense row: %q", body)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(t, s, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/expenses", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

// unavailableStore fails every operation as if the database were gone.
type unavailableStore struct{}

func (unavailableStore) CreateExpense(context.Context, core.Expense) (core.Expense, error) {
	return core.Expense{}, fmt.Errorf("create expense: %w", store.ErrUnavailable)
}

func (unavailableStore) ListExpenses(context.Context) ([]core.Expense, error) {
	return nil, fmt.Errorf("list expenses: %w", store.ErrUnavailable)
}

func (unavailableStore) GetExpense(context.Context, string) (core.Expense, error) {
	return core.Expense{}, fmt.Errorf("get expense: %w", store.ErrUnavailable)
}

func (unavailableStore) UpdateExpense(context.Context, string, core.ExpenseUpdate) (core.Expense, error) {
	return core.Expense{}, fmt.Errorf("update expense: %w", store.ErrUnavailable)
}

func (unavailableStore) DeleteExpense(context.Context, string) error {
	return fmt.Errorf("delete expense: %w", store.ErrUnavailable)
}

func (unavailableStore) GetBudget(context.Context) (core.Budget, error) {
	return core.Budget{}, fmt.Errorf("get budget: %w", store.ErrUnavailable)
}

func (unavailableStore) SetBudget(context.Context, core.Money) (core.Budget, error) {
	return core.Budget{}, fmt.Errorf("set budget: %w", store.ErrUnavailable)
}

func TestStorageUnavailableMapsTo503(t *testing.T) {
	st := unavailableStore{}
	logger := applog.New(applog.Config{
		Handler: slog.NewTextHandler(io.Discard, nil),
	})
	s := NewServer("127.0.0.1:0",
		services.NewExpenseService(st, nil),
		services.NewBudgetService(st),
		nil, "*", logger)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	cases := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/expenses", ""},
		{http.MethodPost, "/api/expenses", `{"description":"x","amount":1,"category":"Food"}`},
		{http.MethodDelete, "/api/expenses/some-id", ""},
		{http.MethodGet, "/api/budget", ""},
		{http.MethodPost, "/api/budget", `{"amount":10}`},
		{http.MethodGet, "/api/summary", ""},
	}
	for _, tc := range cases {
		rec := doRequest(t, s, tc.method, tc.path, tc.body)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s = %d, want 503", tc.method, tc.path, rec.Code)
		}
		body := decodeBody[errorBody](t, rec)
		if body.Message == "" {
			t.Errorf("%s %s: expected a message in the error body", tc.method, tc.path)
		}
	}
}
