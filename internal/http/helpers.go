package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tally/internal/core"
	applog "tally/internal/log"
	"tally/internal/services"
	"tally/internal/store"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Message: message})
}

// writeDomainError maps service and store errors onto the response
// taxonomy: 400 validation, 404 unknown id, 503 storage trouble, 500
// for anything else.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Expense not found")
	case errors.Is(err, store.ErrUnavailable):
		s.logger.ErrorContext(r.Context(), "Storage unavailable", applog.FieldError, err)
		writeError(w, http.StatusServiceUnavailable, "Storage unavailable, try again later")
	default:
		s.logger.ErrorContext(r.Context(), "Request failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// amountValue accepts a JSON number or a decimal string for money
// amounts, so both {"amount": 12.5} and {"amount": "12.50"} parse.
type amountValue struct {
	cents int64
	set   bool
}

func (a *amountValue) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		raw = strings.TrimSpace(str)
	}

	cents, err := core.ParseDecimalToCents(raw)
	if err != nil {
		return fmt.Errorf("invalid amount %q", raw)
	}
	a.cents = cents
	a.set = true
	return nil
}

// Money returns the parsed amount; an absent field yields zero cents,
// which domain validation then rejects.
func (a amountValue) Money() core.Money {
	return core.Money{Cents: a.cents}
}

// expensePayload is the request body for create and update.
type expensePayload struct {
	Description string      `json:"description"`
	Amount      amountValue `json:"amount"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
}

// parseExpenseDate accepts a calendar day or a full RFC 3339 timestamp.
// An empty string yields the zero time, which creation defaults to now.
func parseExpenseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t.UTC(), nil
}

// expenseResponse is the wire shape of one expense. Amounts travel as
// decimal numbers, dates as RFC 3339 timestamps.
type expenseResponse struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount.Float(),
		Category:    e.Category.String(),
		Date:        e.Date.UTC(),
	}
}

func toExpenseResponses(expenses []core.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	return out
}

// budgetPayload is the request body for setting the budget.
type budgetPayload struct {
	Amount amountValue `json:"amount"`
}

type budgetResponse struct {
	Identifier string  `json:"identifier"`
	Amount     float64 `json:"amount"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		Identifier: b.Identifier,
		Amount:     b.Amount.Float(),
	}
}

type categoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type alertResponse struct {
	Level   string  `json:"level"`
	Overage float64 `json:"overage,omitempty"`
}

type summaryResponse struct {
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	Total          float64         `json:"total"`
	Count          int             `json:"count"`
	Average        float64         `json:"average"`
	MonthlyTotal   float64         `json:"monthlyTotal"`
	MonthlyCount   int             `json:"monthlyCount"`
	CategoryTotals []categoryTotal `json:"categoryTotals"`
	TopCategory    *categoryTotal  `json:"topCategory,omitempty"`
	Budget         float64         `json:"budget"`
	Remaining      float64         `json:"remaining"`
	Percentage     float64         `json:"percentage"`
	Alert          *alertResponse  `json:"alert,omitempty"`
}

func toSummaryResponse(s core.Summary) summaryResponse {
	resp := summaryResponse{
		Year:           s.Year,
		Month:          int(s.Month),
		Total:          s.Total.Float(),
		Count:          s.Count,
		Average:        s.Average.Float(),
		MonthlyTotal:   s.MonthlyTotal.Float(),
		MonthlyCount:   s.MonthlyCount,
		CategoryTotals: make([]categoryTotal, 0, len(s.CategoryTotals)),
		Budget:         s.Budget.Float(),
		Remaining:      s.Remaining.Float(),
		Percentage:     s.Percentage,
	}
	for _, ct := range s.CategoryTotals {
		resp.CategoryTotals = append(resp.CategoryTotals, categoryTotal{
			Category: ct.Category.String(),
			Amount:   ct.Amount.Float(),
		})
	}
	if s.TopCategory != nil {
		resp.TopCategory = &categoryTotal{
			Category: s.TopCategory.Category.String(),
			Amount:   s.TopCategory.Amount.Float(),
		}
	}
	if alert := s.BudgetAlert(); alert != nil {
		resp.Alert = &alertResponse{
			Level:   string(alert.Level),
			Overage: alert.Overage.Float(),
		}
	}
	return resp
}

// parseYearMonth extracts year and month from query parameters,
// defaulting to the current UTC month.
func parseYearMonth(r *http.Request) (int, time.Month, error) {
	now := time.Now().UTC()
	year := now.Year()
	month := now.Month()

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 {
			return 0, 0, fmt.Errorf("invalid year %q", v)
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, fmt.Errorf("invalid month %q", v)
		}
		month = time.Month(m)
	}

	return year, month, nil
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
