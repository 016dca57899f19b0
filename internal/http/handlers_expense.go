package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"tally/internal/core"
	"tally/internal/export"
	applog "tally/internal/log"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.expenses.List(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponses(expenses))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var payload expensePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	date, err := parseExpenseDate(payload.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.expenses.Create(r.Context(), core.Expense{
		Description: sanitizeInput(payload.Description),
		Amount:      payload.Amount.Money(),
		Category:    core.Category(payload.Category),
		Date:        date,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.summaryCache.Purge()
	s.logger.InfoContext(r.Context(), "Expense created",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldExpenseID, created.ID,
		applog.FieldCategory, created.Category.String())
	writeJSON(w, http.StatusCreated, toExpenseResponse(created))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var payload expensePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := s.expenses.Update(r.Context(), id, core.ExpenseUpdate{
		Description: sanitizeInput(payload.Description),
		Amount:      payload.Amount.Money(),
		Category:    core.Category(payload.Category),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.summaryCache.Purge()
	s.logger.InfoContext(r.Context(), "Expense updated",
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldExpenseID, id)
	writeJSON(w, http.StatusOK, toExpenseResponse(updated))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.expenses.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.summaryCache.Purge()
	s.logger.InfoContext(r.Context(), "Expense deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldExpenseID, id)
	writeJSON(w, http.StatusOK, map[string]string{
		"id":      id,
		"message": "Expense deleted",
	})
}

func (s *Server) handleExportExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.expenses.List(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	// Render to a buffer first so a write error cannot leave a half
	// sent attachment with a 200 status.
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, expenses); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())

	s.logger.InfoContext(r.Context(), "Expenses exported",
		applog.FieldOperation, applog.OpExport,
		"count", len(expenses))
}
