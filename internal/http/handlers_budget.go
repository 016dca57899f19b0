package http

import (
	"encoding/json"
	"net/http"

	applog "tally/internal/log"
)

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	budget, err := s.budget.Get(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(budget))
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var payload budgetPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !payload.Amount.set {
		writeError(w, http.StatusBadRequest, "Amount is required")
		return
	}

	budget, err := s.budget.Set(r.Context(), payload.Amount.Money())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.summaryCache.Purge()
	s.logger.InfoContext(r.Context(), "Budget updated",
		applog.FieldOperation, applog.OpUpdate,
		"amount_cents", budget.Amount.Cents)
	writeJSON(w, http.StatusOK, toBudgetResponse(budget))
}
