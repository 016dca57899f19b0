package http

import (
	"net/http"
	"strconv"
	"time"

	"tally/internal/core"
	applog "tally/internal/log"
)

func summaryCacheKey(year int, month time.Month) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(int(month))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := summaryCacheKey(year, month)
	if cached, found := s.summaryCache.Get(key); found {
		s.logger.DebugContext(r.Context(), "Summary cache hit",
			applog.FieldYear, year, applog.FieldMonth, int(month))
		writeJSON(w, http.StatusOK, toSummaryResponse(cached))
		return
	}

	expenses, err := s.expenses.List(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	budget, err := s.budget.Get(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	summary := core.Summarize(expenses, budget.Amount, year, month)
	s.summaryCache.Set(key, summary)

	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}
