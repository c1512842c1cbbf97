package http

import (
	"net/http"

	"spending/internal/analytics"
	"spending/internal/log"
	"spending/internal/services"
)

const resourceBudget = "Budget"

type budgetList struct {
	Budgets []analytics.BudgetStatus `json:"budgets"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	params, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		badRequest(w, "Invalid period", err)
		return
	}

	ctx, cancel := s.queryContext(r)
	defer cancel()

	budgets, err := s.budgets.List(ctx, params.Month, params.Year, r.URL.Query().Get("category"))
	if err != nil {
		s.writeError(w, r, err, log.OpList, resourceBudget, "Failed to fetch budgets")
		return
	}
	writeJSON(w, http.StatusOK, budgetList{Budgets: budgets})
}

// handleSaveBudget creates or overwrites the budget of a category and month.
func (s *Server) handleSaveBudget(w http.ResponseWriter, r *http.Request) {
	var in services.BudgetInput
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, "Invalid request body", err)
		return
	}

	ctx, cancel := s.queryContext(r)
	defer cancel()

	b, err := s.budgets.Save(ctx, in)
	if err != nil {
		s.writeError(w, r, err, log.OpUpsert, resourceBudget, "Failed to save budget")
		return
	}
	s.invalidateSnapshots()
	log.FromContext(r.Context()).InfoContext(r.Context(), "Budget saved",
		log.FieldCategory, b.Category,
		log.FieldMonth, b.Month,
		log.FieldYear, b.Year)
	writeJSON(w, http.StatusOK, messageBody{Message: "Budget saved successfully"})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryContext(r)
	defer cancel()

	if err := s.budgets.Delete(ctx, r.URL.Query().Get("id")); err != nil {
		s.writeError(w, r, err, log.OpDelete, resourceBudget, "Failed to delete budget")
		return
	}
	s.invalidateSnapshots()
	writeJSON(w, http.StatusOK, messageBody{Message: "Budget deleted successfully"})
}
