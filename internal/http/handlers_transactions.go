package http

import (
	"net/http"

	"spending/internal/log"
	"spending/internal/services"
)

const resourceTransaction = "Transaction"

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _, err := parseIntParam(q, "page")
	if err != nil {
		badRequest(w, "Invalid pagination", err)
		return
	}
	limit, _, err := parseIntParam(q, "limit")
	if err != nil {
		badRequest(w, "Invalid pagination", err)
		return
	}

	ctx, cancel := s.queryContext(r)
	defer cancel()

	result, err := s.transactions.List(ctx, services.ListParams{
		Page:      page,
		Limit:     limit,
		Category:  q.Get("category"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	})
	if err != nil {
		s.writeError(w, r, err, log.OpList, resourceTransaction, "Failed to fetch transactions")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in services.TransactionInput
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, "Invalid request body", err)
		return
	}

	ctx, cancel := s.queryContext(r)
	defer cancel()

	t, err := s.transactions.Create(ctx, in)
	if err != nil {
		s.writeError(w, r, err, log.OpCreate, resourceTransaction, "Failed to create transaction")
		return
	}
	s.invalidateSnapshots()
	log.NewStructuredLogger(log.FromContext(r.Context())).LogTransactionWritten(r.Context(), log.OpCreate, t)
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryContext(r)
	defer cancel()

	t, err := s.transactions.Get(ctx, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err, log.OpRead, resourceTransaction, "Failed to fetch transaction")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var in services.TransactionInput
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, "Invalid request body", err)
		return
	}

	ctx, cancel := s.queryContext(r)
	defer cancel()

	t, err := s.transactions.Update(ctx, r.PathValue("id"), in)
	if err != nil {
		s.writeError(w, r, err, log.OpUpdate, resourceTransaction, "Failed to update transaction")
		return
	}
	s.invalidateSnapshots()
	log.NewStructuredLogger(log.FromContext(r.Context())).LogTransactionWritten(r.Context(), log.OpUpdate, t)
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.queryContext(r)
	defer cancel()

	if err := s.transactions.Delete(ctx, r.PathValue("id")); err != nil {
		s.writeError(w, r, err, log.OpDelete, resourceTransaction, "Failed to delete transaction")
		return
	}
	s.invalidateSnapshots()
	writeJSON(w, http.StatusOK, messageBody{Message: "Transaction deleted successfully"})
}
