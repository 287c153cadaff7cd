package http

import (
	"net/http"

	"finance/internal/core"
	applog "finance/internal/log"
	"finance/internal/services"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	c, err := s.ledger.CreateCategory(r.Context(), services.CategoryInput{Name: req.Name, Type: req.Type, Color: req.Color})
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.ledger.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q, err := ParseTransactionQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	page, err := s.ledger.ListTransactions(r.Context(), q)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	tx, err := s.ledger.CreateTransaction(r.Context(), in)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	s.logChange(r, applog.OpCreate, "transaction", tx.ID, tx.Date)
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}

	tx, err := s.ledger.UpdateTransaction(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	s.logChange(r, applog.OpUpdate, "transaction", tx.ID, tx.Date)
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	p, err := ParseMonthParams(r.URL.Query(), s.ledger.CurrentPeriod())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	budgets, err := s.ledger.ListBudgets(r.Context(), p)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	b, err := s.ledger.CreateBudget(r.Context(), services.BudgetInput{
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Month:      req.Month,
		Year:       req.Year,
	})
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogLedgerChange(r.Context(), applog.OpCreate, "budget", b.ID, b.Year, b.Month)
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) logChange(r *http.Request, op, entity string, id int64, d core.Date) {
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogLedgerChange(r.Context(), op, entity, id, d.Year(), int(d.Month()))
}
