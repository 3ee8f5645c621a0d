package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/erazemk/skener/internal/model"
	"github.com/erazemk/skener/internal/store"
)

// TransactionsHandler serves submitted transactions.
type TransactionsHandler struct {
	DB *sql.DB
}

// List handles GET /api/transactions.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	txs, err := store.ListTransactions(r.Context(), h.DB, r.URL.Query().Get("type"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	jsonResponse(w, http.StatusOK, txs)
}

// Get handles GET /api/transactions/{id}.
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	tx, err := store.GetTransaction(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get transaction")
		return
	}
	if tx == nil {
		jsonError(w, http.StatusNotFound, "transaction not found")
		return
	}
	jsonResponse(w, http.StatusOK, tx)
}

// Holdings handles GET /api/holdings, optionally filtered by ?product=.
func (h *TransactionsHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	holdings, err := store.ListHoldings(r.Context(), h.DB, r.URL.Query().Get("product"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list holdings")
		return
	}
	if holdings == nil {
		holdings = []model.Holding{}
	}
	jsonResponse(w, http.StatusOK, holdings)
}
