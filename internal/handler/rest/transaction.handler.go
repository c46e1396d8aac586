package hrest

import (
	"net/http"

	"ledger-service/internal/domain"
	"ledger-service/pkg/response"
)

// ============================================================
// Transactions
// ============================================================

func (h *LedgerHandler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, "create transaction", err)
		return
	}

	tx, err := h.txUC.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "create transaction", err)
		return
	}
	response.JSON(w, http.StatusCreated, tx)
}

// HandleListTransactions supports party_filter, date_start and date_end.
func (h *LedgerHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.writeError(w, r, "list transactions", err)
		return
	}

	txs, err := h.txUC.List(r.Context(), f)
	if err != nil {
		h.writeError(w, r, "list transactions", err)
		return
	}
	response.JSON(w, http.StatusOK, txs)
}

// HandleOutstandingTotal computes the filtered balance on demand. Only
// party_filter and date_end apply; filtered totals are never pushed.
func (h *LedgerHandler) HandleOutstandingTotal(w http.ResponseWriter, r *http.Request) {
	cutoff, err := queryDate(r, "date_end")
	if err != nil {
		h.writeError(w, r, "outstanding total", err)
		return
	}

	out, err := h.ledgerUC.ComputeOutstanding(r.Context(), r.URL.Query().Get("party_filter"), cutoff)
	if err != nil {
		h.writeError(w, r, "outstanding total", err)
		return
	}
	response.JSON(w, http.StatusOK, out)
}

func (h *LedgerHandler) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, "get transaction", err)
		return
	}

	tx, err := h.txUC.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get transaction", err)
		return
	}
	response.JSON(w, http.StatusOK, tx)
}

func (h *LedgerHandler) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, "update transaction", err)
		return
	}
	var req domain.UpdateTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, "update transaction", err)
		return
	}

	tx, err := h.txUC.Update(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, r, "update transaction", err)
		return
	}
	response.JSON(w, http.StatusOK, tx)
}

func (h *LedgerHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, "delete transaction", err)
		return
	}

	if err := h.txUC.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, "delete transaction", err)
		return
	}
	response.NoContent(w)
}
