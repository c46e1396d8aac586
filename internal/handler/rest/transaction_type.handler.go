package hrest

import (
	"net/http"

	"ledger-service/internal/domain"
	"ledger-service/pkg/response"
)

// ============================================================
// Transaction types
// ============================================================

func (h *LedgerHandler) HandleCreateTransactionType(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTransactionTypeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, "create transaction type", err)
		return
	}

	t, err := h.typeUC.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "create transaction type", err)
		return
	}
	response.JSON(w, http.StatusCreated, t)
}

func (h *LedgerHandler) HandleListTransactionTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.typeUC.List(r.Context())
	if err != nil {
		h.writeError(w, r, "list transaction types", err)
		return
	}
	response.JSON(w, http.StatusOK, types)
}

func (h *LedgerHandler) HandleGetTransactionType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, "get transaction type", err)
		return
	}

	t, err := h.typeUC.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get transaction type", err)
		return
	}
	response.JSON(w, http.StatusOK, t)
}

func (h *LedgerHandler) HandleUpdateTransactionType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, "update transaction type", err)
		return
	}
	var req domain.UpdateTransactionTypeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, "update transaction type", err)
		return
	}

	t, err := h.typeUC.Update(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, r, "update transaction type", err)
		return
	}
	response.JSON(w, http.StatusOK, t)
}

func (h *LedgerHandler) HandleDeleteTransactionType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, "delete transaction type", err)
		return
	}

	if err := h.typeUC.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, "delete transaction type", err)
		return
	}
	response.NoContent(w)
}
