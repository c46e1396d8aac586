package hrest

import (
	"net/http"

	"ledger-service/internal/domain"
	"ledger-service/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ============================================================
// Parties
// ============================================================

func (h *LedgerHandler) HandleCreateParty(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePartyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, "create party", err)
		return
	}

	p, err := h.partyUC.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "create party", err)
		return
	}
	response.JSON(w, http.StatusCreated, p)
}

func (h *LedgerHandler) HandleListParties(w http.ResponseWriter, r *http.Request) {
	parties, err := h.partyUC.List(r.Context())
	if err != nil {
		h.writeError(w, r, "list parties", err)
		return
	}
	response.JSON(w, http.StatusOK, parties)
}

func (h *LedgerHandler) HandleSearchParties(w http.ResponseWriter, r *http.Request) {
	parties, err := h.partyUC.Search(r.Context(), chi.URLParam(r, "term"))
	if err != nil {
		h.writeError(w, r, "search parties", err)
		return
	}
	response.JSON(w, http.StatusOK, parties)
}

func (h *LedgerHandler) HandleGetParty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, "get party", err)
		return
	}

	p, err := h.partyUC.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get party", err)
		return
	}
	response.JSON(w, http.StatusOK, p)
}

func (h *LedgerHandler) HandleUpdateParty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, "update party", err)
		return
	}
	var req domain.UpdatePartyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, "update party", err)
		return
	}

	p, err := h.partyUC.Update(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, r, "update party", err)
		return
	}
	response.JSON(w, http.StatusOK, p)
}

func (h *LedgerHandler) HandleDeleteParty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, "delete party", err)
		return
	}

	if err := h.partyUC.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, "delete party", err)
		return
	}
	response.NoContent(w)
}
