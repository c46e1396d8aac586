package hrest

import (
	"net/http"

	"ledger-service/internal/domain"
	"ledger-service/internal/usecase"
	"ledger-service/pkg/response"

	"go.uber.org/zap"
)

type LedgerHandler struct {
	authUC   *usecase.AuthUsecase
	partyUC  *usecase.PartyUsecase
	typeUC   *usecase.TransactionTypeUsecase
	txUC     *usecase.TransactionUsecase
	ledgerUC *usecase.LedgerUsecase
	logger   *zap.Logger
}

func NewLedgerHandler(
	authUC *usecase.AuthUsecase,
	partyUC *usecase.PartyUsecase,
	typeUC *usecase.TransactionTypeUsecase,
	txUC *usecase.TransactionUsecase,
	ledgerUC *usecase.LedgerUsecase,
	logger *zap.Logger,
) *LedgerHandler {
	return &LedgerHandler{
		authUC:   authUC,
		partyUC:  partyUC,
		typeUC:   typeUC,
		txUC:     txUC,
		ledgerUC: ledgerUC,
		logger:   logger,
	}
}

// ============================================================
// Health & auth
// ============================================================

func (h *LedgerHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *LedgerHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, "login", err)
		return
	}

	tok, err := h.authUC.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "login", err)
		return
	}
	response.JSON(w, http.StatusOK, tok)
}
