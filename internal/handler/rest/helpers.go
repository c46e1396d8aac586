package hrest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ledger-service/internal/domain"
	xerrors "ledger-service/pkg/errors"
	"ledger-service/pkg/response"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", xerrors.ErrInvalidRequest, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", xerrors.ErrInvalidRequest, name)
	}
	return id, nil
}

func queryDate(r *http.Request, name string) (*domain.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", xerrors.ErrInvalidRequest, name, err)
	}
	return &d, nil
}

// parseFilter reads party_filter, date_start and date_end.
func parseFilter(r *http.Request) (domain.TransactionFilter, error) {
	f := domain.TransactionFilter{PartyFilter: r.URL.Query().Get("party_filter")}

	var err error
	if f.DateStart, err = queryDate(r, "date_start"); err != nil {
		return f, err
	}
	if f.DateEnd, err = queryDate(r, "date_end"); err != nil {
		return f, err
	}
	return f, nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, xerrors.ErrInvalidRequest),
		errors.Is(err, xerrors.ErrInvalidInput),
		errors.Is(err, xerrors.ErrNonPositiveAmount):
		return http.StatusBadRequest
	case errors.Is(err, xerrors.ErrNotFound),
		errors.Is(err, xerrors.ErrReferenceNotFound):
		return http.StatusNotFound
	case errors.Is(err, xerrors.ErrConflict),
		errors.Is(err, xerrors.ErrSerialExhausted):
		return http.StatusConflict
	case errors.Is(err, xerrors.ErrInvalidCredentials),
		errors.Is(err, xerrors.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (h *LedgerHandler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(op+" failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		response.Error(w, status, xerrors.ErrInternalServer.Error())
		return
	}
	response.Error(w, status, err.Error())
}
