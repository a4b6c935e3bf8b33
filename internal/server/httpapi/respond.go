package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/photoglow/internal/common"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

// writeServiceError maps domain sentinels onto HTTP statuses. Unrecognized
// errors become opaque 500s; the details stay in the logs.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorConflict):
		writeError(w, http.StatusConflict, "username or email already exists")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrorInvalidPlan):
		writeError(w, http.StatusBadRequest, "invalid plan selected")
	case errors.Is(err, common.ErrorInsufficientCredits):
		writeError(w, http.StatusPaymentRequired, "not enough credits")
	case errors.Is(err, common.ErrorSignatureInvalid):
		writeError(w, http.StatusBadRequest, "invalid signature")
	case errors.Is(err, common.ErrorUpstreamTimeout):
		writeError(w, http.StatusGatewayTimeout, "enhancement timed out")
	case errors.Is(err, common.ErrorUpstreamFailure):
		writeError(w, http.StatusBadGateway, "enhancement failed")
	default:
		h.logger.Error(r.Context(), "internal error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
