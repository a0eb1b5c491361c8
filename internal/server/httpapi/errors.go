package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/bizdesk/internal/api"
	"github.com/dmitrijs2005/bizdesk/internal/common"
)

// httpStatus maps a service error to a status code. The boolean reports
// whether the error message may be shown to the caller.
func httpStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, common.ErrConflict),
		errors.Is(err, common.ErrInvalidCredential),
		errors.Is(err, common.ErrInvalidAssertion),
		errors.Is(err, common.ErrInvalidOrExpiredCode),
		errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest, true
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, common.ErrUnauthenticated),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, true
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, true
	default:
		return http.StatusInternalServerError, false
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, public := httpStatus(err)
	if public {
		writeMessage(w, code, err.Error())
		return
	}

	msg := common.ErrorInternal.Error()
	if errors.Is(err, common.ErrUpstreamFailure) {
		msg = "failed to get a response from the AI agents"
		s.logger.Warn(r.Context(), "compose failed", "error", err)
	} else {
		s.logger.Error(r.Context(), "request failed", "error", err)
	}
	writeMessage(w, code, msg)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
