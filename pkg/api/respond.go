package api

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"postboard/pkg/apperr"
)

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated, apperr.KindAuth:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (api *API) writeJSON(w http.ResponseWriter, r *http.Request, handler string, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("[%s][%s] failed to encode response data: %v", handler, shorten(GetRequestID(r.Context())), err)
	}
}

// writeError maps expected user-facing errors to their status and payload.
// Everything else is an internal failure: logged in full, surfaced as an
// opaque 500.
func (api *API) writeError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	sID := shorten(GetRequestID(r.Context()))

	if e := apperr.From(err); e != nil {
		log.Debugf("[%s][%s] %v", handler, sID, err)
		api.writeJSON(w, r, handler, statusOf(e.Kind), ErrorResponse{Error: e.Message, Fields: e.Fields})
		return
	}

	log.Errorf("[%s][%s] %v", handler, sID, err)
	api.writeJSON(w, r, handler, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
