package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"spending/internal/analytics"
	"spending/internal/log"
	"spending/internal/records"
	"spending/internal/services"
)

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string, err error) {
	body := errorBody{Error: msg}
	if err != nil {
		body.Details = err.Error()
	}
	writeJSON(w, http.StatusBadRequest, body)
}

// errorStatus maps a service or engine error to a status and body.
// resource names the entity for 404s; fallback is the 500 message.
func errorStatus(err error, resource, fallback string) (int, errorBody) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, errorBody{Error: "Validation failed", Details: verr.Err.Error()}
	case errors.Is(err, analytics.ErrInvalidPeriod):
		return http.StatusBadRequest, errorBody{Error: "Invalid period", Details: err.Error()}
	case errors.Is(err, services.ErrMissingID):
		return http.StatusBadRequest, errorBody{Error: "Missing " + strings.ToLower(resource) + " id"}
	case errors.Is(err, records.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: resource + " not found"}
	case errors.Is(err, analytics.ErrDataUnavailable):
		return http.StatusServiceUnavailable, errorBody{Error: fallback}
	default:
		return http.StatusInternalServerError, errorBody{Error: fallback}
	}
}

// writeError answers with the mapped status and logs anything that is not
// the caller's fault.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, op, resource, fallback string) {
	status, body := errorStatus(err, resource, fallback)
	if status >= http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), fallback, err, op, nil)
	}
	writeJSON(w, status, body)
}
