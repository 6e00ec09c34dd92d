package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mbayed/filevault/internal/common"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError translates the service-level sentinels into status codes.
// Anything unrecognized becomes a generic 500; internal detail never
// reaches the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrMalformedPayload),
		errors.Is(err, common.ErrInvalidCode),
		errors.Is(err, common.ErrCodeExpired):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
	case errors.Is(err, common.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Message: "forbidden"})
	case errors.Is(err, common.ErrNotFound), errors.Is(err, common.ErrObjectNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "not found"})
	case errors.Is(err, common.ErrEmailConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
	}
}
