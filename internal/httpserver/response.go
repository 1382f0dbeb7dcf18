package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	addressdomain "storeadmin/backend/internal/domain/address"
	authdomain "storeadmin/backend/internal/domain/auth"
	"storeadmin/backend/internal/logging"
)

const maxBodyBytes = 1 << 20

// errorResponse is the single error body shape. Errors is only set for 422.
type errorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// decodeJSON reads the request body into dst. An empty body leaves dst at its
// zero value so the field rules report what is missing.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

// writeServiceError maps domain errors onto status codes. Anything not
// recognised is logged and reported as a bare 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *authdomain.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Message: vErr.Error(), Errors: vErr.Fields})
	case errors.Is(err, authdomain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, authdomain.ErrInvalidCredentials.Error())
	case errors.Is(err, authdomain.ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, unauthenticatedMessage)
	case errors.Is(err, authdomain.ErrForbidden):
		writeError(w, http.StatusForbidden, "This action is unauthorized.")
	case errors.Is(err, authdomain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found.")
	case errors.Is(err, addressdomain.ErrAddressNotFound):
		writeError(w, http.StatusNotFound, "Address not found.")
	default:
		logging.LogError(r.Context(), s.logger, "request failed", err)
		writeError(w, http.StatusInternalServerError, "Server Error")
	}
}

func writeNotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "Not Found")
}

func writeMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
