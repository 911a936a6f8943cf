package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MATTHEWPURBA/management-system/internal/service"
)

// Every response uses the same envelope: {success, message, data}.

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// writeServiceError translates the service error taxonomy into transport
// responses. Unknown errors surface as a generic 500 without detail.
func writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		writeFailure(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	switch svcErr.Kind {
	case service.KindValidation:
		writeJSON(w, http.StatusUnprocessableEntity, envelope{
			Success: false,
			Message: svcErr.Message,
			Errors:  svcErr.Fields,
		})
	case service.KindAuthentication:
		writeFailure(w, http.StatusUnauthorized, svcErr.Message)
	case service.KindInactiveAccount, service.KindAuthorization:
		writeFailure(w, http.StatusForbidden, svcErr.Message)
	case service.KindNotFound:
		writeFailure(w, http.StatusNotFound, svcErr.Message)
	case service.KindIntegrity:
		writeJSON(w, http.StatusUnprocessableEntity, envelope{
			Success: false,
			Message: svcErr.Message,
		})
	default:
		writeFailure(w, http.StatusInternalServerError, "Something went wrong")
	}
}
