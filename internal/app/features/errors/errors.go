// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/mahallehub/internal/app/system/auth"
	"github.com/dalemusser/mahallehub/internal/app/system/taskassign"
	"go.uber.org/zap"
)

// Detail is the structured error object returned to API clients.
type Detail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type body struct {
	Error Detail `json:"error"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Write sends {"error":{"kind":...,"message":...}}.
func Write(w http.ResponseWriter, status int, kind, message string) {
	WriteJSON(w, status, body{Error: Detail{Kind: kind, Message: message}})
}

// Validation sends a 400 validation error.
func Validation(w http.ResponseWriter, message string) {
	Write(w, http.StatusBadRequest, taskassign.KindValidation, message)
}

// Unauthorized sends 401 when nobody is signed in and 403 otherwise.
func Unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	status := http.StatusForbidden
	if _, ok := auth.CurrentUser(r); !ok {
		status = http.StatusUnauthorized
	}
	if message == "" {
		message = "you do not have access to this resource"
	}
	Write(w, status, taskassign.KindUnauthorized, message)
}

// Unauthenticated sends a 401 regardless of session state. Login uses it
// for rejected credentials.
func Unauthenticated(w http.ResponseWriter, message string) {
	Write(w, http.StatusUnauthorized, taskassign.KindUnauthorized, message)
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter, message string) {
	Write(w, http.StatusForbidden, taskassign.KindUnauthorized, message)
}

// KindRateLimited is used for throttled sign-in attempts.
const KindRateLimited = "rate_limited"

// TooManyRequests sends a 429.
func TooManyRequests(w http.ResponseWriter, message string) {
	Write(w, http.StatusTooManyRequests, KindRateLimited, message)
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter, message string) {
	Write(w, http.StatusNotFound, taskassign.KindNotFound, message)
}

// Storage logs err and sends a 500 with a generic message. The driver error
// never reaches the response.
func Storage(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	if log != nil {
		log.Error(op, zap.Error(err))
	}
	Write(w, http.StatusInternalServerError, taskassign.KindStorage, "the operation could not be completed; please try again")
}

// Status returns the HTTP status for an error kind.
func Status(kind string) int {
	switch kind {
	case taskassign.KindValidation, taskassign.KindInvalidStatus:
		return http.StatusBadRequest
	case taskassign.KindNotFound:
		return http.StatusNotFound
	case taskassign.KindNoEligibleCitizens:
		return http.StatusOK
	case taskassign.KindUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// FromError renders err using the shared taxonomy.
func FromError(w http.ResponseWriter, r *http.Request, log *zap.Logger, op string, err error) {
	switch kind := taskassign.Kind(err); kind {
	case taskassign.KindUnauthorized:
		Unauthorized(w, r, "")
	case taskassign.KindStorage:
		Storage(w, log, op, err)
	default:
		Write(w, Status(kind), kind, err.Error())
	}
}
