// Package httputil centralizes JSON response encoding and domain error
// translation so every handler returns the same envelope.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "github.com/bluenumberfoundation/humanid-core/pkg/domain-errors"
)

// maxBodyBytes caps request bodies; every payload the gateway accepts is small.
const maxBodyBytes = 1 << 20

// Validatable is implemented by request types that validate themselves after
// decoding.
type Validatable interface {
	Validate() error
}

// ErrorBody is the stable JSON error envelope.
type ErrorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeValidation:         http.StatusBadRequest,
	dErrors.CodeNotFound:           http.StatusNotFound,
	dErrors.CodeUnauthorized:       http.StatusUnauthorized,
	dErrors.CodeForbidden:          http.StatusForbidden,
	dErrors.CodeConflict:           http.StatusConflict,
	dErrors.CodeTokenInvalid:       http.StatusUnauthorized,
	dErrors.CodeSignatureMismatch:  http.StatusUnauthorized,
	dErrors.CodeConfigInvalid:      http.StatusUnprocessableEntity,
	dErrors.CodeLimitReached:       http.StatusForbidden,
	dErrors.CodeInvariantViolation: http.StatusUnprocessableEntity,
}

// ToHTTPStatus maps a domain error code to an HTTP status. Codes without a
// mapping, including CodeInternal, are a 500.
func ToHTTPStatus(code dErrors.Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeAndPrepare decodes the JSON request body into T and runs its
// Validate method when it has one. On failure it writes the error response
// itself and returns false.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	var v T
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&v); err != nil && !errors.Is(err, io.EOF) {
		logger.DebugContext(r.Context(), "request body decode failed", "error", err)
		WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return nil, false
	}
	if val, ok := any(&v).(Validatable); ok {
		if err := val.Validate(); err != nil {
			WriteError(w, err)
			return nil, false
		}
	}
	return &v, true
}

// WriteError translates a domain error into the JSON error envelope.
// Unexpected errors surface as a bare INTERNAL code: message and details are
// withheld so lower-level failures never leak to callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := ErrorBody{Error: string(code)}
	if code != dErrors.CodeInternal {
		var de *dErrors.Error
		if errors.As(err, &de) {
			body.Message = de.Message
			body.Details = de.Details
		}
	}
	WriteJSON(w, ToHTTPStatus(code), body)
}
