package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/midias/internal/server"
	"github.com/desertthunder/midias/internal/shared"
)

// Error codes of the response envelope.
const (
	CodeValidation   = "validation_error"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeHTTP         = "http_error"
	CodeInternal     = "internal_error"
)

// Envelope is the body of every error response.
type Envelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

// HTTPError is a failure that maps directly to a status code (unknown route, body too large, throttled).
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// kinds maps each classified error kind to its status and code, in lookup order.
var kinds = []struct {
	kind   error
	status int
	code   string
}{
	{shared.ErrValidation, http.StatusUnprocessableEntity, CodeValidation},
	{shared.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
	{shared.ErrForbidden, http.StatusForbidden, CodeForbidden},
	{shared.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{shared.ErrConflict, http.StatusConflict, CodeConflict},
}

// WriteError turns any error into the JSON envelope. It is the only place errors become responses.
//
// Unclassified errors are logged and answered with a generic 500 that carries only the
// request's correlation id, or a fresh one outside the [server.RequestID] middleware.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	if e, ok := shared.AsError(err); ok {
		for _, k := range kinds {
			if errors.Is(e.Kind, k.kind) {
				writeEnvelope(w, k.status, Envelope{Code: k.code, Message: e.Message, Details: e.Details})
				return
			}
		}
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		code := CodeHTTP
		if httpErr.Status == http.StatusNotFound {
			code = CodeNotFound
		}
		writeEnvelope(w, httpErr.Status, Envelope{Code: code, Message: httpErr.Message})
		return
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		msg := fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)
		writeEnvelope(w, http.StatusRequestEntityTooLarge, Envelope{Code: CodeHTTP, Message: msg})
		return
	}

	logger := server.LoggerFrom(r.Context())
	id := server.RequestIDFrom(r.Context())
	if id == "" {
		id = shared.GenerateID()
		logger = logger.With("request_id", id)
	}
	logger.Error("internal error",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeEnvelope(w, http.StatusInternalServerError, Envelope{
		Code:    CodeInternal,
		Message: "unexpected internal error",
		Details: map[string]string{"request_id": id},
	})
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	WriteJSON(w, status, env)
}

// ok is the body of successful responses that carry no data.
type ok struct {
	OK bool `json:"ok"`
}

func writeOK(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, ok{OK: true})
}

// NotFoundHandler answers unknown routes with the envelope.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, &HTTPError{Status: http.StatusNotFound, Message: "route not found"})
	})
}

// MethodNotAllowedHandler answers known routes requested with another method.
func MethodNotAllowedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, &HTTPError{Status: http.StatusMethodNotAllowed, Message: "method not allowed"})
	})
}

// TooManyRequestsHandler answers throttled requests.
func TooManyRequestsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, &HTTPError{Status: http.StatusTooManyRequests, Message: "too many attempts, try again later"})
	})
}

// PanicHandler writes the recovered panic through [WriteError] as an internal error.
func PanicHandler(w http.ResponseWriter, r *http.Request, err error) {
	WriteError(w, r, err)
}
