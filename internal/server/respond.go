package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/mahgouba/dealerdocs"
	"github.com/mahgouba/dealerdocs/internal/store"
	"github.com/mahgouba/dealerdocs/internal/yamlutil"
)

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError sends an error response. The request ID is already in the
// response headers when RequestID ran.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{
		Error:     message,
		RequestID: w.Header().Get(RequestIDHeader),
	})
}

// fail maps err to a status and responds. Client errors echo the error
// text; server errors are logged and answered generically.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status < http.StatusInternalServerError {
		respondError(w, status, err.Error())
		return
	}

	h.logger.Error("request error",
		zap.String("path", r.URL.Path),
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.Error(err))
	respondError(w, status, http.StatusText(status))
}

// statusFor maps sentinel errors to HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, yamlutil.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, dealerdocs.ErrInvalidDocument),
		errors.Is(err, dealerdocs.ErrInvalidCompanyRecord),
		errors.Is(err, dealerdocs.ErrInvalidKind),
		errors.Is(err, dealerdocs.ErrInvalidFormat),
		errors.Is(err, dealerdocs.ErrInvalidDirection),
		errors.Is(err, dealerdocs.ErrFormat) && !errors.Is(err, errExhaustedSequence):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dealerdocs.ErrIdentifierTaken),
		errors.Is(err, dealerdocs.ErrIssueExhausted),
		errors.Is(err, errExhaustedSequence):
		return http.StatusConflict
	case errors.Is(err, errNoSequence):
		return http.StatusNotImplemented
	case errors.Is(err, dealerdocs.ErrExportTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, dealerdocs.ErrPoolClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// readBody reads at most maxBodyBytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	return data, nil
}
