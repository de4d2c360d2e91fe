package main

import (
	"encoding/json"
	"errors"
	"net/http"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/domain/food_analysis"
	"github.com/risithcha/nutritrack/pkg/domain/nutrition"
	"github.com/risithcha/nutritrack/pkg/infrastructure/auth"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

const (
	codeNotFood      = "NOT_FOOD"
	codeValidation   = "VALIDATION_FAILED"
	codeUnauthorized = "UNAUTHORIZED"
	codeNotFound     = "NOT_FOUND"
	codeConflict     = "CONFLICT"
	codeBadRequest   = "BAD_REQUEST"
	codeUnavailable  = "UNAVAILABLE"
	codeInternal     = "INTERNAL"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// classify maps a domain error to an HTTP status and body.
func classify(err error) (int, errorResponse) {
	var verr *nutrition.ValidationError
	switch {
	case errors.Is(err, food_analysis.ErrNotFood):
		return http.StatusUnprocessableEntity, errorResponse{
			Error: "No food detected in this image. Please try again with a photo of food.",
			Code:  codeNotFood,
		}
	case errors.As(err, &verr):
		return http.StatusBadRequest, errorResponse{Error: "Please check the highlighted fields", Code: codeValidation, Fields: verr.Fields}
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken), errors.Is(err, shared.ErrPermissionDenied):
		return http.StatusUnauthorized, errorResponse{Error: err.Error(), Code: codeUnauthorized}
	case errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Code: codeValidation, Fields: map[string]string{"password": err.Error()}}
	case errors.Is(err, auth.ErrEmailExists):
		return http.StatusConflict, errorResponse{Error: err.Error(), Code: codeConflict}
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error(), Code: codeNotFound}
	case errors.Is(err, shared.ErrUnavailable):
		return http.StatusServiceUnavailable, errorResponse{Error: "Service temporarily unavailable", Code: codeUnavailable}
	}
	return http.StatusInternalServerError, errorResponse{Error: "Internal server error", Code: codeInternal}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Info("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, body)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Code: codeBadRequest})
}
