package server

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/iwvelando/factory-planner/pkg/errors"
)

// Codes for failures that do not come from a StructuredError.
const (
	codeBadRequest  = "BAD_REQUEST"
	codeTimeout     = "TIMEOUT"
	codeInternal    = "INTERNAL"
	codeUnavailable = "UNAVAILABLE"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error     string         `json:"error"`
	Code      string         `json:"code"`
	RequestID string         `json:"requestId,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// statusFor maps an error to its HTTP status and response code.
func statusFor(err error) (int, string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, codeTimeout
	}
	if errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable, codeUnavailable
	}

	code := apperrors.CodeOf(err)
	switch code {
	case apperrors.ErrCodeInvalidRational,
		apperrors.ErrCodeDivisionByZero,
		apperrors.ErrCodeInvalidRecipeSettings,
		apperrors.ErrCodeUnknownItem,
		apperrors.ErrCodeConflictingObjectives,
		apperrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest, string(code)
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound, string(code)
	case apperrors.ErrCodeSolverInternal:
		return http.StatusInternalServerError, string(code)
	case "":
		return http.StatusInternalServerError, codeInternal
	default:
		return http.StatusInternalServerError, string(code)
	}
}

// detailsOf returns the context of the outermost StructuredError, if any.
func detailsOf(err error) map[string]any {
	var structured *apperrors.StructuredError
	if errors.As(err, &structured) {
		return structured.Context
	}
	return nil
}
