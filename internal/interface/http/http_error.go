package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/medtrack/medtrack-service/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response
// consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// statusByCode maps domain error codes onto HTTP statuses. Codes missing from
// the table fall back to 500.
var statusByCode = map[string]int{
	"invalid_input":            http.StatusBadRequest,
	"invalid_request":          http.StatusBadRequest,
	"not_found":                http.StatusNotFound,
	"user_not_found":           http.StatusNotFound,
	"email_exists":             http.StatusConflict,
	"account_linking_disabled": http.StatusConflict,
	"invalid_credentials":      http.StatusUnauthorized,
	"invalid_token":            http.StatusUnauthorized,
	"auth_not_configured":      http.StatusServiceUnavailable,
	"oauth_exchange_failed":    http.StatusBadGateway,
	"places_error":             http.StatusBadGateway,
	"no_preferred_pharmacy":    http.StatusConflict,
	"no_phone":                 http.StatusConflict,
}

// fromDomainError converts a domain error into an HTTPError, keeping the
// domain code in the response body.
func fromDomainError(err error) *HTTPError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status, ok := statusByCode[appErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		return NewHTTPError(status, appErr.Code, appErr.Message, err)
	}
	return NewHTTPError(http.StatusInternalServerError, "internal_error", "something went wrong", err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return fromDomainError(err)
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func abortWithDomainError(c *gin.Context, err error) {
	abortWithError(c, fromDomainError(err))
}
