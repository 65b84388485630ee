// Package handlers defines the HTTP-layer error codes used across all
// endpoints. Codes are lowercase snake_case and stable; clients branch on
// them rather than on messages.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "not_found",
//	  "error": "user not found"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/farm-dashboard-backend/internal/services"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeLegacyProfile  = "legacy_profile"
	ErrCodeDependency     = "dependency_failed"
	ErrCodeIdempotencyKey = "idempotency_key_reused"
)

// writeError is the single translation of service errors into HTTP
// responses. Dependency failures keep their detail in the log and return a
// generic message.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, validationMessage(err))
	case errors.Is(err, services.ErrConflict):
		fail(c, http.StatusBadRequest, ErrCodeConflict, "User already exists")
	case errors.Is(err, services.ErrIdempotencyMismatch):
		fail(c, http.StatusUnprocessableEntity, ErrCodeIdempotencyKey, "Idempotency-Key was already used with a different request")
	case errors.Is(err, services.ErrLegacyProfile):
		fail(c, http.StatusBadRequest, ErrCodeLegacyProfile, services.ErrLegacyProfile.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "User not found")
	default:
		var de *services.DependencyError
		if errors.As(err, &de) {
			c.Error(err) //nolint:errcheck
			fail(c, http.StatusInternalServerError, ErrCodeDependency, "upstream dependency failed")
			return
		}
		c.Error(err) //nolint:errcheck
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}

// validationMessage strips the sentinel prefix so clients see only the
// concrete reason, e.g. "All fields are required".
func validationMessage(err error) string {
	msg := err.Error()
	prefix := services.ErrValidation.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
