package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"cropcare-service/internal/models"
	"cropcare-service/internal/utils"

	"github.com/gin-gonic/gin"
)

// MapErrorToHTTPStatus returns the error code and status for a service error.
func MapErrorToHTTPStatus(err error) (string, int) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return "NOT_FOUND", http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return "CONFLICT", http.StatusConflict
	case errors.Is(err, models.ErrValidation):
		return "VALIDATION_ERROR", http.StatusBadRequest
	case errors.Is(err, models.ErrRateLimited):
		return "RATE_LIMITED", http.StatusTooManyRequests
	case errors.Is(err, models.ErrUpstreamFailure):
		return "UPSTREAM_FAILURE", http.StatusBadGateway
	case errors.Is(err, models.ErrStorageIO):
		return "STORAGE_ERROR", http.StatusInternalServerError
	default:
		return "INTERNAL_ERROR", http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	code, status := MapErrorToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "path", c.FullPath(), "error", err)
		message = "internal server error"
	}
	c.JSON(status, utils.CreateErrorResponse(code, message))
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, utils.CreateErrorResponse("INVALID_REQUEST_FORMAT", message))
}
