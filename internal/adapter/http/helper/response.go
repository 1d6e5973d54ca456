package helper

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/adapter/http/validation"
	"tasktracker/internal/core/domain"
	"tasktracker/internal/core/model/response"
)

// SendSuccess writes data as the whole body.
func SendSuccess(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

func SendError(c *gin.Context, statusCode int, code string, errors []response.ValidationError, details ...any) {
	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errors,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.AbortWithStatusJSON(statusCode, errorResponse)
}

func SendValidationError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", validation.FormatValidationErrors(err))
}

func SendInternalError(c *gin.Context, message string, details ...any) {
	errors := []response.ValidationError{
		{
			Field:   "server",
			Message: message,
		},
	}

	SendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", errors, details...)
}

func SendUnauthorizedError(c *gin.Context, message string) {
	errors := []response.ValidationError{
		{
			Field:   "auth",
			Message: message,
		},
	}

	SendError(c, http.StatusUnauthorized, "UNAUTHORIZED", errors)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusBadRequest, "BAD_REQUEST", errors)
}

func SendNotFoundError(c *gin.Context, message string) {
	errors := []response.ValidationError{
		{
			Field:   "resource",
			Message: message,
		},
	}

	SendError(c, http.StatusNotFound, "NOT_FOUND", errors)
}

func SendStorageUnavailable(c *gin.Context) {
	errors := []response.ValidationError{
		{
			Field:   "storage",
			Message: "storage is temporarily unavailable",
		},
	}

	SendError(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", errors)
}

// SendServiceError maps a service error onto its HTTP response.
func SendServiceError(c *gin.Context, err error) {
	c.Error(err)

	switch {
	case errors.Is(err, domain.ErrNotFoundOrUnauthorized):
		SendNotFoundError(c, "Todo not found")
	case errors.Is(err, domain.ErrUsernameTaken):
		SendBadRequestError(c, "username", err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		SendUnauthorizedError(c, err.Error())
	case errors.Is(err, domain.ErrStorageUnavailable):
		SendStorageUnavailable(c)
	default:
		SendInternalError(c, "Internal server error")
	}
}
