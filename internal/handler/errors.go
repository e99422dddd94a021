package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/siteauth/internal/dto"
	"github.com/prperemyshlev/siteauth/internal/service"
)

// respondError maps service errors onto HTTP responses. Validation-shaped
// errors carry their own message; anything unrecognized is an
// infrastructure failure and is reported as a bare 500 so store errors
// never leak details to clients.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, service.ErrDuplicateDomain),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrIncorrectPassword),
		errors.Is(err, service.ErrEmailInUse),
		errors.Is(err, service.ErrAlreadyVerified):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrEmailNotVerified):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrSiteNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

// respondBindError reports a malformed or invalid request body.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "validation failed",
		Message: err.Error(),
	})
}
