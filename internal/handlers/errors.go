package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"skinscan-backend/internal/models"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrAuthentication):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with the raw error message in the error envelope.
func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), models.ErrorResponse{Error: err.Error()})
}
