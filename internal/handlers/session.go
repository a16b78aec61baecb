package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"skinscan-backend/internal/middleware"
	"skinscan-backend/internal/models"
)

type SessionProvider interface {
	CurrentUser(ctx context.Context, token string) (*models.SessionResponse, error)
	SignOut(ctx context.Context, token string) error
}

type SessionHandler struct {
	sessions SessionProvider
}

func NewSessionHandler(sessions SessionProvider) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) Current(c *gin.Context) {
	caller, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	user, err := h.sessions.CurrentUser(c.Request.Context(), caller.Token)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *SessionHandler) Logout(c *gin.Context) {
	caller, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	if err := h.sessions.SignOut(c.Request.Context(), caller.Token); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "You have been successfully logged out."})
}
