package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type PagesHandler struct {
	appName string
}

func NewPagesHandler(appName string) *PagesHandler {
	return &PagesHandler{appName: appName}
}

func (h *PagesHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"AppName": h.appName})
}

func (h *PagesHandler) Dashboard(c *gin.Context) {
	c.HTML(http.StatusOK, "dashboard.html", gin.H{"AppName": h.appName})
}
